package activity

import (
	"sync"

	"github.com/bookplay-cli/bookplay/book"
	"github.com/bookplay-cli/bookplay/bridge"
	"github.com/bookplay-cli/bookplay/log"
)

// Registry maps activity names to modules and keeps at most one instance
// live. Built-in names resolve to bundled modules; anything else goes through
// the injected loader.
type Registry struct {
	mu      sync.Mutex
	modules map[string]Module
	loading map[string]struct{}

	loader Loader
	events Dispatcher
	bridge bridge.Bridge
	scores ScoreReporter

	running    Activity
	runningReq Requirements
	runningCtx *Context
}

// NewRegistry creates a registry with the built-in modules preregistered.
func NewRegistry(loader Loader, events Dispatcher, b bridge.Bridge, scores ScoreReporter) *Registry {
	r := &Registry{
		modules: make(map[string]Module),
		loading: make(map[string]struct{}),
		loader:  loader,
		events:  events,
		bridge:  b,
		scores:  scores,
	}
	registerBuiltins(r.modules)
	return r
}

// ProcessPage begins loading the activity a page declares, if it is not known
// yet. Loads run asynchronously and are idempotent: many pages may share one
// activity name and their loads race, but only one module ever registers.
func (r *Registry) ProcessPage(bk *book.Book, page *book.Page) {
	name := page.ActivityName
	if name == "" {
		return
	}

	r.mu.Lock()
	if _, known := r.modules[name]; known {
		r.mu.Unlock()
		return
	}
	if _, inflight := r.loading[name]; inflight {
		r.mu.Unlock()
		return
	}
	if r.loader == nil {
		r.mu.Unlock()
		log.Warnf("no loader for activity %q", name)
		return
	}
	r.loading[name] = struct{}{}
	r.mu.Unlock()

	go func() {
		module, err := r.loader.Load(bk, name)

		r.mu.Lock()
		delete(r.loading, name)
		if err == nil {
			if _, exists := r.modules[name]; !exists {
				r.modules[name] = module
			}
		}
		r.mu.Unlock()

		if err != nil {
			log.Warnf("load activity %q: %v", name, err)
		}
	}()
}

// ShowingPage makes page the current one. Whatever activity instance was
// running is stopped first, before the new page is even considered, so only
// one instance is ever live. If the page names a known activity a fresh
// instance starts with a context scoped to this visit.
func (r *Registry) ShowingPage(bk *book.Book, page *book.Page) {
	r.mu.Lock()
	r.stopLocked()

	name := page.ActivityName
	if name == "" {
		r.mu.Unlock()
		return
	}

	module, known := r.modules[name]
	if !known {
		r.mu.Unlock()
		// Load race or failure: the page stays functional, just not interactive.
		log.Warnf("activity %q referenced but never loaded", name)
		return
	}

	instance := module.New()
	ctx := NewContext(bk, page, r.bridge, r.scores, r.events)

	r.running = instance
	r.runningReq = module.Requirements()
	r.runningCtx = ctx
	r.mu.Unlock()

	if err := instance.Start(ctx); err != nil {
		log.Warnf("start activity %q: %v", name, err)
		r.StopCurrent()
	}
}

// StopCurrent stops the running activity instance, if any.
func (r *Registry) StopCurrent() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopLocked()
}

func (r *Registry) stopLocked() {
	if r.running == nil {
		return
	}
	r.running.Stop()
	r.runningCtx.Stop()
	r.running = nil
	r.runningCtx = nil
	r.runningReq = Requirements{}
}

// Known reports whether a module is registered under the given name.
func (r *Registry) Known(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, known := r.modules[name]
	return known
}

// AbsorbsDragging reports whether the running activity absorbs drag gestures.
// No running activity means every capability passes through to page-turning.
func (r *Registry) AbsorbsDragging() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running != nil && r.runningReq.Dragging
}

// AbsorbsClicking reports whether the running activity absorbs clicks.
func (r *Registry) AbsorbsClicking() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running != nil && r.runningReq.Clicking
}

// AbsorbsTyping reports whether the running activity absorbs keyboard input.
func (r *Registry) AbsorbsTyping() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running != nil && r.runningReq.Typing
}

// ManagesSound reports whether the running activity manages sound itself, in
// which case the player leaves the audio element alone.
func (r *Registry) ManagesSound() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running != nil && r.runningReq.SoundManagement
}
