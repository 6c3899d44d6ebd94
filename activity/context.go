package activity

import (
	"path/filepath"
	"sync"

	"github.com/bookplay-cli/bookplay/book"
	"github.com/bookplay-cli/bookplay/bridge"
	"github.com/bookplay-cli/bookplay/log"
	"github.com/bookplay-cli/bookplay/media"
)

// Context is the facade handed to each activity instance, scoped to one page
// visit. It remembers every listener the activity attaches so Stop can detach
// them all, guaranteeing no stale handlers survive once the page is no longer
// current.
type Context struct {
	mu      sync.Mutex
	bk      *book.Book
	page    *book.Page
	bridge  bridge.Bridge
	scores  ScoreReporter
	events  Dispatcher
	detach  []func()
	stopped bool
}

// NewContext creates a context for one page visit.
func NewContext(bk *book.Book, page *book.Page, b bridge.Bridge, scores ScoreReporter, events Dispatcher) *Context {
	return &Context{
		bk:     bk,
		page:   page,
		bridge: b,
		scores: scores,
		events: events,
	}
}

// Page returns the page this context is scoped to.
func (c *Context) Page() *book.Page {
	return c.page
}

// ReportScore records the activity's score for this page. Reporting is
// idempotent per page: repeated calls do not change what was recorded first.
func (c *Context) ReportScore(possible, actual int) {
	if c.scores == nil {
		return
	}
	c.scores.ReportScore(c.page.Index, possible, actual)
}

// StoreSessionPageData persists a key/value pair scoped to this page through
// the bridge, surviving a page revisit within the same reading session.
func (c *Context) StoreSessionPageData(key, value string) {
	if err := c.bridge.StorePageData(c.page.Index, key, value); err != nil {
		log.Warnf("store page data %s: %v", key, err)
	}
}

// GetSessionPageData retrieves a previously stored value for this page.
func (c *Context) GetSessionPageData(key string) (string, bool) {
	return c.bridge.PageData(c.page.Index, key)
}

// AddEventListener subscribes to the player's input stream and remembers the
// subscription so Stop can undo it. Listeners added after Stop are discarded.
func (c *Context) AddEventListener(event string, handler func(Event)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped || c.events == nil {
		return
	}
	c.detach = append(c.detach, c.events.AddEventListener(event, handler))
}

// PlaySound plays a sound file relative to the book directory through the
// shared audio element, superseding whatever it was playing.
func (c *Context) PlaySound(src string) error {
	el := media.Audio()
	if err := el.Load(filepath.Join(c.bk.Dir, src)); err != nil {
		return err
	}
	return el.Play()
}

// Stop detaches every remembered listener. Called automatically when the
// hosting page stops being current.
func (c *Context) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return
	}
	c.stopped = true

	for _, remove := range c.detach {
		remove()
	}
	c.detach = nil
}
