package media

import (
	"sync"
	"time"
)

// Null is a silent clock-driven element. It keeps accurate positions and fires
// Ended after the hinted duration, which keeps narration and auto-advance
// functional on systems without a media backend.
type Null struct {
	mu        sync.Mutex
	src       string
	handlers  Handlers
	playing   bool
	startedAt time.Time
	offset    float64
	duration  float64
	deny      bool
	endTimer  *time.Timer
	loadGen   int
}

// NewNull creates a silent element.
func NewNull() *Null {
	return &Null{}
}

// DenyPlayback makes subsequent Play calls fail with ErrNotAllowed, simulating
// platform autoplay restrictions.
func (n *Null) DenyPlayback(deny bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.deny = deny
}

func (n *Null) Load(src string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.stopLocked()
	n.src = src
	n.offset = 0
	n.duration = 0
	n.loadGen++
	return nil
}

// HintDuration sets the length after which Ended fires.
func (n *Null) HintDuration(seconds float64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.duration = seconds
}

func (n *Null) Play() error {
	n.mu.Lock()

	if n.deny {
		n.mu.Unlock()
		return ErrNotAllowed
	}

	n.playing = true
	n.startedAt = time.Now()

	if n.duration > 0 {
		remaining := n.duration - n.offset
		if remaining < 0 {
			remaining = 0
		}
		gen := n.loadGen
		n.endTimer = time.AfterFunc(time.Duration(remaining*float64(time.Second)), func() {
			n.fireEnded(gen)
		})
	}

	playing := n.handlers.Playing
	n.mu.Unlock()

	// Handlers fire from their own goroutine, matching how event-driven
	// backends deliver them.
	if playing != nil {
		go playing()
	}
	return nil
}

func (n *Null) fireEnded(gen int) {
	n.mu.Lock()
	if gen != n.loadGen || !n.playing {
		n.mu.Unlock()
		return
	}
	n.playing = false
	n.offset = n.duration
	ended := n.handlers.Ended
	n.mu.Unlock()

	if ended != nil {
		ended()
	}
}

func (n *Null) Pause() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.playing {
		n.offset += time.Since(n.startedAt).Seconds()
		n.playing = false
	}
	if n.endTimer != nil {
		n.endTimer.Stop()
		n.endTimer = nil
	}
	return nil
}

func (n *Null) Seek(seconds float64) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.offset = seconds
	n.startedAt = time.Now()
	return nil
}

func (n *Null) CurrentTime() float64 {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.playing {
		return n.offset + time.Since(n.startedAt).Seconds()
	}
	return n.offset
}

func (n *Null) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.stopLocked()
	n.src = ""
	n.offset = 0
	n.duration = 0
	n.loadGen++
}

func (n *Null) SetHandlers(handlers Handlers) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.handlers = handlers
}

func (n *Null) Close() error {
	n.Reset()
	return nil
}

func (n *Null) stopLocked() {
	n.playing = false
	if n.endTimer != nil {
		n.endTimer.Stop()
		n.endTimer = nil
	}
}
