// Package highlight applies the "currently narrated" marker to page elements,
// keeping at most one element highlighted at any time.
package highlight

import (
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/bookplay-cli/bookplay/constant"
)

// Scroller brings a highlighted element into view. Implementations must avoid
// smooth scrolling while a page swipe is in progress, since the two animations
// fight over the viewport.
type Scroller interface {
	// SwipeInProgress reports whether a page-turn gesture is currently active.
	SwipeInProgress() bool
	// ScrollIntoView smoothly scrolls the element into the viewport.
	ScrollIntoView(sel *goquery.Selection)
	// ResetScroll performs a lightweight scroll reset without animation.
	ResetScroll()
}

// Highlighter owns the highlight marker. Setting a new target removes the
// marker from the previous one, and setting the same element twice is a no-op
// so already-highlighted elements never flicker.
type Highlighter struct {
	mu         sync.Mutex
	current    *goquery.Selection
	image      *goquery.Selection
	pending    *goquery.Selection
	pendingImg *goquery.Selection
	scroller   Scroller
}

// New creates a highlighter. The scroller may be nil.
func New(scroller Scroller) *Highlighter {
	return &Highlighter{scroller: scroller}
}

// Set highlights sel, unhighlighting whatever was highlighted before. For
// image-description segments the enclosing image container is marked too.
func (h *Highlighter) Set(sel *goquery.Selection, imageDescription bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.pending = nil
	h.pendingImg = nil
	h.apply(sel, imageDescription)
}

// SetWhenPlaying records sel as the next highlight target but defers applying
// it until Confirm is called. This avoids a flash of highlight on elements
// whose audio never actually starts.
func (h *Highlighter) SetWhenPlaying(sel *goquery.Selection, imageDescription bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.pending = sel
	h.pendingImg = nil
	if imageDescription {
		h.pendingImg = sel
	}
}

// Confirm applies the deferred highlight once playback is confirmed.
func (h *Highlighter) Confirm() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.pending == nil {
		return
	}
	sel := h.pending
	imageDescription := h.pendingImg != nil
	h.pending = nil
	h.pendingImg = nil
	h.apply(sel, imageDescription)
}

func (h *Highlighter) apply(sel *goquery.Selection, imageDescription bool) {
	if h.current != nil && sameElement(h.current, sel) {
		return
	}

	h.clearLocked()

	sel.AddClass(constant.HighlightClass)
	h.current = sel

	if imageDescription {
		container := sel.Closest("." + constant.ImageContainerClass)
		if container.Length() > 0 {
			container.AddClass(constant.ImageHighlightClass)
			h.image = container
		}
	}

	if h.scroller != nil {
		if h.scroller.SwipeInProgress() {
			h.scroller.ResetScroll()
		} else {
			h.scroller.ScrollIntoView(sel)
		}
	}
}

// Clear removes all highlight markup.
func (h *Highlighter) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.pending = nil
	h.pendingImg = nil
	h.clearLocked()
}

func (h *Highlighter) clearLocked() {
	if h.current != nil {
		h.current.RemoveClass(constant.HighlightClass)
		h.current = nil
	}
	if h.image != nil {
		h.image.RemoveClass(constant.ImageHighlightClass)
		h.image = nil
	}
}

// Current returns the highlighted element, nil when nothing is highlighted.
func (h *Highlighter) Current() *goquery.Selection {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// sameElement reports whether two selections point at the same underlying node.
func sameElement(a, b *goquery.Selection) bool {
	if a.Length() == 0 || b.Length() == 0 {
		return false
	}
	return a.Nodes[0] == b.Nodes[0]
}
