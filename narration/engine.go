// Package narration drives a page's audio segments through the shared media
// element, keeping highlighting in sync and raising lifecycle events the
// hosting player uses for auto-advance and its play/pause affordance.
package narration

import (
	"errors"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/bookplay-cli/bookplay/book"
	"github.com/bookplay-cli/bookplay/highlight"
	"github.com/bookplay-cli/bookplay/key"
	"github.com/bookplay-cli/bookplay/log"
	"github.com/bookplay-cli/bookplay/media"
	"github.com/bookplay-cli/bookplay/util"
	"github.com/spf13/viper"
)

// timeTolerance is the slack allowed between the media clock and an expected
// sub-sentence boundary before the engine treats the audio as lagging.
const timeTolerance = 0.05

// Events are the notifications the engine raises. Any field may be nil.
// PlayCompleted and PageNarrationComplete differ for pages without narration:
// the former fires immediately since there is nothing to await, the latter
// only after the duration floor elapses, so auto-advance timing does not
// depend on whether audio exists.
type Events struct {
	PageDurationAvailable func(page *book.Page, seconds float64)
	PageNarrationComplete func(page *book.Page)
	PlayCompleted         func()
	PlayFailed            func()
}

// Engine is the narration state machine. One engine exists per active player;
// all of its asynchronous work (media callbacks, highlight timers, the
// synthetic duration fallback) is guarded by a session counter so callbacks
// from a superseded page die silently instead of corrupting the current one.
type Engine struct {
	mu sync.Mutex

	audio       media.Element
	highlighter *highlight.Highlighter
	events      Events

	bk   *book.Book
	page *book.Page

	session int
	mode    PlaybackMode
	stack   util.Stack[*book.AudioSegment]
	current *book.AudioSegment

	// subIndex is the next end-time table entry of the current block segment.
	subIndex int
	subTimer *time.Timer

	startedAt time.Time
	pausedAt  time.Time

	fallbackTimer *time.Timer
	fallbackSeq   int

	pageDuration float64
}

// New creates an engine bound to an audio element and a highlighter.
func New(audio media.Element, highlighter *highlight.Highlighter, events Events) *Engine {
	return &Engine{
		audio:       audio,
		highlighter: highlighter,
		events:      events,
		mode:        ModeNewPage,
	}
}

// SetBook binds the engine to the book whose recordings it resolves.
func (e *Engine) SetBook(bk *book.Book) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.bk = bk
}

// Mode returns the current playback mode.
func (e *Engine) Mode() PlaybackMode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// SetMode overrides the playback mode. The hosting player uses this for the
// video and new-page transitions it owns.
func (e *Engine) SetMode(mode PlaybackMode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mode = mode
}

func minDuration() float64 {
	floor := viper.GetFloat64(key.NarrationMinDuration)
	if floor <= 0 {
		floor = 3.0
	}
	return floor
}

// ComputeDuration scans the page for narratable segments and reports the total
// expected narration length, floored to the configured minimum. Pages without
// narration get the floor plus a fallback timer that raises the narration
// complete event anyway, since auto-advance depends on it firing for every
// page. Raises the duration available event as a side effect.
func (e *Engine) ComputeDuration(page *book.Page) float64 {
	e.mu.Lock()

	segments := page.AudioSegments()

	var total float64
	for _, seg := range segments {
		total += seg.Duration
	}

	total = util.Max(total, minDuration())
	e.pageDuration = total

	if len(segments) == 0 {
		e.scheduleFallback(page, total)
	}

	available := e.events.PageDurationAvailable
	e.mu.Unlock()

	if available != nil {
		available(page, total)
	}
	return total
}

// PlayAllSentences resets the media element, invalidates the previous session
// and starts narrating the page from its first segment. For a page without
// segments the play completed event fires immediately and the narration
// complete event is left to the duration-floor fallback.
func (e *Engine) PlayAllSentences(page *book.Page) {
	e.mu.Lock()

	e.audio.Reset()
	e.session++
	e.cancelFallbackLocked()
	e.stopSubTimerLocked()
	e.highlighter.Clear()

	e.page = page
	e.stack.Clear()
	e.current = nil
	e.startedAt = time.Now()

	segments := page.AudioSegments()
	SortAudioSegments(segments)

	// Reverse into the stack so the first segment to play sits on top.
	for i := len(segments) - 1; i >= 0; i-- {
		e.stack.Push(segments[i])
	}

	if e.stack.Len() == 0 {
		e.mode = ModeMediaFinished
		e.scheduleFallback(page, util.Max(e.pageDuration, minDuration()))
		completed := e.events.PlayCompleted
		e.mu.Unlock()

		if completed != nil {
			completed()
		}
		return
	}

	e.mode = ModeAudioPlaying
	e.startSegmentLocked()
	e.mu.Unlock()
}

// startSegmentLocked begins playing the segment on top of the stack. The
// segment stays on the stack until its ended event pops it.
func (e *Engine) startSegmentLocked() {
	seg := e.stack.Peek()
	if seg == nil {
		return
	}
	e.current = seg
	e.subIndex = 0

	sess := e.session
	e.audio.SetHandlers(media.Handlers{
		Ended:   func() { e.playEnded(sess) },
		Error:   func() { e.playEnded(sess) },
		Playing: func() { e.playConfirmed(sess) },
	})

	if err := e.audio.Load(e.bk.AudioPath(seg.ID)); err != nil {
		log.Warnf("load %s: %v", seg.ID, err)
	}
	if hinter, ok := e.audio.(media.DurationHinter); ok && seg.Duration > 0 {
		hinter.HintDuration(seg.Duration)
	}

	// Defer the highlight until playback is confirmed so segments whose audio
	// never starts do not flash.
	e.highlighter.SetWhenPlaying(e.highlightTarget(seg), seg.ImageDescription)

	if err := e.audio.Play(); err != nil {
		if errors.Is(err, media.ErrNotAllowed) {
			_ = e.audio.Pause()
			e.mode = ModeAudioPaused
			e.pausedAt = time.Now()
			failed := e.events.PlayFailed
			if failed != nil {
				go failed()
			}
			return
		}
		log.Warnf("play %s: %v", seg.ID, err)
	}

	e.scheduleSubAdvanceLocked(sess)
}

// highlightTarget picks the element carrying the highlight for a segment: the
// first sub-span of a timed block, otherwise the segment element itself.
func (e *Engine) highlightTarget(seg *book.AudioSegment) *goquery.Selection {
	if seg.IsBlock && len(seg.EndTimes) > 0 {
		if spans := seg.SubSpans(); len(spans) > 0 {
			return spans[0]
		}
	}
	return seg.Sel
}

// playConfirmed reveals the deferred highlight once the element reports
// playback actually started.
func (e *Engine) playConfirmed(sess int) {
	e.mu.Lock()
	if sess != e.session {
		e.mu.Unlock()
		return
	}
	e.highlighter.Confirm()
	e.mu.Unlock()
}

// playEnded advances past the just-finished segment. Both the natural ended
// event and the element's error event land here: a missing or corrupt
// recording skips one segment instead of halting the page.
func (e *Engine) playEnded(sess int) {
	e.mu.Lock()

	if sess != e.session {
		e.mu.Unlock()
		return
	}

	e.stack.Pop()
	e.stopSubTimerLocked()

	if e.stack.Len() > 0 {
		e.startSegmentLocked()
		e.mu.Unlock()
		return
	}

	e.current = nil
	e.mode = ModeMediaFinished
	e.highlighter.Clear()
	e.cancelFallbackLocked()

	page := e.page
	narrated := e.events.PageNarrationComplete
	completed := e.events.PlayCompleted
	e.mu.Unlock()

	if narrated != nil {
		narrated(page)
	}
	if completed != nil {
		completed()
	}
}

// Pause suspends narration, recording the pause timestamp so a later resume
// can compensate the recorded start of play.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.mode != ModeAudioPlaying {
		return
	}

	e.mode = ModeAudioPaused
	e.pausedAt = time.Now()
	e.stopSubTimerLocked()
	e.cancelFallbackLocked()
	_ = e.audio.Pause()
}

// Play resumes paused narration. The recorded start of play shifts forward by
// the paused interval so duration-based fallbacks still fire at the right
// wall-clock-adjusted moment, and the sub-sentence highlighter is re-invoked
// so it continues from the current offset instead of restarting.
func (e *Engine) Play() {
	e.mu.Lock()

	if e.mode != ModeAudioPaused {
		e.mu.Unlock()
		return
	}

	pausedFor := time.Since(e.pausedAt)
	e.startedAt = e.startedAt.Add(pausedFor)
	e.mode = ModeAudioPlaying

	if e.page != nil && len(e.page.AudioSegments()) == 0 {
		e.scheduleFallbackRemaining()
	}

	sess := e.session
	if err := e.audio.Play(); err != nil {
		if errors.Is(err, media.ErrNotAllowed) {
			_ = e.audio.Pause()
			e.mode = ModeAudioPaused
			e.pausedAt = time.Now()
			failed := e.events.PlayFailed
			e.mu.Unlock()

			if failed != nil {
				failed()
			}
			return
		}
		log.Warnf("resume: %v", err)
	}

	e.scheduleSubAdvanceLocked(sess)
	e.mu.Unlock()
}

// Stop invalidates the session, silences the element and clears all highlight
// markup. Used when the page or book is dismissed entirely.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.session++
	e.cancelFallbackLocked()
	e.stopSubTimerLocked()
	e.stack.Clear()
	e.current = nil
	e.page = nil
	e.highlighter.Clear()
	e.audio.Reset()
	e.mode = ModeNewPage
}

// StartedAt exposes the compensated start-of-play timestamp.
func (e *Engine) StartedAt() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.startedAt
}

// scheduleFallback arranges for the narration complete event to fire after the
// given duration. Any previously scheduled fallback is actively cancelled so
// the event can never fire twice for one page.
func (e *Engine) scheduleFallback(page *book.Page, seconds float64) {
	e.cancelFallbackLocked()

	e.fallbackSeq++
	seq := e.fallbackSeq
	e.startedAt = time.Now()

	e.fallbackTimer = time.AfterFunc(durationOf(seconds), func() {
		e.fallbackFired(seq, page)
	})
}

// scheduleFallbackRemaining reschedules the fallback for the time left of the
// page duration, measured against the compensated start of play.
func (e *Engine) scheduleFallbackRemaining() {
	e.fallbackSeq++
	seq := e.fallbackSeq
	page := e.page

	remaining := util.Max(time.Until(e.startedAt.Add(durationOf(e.pageDuration))), 0)
	e.fallbackTimer = time.AfterFunc(remaining, func() {
		e.fallbackFired(seq, page)
	})
}

func (e *Engine) fallbackFired(seq int, page *book.Page) {
	e.mu.Lock()
	if seq != e.fallbackSeq || e.mode.Paused() {
		e.mu.Unlock()
		return
	}
	e.fallbackTimer = nil
	narrated := e.events.PageNarrationComplete
	e.mu.Unlock()

	if narrated != nil {
		narrated(page)
	}
}

func (e *Engine) cancelFallbackLocked() {
	e.fallbackSeq++
	if e.fallbackTimer != nil {
		e.fallbackTimer.Stop()
		e.fallbackTimer = nil
	}
}

// scheduleSubAdvanceLocked arms the timer that moves the highlight to the next
// sub-sentence of a timed block. The wait is the distance from the media clock
// to the next boundary, floored to the configured retry interval.
func (e *Engine) scheduleSubAdvanceLocked(sess int) {
	seg := e.current
	if seg == nil || !seg.IsBlock || len(seg.EndTimes) == 0 {
		return
	}
	if e.subIndex >= len(seg.EndTimes)-1 {
		// The last boundary is the end of the block, which the ended event
		// handles.
		return
	}

	boundary := seg.EndTimes[e.subIndex]
	wait := util.Max(boundary-e.audio.CurrentTime(), viper.GetFloat64(key.NarrationHighlightRetry))

	e.subTimer = time.AfterFunc(durationOf(wait), func() {
		e.advanceSub(sess)
	})
}

// advanceSub fires at an expected sub-sentence boundary. If the media clock is
// still short of the boundary the audio is buffering or playing slow, so the
// engine recomputes a smaller remaining wait and retries instead of forcing
// the highlight forward.
func (e *Engine) advanceSub(sess int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if sess != e.session || e.mode != ModeAudioPlaying {
		return
	}

	seg := e.current
	if seg == nil || e.subIndex >= len(seg.EndTimes)-1 {
		return
	}

	boundary := seg.EndTimes[e.subIndex]
	if e.audio.CurrentTime()+timeTolerance < boundary {
		e.scheduleSubAdvanceLocked(sess)
		return
	}

	e.subIndex++
	spans := seg.SubSpans()
	if e.subIndex < len(spans) {
		e.highlighter.Set(spans[e.subIndex], seg.ImageDescription)
	}
	e.scheduleSubAdvanceLocked(sess)
}

func (e *Engine) stopSubTimerLocked() {
	if e.subTimer != nil {
		e.subTimer.Stop()
		e.subTimer = nil
	}
}

func durationOf(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}
