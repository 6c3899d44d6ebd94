// Package media defines the shared playback element abstraction.
//
// The player owns exactly one audio element and one video element; every
// component that plays sound reuses the same element rather than instantiating
// parallel players, so starting new narration implicitly supersedes whatever the
// element was doing.
package media

import (
	"errors"
	"sync"

	"github.com/bookplay-cli/bookplay/key"
	"github.com/spf13/viper"
)

// BackendNull selects the clock-driven backend that plays nothing.
const BackendNull = "null"

// ErrNotAllowed indicates the platform refused to start playback (the media
// equivalent of a browser autoplay rejection). Callers recover by pausing and
// waiting for user interaction; it is never treated as end-of-segment.
var ErrNotAllowed = errors.New("media: playback not allowed")

// Handlers carries the element's lifecycle callbacks. Any field may be nil.
type Handlers struct {
	// Ended fires when the loaded media reaches its natural end.
	Ended func()
	// Error fires when the loaded media fails irrecoverably.
	Error func()
	// Playing fires when playback is confirmed to have started.
	Playing func()
}

// Element encapsulates a single media playback surface. Implementations must be
// safe for use from timer and event goroutines.
type Element interface {
	// Load prepares a new source, replacing whatever was loaded before.
	Load(src string) error

	// Play starts or resumes playback. Returns ErrNotAllowed when the platform
	// refuses to start.
	Play() error

	// Pause suspends playback, keeping the current position.
	Pause() error

	// Seek moves to an absolute position in seconds.
	Seek(seconds float64) error

	// CurrentTime reports the current playback position in seconds, zero when
	// nothing is loaded.
	CurrentTime() float64

	// Reset unloads the current source and stops playback.
	Reset()

	// SetHandlers replaces the element's lifecycle callbacks.
	SetHandlers(handlers Handlers)

	// Close terminates the backend and releases all associated resources.
	Close() error
}

// DurationHinter is implemented by backends that cannot probe media duration
// themselves and accept the page markup's precomputed value instead.
type DurationHinter interface {
	HintDuration(seconds float64)
}

var (
	mu    sync.Mutex
	audio Element
	video Element
	music Element
)

// Audio returns the process-wide audio element, lazily creating it from the
// configured backend.
func Audio() Element {
	mu.Lock()
	defer mu.Unlock()

	if audio == nil {
		audio = newElement(true)
	}
	return audio
}

// Video returns the process-wide video element, lazily creating it from the
// configured backend.
func Video() Element {
	mu.Lock()
	defer mu.Unlock()

	if video == nil {
		video = newElement(false)
	}
	return video
}

// Music returns the process-wide background music element. Music is orthogonal
// to narration and never participates in the playback mode.
func Music() Element {
	mu.Lock()
	defer mu.Unlock()

	if music == nil {
		music = newElement(true)
	}
	return music
}

// SetAudio replaces the shared audio element. Tests use this to install fakes.
func SetAudio(el Element) {
	mu.Lock()
	defer mu.Unlock()
	audio = el
}

// SetVideo replaces the shared video element.
func SetVideo(el Element) {
	mu.Lock()
	defer mu.Unlock()
	video = el
}

// SetMusic replaces the shared music element.
func SetMusic(el Element) {
	mu.Lock()
	defer mu.Unlock()
	music = el
}

func newElement(audioOnly bool) Element {
	switch viper.GetString(key.PlayerMediaBackend) {
	case BackendNull:
		return NewNull()
	default:
		return NewMPV(audioOnly)
	}
}
