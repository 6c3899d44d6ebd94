package narration

// PlaybackMode describes the global media state. Exactly one value holds at a
// time; background music is orthogonal and not represented here.
type PlaybackMode int

const (
	// ModeNewPage means a page was just shown and nothing has played yet.
	ModeNewPage PlaybackMode = iota
	// ModeNewPageMediaPaused means a page was shown while playback is paused.
	ModeNewPageMediaPaused
	ModeVideoPlaying
	ModeVideoPaused
	ModeAudioPlaying
	ModeAudioPaused
	// ModeMediaFinished means every queued segment has finished playing.
	ModeMediaFinished
)

var modeNames = map[PlaybackMode]string{
	ModeNewPage:            "new page",
	ModeNewPageMediaPaused: "new page, media paused",
	ModeVideoPlaying:       "video playing",
	ModeVideoPaused:        "video paused",
	ModeAudioPlaying:       "audio playing",
	ModeAudioPaused:        "audio paused",
	ModeMediaFinished:      "media finished",
}

func (m PlaybackMode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return "unknown"
}

// Paused reports whether the mode is one of the paused variants.
func (m PlaybackMode) Paused() bool {
	switch m {
	case ModeNewPageMediaPaused, ModeVideoPaused, ModeAudioPaused:
		return true
	default:
		return false
	}
}
