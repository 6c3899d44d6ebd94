package constant

// Page Markup Classes - these classes mark up the structural roles inside a book page.
const (
	PageClass             = "page"
	AudioBlockClass       = "audio-block"
	AudioSentenceClass    = "audio-sentence"
	TranslationGroupClass = "translation-group"
	HiddenLangClass       = "hidden-lang"
	ImageDescriptionClass = "image-description"
	ImageContainerClass   = "image-container"
	VideoContainerClass   = "video-container"
)

// Highlight Classes - applied and removed by the highlight engine; at most one element carries HighlightClass at a time.
const (
	HighlightClass      = "audio-current"
	ImageHighlightClass = "image-current"
)

// Page Markup Attributes.
const (
	DurationAttr        = "data-duration"
	EndTimesAttr        = "data-endtimes"
	ActivityAttr        = "data-activity"
	BackgroundAudioAttr = "data-background-audio"
	PageIDAttr          = "id"
	OrderingAttr        = "tabindex"
)

// AudioDirname is the folder inside a book directory that holds narration recordings, keyed by segment id.
const AudioDirname = "audio"

// IndexFilename is the canonical entry document of a packaged book.
const IndexFilename = "index.htm"
