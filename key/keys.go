// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Player Behavior - these keys govern page sequencing and media backend selection.
const (
	PlayerAutoAdvance  = "player.autoadvance"
	PlayerMediaBackend = "player.media_backend"
)

// Narration Engine - these keys tune narration timing and highlighting cadence.
const (
	NarrationMinDuration    = "narration.min_duration"
	NarrationHighlightRetry = "narration.highlight_retry"
)

// Activities - these keys control page-scoped interactive module loading.
const (
	ActivitiesEnableCustom = "activities.enable_custom"
)

// Book Library - these keys configure where books are discovered.
const (
	BooksLibrary = "books.library"
)

// History Tracking - these keys configure the persistence of reading progress.
const (
	HistorySaveProgress = "history.save_progress"
)

// External Bridge - these keys configure the host message channel and analytics.
const (
	BridgeSocket    = "bridge.socket"
	AnalyticsEnable = "analytics.enable"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Diagnostics - these keys configure the logging subsystem.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// Command Line Interface.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)
