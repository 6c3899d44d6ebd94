package constant

// Activity Contract Function Identifiers - these constants define the required global function signatures for Lua activity modules.
const (
	ActivityStartFn        = "start"
	ActivityStopFn         = "stop"
	ActivityRequirementsFn = "activityRequirements"
)

// ActivitiesDirname is the folder inside a book directory that holds book-supplied activity scripts.
const ActivitiesDirname = "activities"
