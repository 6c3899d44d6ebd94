// Package activity manages page-scoped interactive modules: loading them,
// running exactly one live instance at a time, and answering which input
// capabilities the running instance absorbs.
package activity

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/bookplay-cli/bookplay/book"
)

// Requirements declares the input capabilities an activity absorbs while it
// runs. An absorbed capability does not reach page-turning; absent fields mean
// the input passes through.
type Requirements struct {
	Dragging        bool `json:"dragging"`
	Clicking        bool `json:"clicking"`
	Typing          bool `json:"typing"`
	SoundManagement bool `json:"soundManagement"`
}

// Activity is one page-visit instance of an interactive module. Instances are
// never reused: every page-show constructs a fresh one so no state leaks from
// a previous visit.
type Activity interface {
	Start(ctx *Context) error
	Stop()
}

// Module produces activity instances for one registered name.
type Module interface {
	Requirements() Requirements
	New() Activity
}

// Loader resolves a non-built-in activity name to a module, typically from
// the book's own folder. Injected so the registry is testable without a real
// script engine.
type Loader interface {
	Load(bk *book.Book, name string) (Module, error)
}

// Event is one user input delivered to an activity listener.
type Event struct {
	// Type is the event name the listener subscribed to, like "click" or
	// "keydown".
	Type string
	// Target is the page element the event landed on, when there is one.
	Target *goquery.Selection
	// Key carries the pressed key for keyboard events.
	Key string
}

// Dispatcher attaches listeners to the hosting player's input stream.
type Dispatcher interface {
	// AddEventListener subscribes the handler to events of the given type and
	// returns a function that detaches it again.
	AddEventListener(event string, handler func(Event)) (remove func())
}

// ScoreReporter aggregates activity scores. The first report for a page wins;
// later reports for the same page leave the aggregate unchanged.
type ScoreReporter interface {
	ReportScore(page int, possible, actual int)
}
