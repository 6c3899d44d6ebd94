package activity

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/bookplay-cli/bookplay/book"
	"github.com/bookplay-cli/bookplay/bridge"
	"github.com/bookplay-cli/bookplay/filesystem"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

const registryMarkup = `<html><body>
<div class="page" id="quiz" data-activity="fake-quiz"></div>
<div class="page" id="boxes" data-activity="simple-checkboxes">
  <span class="checkbox" id="c1"></span>
  <span class="checkbox" id="c2"></span>
</div>
<div class="page" id="plain"></div>
</body></html>`

func registryBook(t *testing.T) *book.Book {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(registryMarkup))
	if err != nil {
		t.Fatal(err)
	}
	bk := &book.Book{ID: "fixture", Dir: "/library/fixture"}
	doc.Find("div.page").Each(func(i int, sel *goquery.Selection) {
		bk.Pages = append(bk.Pages, &book.Page{
			Index:        i,
			ID:           sel.AttrOr("id", ""),
			ActivityName: sel.AttrOr("data-activity", ""),
			Root:         sel,
		})
	})
	return bk
}

// fakeDispatcher counts live listeners and lets tests feed events in.
type fakeDispatcher struct {
	mu       sync.Mutex
	handlers map[int]func(Event)
	types    map[int]string
	next     int
}

func newFakeDispatcher() *fakeDispatcher {
	return &fakeDispatcher{
		handlers: make(map[int]func(Event)),
		types:    make(map[int]string),
	}
}

func (d *fakeDispatcher) AddEventListener(event string, handler func(Event)) func() {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := d.next
	d.next++
	d.handlers[id] = handler
	d.types[id] = event
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.handlers, id)
		delete(d.types, id)
	}
}

func (d *fakeDispatcher) dispatch(ev Event) {
	d.mu.Lock()
	var handlers []func(Event)
	for id, handler := range d.handlers {
		if d.types[id] == ev.Type {
			handlers = append(handlers, handler)
		}
	}
	d.mu.Unlock()

	for _, handler := range handlers {
		handler(ev)
	}
}

func (d *fakeDispatcher) live() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.handlers)
}

// fakeScores records every report, honoring nothing.
type fakeScores struct {
	mu      sync.Mutex
	reports []int
}

func (s *fakeScores) ReportScore(page, possible, actual int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, actual)
}

// fakeModule counts constructed instances and records call order.
type fakeModule struct {
	mu        sync.Mutex
	req       Requirements
	instances int
	calls     *[]string
}

func (m *fakeModule) Requirements() Requirements { return m.req }

func (m *fakeModule) New() Activity {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.instances++
	return &fakeInstance{id: m.instances, calls: m.calls}
}

type fakeInstance struct {
	id    int
	calls *[]string
}

func (a *fakeInstance) Start(*Context) error {
	if a.calls != nil {
		*a.calls = append(*a.calls, "start")
	}
	return nil
}

func (a *fakeInstance) Stop() {
	if a.calls != nil {
		*a.calls = append(*a.calls, "stop")
	}
}

// fakeLoader resolves every name to the same module, counting loads.
type fakeLoader struct {
	mu     sync.Mutex
	module Module
	loads  int
}

func (l *fakeLoader) Load(_ *book.Book, _ string) (Module, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loads++
	time.Sleep(10 * time.Millisecond)
	return l.module, nil
}

func (l *fakeLoader) loaded() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loads
}

func TestProcessPage(t *testing.T) {
	Convey("Given a page declaring a loadable activity", t, func() {
		bk := registryBook(t)
		loader := &fakeLoader{module: &fakeModule{}}
		r := NewRegistry(loader, newFakeDispatcher(), bridge.NewLocal(), &fakeScores{})

		Convey("The module registers once even when loads race", func() {
			r.ProcessPage(bk, bk.Pages[0])
			r.ProcessPage(bk, bk.Pages[0])

			So(func() bool {
				deadline := time.Now().Add(time.Second)
				for time.Now().Before(deadline) {
					if r.Known("fake-quiz") {
						return true
					}
					time.Sleep(5 * time.Millisecond)
				}
				return false
			}(), ShouldBeTrue)
			So(loader.loaded(), ShouldEqual, 1)

			Convey("And a known name is never reloaded", func() {
				r.ProcessPage(bk, bk.Pages[0])
				So(loader.loaded(), ShouldEqual, 1)
			})
		})

		Convey("A built-in name needs no loading", func() {
			So(r.Known(SimpleCheckboxesName), ShouldBeTrue)
		})
	})
}

func TestShowingPage(t *testing.T) {
	Convey("Given a registry with a registered activity", t, func() {
		bk := registryBook(t)
		var calls []string
		module := &fakeModule{req: Requirements{Dragging: true, Typing: true}, calls: &calls}
		dispatcher := newFakeDispatcher()

		r := NewRegistry(nil, dispatcher, bridge.NewLocal(), &fakeScores{})
		r.modules["fake-quiz"] = module

		Convey("Showing the page starts an instance", func() {
			r.ShowingPage(bk, bk.Pages[0])
			So(calls, ShouldResemble, []string{"start"})

			Convey("Capability queries follow the declared requirements", func() {
				So(r.AbsorbsDragging(), ShouldBeTrue)
				So(r.AbsorbsTyping(), ShouldBeTrue)
				So(r.AbsorbsClicking(), ShouldBeFalse)
				So(r.ManagesSound(), ShouldBeFalse)
			})

			Convey("The old instance stops before a new page starts", func() {
				r.ShowingPage(bk, bk.Pages[0])
				So(calls, ShouldResemble, []string{"start", "stop", "start"})
				So(module.instances, ShouldEqual, 2)
			})

			Convey("A page without an activity stops everything", func() {
				r.ShowingPage(bk, bk.Pages[2])
				So(calls, ShouldResemble, []string{"start", "stop"})
				So(r.AbsorbsDragging(), ShouldBeFalse)
			})
		})

		Convey("An unknown activity leaves the page passive", func() {
			page := &book.Page{Index: 9, ID: "mystery", ActivityName: "never-loaded", Root: bk.Pages[2].Root}
			So(func() { r.ShowingPage(bk, page) }, ShouldNotPanic)
			So(r.AbsorbsClicking(), ShouldBeFalse)
		})
	})
}

func TestCheckboxesActivity(t *testing.T) {
	Convey("Given the built-in checkbox activity", t, func() {
		bk := registryBook(t)
		page := bk.Pages[1]
		dispatcher := newFakeDispatcher()
		scores := &fakeScores{}

		r := NewRegistry(nil, dispatcher, bridge.NewLocal(), scores)
		r.ShowingPage(bk, page)

		So(r.AbsorbsClicking(), ShouldBeTrue)
		So(dispatcher.live(), ShouldEqual, 1)

		Convey("Checking every box reports a full score", func() {
			dispatcher.dispatch(Event{Type: "click", Target: page.Root.Find("#c1")})
			So(scores.reports, ShouldBeEmpty)

			dispatcher.dispatch(Event{Type: "click", Target: page.Root.Find("#c2")})
			So(scores.reports, ShouldResemble, []int{2})
		})

		Convey("Leaving the page detaches the listener", func() {
			r.ShowingPage(bk, bk.Pages[2])
			So(dispatcher.live(), ShouldEqual, 0)
		})
	})
}
