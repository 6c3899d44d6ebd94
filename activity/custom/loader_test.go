package custom

import (
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/bookplay-cli/bookplay/activity"
	"github.com/bookplay-cli/bookplay/book"
	"github.com/bookplay-cli/bookplay/bridge"
	"github.com/bookplay-cli/bookplay/filesystem"
	"github.com/bookplay-cli/bookplay/key"
	"github.com/spf13/viper"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
	viper.Set(key.ActivitiesEnableCustom, true)
}

const quizScript = `
function activityRequirements()
    return { clicking = true, soundManagement = false }
end

function start(context)
    context.storeSessionPageData("state", "started")
    context.addEventListener("click", function(event)
        context.reportScore(3, 2)
    end)
end

function stop()
end
`

const brokenScript = `
function start(context)
end
`

type recordingDispatcher struct {
	mu       sync.Mutex
	handlers []func(activity.Event)
}

func (d *recordingDispatcher) AddEventListener(_ string, handler func(activity.Event)) func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers = append(d.handlers, handler)
	return func() {}
}

func (d *recordingDispatcher) dispatch(ev activity.Event) {
	d.mu.Lock()
	handlers := append(([]func(activity.Event))(nil), d.handlers...)
	d.mu.Unlock()

	for _, handler := range handlers {
		handler(ev)
	}
}

type recordingScores struct {
	mu      sync.Mutex
	reports [][3]int
}

func (s *recordingScores) ReportScore(page, possible, actual int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, [3]int{page, possible, actual})
}

func scriptedBook(t *testing.T, name, script string) *book.Book {
	bk := &book.Book{ID: "scripted", Dir: "/library/scripted"}

	fs := filesystem.API()
	if err := fs.MkdirAll("/library/scripted/activities", 0755); err != nil {
		t.Fatal(err)
	}
	if err := fs.WriteFile(bk.ActivityScriptPath(name), []byte(script), 0644); err != nil {
		t.Fatal(err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<html><body><div class="page" id="p1"></div></body></html>`))
	if err != nil {
		t.Fatal(err)
	}
	bk.Pages = []*book.Page{{Index: 0, ID: "p1", Root: doc.Find("div.page")}}
	return bk
}

func TestLoad(t *testing.T) {
	Convey("Given a book-supplied activity script", t, func() {
		bk := scriptedBook(t, "quiz", quizScript)

		module, err := Loader{}.Load(bk, "quiz")
		So(err, ShouldBeNil)

		Convey("The declared requirements are honored", func() {
			req := module.Requirements()
			So(req.Clicking, ShouldBeTrue)
			So(req.Dragging, ShouldBeFalse)
			So(req.SoundManagement, ShouldBeFalse)
		})

		Convey("A started instance reaches the context", func() {
			dispatcher := &recordingDispatcher{}
			scores := &recordingScores{}
			ctx := activity.NewContext(bk, bk.Pages[0], bridge.NewLocal(), scores, dispatcher)

			instance := module.New()
			So(instance.Start(ctx), ShouldBeNil)

			value, ok := ctx.GetSessionPageData("state")
			So(ok, ShouldBeTrue)
			So(value, ShouldEqual, "started")

			Convey("Events flow into the script's listener", func() {
				dispatcher.dispatch(activity.Event{Type: "click"})
				So(scores.reports, ShouldResemble, [][3]int{{0, 3, 2}})
			})

			Convey("Stopping is safe and events afterwards are dropped", func() {
				instance.Stop()
				So(func() { dispatcher.dispatch(activity.Event{Type: "click"}) }, ShouldNotPanic)
				So(scores.reports, ShouldBeEmpty)
			})
		})
	})
}

func TestLoadValidation(t *testing.T) {
	Convey("A script missing required functions is rejected", t, func() {
		bk := scriptedBook(t, "broken", brokenScript)

		_, err := Loader{}.Load(bk, "broken")
		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, "required")
	})

	Convey("Disabled custom activities never load", t, func() {
		bk := scriptedBook(t, "quiz", quizScript)

		viper.Set(key.ActivitiesEnableCustom, false)
		defer viper.Set(key.ActivitiesEnableCustom, true)

		_, err := Loader{}.Load(bk, "quiz")
		So(err, ShouldNotBeNil)
	})
}
