package player

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bookplay-cli/bookplay/activity"
	"github.com/bookplay-cli/bookplay/bridge"
	"github.com/bookplay-cli/bookplay/filesystem"
	"github.com/bookplay-cli/bookplay/key"
	"github.com/bookplay-cli/bookplay/media"
	"github.com/bookplay-cli/bookplay/narration"
	"github.com/bookplay-cli/bookplay/where"
	"github.com/spf13/viper"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
	os.Setenv(where.EnvConfigPath, "/config")

	viper.Set(key.PlayerMediaBackend, "null")
	viper.Set(key.NarrationMinDuration, 0.05)
	viper.Set(key.NarrationHighlightRetry, 0.01)
	viper.Set(key.HistorySaveProgress, false)
	viper.Set(key.PlayerAutoAdvance, false)
}

const playerIndex = `<html><head><title>Player Fixture</title></head><body>
<div class="page" id="p1">
  <a href="#p3">jump to the quiz</a>
  <a id="out" href="https://example.com">outside</a>
</div>
<div class="page" id="p2">
  <div class="audio-block">
    <span class="audio-sentence" id="s1" data-duration="5">Long sentence.</span>
  </div>
</div>
<div class="page" id="p3" data-activity="simple-checkboxes">
  <span class="checkbox" id="c1"></span>
</div>
</body></html>`

func writeBook(t *testing.T, dir string) {
	fs := filesystem.API()
	if err := fs.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := fs.WriteFile(filepath.Join(dir, "index.htm"), []byte(playerIndex), 0644); err != nil {
		t.Fatal(err)
	}
}

func newTestPlayer(t *testing.T) *Player {
	media.SetAudio(media.NewNull())
	media.SetVideo(media.NewNull())
	media.SetMusic(media.NewNull())

	p := New(bridge.NewLocal())
	p.nav.SetOpener(func(string) error { return nil })

	writeBook(t, "/library/fixture")
	if err := p.OpenBook("/library/fixture"); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestOpenBook(t *testing.T) {
	Convey("Opening a book shows its first page", t, func() {
		p := newTestPlayer(t)
		So(p.Book().Title, ShouldEqual, "Player Fixture")
		So(p.CurrentPage().ID, ShouldEqual, "p1")
	})
}

func TestPageTurning(t *testing.T) {
	Convey("Given an open book", t, func() {
		p := newTestPlayer(t)

		Convey("Keys turn pages within bounds", func() {
			p.HandleKey("right")
			So(p.CurrentPage().ID, ShouldEqual, "p2")

			p.HandleKey("left")
			So(p.CurrentPage().ID, ShouldEqual, "p1")

			p.HandleKey("left")
			So(p.CurrentPage().ID, ShouldEqual, "p1")
		})

		Convey("Swipes turn pages too", func() {
			p.HandleSwipe(true)
			So(p.CurrentPage().ID, ShouldEqual, "p2")
		})
	})
}

func TestClickNavigation(t *testing.T) {
	Convey("Given the first page with links", t, func() {
		p := newTestPlayer(t)
		page := p.CurrentPage()

		Convey("A page link jumps and records the origin", func() {
			p.HandleClick(page.Root.Find(`a[href="#p3"]`))
			So(p.CurrentPage().ID, ShouldEqual, "p3")
			So(p.CanGoBack(), ShouldBeTrue)

			Convey("And back returns there", func() {
				p.Back()
				So(p.CurrentPage().ID, ShouldEqual, "p1")
				So(p.CanGoBack(), ShouldBeFalse)
			})
		})

		Convey("An external link opens outside without navigating", func() {
			var opened []string
			p.nav.SetOpener(func(url string) error {
				opened = append(opened, url)
				return nil
			})

			p.HandleClick(page.Root.Find("#out"))
			So(opened, ShouldResemble, []string{"https://example.com"})
			So(p.CurrentPage().ID, ShouldEqual, "p1")
			So(p.CanGoBack(), ShouldBeFalse)
		})
	})
}

func TestTogglePlayPause(t *testing.T) {
	Convey("Given a narrated page", t, func() {
		p := newTestPlayer(t)
		p.ShowPage(1)
		So(p.engine.Mode(), ShouldEqual, narration.ModeAudioPlaying)

		Convey("Toggling pauses and resumes", func() {
			p.TogglePlayPause()
			So(p.engine.Mode(), ShouldEqual, narration.ModeAudioPaused)
			So(p.isPaused(), ShouldBeTrue)

			p.TogglePlayPause()
			So(p.engine.Mode(), ShouldEqual, narration.ModeAudioPlaying)
			So(p.isPaused(), ShouldBeFalse)
		})
	})
}

func TestActivityAbsorbsClicks(t *testing.T) {
	Convey("Given the activity page", t, func() {
		p := newTestPlayer(t)
		p.ShowPage(2)

		page := p.CurrentPage()
		So(p.registry.AbsorbsClicking(), ShouldBeTrue)

		Convey("Clicking a checkbox reaches the activity, not navigation", func() {
			p.HandleClick(page.Root.Find("#c1"))
			So(page.Root.Find("#c1").HasClass("checked"), ShouldBeTrue)
			So(p.CurrentPage().ID, ShouldEqual, "p3")
		})

		Convey("Leaving the page releases the click capability", func() {
			p.ShowPage(0)
			So(p.registry.AbsorbsClicking(), ShouldBeFalse)
		})
	})
}

func TestAutoAdvance(t *testing.T) {
	Convey("Given auto-advance on a silent page", t, func() {
		viper.Set(key.PlayerAutoAdvance, true)
		defer viper.Set(key.PlayerAutoAdvance, false)

		p := newTestPlayer(t)
		So(p.CurrentPage().ID, ShouldEqual, "p1")

		Convey("The duration floor advances the page", func() {
			deadline := time.Now().Add(2 * time.Second)
			for time.Now().Before(deadline) {
				if p.CurrentPage().ID != "p1" {
					break
				}
				time.Sleep(10 * time.Millisecond)
			}
			So(p.CurrentPage().ID, ShouldEqual, "p2")
		})
	})
}

func TestScoreKeeper(t *testing.T) {
	Convey("Given a score keeper", t, func() {
		k := NewScoreKeeper()

		Convey("The first report per page wins", func() {
			k.ReportScore(1, 10, 7)
			k.ReportScore(1, 10, 3)

			possible, actual := k.Total()
			So(possible, ShouldEqual, 10)
			So(actual, ShouldEqual, 7)
			So(k.Reported(1), ShouldBeTrue)
		})

		Convey("Pages aggregate independently", func() {
			k.ReportScore(1, 10, 7)
			k.ReportScore(2, 5, 5)

			possible, actual := k.Total()
			So(possible, ShouldEqual, 15)
			So(actual, ShouldEqual, 12)
		})
	})
}

func TestDispatcher(t *testing.T) {
	Convey("Given a dispatcher", t, func() {
		d := NewDispatcher()

		var clicks, keys int
		removeClick := d.AddEventListener("click", func(activity.Event) { clicks++ })
		d.AddEventListener("keydown", func(activity.Event) { keys++ })

		Convey("Events reach only their type's listeners", func() {
			d.Dispatch(activity.Event{Type: "click"})
			So(clicks, ShouldEqual, 1)
			So(keys, ShouldEqual, 0)
		})

		Convey("Removed listeners stay silent", func() {
			removeClick()
			d.Dispatch(activity.Event{Type: "click"})
			So(clicks, ShouldEqual, 0)
			So(d.Len(), ShouldEqual, 1)
		})
	})
}
