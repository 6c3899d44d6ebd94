package highlight

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/bookplay-cli/bookplay/constant"
	. "github.com/smartystreets/goconvey/convey"
)

const sampleMarkup = `<html><body>
<div class="image-container">
  <div class="image-description">
    <span class="audio-sentence" id="img-s1">A red balloon.</span>
  </div>
</div>
<div class="audio-block" id="b1">
  <span class="audio-sentence" id="s1">One.</span>
  <span class="audio-sentence" id="s2">Two.</span>
</div>
</body></html>`

type fakeScroller struct {
	swiping  bool
	scrolled int
	resets   int
}

func (f *fakeScroller) SwipeInProgress() bool                 { return f.swiping }
func (f *fakeScroller) ScrollIntoView(_ *goquery.Selection)   { f.scrolled++ }
func (f *fakeScroller) ResetScroll()                          { f.resets++ }

func parse(t *testing.T) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(sampleMarkup))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestHighlighter(t *testing.T) {
	Convey("Given a page with sentences", t, func() {
		doc := parse(t)
		s1 := doc.Find("#s1")
		s2 := doc.Find("#s2")

		h := New(nil)

		Convey("Setting a highlight marks exactly that element", func() {
			h.Set(s1, false)
			So(s1.HasClass(constant.HighlightClass), ShouldBeTrue)
			So(s2.HasClass(constant.HighlightClass), ShouldBeFalse)
		})

		Convey("Moving the highlight removes the old marker", func() {
			h.Set(s1, false)
			h.Set(s2, false)
			So(s1.HasClass(constant.HighlightClass), ShouldBeFalse)
			So(s2.HasClass(constant.HighlightClass), ShouldBeTrue)
		})

		Convey("Re-setting the same element keeps the marker intact", func() {
			h.Set(s1, false)
			h.Set(s1, false)
			So(s1.HasClass(constant.HighlightClass), ShouldBeTrue)
			So(h.Current().Nodes[0], ShouldEqual, s1.Nodes[0])
		})

		Convey("Image descriptions co-highlight their container", func() {
			img := doc.Find("#img-s1")
			h.Set(img, true)
			So(img.HasClass(constant.HighlightClass), ShouldBeTrue)
			So(doc.Find("."+constant.ImageContainerClass).HasClass(constant.ImageHighlightClass), ShouldBeTrue)

			h.Clear()
			So(img.HasClass(constant.HighlightClass), ShouldBeFalse)
			So(doc.Find("."+constant.ImageContainerClass).HasClass(constant.ImageHighlightClass), ShouldBeFalse)
		})

		Convey("A deferred highlight only appears once confirmed", func() {
			h.SetWhenPlaying(s1, false)
			So(s1.HasClass(constant.HighlightClass), ShouldBeFalse)

			h.Confirm()
			So(s1.HasClass(constant.HighlightClass), ShouldBeTrue)

			Convey("And a second confirm is a no-op", func() {
				h.Confirm()
				So(s1.HasClass(constant.HighlightClass), ShouldBeTrue)
			})
		})

		Convey("Clear removes a deferred highlight before it lands", func() {
			h.SetWhenPlaying(s1, false)
			h.Clear()
			h.Confirm()
			So(s1.HasClass(constant.HighlightClass), ShouldBeFalse)
		})
	})
}

func TestScrolling(t *testing.T) {
	Convey("Given a highlighter with a scroller", t, func() {
		doc := parse(t)
		s1 := doc.Find("#s1")

		scroller := &fakeScroller{}
		h := New(scroller)

		Convey("An idle viewport scrolls the element into view", func() {
			h.Set(s1, false)
			So(scroller.scrolled, ShouldEqual, 1)
			So(scroller.resets, ShouldEqual, 0)
		})

		Convey("An active swipe gets a scroll reset instead", func() {
			scroller.swiping = true
			h.Set(s1, false)
			So(scroller.scrolled, ShouldEqual, 0)
			So(scroller.resets, ShouldEqual, 1)
		})
	})
}
