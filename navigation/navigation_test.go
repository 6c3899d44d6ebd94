package navigation

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func pageID(id string) func() string {
	return func() string { return id }
}

func TestCheckClick(t *testing.T) {
	Convey("Given a navigation stack", t, func() {
		s := New()

		var opened []string
		s.SetOpener(func(url string) error {
			opened = append(opened, url)
			return nil
		})

		Convey("An element without an href is not consumed", func() {
			result := s.CheckClickForBookOrPageJump("", "book1", pageID("p1"))
			So(result.Consumed, ShouldBeFalse)
			So(result.Jump.IsAbsent(), ShouldBeTrue)
		})

		Convey("An external link opens outside and leaves the stack untouched", func() {
			result := s.CheckClickForBookOrPageJump("https://example.com", "book1", pageID("p1"))
			So(result.Consumed, ShouldBeTrue)
			So(result.Jump.IsAbsent(), ShouldBeTrue)
			So(opened, ShouldResemble, []string{"https://example.com"})
			So(s.Len(), ShouldEqual, 0)
		})

		Convey("A bare page href jumps in-book and records the origin", func() {
			result := s.CheckClickForBookOrPageJump("#p5", "book1", pageID("p1"))
			So(result.Consumed, ShouldBeTrue)

			jump := result.Jump.MustGet()
			So(jump.BookURL.IsAbsent(), ShouldBeTrue)
			So(jump.PageID, ShouldEqual, "p5")
			So(s.Len(), ShouldEqual, 1)
		})

		Convey("A book href jumps across books", func() {
			result := s.CheckClickForBookOrPageJump("/book/book2#p3", "book1", pageID("p1"))
			So(result.Consumed, ShouldBeTrue)

			jump := result.Jump.MustGet()
			So(jump.BookURL.MustGet(), ShouldEqual, "/book/book2/index.htm")
			So(jump.PageID, ShouldEqual, "p3")
			So(s.Len(), ShouldEqual, 1)
		})

		Convey("A book href naming the current book degenerates to a page jump", func() {
			result := s.CheckClickForBookOrPageJump("/book/book1#p9", "book1", pageID("p1"))
			jump := result.Jump.MustGet()
			So(jump.BookURL.IsAbsent(), ShouldBeTrue)
			So(jump.PageID, ShouldEqual, "p9")
		})

		Convey("A malformed target is consumed but navigates nowhere", func() {
			result := s.CheckClickForBookOrPageJump("/book/", "book1", pageID("p1"))
			So(result.Consumed, ShouldBeTrue)
			So(result.Jump.IsAbsent(), ShouldBeTrue)
			So(s.Len(), ShouldEqual, 0)
		})

		Convey("A literal back href with empty history navigates nowhere", func() {
			result := s.CheckClickForBookOrPageJump("back", "book1", pageID("p1"))
			So(result.Consumed, ShouldBeTrue)
			So(result.Jump.IsAbsent(), ShouldBeTrue)
		})
	})
}

func TestHistoryRoundTrip(t *testing.T) {
	Convey("Given jumps from book1 to book2 and within book2", t, func() {
		s := New()
		s.SetOpener(func(string) error { return nil })

		s.CheckClickForBookOrPageJump("/book/book2#pC", "book1", pageID("pA"))
		s.CheckClickForBookOrPageJump("#pD", "book2", pageID("pC"))
		So(s.Len(), ShouldEqual, 2)

		Convey("The first pop stays inside book2", func() {
			jump := s.TryPopPlayerHistory("book2").MustGet()
			So(jump.BookURL.IsAbsent(), ShouldBeTrue)
			So(jump.PageID, ShouldEqual, "pC")

			Convey("The second pop crosses back into book1", func() {
				jump := s.TryPopPlayerHistory("book2").MustGet()
				So(jump.BookURL.MustGet(), ShouldEqual, "/book/book1/index.htm")
				So(jump.PageID, ShouldEqual, "pA")

				Convey("And a third pop finds nothing", func() {
					So(s.TryPopPlayerHistory("book1").IsAbsent(), ShouldBeTrue)
				})
			})
		})
	})
}
