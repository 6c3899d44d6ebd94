package history

import (
	"testing"

	"github.com/bookplay-cli/bookplay/book"
	"github.com/bookplay-cli/bookplay/filesystem"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func sampleBook() *book.Book {
	return &book.Book{
		ID:    "moon-book",
		Title: "The Moon Book",
		Pages: make([]*book.Page, 5),
	}
}

func TestSave(t *testing.T) {
	Convey("Given a book being read", t, func() {
		bk := sampleBook()

		Convey("Progress is persisted", func() {
			So(Save(bk, 2), ShouldBeNil)

			saved, err := Get()
			So(err, ShouldBeNil)
			So(saved[bk.ID], ShouldNotBeNil)
			So(saved[bk.ID].PageIndex, ShouldEqual, 2)
			So(saved[bk.ID].Title, ShouldEqual, "The Moon Book")
		})

		Convey("Jumping back never regresses the furthest page", func() {
			So(Save(bk, 4), ShouldBeNil)
			So(Save(bk, 1), ShouldBeNil)

			saved, err := Get()
			So(err, ShouldBeNil)
			So(saved[bk.ID].PageIndex, ShouldEqual, 4)
		})

		Convey("Removing deletes the record", func() {
			So(Save(bk, 3), ShouldBeNil)

			saved, err := Get()
			So(err, ShouldBeNil)
			So(Remove(saved[bk.ID]), ShouldBeNil)

			saved, err = Get()
			So(err, ShouldBeNil)
			So(saved[bk.ID], ShouldBeNil)
		})
	})
}

func TestProgress(t *testing.T) {
	Convey("Progress spans the page range", t, func() {
		r := &SavedReading{PageIndex: 2, PageCount: 5}
		So(r.Progress(), ShouldEqual, 0.5)

		Convey("A single-page book is always complete", func() {
			So((&SavedReading{PageCount: 1}).Progress(), ShouldEqual, 1)
		})

		Convey("A record from a longer edition never exceeds complete", func() {
			So((&SavedReading{PageIndex: 9, PageCount: 5}).Progress(), ShouldEqual, 1)
		})
	})
}
