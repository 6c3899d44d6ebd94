package bridge

import (
	"testing"

	"github.com/bookplay-cli/bookplay/filesystem"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestLocalPageData(t *testing.T) {
	Convey("Given a local bridge", t, func() {
		b := NewLocal()

		Convey("Stored page data survives a revisit", func() {
			So(b.StorePageData(3, "answer", "42"), ShouldBeNil)

			value, ok := b.PageData(3, "answer")
			So(ok, ShouldBeTrue)
			So(value, ShouldEqual, "42")
		})

		Convey("Data is scoped to the page index", func() {
			So(b.StorePageData(1, "answer", "yes"), ShouldBeNil)

			_, ok := b.PageData(2, "answer")
			So(ok, ShouldBeFalse)
		})

		Convey("Host notifications are discarded without error", func() {
			b.ReportAnalytics("page-shown", map[string]string{"page": "1"})
			b.ReportVideoPlayed(12.5)
			b.SendMessageToHost("hello")
			So(b.Close(), ShouldBeNil)
		})
	})
}
