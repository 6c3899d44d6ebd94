package media

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestNull(t *testing.T) {
	Convey("Given a null element", t, func() {
		el := NewNull()

		Convey("Play reports success and fires the playing handler", func() {
			played := make(chan struct{}, 1)
			el.SetHandlers(Handlers{Playing: func() { played <- struct{}{} }})

			So(el.Load("/audio/a.mp3"), ShouldBeNil)
			So(el.Play(), ShouldBeNil)

			select {
			case <-played:
			case <-time.After(time.Second):
				t.Fatal("playing handler never fired")
			}
		})

		Convey("Denied playback returns ErrNotAllowed", func() {
			el.DenyPlayback(true)
			So(el.Load("/audio/a.mp3"), ShouldBeNil)
			So(el.Play(), ShouldEqual, ErrNotAllowed)
		})

		Convey("A hinted duration fires Ended", func() {
			ended := make(chan struct{}, 1)
			el.SetHandlers(Handlers{Ended: func() { ended <- struct{}{} }})

			So(el.Load("/audio/a.mp3"), ShouldBeNil)
			el.HintDuration(0.05)
			So(el.Play(), ShouldBeNil)

			select {
			case <-ended:
			case <-time.After(time.Second):
				t.Fatal("ended handler never fired")
			}
		})

		Convey("Pause freezes the reported position", func() {
			So(el.Load("/audio/a.mp3"), ShouldBeNil)
			So(el.Seek(1.5), ShouldBeNil)
			So(el.Pause(), ShouldBeNil)
			So(el.CurrentTime(), ShouldEqual, 1.5)
		})

		Convey("Reset clears the position", func() {
			So(el.Load("/audio/a.mp3"), ShouldBeNil)
			So(el.Seek(2), ShouldBeNil)
			el.Reset()
			So(el.CurrentTime(), ShouldEqual, 0)
		})
	})
}
