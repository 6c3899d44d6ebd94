package config

import (
	"testing"

	"github.com/bookplay-cli/bookplay/filesystem"
	"github.com/bookplay-cli/bookplay/key"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSetup(t *testing.T) {
	Convey("When setting up the configuration", t, func() {
		err := Setup()
		Convey("Then the error should be nil", func() {
			So(err, ShouldBeNil)
		})
	})
}

func TestDefaults(t *testing.T) {
	Convey("Given the defaults registry", t, func() {
		Convey("Every field key matches its registry key", func() {
			for k, field := range Default {
				So(field.Key, ShouldEqual, k)
			}
		})

		Convey("The narration floor is registered as a float", func() {
			field, ok := Default[key.NarrationMinDuration]
			So(ok, ShouldBeTrue)
			So(field.Value, ShouldHaveSameTypeAs, float64(0))
		})

		Convey("Env names carry the application prefix", func() {
			field := Default[key.LogsWrite]
			So(field.Env(), ShouldEqual, "BOOKPLAY_LOGS_WRITE")
		})
	})
}
