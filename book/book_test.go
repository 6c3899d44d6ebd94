package book

import (
	"path/filepath"
	"testing"

	"github.com/bookplay-cli/bookplay/filesystem"
	"github.com/bookplay-cli/bookplay/key"
	"github.com/spf13/viper"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

const sampleIndex = `<html><head><title>The Moon Book</title></head><body>
<div class="page" id="cover">
  <div class="translation-group" tabindex="2">
    <div class="audio-block" id="b1" data-duration="4.5" data-endtimes="1.5 3.0 4.5">
      <span class="audio-sentence">One.</span>
      <span class="audio-sentence">Two.</span>
      <span class="audio-sentence">Three.</span>
    </div>
  </div>
  <div class="translation-group">
    <div class="audio-block hidden-lang" id="b2" data-duration="2.0">Versteckt.</div>
  </div>
</div>
<div class="page" id="p2" data-activity="simple-checkboxes">
  <div class="audio-block" id="b3">
    <span class="audio-sentence" id="s1" data-duration="1.25">Hello.</span>
    <span class="audio-sentence" id="s2" data-duration="2">World.</span>
  </div>
  <div class="audio-block" id="b4" style="display: none" data-duration="9">Hidden.</div>
</div>
</body></html>`

func writeSample(dir string) {
	fs := filesystem.API()
	So(fs.MkdirAll(dir, 0755), ShouldBeNil)
	So(fs.WriteFile(filepath.Join(dir, "index.htm"), []byte(sampleIndex), 0644), ShouldBeNil)
}

func TestLoad(t *testing.T) {
	Convey("Given a packaged book on disk", t, func() {
		dir := "/library/moon-book"
		writeSample(dir)

		b, err := Load(dir)
		So(err, ShouldBeNil)

		Convey("The identifier comes from the directory name", func() {
			So(b.ID, ShouldEqual, "moon-book")
			So(b.Title, ShouldEqual, "The Moon Book")
			So(b.String(), ShouldEqual, "The Moon Book")
		})

		Convey("All pages are parsed in order", func() {
			So(len(b.Pages), ShouldEqual, 2)
			So(b.Pages[0].ID, ShouldEqual, "cover")
			So(b.Pages[1].ID, ShouldEqual, "p2")
			So(b.Pages[1].ActivityName, ShouldEqual, "simple-checkboxes")
		})

		Convey("Page identifiers resolve to indexes", func() {
			idx, ok := b.PageIndexByID("p2")
			So(ok, ShouldBeTrue)
			So(idx, ShouldEqual, 1)

			_, ok = b.PageIndexByID("nope")
			So(ok, ShouldBeFalse)
		})

		Convey("Audio paths are keyed by segment id", func() {
			So(b.AudioPath("s1"), ShouldEqual, filepath.Join(dir, "audio", "s1.mp3"))
		})

		Convey("Activity script paths stay inside the activities folder", func() {
			So(b.ActivityScriptPath("quiz"), ShouldEqual, filepath.Join(dir, "activities", "quiz.lua"))
			So(b.ActivityScriptPath("../../quiz"), ShouldEqual, filepath.Join(dir, "activities", "quiz.lua"))
		})
	})
}

func TestAudioSegments(t *testing.T) {
	Convey("Given a loaded book", t, func() {
		dir := "/library/seg-book"
		writeSample(dir)
		b, err := Load(dir)
		So(err, ShouldBeNil)

		Convey("A block with an end-time table is one block segment", func() {
			segments := b.Pages[0].AudioSegments()
			So(len(segments), ShouldEqual, 1)

			seg := segments[0]
			So(seg.ID, ShouldEqual, "b1")
			So(seg.IsBlock, ShouldBeTrue)
			So(seg.Duration, ShouldEqual, 4.5)
			So(seg.EndTimes, ShouldResemble, []float64{1.5, 3.0, 4.5})
			So(len(seg.SubSpans()), ShouldEqual, 3)

			Convey("And it inherits the translation group's ordering key", func() {
				So(seg.OrderingKey, ShouldEqual, 2)
			})
		})

		Convey("Hidden-language blocks are excluded", func() {
			for _, seg := range b.Pages[0].AudioSegments() {
				So(seg.ID, ShouldNotEqual, "b2")
			}
		})

		Convey("Sentence spans become individual segments", func() {
			segments := b.Pages[1].AudioSegments()
			So(len(segments), ShouldEqual, 2)
			So(segments[0].ID, ShouldEqual, "s1")
			So(segments[0].IsBlock, ShouldBeFalse)
			So(segments[0].Duration, ShouldEqual, 1.25)
			So(segments[1].ID, ShouldEqual, "s2")

			Convey("Without a translation group key they carry the sentinel", func() {
				So(segments[0].OrderingKey, ShouldEqual, UnorderedKey)
			})
		})

		Convey("Blocks with inline display:none are excluded", func() {
			for _, seg := range b.Pages[1].AudioSegments() {
				So(seg.ID, ShouldNotEqual, "b4")
			}
		})
	})
}

func TestURL(t *testing.T) {
	Convey("URL renders the canonical book form", t, func() {
		So(URL("moon-book"), ShouldEqual, "/book/moon-book/index.htm")
	})
}

func TestLookup(t *testing.T) {
	Convey("Given a library with books", t, func() {
		viper.Set(key.BooksLibrary, "/library")
		writeSample("/library/moon-book")
		writeSample("/library/star-atlas")

		Convey("Exact names resolve directly", func() {
			dir, err := Lookup("moon-book")
			So(err, ShouldBeNil)
			So(dir, ShouldEqual, filepath.Join("/library", "moon-book"))
		})

		Convey("Fuzzy names resolve to the best match", func() {
			dir, err := Lookup("moon")
			So(err, ShouldBeNil)
			So(dir, ShouldEqual, filepath.Join("/library", "moon-book"))
		})

		Convey("Unknown names carry a suggestion", func() {
			_, err := Lookup("moan-bok")
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "moon-book")
		})
	})
}
