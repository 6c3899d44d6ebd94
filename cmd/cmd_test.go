package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bookplay-cli/bookplay/filesystem"
	"github.com/bookplay-cli/bookplay/key"
	"github.com/bookplay-cli/bookplay/where"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/viper"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
	_ = os.Setenv(where.EnvConfigPath, "/config")
	viper.Set(key.BooksLibrary, "/library")
}

const bookMarkup = `<html><head><title>%s</title></head><body>
<div class="page" id="cover">
  <div class="audio-block">
    <span class="audio-sentence" id="s1" data-duration="1">One.</span>
    <span class="audio-sentence" id="s2" data-duration="1">Two.</span>
  </div>
</div>
<div class="page" id="end"><p>Fin.</p></div>
</body></html>`

func writeBook(id, title string) {
	fs := filesystem.API()
	dir := filepath.Join("/library", id)
	So(fs.MkdirAll(dir, 0755), ShouldBeNil)
	So(fs.WriteFile(filepath.Join(dir, "index.htm"), []byte(fmt.Sprintf(bookMarkup, title)), 0644), ShouldBeNil)
}

func TestInspectCommand(t *testing.T) {
	Convey("Given a book whose title exceeds the display width", t, func() {
		writeBook("wide-book", strings.TrimSpace(strings.Repeat("An Exceedingly Verbose Title ", 10)))

		var out bytes.Buffer
		inspectCmd.SetOut(&out)
		defer inspectCmd.SetOut(os.Stdout)

		inspectCmd.Run(inspectCmd, []string{"wide-book"})

		lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
		So(len(lines), ShouldBeGreaterThan, 1)

		Convey("Every output line fits the display width", func() {
			for _, line := range lines {
				So(lipgloss.Width(line), ShouldBeLessThanOrEqualTo, displayWidth())
			}
		})

		Convey("And the narrated page reports its segment count", func() {
			So(out.String(), ShouldContainSubstring, "2 segments")
		})
	})
}

func TestBooksCommand(t *testing.T) {
	Convey("Given a library with a book", t, func() {
		writeBook("solo-book", "Solo")

		var out bytes.Buffer
		booksCmd.SetOut(&out)
		defer booksCmd.SetOut(os.Stdout)

		booksCmd.Run(booksCmd, nil)

		Convey("The listing shows the title and page count", func() {
			So(out.String(), ShouldContainSubstring, "Solo")
			So(out.String(), ShouldContainSubstring, "2 pages")
		})
	})
}
