// Package book defines the domain model for packaged books: pages, narratable
// audio segments, and the local book library.
package book

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/PuerkitoBio/goquery"
	"github.com/bookplay-cli/bookplay/constant"
	"github.com/bookplay-cli/bookplay/filesystem"
	"github.com/bookplay-cli/bookplay/util"
)

// Book represents one loaded book: an ordered list of pages parsed from the
// canonical index document.
type Book struct {
	ID    string
	Title string
	Dir   string
	Pages []*Page
}

// URL returns the canonical form of a book link for the given identifier.
func URL(id string) string {
	return fmt.Sprintf("/book/%s/%s", id, constant.IndexFilename)
}

// Load reads and parses a book from its directory. The directory basename is the
// book identifier.
func Load(dir string) (*Book, error) {
	raw, err := filesystem.API().ReadFile(filepath.Join(dir, constant.IndexFilename))
	if err != nil {
		return nil, fmt.Errorf("read book index: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse book index: %w", err)
	}

	b := &Book{
		ID:    filepath.Base(dir),
		Title: doc.Find("title").First().Text(),
		Dir:   dir,
	}

	doc.Find("div." + constant.PageClass).Each(func(i int, sel *goquery.Selection) {
		b.Pages = append(b.Pages, newPage(i, sel))
	})

	return b, nil
}

func (b *Book) String() string {
	if b.Title != "" {
		return b.Title
	}
	return b.ID
}

// Page returns the page at the given index, or nil when out of range.
func (b *Book) Page(index int) *Page {
	if index < 0 || index >= len(b.Pages) {
		return nil
	}
	return b.Pages[index]
}

// PageIndexByID resolves a page identifier to its index.
func (b *Book) PageIndexByID(id string) (int, bool) {
	for _, p := range b.Pages {
		if p.ID == id {
			return p.Index, true
		}
	}
	return 0, false
}

// AudioPath returns the expected location of the recording for a segment id.
func (b *Book) AudioPath(segmentID string) string {
	return filepath.Join(b.Dir, constant.AudioDirname, segmentID+".mp3")
}

// ActivityScriptPath returns the location a book-supplied activity script is
// expected at for the given activity name. The name comes from page markup, so
// it is sanitized and can never escape the activities folder.
func (b *Book) ActivityScriptPath(name string) string {
	return filepath.Join(b.Dir, constant.ActivitiesDirname, util.SanitizeFilename(name)+".lua")
}
