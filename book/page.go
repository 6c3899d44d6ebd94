package book

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/bookplay-cli/bookplay/constant"
)

// Page represents a discrete page within a book.
type Page struct {
	// Index is the zero-based position of the page inside the book.
	Index int
	// ID is the page identifier used in navigation hrefs.
	ID string
	// ActivityName names the interactive module bound to this page, if any.
	ActivityName string

	// Root is the page's parsed markup.
	Root *goquery.Selection
}

func newPage(index int, sel *goquery.Selection) *Page {
	return &Page{
		Index:        index,
		ID:           sel.AttrOr(constant.PageIDAttr, ""),
		ActivityName: sel.AttrOr(constant.ActivityAttr, ""),
		Root:         sel,
	}
}

// String returns the canonical string representation of the page identifier.
func (p *Page) String() string {
	if p.ID != "" {
		return p.ID
	}
	return "page " + strconv.Itoa(p.Index+1)
}

// HasVideo reports whether the page carries a video container.
func (p *Page) HasVideo() bool {
	return p.Root.Find("."+constant.VideoContainerClass).Length() > 0
}

// VideoSource returns the source path of the page's first video, if present.
func (p *Page) VideoSource() (string, bool) {
	src := p.Root.Find("." + constant.VideoContainerClass + " video source").First()
	if src.Length() == 0 {
		return "", false
	}
	return src.Attr("src")
}

// BackgroundAudio returns the page's background music track, if declared.
func (p *Page) BackgroundAudio() (string, bool) {
	v, ok := p.Root.Attr(constant.BackgroundAudioAttr)
	return v, ok && v != ""
}

// Text returns the visible text content of the page, whitespace-collapsed.
func (p *Page) Text() string {
	return strings.Join(strings.Fields(p.Root.Text()), " ")
}

// visible reports whether an element is shown: no inline display:none on the
// element or any of its ancestors and no hidden-language marker. This stands in
// for the computed display a real layout engine would provide.
func visible(sel *goquery.Selection) bool {
	for cur := sel; cur.Length() > 0; cur = cur.Parent() {
		style := strings.ReplaceAll(cur.AttrOr("style", ""), " ", "")
		if strings.Contains(style, "display:none") {
			return false
		}
		if cur.HasClass(constant.HiddenLangClass) {
			return false
		}
	}
	return true
}
