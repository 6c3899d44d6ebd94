package history

import (
	"time"

	"github.com/bookplay-cli/bookplay/book"
	"github.com/bookplay-cli/bookplay/util"
)

// SavedReading is one persisted reading-progress record.
type SavedReading struct {
	BookID    string    `json:"book_id"`
	Title     string    `json:"title"`
	PageIndex int       `json:"page_index"`
	PageCount int       `json:"page_count"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newSavedReading(bk *book.Book) *SavedReading {
	return &SavedReading{
		BookID:    bk.ID,
		Title:     bk.Title,
		PageCount: len(bk.Pages),
		UpdatedAt: time.Now(),
	}
}

// encode returns the registry key of the record.
func (r *SavedReading) encode() string {
	return r.BookID
}

// Progress reports how far through the book the record is, from 0 to 1. The
// value is clamped so a record saved against a longer edition of the book
// never reports more than complete.
func (r *SavedReading) Progress() float64 {
	if r.PageCount <= 1 {
		return 1
	}
	return util.Min(float64(r.PageIndex)/float64(r.PageCount-1), 1)
}

func (r *SavedReading) String() string {
	if r.Title != "" {
		return r.Title
	}
	return r.BookID
}
