// Package history provides the implementation for tracking and persisting
// per-book reading progress.
package history

import (
	"github.com/bookplay-cli/bookplay/book"
	"github.com/bookplay-cli/bookplay/filesystem"
	"github.com/bookplay-cli/bookplay/where"
	"github.com/metafates/gache"
)

// cacher provides an abstracted, disk-backed registry for reading progress records.
var cacher = gache.New[map[string]*SavedReading](
	&gache.Options{
		Path:       where.History(),
		FileSystem: &filesystem.GacheFs{},
	},
)

// Get returns the complete collection of reading records from the persistent store.
func Get() (map[string]*SavedReading, error) {
	cached, expired, err := cacher.Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return make(map[string]*SavedReading), nil
	}
	return cached, nil
}

// Save persists the reading position of a book to the history registry.
func Save(bk *book.Book, pageIndex int) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	record := newSavedReading(bk)

	// Keep the furthest page ever reached so jumping back never regresses progress.
	if existing, exists := saved[record.encode()]; exists {
		if pageIndex < existing.PageIndex {
			pageIndex = existing.PageIndex
		}
	}
	record.PageIndex = pageIndex

	saved[record.encode()] = record

	return cacher.Set(saved)
}

// Remove permanently deletes a reading record from the history registry.
func Remove(reading *SavedReading) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	delete(saved, reading.encode())
	return cacher.Set(saved)
}
