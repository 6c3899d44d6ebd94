package book

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/bookplay-cli/bookplay/config"
	"github.com/bookplay-cli/bookplay/filesystem"
	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
)

// ErrEmptyLibrary indicates the configured library directory holds no books.
var ErrEmptyLibrary = errors.New("no books in the library")

// Library lists the identifiers of every book folder in the configured library.
func Library() ([]string, error) {
	entries, err := filesystem.API().ReadDir(config.LibraryDir())
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

// Lookup resolves a book name to its directory. Exact matches win; otherwise the
// best case-insensitive fuzzy match is used. An unknown name yields an error
// carrying the closest known name as a suggestion.
func Lookup(name string) (string, error) {
	names, err := Library()
	if err != nil {
		return "", err
	}

	if len(names) == 0 {
		return "", ErrEmptyLibrary
	}

	if lo.Contains(names, name) {
		return filepath.Join(config.LibraryDir(), name), nil
	}

	ranks := fuzzy.RankFindFold(name, names)
	if len(ranks) > 0 {
		best := lo.MinBy(ranks, func(a, b fuzzy.Rank) bool {
			return a.Distance < b.Distance
		})
		return filepath.Join(config.LibraryDir(), best.Target), nil
	}

	closest := lo.MinBy(names, func(a, b string) bool {
		return levenshtein.Distance(name, a) < levenshtein.Distance(name, b)
	})
	return "", fmt.Errorf("unknown book %q, did you mean %q?", name, closest)
}
