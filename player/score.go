package player

import (
	"strconv"
	"sync"

	"github.com/bookplay-cli/bookplay/bridge"
	"github.com/bookplay-cli/bookplay/key"
	"github.com/bookplay-cli/bookplay/log"
	"github.com/spf13/viper"
)

type pageScore struct {
	possible int
	actual   int
}

// ScoreKeeper aggregates activity scores across the pages of one book.
// Reporting is first-call-wins per page: a repeated report for the same page
// never changes the recorded value, so revisits and duplicate callbacks
// cannot inflate the total.
type ScoreKeeper struct {
	mu    sync.Mutex
	pages map[int]pageScore
}

// NewScoreKeeper creates an empty keeper.
func NewScoreKeeper() *ScoreKeeper {
	return &ScoreKeeper{pages: make(map[int]pageScore)}
}

// ReportScore records a page's score unless one was recorded already.
func (k *ScoreKeeper) ReportScore(page, possible, actual int) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if _, reported := k.pages[page]; reported {
		log.Debugf("score for page %d already recorded, ignoring", page)
		return
	}
	k.pages[page] = pageScore{possible: possible, actual: actual}
}

// Total sums the recorded scores.
func (k *ScoreKeeper) Total() (possible, actual int) {
	k.mu.Lock()
	defer k.mu.Unlock()

	for _, s := range k.pages {
		possible += s.possible
		actual += s.actual
	}
	return possible, actual
}

// Reported reports whether a page has a recorded score.
func (k *ScoreKeeper) Reported(page int) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	_, reported := k.pages[page]
	return reported
}

// Flush sends the aggregate once and resets the keeper. Called when the book
// is dismissed so every page had its chance to report.
func (k *ScoreKeeper) Flush(b bridge.Bridge) {
	k.mu.Lock()
	count := len(k.pages)
	k.mu.Unlock()

	if count == 0 {
		return
	}

	possible, actual := k.Total()

	if viper.GetBool(key.AnalyticsEnable) {
		b.ReportAnalytics("scores", map[string]string{
			"possible": strconv.Itoa(possible),
			"actual":   strconv.Itoa(actual),
			"pages":    strconv.Itoa(count),
		})
	}

	k.mu.Lock()
	k.pages = make(map[int]pageScore)
	k.mu.Unlock()
}
