// Package player is the orchestrator: it owns the current book and page,
// routes input through the running activity's capability contract, and ties
// narration, video, background music, navigation and history together.
package player

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/bookplay-cli/bookplay/activity"
	"github.com/bookplay-cli/bookplay/activity/custom"
	"github.com/bookplay-cli/bookplay/book"
	"github.com/bookplay-cli/bookplay/bridge"
	"github.com/bookplay-cli/bookplay/config"
	"github.com/bookplay-cli/bookplay/highlight"
	"github.com/bookplay-cli/bookplay/history"
	"github.com/bookplay-cli/bookplay/key"
	"github.com/bookplay-cli/bookplay/log"
	"github.com/bookplay-cli/bookplay/media"
	"github.com/bookplay-cli/bookplay/narration"
	"github.com/bookplay-cli/bookplay/navigation"
	"github.com/spf13/viper"
)

// Player drives one reading session. It is safe for use from input and timer
// goroutines.
type Player struct {
	mu        sync.Mutex
	bk        *book.Book
	pageIndex int
	paused    bool
	swiping   bool

	videoStart time.Time

	engine      *narration.Engine
	highlighter *highlight.Highlighter
	registry    *activity.Registry
	dispatcher  *Dispatcher
	nav         *navigation.Stack
	bridge      bridge.Bridge
	scores      *ScoreKeeper
}

// New creates a player wired to the shared media elements and the given
// bridge.
func New(b bridge.Bridge) *Player {
	p := &Player{
		dispatcher: NewDispatcher(),
		nav:        navigation.New(),
		bridge:     b,
		scores:     NewScoreKeeper(),
	}

	p.highlighter = highlight.New(p)
	p.engine = narration.New(media.Audio(), p.highlighter, narration.Events{
		PageDurationAvailable: p.onDurationAvailable,
		PageNarrationComplete: p.onNarrationComplete,
		PlayCompleted:         p.onPlayCompleted,
		PlayFailed:            p.onPlayFailed,
	})
	p.registry = activity.NewRegistry(custom.Loader{}, p.dispatcher, b, p.scores)

	if commander, ok := b.(bridge.Commander); ok {
		commander.OnCommand(p.handleHostCommand)
	}

	return p
}

// handleHostCommand maps inbound bridge commands onto player actions.
func (p *Player) handleHostCommand(command string) {
	switch command {
	case "play", "pause":
		p.TogglePlayPause()
	case "back":
		p.Back()
	case "next":
		p.NextPage()
	case "previous":
		p.PreviousPage()
	default:
		log.Debugf("unknown host command %q", command)
	}
}

// Book returns the open book, nil before OpenBook.
func (p *Player) Book() *book.Book {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bk
}

// CurrentPage returns the page being shown.
func (p *Player) CurrentPage() *book.Page {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bk == nil {
		return nil
	}
	return p.bk.Page(p.pageIndex)
}

func (p *Player) currentPageID() string {
	if page := p.CurrentPage(); page != nil {
		return page.ID
	}
	return ""
}

// OpenBook loads a book from a directory and shows its first page, or the
// furthest page previously reached when progress restoring is on.
func (p *Player) OpenBook(dir string) error {
	bk, err := book.Load(dir)
	if err != nil {
		return err
	}

	p.mu.Lock()
	leaving := p.bk
	p.bk = bk
	p.pageIndex = 0
	p.mu.Unlock()

	if leaving != nil {
		p.scores.Flush(p.bridge)
	}

	p.engine.Stop()
	p.engine.SetBook(bk)

	// Kick off activity loads for every page upfront so they are usually
	// ready by the time their page shows.
	for _, page := range bk.Pages {
		p.registry.ProcessPage(bk, page)
	}

	start := 0
	if viper.GetBool(key.HistorySaveProgress) {
		if saved, err := history.Get(); err == nil {
			if record, ok := saved[bk.ID]; ok && record.PageIndex < len(bk.Pages) {
				start = record.PageIndex
			}
		}
	}

	p.ShowPage(start)
	return nil
}

// openBookURL opens a book referenced by its canonical URL, then jumps to the
// given page.
func (p *Player) openBookURL(url, pageID string) error {
	id := strings.TrimPrefix(url, "/book/")
	id = strings.TrimSuffix(id, "/index.htm")
	if id == "" || strings.Contains(id, "/") {
		return fmt.Errorf("malformed book url: %s", url)
	}

	if err := p.OpenBook(filepath.Join(config.LibraryDir(), id)); err != nil {
		return err
	}
	if pageID != "" {
		p.JumpToPageID(pageID)
	}
	return nil
}

// ShowPage makes the page at index current. The previous page's activity
// stops before the new page's starts, and the old playback session is
// invalidated before the first new segment plays.
func (p *Player) ShowPage(index int) {
	p.mu.Lock()
	if p.bk == nil {
		p.mu.Unlock()
		return
	}
	bk := p.bk
	page := bk.Page(index)
	if page == nil {
		p.mu.Unlock()
		return
	}
	p.pageIndex = index
	paused := p.paused
	p.stopVideoLocked()
	p.mu.Unlock()

	p.registry.ProcessPage(bk, page)
	p.registry.ShowingPage(bk, page)

	p.engine.ComputeDuration(page)

	switch {
	case page.HasVideo():
		p.playVideo(bk, page, paused)
	case paused:
		p.engine.Stop()
		p.engine.SetBook(bk)
		p.engine.SetMode(narration.ModeNewPageMediaPaused)
	default:
		p.engine.PlayAllSentences(page)
	}

	p.playMusic(bk, page)

	if viper.GetBool(key.AnalyticsEnable) {
		p.bridge.ReportAnalytics("page-shown", map[string]string{
			"book": bk.ID,
			"page": strconv.Itoa(index),
		})
	}
	if viper.GetBool(key.HistorySaveProgress) {
		if err := history.Save(bk, index); err != nil {
			log.Warnf("save progress: %v", err)
		}
	}
}

// NextPage advances to the next page, if there is one.
func (p *Player) NextPage() {
	p.mu.Lock()
	if p.bk == nil || p.pageIndex+1 >= len(p.bk.Pages) {
		p.mu.Unlock()
		return
	}
	index := p.pageIndex + 1
	p.mu.Unlock()

	p.ShowPage(index)
}

// PreviousPage goes back one page, if there is one.
func (p *Player) PreviousPage() {
	p.mu.Lock()
	if p.bk == nil || p.pageIndex == 0 {
		p.mu.Unlock()
		return
	}
	index := p.pageIndex - 1
	p.mu.Unlock()

	p.ShowPage(index)
}

// JumpToPageID shows the page with the given identifier. An empty identifier
// means the first page; an unknown one is logged and ignored.
func (p *Player) JumpToPageID(id string) {
	if id == "" {
		p.ShowPage(0)
		return
	}

	p.mu.Lock()
	bk := p.bk
	p.mu.Unlock()
	if bk == nil {
		return
	}

	index, ok := bk.PageIndexByID(id)
	if !ok {
		log.Warnf("unknown page id %q", id)
		return
	}
	p.ShowPage(index)
}

// HandleClick routes a click on a page element. A running activity that
// absorbs clicking gets the event; otherwise link hrefs go through the
// navigation stack, and a click on plain content toggles play/pause.
func (p *Player) HandleClick(target *goquery.Selection) {
	if p.registry.AbsorbsClicking() {
		p.dispatcher.Dispatch(activity.Event{Type: "click", Target: target})
		return
	}

	if href, ok := hrefOf(target); ok {
		bookID := ""
		if bk := p.Book(); bk != nil {
			bookID = bk.ID
		}
		result := p.nav.CheckClickForBookOrPageJump(href, bookID, p.currentPageID)
		if result.Consumed {
			if jump, ok := result.Jump.Get(); ok {
				p.applyJump(jump)
			}
			return
		}
	}

	p.TogglePlayPause()
}

// HandleKey routes a key press. A running activity that absorbs typing gets
// the event; otherwise keys drive page turning and playback.
func (p *Player) HandleKey(k string) {
	if p.registry.AbsorbsTyping() {
		p.dispatcher.Dispatch(activity.Event{Type: "keydown", Key: k})
		return
	}

	switch k {
	case "right", "l":
		p.NextPage()
	case "left", "h":
		p.PreviousPage()
	case " ":
		p.TogglePlayPause()
	case "b":
		p.Back()
	}
}

// HandleSwipe routes a page-turn gesture. A running activity that absorbs
// dragging gets the event instead of a page turn.
func (p *Player) HandleSwipe(forward bool) {
	if p.registry.AbsorbsDragging() {
		p.dispatcher.Dispatch(activity.Event{Type: "drag"})
		return
	}

	p.mu.Lock()
	p.swiping = true
	p.mu.Unlock()

	if forward {
		p.NextPage()
	} else {
		p.PreviousPage()
	}

	p.mu.Lock()
	p.swiping = false
	p.mu.Unlock()
}

// Back pops one history frame and navigates there. With an empty history this
// is a no-op.
func (p *Player) Back() {
	bookID := ""
	if bk := p.Book(); bk != nil {
		bookID = bk.ID
	}
	if jump, ok := p.nav.TryPopPlayerHistory(bookID).Get(); ok {
		p.applyJump(jump)
	}
}

// CanGoBack reports whether the history stack has anywhere to return to.
func (p *Player) CanGoBack() bool {
	return p.nav.Len() > 0
}

func (p *Player) applyJump(jump navigation.Jump) {
	if url, ok := jump.BookURL.Get(); ok {
		if err := p.openBookURL(url, jump.PageID); err != nil {
			log.Warnf("open book %s: %v", url, err)
		}
		return
	}
	p.JumpToPageID(jump.PageID)
}

// TogglePlayPause flips between the playing and paused state of whatever
// media the current page carries.
func (p *Player) TogglePlayPause() {
	switch p.engine.Mode() {
	case narration.ModeAudioPlaying:
		p.setPaused(true)
		p.engine.Pause()
	case narration.ModeAudioPaused:
		p.setPaused(false)
		p.engine.Play()
	case narration.ModeVideoPlaying:
		p.setPaused(true)
		_ = media.Video().Pause()
		p.engine.SetMode(narration.ModeVideoPaused)
	case narration.ModeVideoPaused:
		p.setPaused(false)
		if err := media.Video().Play(); err == nil {
			p.engine.SetMode(narration.ModeVideoPlaying)
		}
	case narration.ModeNewPageMediaPaused:
		p.setPaused(false)
		if page := p.CurrentPage(); page != nil {
			p.engine.PlayAllSentences(page)
		}
	default:
		p.setPaused(!p.isPaused())
	}
}

func (p *Player) setPaused(paused bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paused = paused
}

func (p *Player) isPaused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// Close flushes scores, persists progress and releases the media elements.
func (p *Player) Close() error {
	p.mu.Lock()
	bk := p.bk
	index := p.pageIndex
	p.stopVideoLocked()
	p.mu.Unlock()

	p.registry.StopCurrent()
	p.engine.Stop()
	p.scores.Flush(p.bridge)

	if bk != nil && viper.GetBool(key.HistorySaveProgress) {
		if err := history.Save(bk, index); err != nil {
			log.Warnf("save progress: %v", err)
		}
	}

	return p.bridge.Close()
}

// hrefOf finds the navigation target of a clicked element, walking up to the
// closest ancestor carrying an href or data-href attribute.
func hrefOf(target *goquery.Selection) (string, bool) {
	if target == nil || target.Length() == 0 {
		return "", false
	}

	link := target.Closest("[href], [data-href]")
	if link.Length() == 0 {
		return "", false
	}
	if href, ok := link.Attr("href"); ok {
		return href, true
	}
	return link.Attr("data-href")
}
