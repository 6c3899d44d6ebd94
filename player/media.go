package player

import (
	"errors"
	"path/filepath"
	"time"

	"github.com/bookplay-cli/bookplay/book"
	"github.com/bookplay-cli/bookplay/key"
	"github.com/bookplay-cli/bookplay/log"
	"github.com/bookplay-cli/bookplay/media"
	"github.com/bookplay-cli/bookplay/narration"
	"github.com/spf13/viper"
)

// playVideo starts the page's video through the shared video element.
func (p *Player) playVideo(bk *book.Book, page *book.Page, paused bool) {
	src, ok := page.VideoSource()
	if !ok {
		p.engine.PlayAllSentences(page)
		return
	}

	video := media.Video()
	if err := video.Load(filepath.Join(bk.Dir, src)); err != nil {
		log.Warnf("load video %s: %v", src, err)
		p.engine.PlayAllSentences(page)
		return
	}

	video.SetHandlers(media.Handlers{
		Ended: func() { p.onVideoEnded(page) },
		Error: func() { p.onVideoEnded(page) },
	})

	if paused {
		p.engine.SetMode(narration.ModeVideoPaused)
		return
	}

	p.mu.Lock()
	p.videoStart = time.Now()
	p.mu.Unlock()

	if err := video.Play(); err != nil {
		if errors.Is(err, media.ErrNotAllowed) {
			p.engine.SetMode(narration.ModeVideoPaused)
			p.onPlayFailed()
			return
		}
		log.Warnf("play video %s: %v", src, err)
	}
	p.engine.SetMode(narration.ModeVideoPlaying)
}

// onVideoEnded reports watch time and behaves like narration completion so
// auto-advance treats video pages uniformly.
func (p *Player) onVideoEnded(page *book.Page) {
	p.reportVideoPlayed()
	p.engine.SetMode(narration.ModeMediaFinished)
	p.onNarrationComplete(page)
}

// stopVideoLocked silences the video element when its page is left mid-play.
func (p *Player) stopVideoLocked() {
	if p.videoStart.IsZero() {
		return
	}
	elapsed := time.Since(p.videoStart).Seconds()
	p.videoStart = time.Time{}
	media.Video().Reset()
	p.bridge.ReportVideoPlayed(elapsed)
}

func (p *Player) reportVideoPlayed() {
	p.mu.Lock()
	start := p.videoStart
	p.videoStart = time.Time{}
	p.mu.Unlock()

	if start.IsZero() {
		return
	}
	p.bridge.ReportVideoPlayed(time.Since(start).Seconds())
}

// playMusic starts or silences the page's background track. A running
// activity that manages sound itself is left alone.
func (p *Player) playMusic(bk *book.Book, page *book.Page) {
	if p.registry.ManagesSound() {
		return
	}

	element := media.Music()

	src, ok := page.BackgroundAudio()
	if !ok {
		element.Reset()
		return
	}

	if err := element.Load(filepath.Join(bk.Dir, src)); err != nil {
		log.Warnf("load music %s: %v", src, err)
		return
	}
	if err := element.Play(); err != nil && !errors.Is(err, media.ErrNotAllowed) {
		log.Warnf("play music %s: %v", src, err)
	}
}

func (p *Player) onDurationAvailable(page *book.Page, seconds float64) {
	log.Debugf("page %s duration %.2fs", page, seconds)
}

// onNarrationComplete drives auto-advance: once a page's narration (or its
// synthetic duration floor) is over, the next page shows automatically.
func (p *Player) onNarrationComplete(page *book.Page) {
	if !viper.GetBool(key.PlayerAutoAdvance) {
		return
	}
	if p.isPaused() {
		return
	}

	if current := p.CurrentPage(); current == nil || current != page {
		return
	}
	p.NextPage()
}

func (p *Player) onPlayCompleted() {
	log.Debugf("play completed")
}

// onPlayFailed surfaces the needs-interaction state: playback stays paused
// until the user toggles it.
func (p *Player) onPlayFailed() {
	p.setPaused(true)
	log.Infof("playback was not allowed to start, waiting for interaction")
}
