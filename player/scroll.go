package player

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/bookplay-cli/bookplay/log"
)

// The player is its own scroller: a highlight set during a page-turn gesture
// must not trigger the smooth scroll that would fight the swipe physics.

func (p *Player) SwipeInProgress() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.swiping
}

func (p *Player) ScrollIntoView(sel *goquery.Selection) {
	log.Debugf("scroll to %s", sel.AttrOr("id", "element"))
}

func (p *Player) ResetScroll() {
	log.Debugf("scroll reset")
}
