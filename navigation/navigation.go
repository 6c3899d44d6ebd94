// Package navigation resolves link clicks inside page content into page and
// book jumps, maintaining the history stack that makes "back" work across
// book boundaries.
package navigation

import (
	"regexp"
	"strings"
	"sync"

	"github.com/bookplay-cli/bookplay/book"
	"github.com/bookplay-cli/bookplay/log"
	"github.com/bookplay-cli/bookplay/open"
	"github.com/bookplay-cli/bookplay/util"
	"github.com/samber/mo"
)

// BackHref is the literal href that pops the history stack.
const BackHref = "back"

// Frame is one {book, page} location, pushed when the user navigates away so
// "back" can return there.
type Frame struct {
	BookID string
	PageID string
}

// Jump describes where a consumed click leads.
type Jump struct {
	// BookURL carries the canonical URL of the target book. Absent when the
	// jump stays within the current book.
	BookURL mo.Option[string]
	// PageID is the target page within the destination book. Empty means the
	// book's first page.
	PageID string
}

// Result reports how a click was handled. A consumed click must not propagate
// to default navigation or gesture handling.
type Result struct {
	Consumed bool
	Jump     mo.Option[Jump]
}

var bookHrefRe = regexp.MustCompile(`^/book/(?P<book>[^/#]+)(?:/index\.htm)?(?:#(?P<page>.+))?$`)

// Stack is the navigation history. Frames are pushed on every consumed jump
// away from a location and popped by "back" hrefs and the back control.
type Stack struct {
	mu     sync.Mutex
	frames util.Stack[Frame]
	opener func(url string) error
}

// New creates an empty navigation stack using the system opener for external
// links.
func New() *Stack {
	return &Stack{opener: open.Start}
}

// SetOpener replaces the external link opener. Tests use this to observe
// opened URLs.
func (s *Stack) SetOpener(opener func(url string) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opener = opener
}

// Len returns the number of stacked frames. A zero length means a back
// control has nothing to return to and should be hidden.
func (s *Stack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames.Len()
}

// CheckClickForBookOrPageJump inspects a clicked href and resolves it to a
// navigation result. currentPageID is queried lazily, only when the current
// location actually needs to be recorded.
func (s *Stack) CheckClickForBookOrPageJump(href, currentBookID string, currentPageID func() string) Result {
	href = strings.TrimSpace(href)
	if href == "" {
		return Result{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// External links open outside the player and leave the stack untouched.
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		if err := s.opener(href); err != nil {
			log.Warnf("open external link %s: %v", href, err)
		}
		return Result{Consumed: true}
	}

	if href == BackHref {
		return Result{Consumed: true, Jump: s.popLocked(currentBookID)}
	}

	if strings.HasPrefix(href, "#") {
		pageID := strings.TrimPrefix(href, "#")
		s.frames.Push(Frame{BookID: currentBookID, PageID: currentPageID()})
		return Result{Consumed: true, Jump: mo.Some(Jump{PageID: pageID})}
	}

	if strings.HasPrefix(href, "/book/") {
		groups := util.ReGroups(bookHrefRe, href)
		target, ok := groups["book"]
		if !ok || target == "" {
			log.Warnf("malformed book link: %s", href)
			return Result{Consumed: true}
		}

		s.frames.Push(Frame{BookID: currentBookID, PageID: currentPageID()})

		jump := Jump{PageID: groups["page"]}
		if target != currentBookID {
			jump.BookURL = mo.Some(book.URL(target))
		}
		return Result{Consumed: true, Jump: mo.Some(jump)}
	}

	log.Warnf("malformed navigation target: %s", href)
	return Result{Consumed: true}
}

// TryPopPlayerHistory pops one frame for the back control. The returned jump
// carries a book URL only when the frame's book differs from the current one.
// An empty stack yields no jump, which callers use to disable the control.
func (s *Stack) TryPopPlayerHistory(currentBookID string) mo.Option[Jump] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.popLocked(currentBookID)
}

func (s *Stack) popLocked(currentBookID string) mo.Option[Jump] {
	if s.frames.Len() == 0 {
		return mo.None[Jump]()
	}

	frame := s.frames.Pop()
	jump := Jump{PageID: frame.PageID}
	if frame.BookID != currentBookID {
		jump.BookURL = mo.Some(book.URL(frame.BookID))
	}
	return mo.Some(jump)
}

// Clear drops every stacked frame.
func (s *Stack) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames.Clear()
}
