package repository

import (
	"sync"
	"time"
)

// DefaultSearchDebounce coalesces rapid search keystrokes before the
// local scan runs.
const DefaultSearchDebounce = 300 * time.Millisecond

// Searcher debounces search input. Each Type call restarts the timer;
// the scan runs once, with the latest term, after the input settles.
// Search is read-only, so debouncing is purely a performance concern.
type Searcher struct {
	repo  *Repository
	delay time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// NewSearcher returns a Searcher over repo. A non-positive delay falls
// back to DefaultSearchDebounce.
func NewSearcher(repo *Repository, delay time.Duration) *Searcher {
	if delay <= 0 {
		delay = DefaultSearchDebounce
	}
	return &Searcher{repo: repo, delay: delay}
}

// Type registers a keystroke. The search fires after the debounce
// window passes without further input.
func (s *Searcher) Type(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, func() {
		s.repo.Search(term)
	})
}

// Flush cancels any pending timer and runs the search immediately.
func (s *Searcher) Flush(term string) {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()

	s.repo.Search(term)
}

// Stop cancels any pending search.
func (s *Searcher) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
