package repository

import (
	"sync"
	"time"

	"github.com/RMahshie/invols/internal/chart"
	"github.com/RMahshie/invols/internal/heka"
)

// CachedSweep holds the per sweep work that only depends on the working
// table: the sweep rows, the approach/retract split and the base chart.
type CachedSweep struct {
	Number   int
	Rows     []heka.Row
	Approach []heka.Row
	Retract  []heka.Row
	Chart    *chart.Chart
}

// Session is one loaded export. The working table may be edited; the
// original parse is kept untouched so it can be restored.
type Session struct {
	ID        string
	FileName  string
	Source    string
	CreatedAt time.Time

	mu         sync.Mutex
	accessedAt time.Time
	original   *heka.Recording
	working    *heka.Recording
	modified   bool
	sweeps     map[int]*CachedSweep
}

// NewSession creates a session over a parsed recording and its pristine copy.
func NewSession(id, fileName, source string, working, original *heka.Recording) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		FileName:   fileName,
		Source:     source,
		CreatedAt:  now,
		accessedAt: now,
		original:   original,
		working:    working,
		sweeps:     make(map[int]*CachedSweep),
	}
}

// View runs fn against the working table. fn must not modify it.
func (s *Session) View(fn func(rec *heka.Recording) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessedAt = time.Now()
	return fn(s.working)
}

// Update runs fn against the working table and drops cached sweeps.
func (s *Session) Update(fn func(rec *heka.Recording) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessedAt = time.Now()
	if err := fn(s.working); err != nil {
		return err
	}
	s.sweeps = make(map[int]*CachedSweep)
	s.modified = true
	return nil
}

// Reset discards edits and cached sweeps and restores the original parse.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessedAt = time.Now()
	s.working = s.original.Clone()
	s.modified = false
	s.sweeps = make(map[int]*CachedSweep)
}

// Sweep returns the cached sweep n, building it with build on a miss.
func (s *Session) Sweep(n int, build func(rec *heka.Recording) (*CachedSweep, error)) (*CachedSweep, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessedAt = time.Now()
	if cached, ok := s.sweeps[n]; ok {
		return cached, nil
	}
	cached, err := build(s.working)
	if err != nil {
		return nil, err
	}
	s.sweeps[n] = cached
	return cached, nil
}

// CachedSweeps returns how many sweeps are currently memoized.
func (s *Session) CachedSweeps() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sweeps)
}

// Modified reports whether the working table has been edited since the last reset.
func (s *Session) Modified() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modified
}

// IdleSince returns how long ago the session was last used.
func (s *Session) IdleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.accessedAt)
}
