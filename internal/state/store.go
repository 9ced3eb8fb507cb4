// Package state holds the shared snapshot the monitor UI renders from.
package state

import (
	"sync"
	"time"

	"github.com/hollandm/squeezectl/internal/lms"
)

// Snapshot is the latest player state available to the UI.
type Snapshot struct {
	Status              lms.PlayerStatus
	HasStatus           bool
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int
}

// IsOffline reports whether the server has been unreachable for multiple
// polls in a row.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates updates between the poller goroutine and the UI.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Update replaces the stored snapshot. When err is non-nil the previous
// status is kept and the error is recorded for display.
func (s *Store) Update(status *lms.PlayerStatus, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.LastUpdated = time.Now()
	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.ConsecutiveFailures++
		return
	}
	if status != nil {
		s.snapshot.Status = *status
		s.snapshot.HasStatus = true
	}
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}
