// Package activity tracks whether other audio is playing on the system.
package activity

import (
	"sync/atomic"

	"keep-connect/internal/domain"
)

// Store holds the latest snapshot. Writers replace it whole and readers get
// a consistent, possibly stale, copy.
type Store struct {
	current atomic.Pointer[domain.ActivitySnapshot]
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Load() domain.ActivitySnapshot {
	if snap := s.current.Load(); snap != nil {
		return *snap
	}
	return domain.ActivitySnapshot{}
}

func (s *Store) Replace(snap domain.ActivitySnapshot) {
	sessions := make([]domain.Session, len(snap.Sessions))
	copy(sessions, snap.Sessions)
	snap.Sessions = sessions
	s.current.Store(&snap)
}
