package activity

import (
	"log/slog"

	"keep-connect/internal/domain"
)

type Monitor struct {
	store  *Store
	logger *slog.Logger
}

func NewMonitor(store *Store, logger *slog.Logger) *Monitor {
	return &Monitor{store: store, logger: logger}
}

// IsAnyAudioActive scans the latest snapshot. Sessions whose state could
// not be read are skipped.
func (m *Monitor) IsAnyAudioActive() bool {
	for _, s := range m.store.Load().Sessions {
		if s.Err != nil {
			m.logger.Debug("skipping unreadable session", "session", s.ID, "error", s.Err)
			continue
		}
		if s.State == domain.SessionActive {
			return true
		}
	}
	return false
}
