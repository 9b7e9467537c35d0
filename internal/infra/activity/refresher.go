package activity

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"keep-connect/internal/domain"
)

const DefaultRefreshInterval = 60 * time.Second

type SessionSource interface {
	Name() string
	Sessions(ctx context.Context) ([]domain.Session, error)
}

type Refresher struct {
	source SessionSource
	store  *Store
	logger *slog.Logger
}

func NewRefresher(source SessionSource, store *Store, logger *slog.Logger) *Refresher {
	return &Refresher{
		source: source,
		store:  store,
		logger: logger,
	}
}

// Refresh takes one snapshot. On failure the previous snapshot stays.
func (r *Refresher) Refresh(ctx context.Context) error {
	sessions, err := r.source.Sessions(ctx)
	if err != nil {
		return fmt.Errorf("reading %s sessions: %w", r.source.Name(), err)
	}

	r.store.Replace(domain.ActivitySnapshot{
		Sessions:    sessions,
		RefreshedAt: time.Now(),
	})

	r.logger.Debug("activity snapshot refreshed", "sessions", len(sessions))
	return nil
}

// StartPeriodicRefresh refreshes once right away and then every interval
// until ctx ends.
func (r *Refresher) StartPeriodicRefresh(ctx context.Context, interval time.Duration) {
	go func() {
		if err := r.Refresh(ctx); err != nil {
			r.logger.Warn("initial activity refresh failed", "error", err)
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := r.Refresh(ctx); err != nil {
					r.logger.Warn("activity refresh failed", "error", err)
				}
			}
		}
	}()
}
