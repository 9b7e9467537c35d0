package activity_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"keep-connect/internal/domain"
	"keep-connect/internal/infra/activity"
)

type mockSource struct {
	mu       sync.Mutex
	sessions []domain.Session
	err      error
	calls    int
}

func (m *mockSource) Name() string { return "mock" }

func (m *mockSource) Sessions(_ context.Context) ([]domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.sessions, m.err
}

func (m *mockSource) set(sessions []domain.Session, err error) {
	m.mu.Lock()
	m.sessions = sessions
	m.err = err
	m.mu.Unlock()
}

func (m *mockSource) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStore_EmptyByDefault(t *testing.T) {
	store := activity.NewStore()
	require.Empty(t, store.Load().Sessions)
	require.True(t, store.Load().RefreshedAt.IsZero())
}

func TestStore_ReplaceCopiesSessions(t *testing.T) {
	store := activity.NewStore()
	sessions := []domain.Session{{ID: "1", State: domain.SessionActive}}

	store.Replace(domain.ActivitySnapshot{Sessions: sessions})
	sessions[0].State = domain.SessionPaused

	require.Equal(t, domain.SessionActive, store.Load().Sessions[0].State)
}

func TestMonitor_IsAnyAudioActive(t *testing.T) {
	tests := []struct {
		name     string
		sessions []domain.Session
		want     bool
	}{
		{"no sessions", nil, false},
		{"one active", []domain.Session{{ID: "1", State: domain.SessionActive}}, true},
		{"paused and inactive", []domain.Session{
			{ID: "1", State: domain.SessionPaused},
			{ID: "2", State: domain.SessionInactive},
		}, false},
		{"unreadable session skipped", []domain.Session{
			{ID: "1", State: domain.SessionActive, Err: errors.New("access denied")},
			{ID: "2", State: domain.SessionPaused},
		}, false},
		{"unreadable does not hide active", []domain.Session{
			{ID: "1", Err: errors.New("access denied")},
			{ID: "2", State: domain.SessionActive},
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := activity.NewStore()
			store.Replace(domain.ActivitySnapshot{Sessions: tt.sessions})
			monitor := activity.NewMonitor(store, discardLogger())

			require.Equal(t, tt.want, monitor.IsAnyAudioActive())
		})
	}
}

func TestRefresher_FailureKeepsPreviousSnapshot(t *testing.T) {
	source := &mockSource{sessions: []domain.Session{{ID: "1", State: domain.SessionActive}}}
	store := activity.NewStore()
	refresher := activity.NewRefresher(source, store, discardLogger())

	require.NoError(t, refresher.Refresh(context.Background()))
	first := store.Load()
	require.Len(t, first.Sessions, 1)
	require.False(t, first.RefreshedAt.IsZero())

	source.set(nil, errors.New("server gone"))
	require.Error(t, refresher.Refresh(context.Background()))
	require.Equal(t, first, store.Load())
}

func TestRefresher_StartPeriodicRefresh(t *testing.T) {
	source := &mockSource{}
	store := activity.NewStore()
	refresher := activity.NewRefresher(source, store, discardLogger())
	monitor := activity.NewMonitor(store, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	refresher.StartPeriodicRefresh(ctx, 10*time.Millisecond)
	require.Eventually(t, func() bool { return source.callCount() >= 1 }, time.Second, time.Millisecond)
	require.False(t, monitor.IsAnyAudioActive())

	source.set([]domain.Session{{ID: "7", State: domain.SessionActive}}, nil)
	require.Eventually(t, monitor.IsAnyAudioActive, time.Second, time.Millisecond)

	cancel()
	time.Sleep(30 * time.Millisecond)
	calls := source.callCount()
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, calls, source.callCount())
}
