package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"keep-connect/internal/domain"
)

var ErrInvalidInterval = errors.New("invalid interval")

const (
	StatusIdle             = "Idle."
	StatusStarting         = "Starting playback..."
	StatusPlaying          = "Playing sound..."
	StatusAudioActive      = "Audio is playing..."
	StatusWaitingForDevice = "Waiting for device..."
	StatusStopped          = "Playback stopped."
)

func CountdownStatus(remaining int) string {
	return fmt.Sprintf("Next playback in %d seconds.", remaining)
}

type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
)

type SchedulerConfig struct {
	DeviceFilter string
	Tone         domain.AudioBuffer

	RetryDelay  time.Duration // wait after a failed playback before trying again
	Tick        time.Duration // countdown granularity
	StopTimeout time.Duration // how long Stop waits for the worker
	ActivePause time.Duration // extra wait when other audio is playing at the end of a countdown

	// OnStatus, if set, is called from the worker with every status change
	// of the current run. It must not call back into the Scheduler.
	OnStatus func(status string)
}

func DefaultSchedulerConfig(deviceFilter string, tone domain.AudioBuffer) SchedulerConfig {
	return SchedulerConfig{
		DeviceFilter: deviceFilter,
		Tone:         tone,
		RetryDelay:   5 * time.Second,
		Tick:         time.Second,
		StopTimeout:  time.Second,
		ActivePause:  time.Second,
	}
}

// Scheduler periodically plays the keep-alive tone on the target device.
// Start and Stop may be called from any goroutine.
type Scheduler struct {
	monitor  ActivityMonitor
	locator  DeviceLocator
	player   Player
	notifier Notifier
	cfg      SchedulerConfig
	logger   *slog.Logger

	mu       sync.Mutex
	running  bool
	interval domain.Interval
	cancel   context.CancelFunc
	done     chan struct{}

	// activeRun identifies the current worker; status writes from older
	// workers that outlived Stop are dropped.
	activeRun atomic.Uint64
	workers   atomic.Int32

	statusMu sync.RWMutex
	status   string
}

func NewScheduler(
	monitor ActivityMonitor,
	locator DeviceLocator,
	player Player,
	notifier Notifier,
	cfg SchedulerConfig,
	logger *slog.Logger,
) *Scheduler {
	if notifier == nil {
		notifier = &NoopNotifier{}
	}
	return &Scheduler{
		monitor:  monitor,
		locator:  locator,
		player:   player,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
		status:   StatusIdle,
	}
}

// Start launches the playback loop. It is a no-op while already running.
func (s *Scheduler) Start(interval domain.Interval) error {
	if interval < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidInterval, interval)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.statusMu.Lock()
	run := s.activeRun.Add(1)
	s.statusMu.Unlock()

	s.running = true
	s.interval = interval
	s.cancel = cancel
	s.done = done

	s.setStatus(run, StatusStarting)
	schedulerRunning.Set(1)
	s.logger.Info("keep-alive playback started",
		"interval", interval.Seconds(),
		"device_filter", s.cfg.DeviceFilter,
	)

	s.workers.Add(1)
	go func() {
		defer close(done)
		defer s.workers.Add(-1)
		s.loop(ctx, run, interval)
	}()

	return nil
}

// Stop cancels the loop and waits up to StopTimeout for the worker to exit.
// The scheduler is Idle afterwards even if the worker has not finished; it
// then exits on its own once its current write returns.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.cancel()

	timer := time.NewTimer(s.cfg.StopTimeout)
	defer timer.Stop()

	select {
	case <-s.done:
	case <-timer.C:
		s.logger.Warn("keep-alive worker still busy, detaching", "timeout", s.cfg.StopTimeout)
	}

	s.running = false
	s.cancel = nil
	s.done = nil

	s.retire()
	schedulerRunning.Set(0)
	s.logger.Info("keep-alive playback stopped")
}

func (s *Scheduler) Status() string {
	s.statusMu.RLock()
	defer s.statusMu.RUnlock()
	return s.status
}

func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return StateRunning
	}
	return StateIdle
}

// Interval returns the interval of the current or most recent run.
func (s *Scheduler) Interval() domain.Interval {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// Workers returns the number of loop goroutines still alive, including
// ones detached by a timed-out Stop.
func (s *Scheduler) Workers() int {
	return int(s.workers.Load())
}

func (s *Scheduler) loop(ctx context.Context, run uint64, interval domain.Interval) {
	defer s.setStatus(run, StatusStopped)

	presence := devicePresenceUnknown

	for ctx.Err() == nil {
		if s.monitor.IsAnyAudioActive() {
			s.logger.Debug("other audio is playing, skipping tone")
			cyclesSkippedTotal.Inc()
		} else if !s.playTone() {
			if ctx.Err() != nil {
				return
			}
			if presence != devicePresenceAbsent {
				presence = devicePresenceAbsent
				s.notify(fmt.Sprintf("%s device not available, retrying", s.cfg.DeviceFilter))
			}
			deviceRetriesTotal.Inc()
			s.setStatus(run, StatusWaitingForDevice)
			s.logger.Debug("no device accepted the tone, retrying", "delay", s.cfg.RetryDelay)
			if !wait(ctx, s.cfg.RetryDelay) {
				return
			}
			continue
		} else if presence == devicePresenceAbsent {
			presence = devicePresencePresent
			s.notify(fmt.Sprintf("%s device is back", s.cfg.DeviceFilter))
		} else {
			presence = devicePresencePresent
		}

		if !s.countdown(ctx, run, interval) {
			return
		}

		// Only the status text depends on this check.
		if s.monitor.IsAnyAudioActive() {
			s.setStatus(run, StatusAudioActive)
			if !wait(ctx, s.cfg.ActivePause) {
				return
			}
		} else {
			s.setStatus(run, StatusPlaying)
		}
	}
}

func (s *Scheduler) playTone() bool {
	devices := s.locator.FindOutputDevices(s.cfg.DeviceFilter)
	if s.player.Play(s.cfg.Tone, s.cfg.Tone.Channels, devices) {
		playbackAttemptsTotal.WithLabelValues("ok").Inc()
		s.logger.Debug("tone played", "candidates", len(devices))
		return true
	}
	playbackAttemptsTotal.WithLabelValues("failed").Inc()
	return false
}

func (s *Scheduler) countdown(ctx context.Context, run uint64, interval domain.Interval) bool {
	for remaining := interval.Seconds(); remaining >= 0; remaining-- {
		s.setStatus(run, CountdownStatus(remaining))
		if !wait(ctx, s.cfg.Tick) {
			return false
		}
	}
	return true
}

func (s *Scheduler) setStatus(run uint64, status string) {
	s.statusMu.Lock()
	if run != s.activeRun.Load() {
		s.statusMu.Unlock()
		return
	}
	s.status = status
	s.statusMu.Unlock()

	if s.cfg.OnStatus != nil {
		s.cfg.OnStatus(status)
	}
}

// retire publishes the stopped status and invalidates the current run, so a
// worker detached by Stop can no longer change the status.
func (s *Scheduler) retire() {
	s.statusMu.Lock()
	s.status = StatusStopped
	s.activeRun.Add(1)
	s.statusMu.Unlock()

	if s.cfg.OnStatus != nil {
		s.cfg.OnStatus(StatusStopped)
	}
}

// notify runs off the worker so a slow notifier never delays playback.
func (s *Scheduler) notify(message string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.notifier.Notify(ctx, message); err != nil {
			s.logger.Error("notifying", "error", err)
		}
	}()
}

type devicePresence int

const (
	devicePresenceUnknown devicePresence = iota
	devicePresencePresent
	devicePresenceAbsent
)

// wait blocks for d or until ctx is cancelled and reports whether the full
// duration elapsed.
func wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
