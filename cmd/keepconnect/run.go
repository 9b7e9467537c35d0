package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"keep-connect/config"
	"keep-connect/internal/application"
	"keep-connect/internal/domain"
	"keep-connect/internal/infra/activity"
	"keep-connect/internal/infra/audio"
	"keep-connect/internal/infra/control"
	"keep-connect/internal/infra/desktop"
	"keep-connect/internal/infra/portaudio"
	"keep-connect/internal/infra/pulse"
	"keep-connect/internal/infra/pushover"
	"keep-connect/internal/tone"
)

var runInterval int

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the keep-alive scheduler until interrupted",
	Long: `Starts the scheduler (unless scheduler.autostart is false) and, when enabled,
the local control API. SIGINT or SIGTERM stops playback and exits.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().IntVarP(&runInterval, "interval", "i", 0, "seconds between tones, overrides scheduler.interval")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	interval := domain.Interval(cfg.Scheduler.Interval)
	if runInterval != 0 {
		interval = domain.Interval(runInterval)
		if !interval.Supported() {
			return fmt.Errorf("interval %d not in %v", runInterval, domain.Intervals)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	backend := newBackend(cfg.Audio.Backend, logger)

	schedulerCfg := application.DefaultSchedulerConfig(cfg.Device.NameFilter, buildTone(cfg.Tone))
	schedulerCfg.RetryDelay = config.Duration(cfg.Scheduler.RetryDelay, schedulerCfg.RetryDelay)
	schedulerCfg.Tick = config.Duration(cfg.Scheduler.Tick, schedulerCfg.Tick)
	schedulerCfg.StopTimeout = config.Duration(cfg.Scheduler.StopTimeout, schedulerCfg.StopTimeout)
	schedulerCfg.ActivePause = config.Duration(cfg.Scheduler.ActivePause, schedulerCfg.ActivePause)
	schedulerCfg.OnStatus = func(status string) {
		logger.Debug("status", "status", status)
	}

	scheduler := application.NewScheduler(
		newActivityMonitor(ctx, cfg.Activity, logger),
		audio.NewLocator(backend, logger),
		audio.NewEngine(backend, logger),
		newNotifier(cfg.Notify),
		schedulerCfg,
		logger,
	)

	if cfg.Control.Enabled {
		server := control.NewServer(cfg.Control.Addr, cfg.Control.AuthToken, scheduler, interval, logger)
		if err := server.Start(ctx); err != nil {
			return fmt.Errorf("starting control server: %w", err)
		}
		defer func() {
			if err := server.Stop(); err != nil {
				logger.Error("stopping control server", "error", err)
			}
		}()
	} else if !cfg.Scheduler.AutostartEnabled() {
		logger.Warn("autostart and control API are both disabled, nothing will play")
	}

	logger.Info("starting keepconnect",
		"backend", backend.Name(),
		"device_filter", cfg.Device.NameFilter,
		"activity_source", cfg.Activity.Source,
		"control", cfg.Control.Enabled,
	)

	if cfg.Scheduler.AutostartEnabled() {
		if err := scheduler.Start(interval); err != nil {
			return fmt.Errorf("starting scheduler: %w", err)
		}
	}

	<-ctx.Done()
	scheduler.Stop()
	return nil
}

func newBackend(name string, logger *slog.Logger) audio.Backend {
	switch name {
	case config.BackendPortAudio:
		return portaudio.NewBackend(logger)
	case config.BackendPulse:
		return pulse.NewBackend(logger)
	default:
		logger.Warn("unknown audio backend, using pulse", "backend", name)
		return pulse.NewBackend(logger)
	}
}

func buildTone(cfg config.ToneConfig) domain.AudioBuffer {
	if cfg.Kind == config.ToneAlert {
		return tone.Alert(cfg.SampleRate, cfg.Channels)
	}
	return tone.Synthesize(domain.ToneSpec{
		Frequency:  cfg.Frequency,
		Duration:   config.Duration(cfg.Duration, tone.KeepAlive.Duration),
		SampleRate: cfg.SampleRate,
		Amplitude:  cfg.Amplitude,
		Channels:   cfg.Channels,
	})
}

func newActivityMonitor(ctx context.Context, cfg config.ActivityConfig, logger *slog.Logger) application.ActivityMonitor {
	if cfg.Source == config.ActivityNone {
		return application.SilentMonitor{}
	}

	refreshInterval := config.Duration(cfg.RefreshInterval, activity.DefaultRefreshInterval)
	if refreshInterval <= 0 {
		refreshInterval = activity.DefaultRefreshInterval
	}

	store := activity.NewStore()
	activity.NewRefresher(pulse.NewSessionSource(), store, logger).StartPeriodicRefresh(ctx, refreshInterval)
	return activity.NewMonitor(store, logger)
}

func newNotifier(cfg config.NotifyConfig) application.Notifier {
	var notifiers application.MultiNotifier
	if cfg.Desktop {
		notifiers = append(notifiers, desktop.NewNotifier("Keep Connect", false))
	}
	if cfg.Pushover.Enabled {
		notifiers = append(notifiers, pushover.NewClient(cfg.Pushover.Token, cfg.Pushover.UserKey))
	}

	switch len(notifiers) {
	case 0:
		return &application.NoopNotifier{}
	case 1:
		return notifiers[0]
	default:
		return notifiers
	}
}
