package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"keep-connect/internal/domain"
)

type Config struct {
	Device    DeviceConfig    `yaml:"device"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Tone      ToneConfig      `yaml:"tone"`
	Audio     AudioConfig     `yaml:"audio"`
	Activity  ActivityConfig  `yaml:"activity"`
	Control   ControlConfig   `yaml:"control"`
	Notify    NotifyConfig    `yaml:"notify"`
	Log       LogConfig       `yaml:"log"`
}

type DeviceConfig struct {
	NameFilter string `yaml:"name_filter"`
}

type SchedulerConfig struct {
	Interval    int    `yaml:"interval"`
	Autostart   *bool  `yaml:"autostart"`
	RetryDelay  string `yaml:"retry_delay"`
	Tick        string `yaml:"tick"`
	StopTimeout string `yaml:"stop_timeout"`
	ActivePause string `yaml:"active_pause"`
}

type ToneConfig struct {
	Kind       string  `yaml:"kind"`
	Frequency  float64 `yaml:"frequency"`
	Duration   string  `yaml:"duration"`
	Amplitude  float64 `yaml:"amplitude"`
	Channels   int     `yaml:"channels"`
	SampleRate int     `yaml:"sample_rate"`
}

type AudioConfig struct {
	Backend string `yaml:"backend"`
}

type ActivityConfig struct {
	Source          string `yaml:"source"`
	RefreshInterval string `yaml:"refresh_interval"`
}

type ControlConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Addr      string `yaml:"addr"`
	AuthToken string `yaml:"auth_token"`
}

type NotifyConfig struct {
	Desktop  bool           `yaml:"desktop"`
	Pushover PushoverConfig `yaml:"pushover"`
}

type PushoverConfig struct {
	Token   string `yaml:"token"`
	UserKey string `yaml:"user_key"`
	Enabled bool   `yaml:"enabled"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

const (
	ToneKeepAlive = "keepalive"
	ToneAlert     = "alert"

	BackendPulse     = "pulse"
	BackendPortAudio = "portaudio"

	ActivityPulse = "pulse"
	ActivityNone  = "none"
)

// Load reads and validates the config at path. A missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Device.NameFilter == "" {
		c.Device.NameFilter = "Jabra"
	}
	if c.Scheduler.Interval == 0 {
		c.Scheduler.Interval = int(domain.DefaultInterval)
	}
	if c.Scheduler.Autostart == nil {
		autostart := true
		c.Scheduler.Autostart = &autostart
	}
	if c.Scheduler.RetryDelay == "" {
		c.Scheduler.RetryDelay = "5s"
	}
	if c.Scheduler.Tick == "" {
		c.Scheduler.Tick = "1s"
	}
	if c.Scheduler.StopTimeout == "" {
		c.Scheduler.StopTimeout = "1s"
	}
	if c.Scheduler.ActivePause == "" {
		c.Scheduler.ActivePause = "1s"
	}
	if c.Tone.Kind == "" {
		c.Tone.Kind = ToneKeepAlive
	}
	if c.Tone.Frequency == 0 {
		c.Tone.Frequency = 20000
	}
	if c.Tone.Duration == "" {
		c.Tone.Duration = "3s"
	}
	if c.Tone.Amplitude == 0 {
		c.Tone.Amplitude = 1000
	}
	if c.Tone.Channels == 0 {
		c.Tone.Channels = 1
	}
	if c.Tone.SampleRate == 0 {
		c.Tone.SampleRate = domain.DefaultSampleRate
	}
	if c.Audio.Backend == "" {
		c.Audio.Backend = BackendPulse
	}
	if c.Activity.Source == "" {
		c.Activity.Source = ActivityPulse
	}
	if c.Activity.RefreshInterval == "" {
		c.Activity.RefreshInterval = "60s"
	}
	if c.Control.Addr == "" {
		c.Control.Addr = "127.0.0.1:8765"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

func (c *Config) Validate() error {
	var errs []error

	if !domain.Interval(c.Scheduler.Interval).Supported() {
		errs = append(errs, fmt.Errorf("scheduler.interval %d is not one of %v", c.Scheduler.Interval, domain.Intervals))
	}

	durations := map[string]string{
		"scheduler.retry_delay":     c.Scheduler.RetryDelay,
		"scheduler.tick":            c.Scheduler.Tick,
		"scheduler.stop_timeout":    c.Scheduler.StopTimeout,
		"scheduler.active_pause":    c.Scheduler.ActivePause,
		"tone.duration":             c.Tone.Duration,
		"activity.refresh_interval": c.Activity.RefreshInterval,
	}
	for key, value := range durations {
		d, err := time.ParseDuration(value)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		} else if d < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative", key))
		}
	}
	if d, err := time.ParseDuration(c.Tone.Duration); err == nil && d == 0 {
		errs = append(errs, errors.New("tone.duration must be positive"))
	}

	switch c.Tone.Kind {
	case ToneKeepAlive, ToneAlert:
	default:
		errs = append(errs, fmt.Errorf("tone.kind %q must be %q or %q", c.Tone.Kind, ToneKeepAlive, ToneAlert))
	}
	if c.Tone.Channels != 1 && c.Tone.Channels != 2 {
		errs = append(errs, fmt.Errorf("tone.channels must be 1 or 2, got %d", c.Tone.Channels))
	}
	if c.Tone.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("tone.sample_rate must be positive, got %d", c.Tone.SampleRate))
	}
	if c.Tone.Frequency < 0 || c.Tone.Frequency > float64(c.Tone.SampleRate)/2 {
		errs = append(errs, fmt.Errorf("tone.frequency %.0f is outside 0..%d Hz", c.Tone.Frequency, c.Tone.SampleRate/2))
	}

	switch c.Audio.Backend {
	case BackendPulse, BackendPortAudio:
	default:
		errs = append(errs, fmt.Errorf("audio.backend %q must be %q or %q", c.Audio.Backend, BackendPulse, BackendPortAudio))
	}

	switch c.Activity.Source {
	case ActivityPulse, ActivityNone:
	default:
		errs = append(errs, fmt.Errorf("activity.source %q must be %q or %q", c.Activity.Source, ActivityPulse, ActivityNone))
	}

	if c.Notify.Pushover.Enabled && (c.Notify.Pushover.Token == "" || c.Notify.Pushover.UserKey == "") {
		errs = append(errs, errors.New("notify.pushover requires token and user_key when enabled"))
	}

	return errors.Join(errs...)
}

// AutostartEnabled reports whether playback starts as soon as the daemon runs.
func (c SchedulerConfig) AutostartEnabled() bool {
	return c.Autostart == nil || *c.Autostart
}

// Duration parses value, returning fallback if it is empty or malformed.
// Load has already rejected malformed values.
func Duration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
