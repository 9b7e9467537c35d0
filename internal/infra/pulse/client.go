// Package pulse talks to a PulseAudio (or PipeWire-pulse) server for output
// devices, playback and audio-session activity.
package pulse

import (
	"context"
	"fmt"
	"time"

	"github.com/jfreymuth/pulse"

	"keep-connect/internal/infra"
)

// AppName is announced to the server for every connection. Sink inputs
// carrying it are this process's own tone and never count as activity.
const AppName = "keepconnect"

var connectRetry = infra.RetryConfig{
	MaxAttempts:  3,
	InitialDelay: 200 * time.Millisecond,
	MaxDelay:     time.Second,
	Multiplier:   2.0,
}

func connect(ctx context.Context) (*pulse.Client, error) {
	var client *pulse.Client
	err := infra.WithRetry(ctx, connectRetry, func() error {
		c, err := pulse.NewClient(pulse.ClientApplicationName(AppName))
		if err != nil {
			return err
		}
		client = c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to pulse server: %w", err)
	}
	return client, nil
}
