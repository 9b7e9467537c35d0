package audio

import (
	"fmt"
	"log/slog"

	"keep-connect/internal/domain"
)

type Engine struct {
	backend Backend
	logger  *slog.Logger
}

func NewEngine(backend Backend, logger *slog.Logger) *Engine {
	return &Engine{backend: backend, logger: logger}
}

// Play tries candidates in order and stops at the first one that takes the
// whole buffer. Each attempt opens and closes its own stream.
func (e *Engine) Play(buf domain.AudioBuffer, channels int, candidates []domain.DeviceDescriptor) bool {
	if len(candidates) == 0 {
		e.logger.Debug("no candidate devices", "error", ErrNoDevice)
		return false
	}

	for _, device := range candidates {
		if err := e.playOn(device, buf, channels); err != nil {
			e.logger.Warn("playing on device",
				"device", device.Name,
				"backend", e.backend.Name(),
				"error", err,
			)
			continue
		}
		e.logger.Debug("played tone", "device", device.Name, "samples", len(buf.Samples))
		return true
	}

	return false
}

func (e *Engine) playOn(device domain.DeviceDescriptor, buf domain.AudioBuffer, channels int) error {
	stream, err := e.backend.OpenStream(device, buf.SampleRate, channels)
	if err != nil {
		return fmt.Errorf("opening stream: %w", err)
	}
	defer func() {
		if err := stream.Close(); err != nil {
			e.logger.Warn("closing stream", "device", device.Name, "error", err)
		}
	}()

	if err := stream.Write(buf.Samples); err != nil {
		return fmt.Errorf("writing stream: %w", err)
	}
	return nil
}
