//go:build !portaudio
// +build !portaudio

package portaudio

import (
	"errors"
	"log/slog"

	"keep-connect/internal/domain"
	"keep-connect/internal/infra/audio"
)

var ErrUnavailable = errors.New("portaudio backend not available: rebuild with -tags portaudio")

// Backend stub when portaudio is not available
type Backend struct {
	logger *slog.Logger
}

func NewBackend(logger *slog.Logger) *Backend {
	return &Backend{logger: logger}
}

func (b *Backend) Name() string {
	return "portaudio"
}

func (b *Backend) Devices() ([]domain.DeviceDescriptor, error) {
	return nil, ErrUnavailable
}

func (b *Backend) OpenStream(_ domain.DeviceDescriptor, _, _ int) (audio.Stream, error) {
	return nil, ErrUnavailable
}
