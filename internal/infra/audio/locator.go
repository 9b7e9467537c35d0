package audio

import (
	"log/slog"
	"strings"

	"keep-connect/internal/domain"
)

type Locator struct {
	backend Backend
	logger  *slog.Logger
}

func NewLocator(backend Backend, logger *slog.Logger) *Locator {
	return &Locator{backend: backend, logger: logger}
}

// FindOutputDevices enumerates the backend afresh on every call. An
// enumeration failure is logged and reported as no devices.
func (l *Locator) FindOutputDevices(nameFilter string) []domain.DeviceDescriptor {
	devices, err := l.backend.Devices()
	if err != nil {
		l.logger.Warn("enumerating output devices", "backend", l.backend.Name(), "error", err)
		return nil
	}

	key := strings.ToLower(nameFilter)

	var matches []domain.DeviceDescriptor
	for _, d := range devices {
		if d.MaxOutputChannels <= 0 {
			continue
		}
		if strings.Contains(strings.ToLower(d.Name), key) {
			matches = append(matches, d)
		}
	}
	return matches
}
