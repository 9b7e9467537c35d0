package audio

import (
	"errors"

	"keep-connect/internal/domain"
)

var ErrNoDevice = errors.New("no output device")

// Backend is a platform audio API able to list output endpoints and open
// blocking output streams on them.
type Backend interface {
	Name() string
	Devices() ([]domain.DeviceDescriptor, error)
	OpenStream(device domain.DeviceDescriptor, sampleRate, channels int) (Stream, error)
}

// Stream is one open output stream. Write blocks until the samples have
// been accepted by the device.
type Stream interface {
	Write(samples []int16) error
	Close() error
}
