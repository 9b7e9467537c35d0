//go:build portaudio
// +build portaudio

package portaudio

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/gordonklaus/portaudio"

	"keep-connect/internal/domain"
	"keep-connect/internal/infra/audio"
)

const defaultFramesPerBuffer = 1024

// Backend drives PortAudio. The library is initialized per call so that
// devices appearing after startup (Bluetooth reconnects) are picked up.
type Backend struct {
	framesPerBuffer int
	logger          *slog.Logger

	mu sync.Mutex
}

func NewBackend(logger *slog.Logger) *Backend {
	return &Backend{
		framesPerBuffer: defaultFramesPerBuffer,
		logger:          logger,
	}
}

func (b *Backend) Name() string {
	return "portaudio"
}

func (b *Backend) Devices() ([]domain.DeviceDescriptor, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initializing portaudio: %w", err)
	}
	defer portaudio.Terminate()

	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("listing devices: %w", err)
	}

	devices := make([]domain.DeviceDescriptor, 0, len(infos))
	for _, info := range infos {
		devices = append(devices, domain.DeviceDescriptor{
			ID:                strconv.Itoa(info.Index),
			Index:             info.Index,
			Name:              info.Name,
			MaxOutputChannels: info.MaxOutputChannels,
		})
	}
	return devices, nil
}

func (b *Backend) OpenStream(device domain.DeviceDescriptor, sampleRate, channels int) (audio.Stream, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initializing portaudio: %w", err)
	}

	info, err := lookup(device)
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}

	buffer := make([]int16, b.framesPerBuffer*channels)
	params := portaudio.StreamParameters{
		Output: portaudio.StreamDeviceParameters{
			Device:   info,
			Channels: channels,
			Latency:  info.DefaultHighOutputLatency,
		},
		SampleRate:      float64(sampleRate),
		FramesPerBuffer: b.framesPerBuffer,
	}

	stream, err := portaudio.OpenStream(params, buffer)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("opening stream on %q: %w", info.Name, err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("starting stream on %q: %w", info.Name, err)
	}

	b.logger.Debug("portaudio stream opened", "device", info.Name, "sampleRate", sampleRate, "channels", channels)
	return &outputStream{stream: stream, buffer: buffer}, nil
}

// lookup resolves a descriptor against the current device list. Indices can
// shift across re-initialization, so the name is checked too.
func lookup(device domain.DeviceDescriptor) (*portaudio.DeviceInfo, error) {
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("listing devices: %w", err)
	}

	for _, info := range infos {
		if info.Index == device.Index && info.Name == device.Name {
			return info, nil
		}
	}
	for _, info := range infos {
		if info.Name == device.Name {
			return info, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", audio.ErrNoDevice, device.Name)
}

type outputStream struct {
	stream *portaudio.Stream
	buffer []int16
}

func (s *outputStream) Write(samples []int16) error {
	for off := 0; off < len(samples); off += len(s.buffer) {
		n := copy(s.buffer, samples[off:])
		clear(s.buffer[n:])

		if err := s.stream.Write(); err != nil && !errors.Is(err, portaudio.OutputUnderflowed) {
			return fmt.Errorf("writing to stream: %w", err)
		}
	}
	return nil
}

// Close drains pending buffers, closes the stream and releases the library
// reference taken by OpenStream.
func (s *outputStream) Close() error {
	defer portaudio.Terminate()

	stopErr := s.stream.Stop()
	if err := s.stream.Close(); err != nil {
		return fmt.Errorf("closing stream: %w", err)
	}
	if stopErr != nil {
		return fmt.Errorf("stopping stream: %w", stopErr)
	}
	return nil
}
