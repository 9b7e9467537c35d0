package pulse

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jfreymuth/pulse"
	"github.com/jfreymuth/pulse/proto"

	"keep-connect/internal/domain"
	"keep-connect/internal/infra/audio"
)

const connectTimeout = 5 * time.Second

// Backend plays through pulse sinks. Every call uses a fresh connection so
// the sink list always reflects the server's current state.
type Backend struct {
	logger *slog.Logger
}

func NewBackend(logger *slog.Logger) *Backend {
	return &Backend{logger: logger}
}

func (b *Backend) Name() string {
	return "pulse"
}

func (b *Backend) Devices() ([]domain.DeviceDescriptor, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	client, err := connect(ctx)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	sinks, err := client.ListSinks()
	if err != nil {
		return nil, fmt.Errorf("listing sinks: %w", err)
	}

	devices := make([]domain.DeviceDescriptor, 0, len(sinks))
	for i, sink := range sinks {
		devices = append(devices, sinkDescriptor(i, sink.ID(), sink.Name(), sink.Channels()))
	}
	return devices, nil
}

func sinkDescriptor(index int, id, name string, channels proto.ChannelMap) domain.DeviceDescriptor {
	return domain.DeviceDescriptor{
		ID:                id,
		Index:             index,
		Name:              name,
		MaxOutputChannels: len(channels),
	}
}

func (b *Backend) OpenStream(device domain.DeviceDescriptor, sampleRate, channels int) (audio.Stream, error) {
	layout, err := channelOption(channels)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	client, err := connect(ctx)
	if err != nil {
		return nil, err
	}

	sink, err := client.SinkByID(device.ID)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %q: %v", audio.ErrNoDevice, device.Name, err)
	}

	return &playbackStream{
		client:     client,
		sink:       sink,
		sampleRate: sampleRate,
		layout:     layout,
	}, nil
}

func channelOption(channels int) (pulse.PlaybackOption, error) {
	switch channels {
	case 1:
		return pulse.PlaybackMono, nil
	case 2:
		return pulse.PlaybackStereo, nil
	default:
		return nil, fmt.Errorf("unsupported channel count: %d", channels)
	}
}

type playbackStream struct {
	client     *pulse.Client
	sink       *pulse.Sink
	sampleRate int
	layout     pulse.PlaybackOption
}

// Write plays samples to completion; pulse pulls from the reader until it
// reports EndOfData and Drain returns once the server has played it.
func (s *playbackStream) Write(samples []int16) error {
	pos := 0
	reader := pulse.Int16Reader(func(buf []int16) (int, error) {
		if pos >= len(samples) {
			return 0, pulse.EndOfData
		}
		n := copy(buf, samples[pos:])
		pos += n
		return n, nil
	})

	stream, err := s.client.NewPlayback(reader,
		s.layout,
		pulse.PlaybackSink(s.sink),
		pulse.PlaybackSampleRate(s.sampleRate),
		pulse.PlaybackLatency(0.1),
	)
	if err != nil {
		return fmt.Errorf("creating playback: %w", err)
	}
	defer stream.Close()

	stream.Start()
	stream.Drain()
	if err := stream.Error(); err != nil {
		return fmt.Errorf("playback: %w", err)
	}
	stream.Stop()
	return nil
}

func (s *playbackStream) Close() error {
	s.client.Close()
	return nil
}
