package domain

import "time"

const DefaultSampleRate = 44100

// ToneSpec fully determines a synthesized buffer.
type ToneSpec struct {
	Frequency  float64
	Duration   time.Duration
	SampleRate int
	Amplitude  float64 // absolute 16-bit units
	Channels   int
}

func (s ToneSpec) Valid() bool {
	return s.Frequency > 0 && s.Duration > 0 && s.SampleRate > 0 && (s.Channels == 1 || s.Channels == 2)
}

// AudioBuffer holds signed 16-bit PCM, interleaved when Channels is 2.
// Buffers are treated as immutable once built.
type AudioBuffer struct {
	Samples    []int16
	SampleRate int
	Channels   int
}

// Frames returns the number of samples per channel.
func (b AudioBuffer) Frames() int {
	if b.Channels == 0 {
		return 0
	}
	return len(b.Samples) / b.Channels
}

func (b AudioBuffer) Duration() time.Duration {
	if b.SampleRate == 0 {
		return 0
	}
	return time.Duration(b.Frames()) * time.Second / time.Duration(b.SampleRate)
}
