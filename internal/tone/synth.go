// Package tone builds PCM buffers for the keep-alive and alert sounds.
package tone

import (
	"math"
	"time"

	"keep-connect/internal/domain"
)

// KeepAlive is a near-inaudible 20 kHz tone, quiet enough not to intrude on
// a headset in use.
var KeepAlive = domain.ToneSpec{
	Frequency:  20000,
	Duration:   3 * time.Second,
	SampleRate: domain.DefaultSampleRate,
	Amplitude:  1000,
	Channels:   1,
}

// Synthesize renders amplitude*sin(2*pi*f*t) over [0, duration). Invalid
// specs yield an empty buffer.
func Synthesize(spec domain.ToneSpec) domain.AudioBuffer {
	buf := domain.AudioBuffer{SampleRate: spec.SampleRate, Channels: spec.Channels}
	if !spec.Valid() {
		return buf
	}

	n := frameCount(spec.SampleRate, spec.Duration)
	samples := make([]int16, n*spec.Channels)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(spec.SampleRate)
		s := clamp(math.Round(spec.Amplitude * math.Sin(2*math.Pi*spec.Frequency*t)))
		for c := 0; c < spec.Channels; c++ {
			samples[i*spec.Channels+c] = s
		}
	}
	buf.Samples = samples
	return buf
}

// Silence returns a zero buffer of the given length.
func Silence(sampleRate, channels int, d time.Duration) domain.AudioBuffer {
	return domain.AudioBuffer{
		Samples:    make([]int16, frameCount(sampleRate, d)*channels),
		SampleRate: sampleRate,
		Channels:   channels,
	}
}

// Concat appends buffers in order. The format of the first buffer wins;
// callers are expected to pass buffers of matching format.
func Concat(parts ...domain.AudioBuffer) domain.AudioBuffer {
	if len(parts) == 0 {
		return domain.AudioBuffer{}
	}
	total := 0
	for _, p := range parts {
		total += len(p.Samples)
	}
	out := domain.AudioBuffer{
		Samples:    make([]int16, 0, total),
		SampleRate: parts[0].SampleRate,
		Channels:   parts[0].Channels,
	}
	for _, p := range parts {
		out.Samples = append(out.Samples, p.Samples...)
	}
	return out
}

// Alert is a two-syllable notification sound: high, gap, low.
func Alert(sampleRate, channels int) domain.AudioBuffer {
	syllable := func(freq float64, d time.Duration) domain.AudioBuffer {
		return Synthesize(domain.ToneSpec{
			Frequency:  freq,
			Duration:   d,
			SampleRate: sampleRate,
			Amplitude:  8000,
			Channels:   channels,
		})
	}
	return Concat(
		syllable(880, 150*time.Millisecond),
		Silence(sampleRate, channels, 100*time.Millisecond),
		syllable(660, 200*time.Millisecond),
		Silence(sampleRate, channels, 50*time.Millisecond),
	)
}

func frameCount(sampleRate int, d time.Duration) int {
	return int(int64(sampleRate) * int64(d) / int64(time.Second))
}

func clamp(v float64) int16 {
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}
