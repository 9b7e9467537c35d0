package tone_test

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"keep-connect/internal/domain"
	"keep-connect/internal/tone"
)

func TestSynthesize_Length(t *testing.T) {
	tests := []struct {
		name string
		spec domain.ToneSpec
		want int
	}{
		{"keep-alive mono", tone.KeepAlive, 44100 * 3},
		{"stereo", domain.ToneSpec{Frequency: 440, Duration: 500 * time.Millisecond, SampleRate: 44100, Amplitude: 1000, Channels: 2}, 22050 * 2},
		{"low rate", domain.ToneSpec{Frequency: 100, Duration: time.Second, SampleRate: 8000, Amplitude: 1, Channels: 1}, 8000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := tone.Synthesize(tt.spec)
			require.Len(t, buf.Samples, tt.want)
			require.Equal(t, tt.spec.SampleRate, buf.SampleRate)
			require.Equal(t, tt.spec.Channels, buf.Channels)
		})
	}
}

func TestSynthesize_ClampsToInt16(t *testing.T) {
	spec := domain.ToneSpec{Frequency: 1000, Duration: 10 * time.Millisecond, SampleRate: 48000, Amplitude: 1e6, Channels: 1}
	buf := tone.Synthesize(spec)

	var sawMax, sawMin bool
	for _, s := range buf.Samples {
		if s == 32767 {
			sawMax = true
		}
		if s == -32768 {
			sawMin = true
		}
	}
	require.True(t, sawMax, "expected positive peak to clip")
	require.True(t, sawMin, "expected negative peak to clip")
}

func TestSynthesize_StereoDuplicatesChannels(t *testing.T) {
	spec := domain.ToneSpec{Frequency: 440, Duration: 20 * time.Millisecond, SampleRate: 44100, Amplitude: 12000, Channels: 2}
	buf := tone.Synthesize(spec)

	for i := 0; i < len(buf.Samples); i += 2 {
		require.Equal(t, buf.Samples[i], buf.Samples[i+1], "frame %d", i/2)
	}
}

func TestSynthesize_Deterministic(t *testing.T) {
	a := tone.Synthesize(tone.KeepAlive)
	b := tone.Synthesize(tone.KeepAlive)
	require.Equal(t, a.Samples, b.Samples)
	require.Equal(t, int16(0), a.Samples[0])
}

func TestSynthesize_InvalidSpec(t *testing.T) {
	buf := tone.Synthesize(domain.ToneSpec{Frequency: 0, Duration: time.Second, SampleRate: 44100, Channels: 1})
	require.Empty(t, buf.Samples)
}

func TestConcat_PreservesOrder(t *testing.T) {
	a := domain.AudioBuffer{Samples: []int16{1, 2}, SampleRate: 8000, Channels: 1}
	b := domain.AudioBuffer{Samples: []int16{3}, SampleRate: 8000, Channels: 1}
	c := domain.AudioBuffer{Samples: []int16{4, 5, 6}, SampleRate: 8000, Channels: 1}

	out := tone.Concat(a, b, c)
	require.Equal(t, []int16{1, 2, 3, 4, 5, 6}, out.Samples)
	require.Equal(t, 8000, out.SampleRate)
}

func TestSilence_IsZero(t *testing.T) {
	buf := tone.Silence(44100, 2, 100*time.Millisecond)
	require.Len(t, buf.Samples, 4410*2)
	for _, s := range buf.Samples {
		require.Zero(t, s)
	}
}

func TestAlert_Layout(t *testing.T) {
	buf := tone.Alert(44100, 2)

	// 150ms + 100ms + 200ms + 50ms
	require.Len(t, buf.Samples, (6615+4410+8820+2205)*2)

	gap := buf.Samples[6615*2 : (6615+4410)*2]
	for _, s := range gap {
		require.Zero(t, s)
	}
}

func TestEncodeWAV_Header(t *testing.T) {
	buf := tone.Synthesize(domain.ToneSpec{Frequency: 440, Duration: 10 * time.Millisecond, SampleRate: 8000, Amplitude: 100, Channels: 2})

	data, err := tone.EncodeWAV(buf)
	require.NoError(t, err)
	require.Len(t, data, 44+len(buf.Samples)*2)
	require.Equal(t, "RIFF", string(data[0:4]))
	require.Equal(t, "WAVE", string(data[8:12]))
	require.Equal(t, uint16(2), binary.LittleEndian.Uint16(data[22:24]))
	require.Equal(t, uint32(8000), binary.LittleEndian.Uint32(data[24:28]))
	require.Equal(t, uint32(len(buf.Samples)*2), binary.LittleEndian.Uint32(data[40:44]))
}

func TestEncodeWAV_RejectsEmptyFormat(t *testing.T) {
	_, err := tone.EncodeWAV(domain.AudioBuffer{})
	require.Error(t, err)
}
