package tone

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"keep-connect/internal/domain"
)

// EncodeWAV wraps a buffer in a 16-bit PCM RIFF/WAVE container.
func EncodeWAV(b domain.AudioBuffer) ([]byte, error) {
	if b.SampleRate <= 0 || b.Channels <= 0 {
		return nil, fmt.Errorf("invalid buffer format: rate=%d channels=%d", b.SampleRate, b.Channels)
	}

	var buf bytes.Buffer

	dataSize := len(b.Samples) * 2
	blockAlign := b.Channels * 2

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, int32(36+dataSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, int32(16))
	binary.Write(&buf, binary.LittleEndian, int16(1))
	binary.Write(&buf, binary.LittleEndian, int16(b.Channels))
	binary.Write(&buf, binary.LittleEndian, int32(b.SampleRate))
	binary.Write(&buf, binary.LittleEndian, int32(b.SampleRate*blockAlign))
	binary.Write(&buf, binary.LittleEndian, int16(blockAlign))
	binary.Write(&buf, binary.LittleEndian, int16(16))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, int32(dataSize))
	if err := binary.Write(&buf, binary.LittleEndian, b.Samples); err != nil {
		return nil, fmt.Errorf("writing samples: %w", err)
	}

	return buf.Bytes(), nil
}
