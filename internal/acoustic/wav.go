package acoustic

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// EncodeWAV wraps mono float64 PCM in a 16-bit little-endian WAV
// container at the given sample rate.
func EncodeWAV(samples []float64, sampleRate int) []byte {
	dataLen := len(samples) * 2

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // mono
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*2))
	binary.Write(&buf, binary.LittleEndian, uint16(2))  // block align
	binary.Write(&buf, binary.LittleEndian, uint16(16)) // bits per sample

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataLen))

	for _, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		binary.Write(&buf, binary.LittleEndian, int16(s*math.MaxInt16))
	}

	return buf.Bytes()
}

// DecodeWAV extracts mono float64 PCM and the sample rate from a 16-bit
// PCM WAV container. Only the subset EncodeWAV produces is supported.
func DecodeWAV(data []byte) ([]float64, int, error) {
	if len(data) < 44 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, 0, fmt.Errorf("not a WAV file")
	}

	format := binary.LittleEndian.Uint16(data[20:22])
	channels := binary.LittleEndian.Uint16(data[22:24])
	sampleRate := binary.LittleEndian.Uint32(data[24:28])
	bits := binary.LittleEndian.Uint16(data[34:36])

	if format != 1 || channels != 1 || bits != 16 {
		return nil, 0, fmt.Errorf("unsupported WAV layout: format=%d channels=%d bits=%d", format, channels, bits)
	}

	// Locate the data chunk; an info chunk may precede it.
	off := 36
	for {
		if off+8 > len(data) {
			return nil, 0, fmt.Errorf("no data chunk")
		}
		chunkID := string(data[off : off+4])
		chunkLen := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		if chunkID == "data" {
			off += 8
			if off+chunkLen > len(data) {
				return nil, 0, fmt.Errorf("truncated data chunk")
			}
			n := chunkLen / 2
			samples := make([]float64, n)
			for i := 0; i < n; i++ {
				v := int16(binary.LittleEndian.Uint16(data[off+i*2 : off+i*2+2]))
				samples[i] = float64(v) / math.MaxInt16
			}
			return samples, int(sampleRate), nil
		}
		off += 8 + chunkLen
	}
}
