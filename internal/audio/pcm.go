package audio

import (
	"encoding/binary"
	"math"
)

// DecodePCM16 converts little-endian 16-bit PCM bytes to float32 samples in [-1, 1].
func DecodePCM16(data []byte) []float32 {
	n := len(data) / 2
	samples := make([]float32, n)
	for i := range n {
		s := int16(binary.LittleEndian.Uint16(data[i*2:]))
		samples[i] = float32(s) / math.MaxInt16
	}
	return samples
}

// EncodePCM16 converts float32 samples in [-1, 1] to little-endian 16-bit PCM bytes.
func EncodePCM16(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		clamped := max(-1.0, min(1.0, s))
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(clamped*math.MaxInt16)))
	}
	return out
}
