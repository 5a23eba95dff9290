package audio

import "math"

var ulawTable [256]int16

func init() {
	for i := range 256 {
		ulawTable[i] = expandUlawSample(byte(i))
	}
}

func expandUlawSample(b byte) int16 {
	b = ^b
	sign := int16(1)
	if b&0x80 != 0 {
		sign = -1
		b &= 0x7F
	}
	exponent := int16((b >> 4) & 0x07)
	mantissa := int16(b & 0x0F)
	sample := (mantissa<<3 + 0x84) << exponent
	sample -= 0x84
	return sign * sample
}

func compressUlawSample(sample int16) byte {
	const bias, clip = 0x84, 32635
	sign := byte(0x00)
	if sample < 0 {
		sign = 0x80
		sample = -sample
	}
	if sample > clip {
		sample = clip
	}
	sample += bias
	exponent := byte(7)
	for mask := int16(0x4000); sample&mask == 0 && exponent > 0; mask >>= 1 {
		exponent--
	}
	mantissa := byte((sample >> (exponent + 3)) & 0x0F)
	return ^(sign | exponent<<4 | mantissa)
}

// DecodeUlaw converts G.711 mu-law bytes to float32 PCM samples in [-1, 1].
func DecodeUlaw(data []byte) []float32 {
	samples := make([]float32, len(data))
	for i, b := range data {
		samples[i] = float32(ulawTable[b]) / math.MaxInt16
	}
	return samples
}

// EncodeUlaw converts float32 PCM samples in [-1, 1] to G.711 mu-law bytes.
func EncodeUlaw(samples []float32) []byte {
	out := make([]byte, len(samples))
	for i, s := range samples {
		clamped := max(-1.0, min(1.0, s))
		out[i] = compressUlawSample(int16(clamped * math.MaxInt16))
	}
	return out
}
