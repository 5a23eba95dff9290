package audio

import (
	"encoding/binary"
	"fmt"
	"math"
)

// SamplesToWAV encodes float32 PCM samples as a mono 16-bit WAV byte slice.
func SamplesToWAV(samples []float32, sampleRate int) []byte {
	dataLen := len(samples) * 2
	totalLen := 44 + dataLen

	buf := make([]byte, totalLen)
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(totalLen-8))
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(buf[22:24], 1) // mono
	binary.LittleEndian.PutUint32(buf[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(sampleRate*2)) // byte rate
	binary.LittleEndian.PutUint16(buf[32:34], 2)                    // block align
	binary.LittleEndian.PutUint16(buf[34:36], 16)                   // bits per sample
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataLen))

	for i, s := range samples {
		clamped := max(-1.0, min(1.0, s))
		val := int16(clamped * math.MaxInt16)
		binary.LittleEndian.PutUint16(buf[44+i*2:], uint16(val))
	}

	return buf
}

// WAVToSamples decodes a 16-bit PCM WAV byte slice into float32 samples and
// the sample rate. Multi-channel audio is mixed down by taking channel 0.
func WAVToSamples(data []byte) ([]float32, int, error) {
	if len(data) < 44 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, 0, fmt.Errorf("not a WAV file")
	}

	var sampleRate, channels, bitsPerSample int
	pos := 12
	for pos+8 <= len(data) {
		chunkID := string(data[pos : pos+4])
		chunkLen := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := pos + 8
		if body+chunkLen > len(data) {
			chunkLen = len(data) - body
		}

		switch chunkID {
		case "fmt ":
			if chunkLen < 16 {
				return nil, 0, fmt.Errorf("short fmt chunk")
			}
			format := int(binary.LittleEndian.Uint16(data[body:]))
			channels = int(binary.LittleEndian.Uint16(data[body+2:]))
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4:]))
			bitsPerSample = int(binary.LittleEndian.Uint16(data[body+14:]))
			if format != 1 || bitsPerSample != 16 {
				return nil, 0, fmt.Errorf("unsupported WAV format %d/%d-bit", format, bitsPerSample)
			}
		case "data":
			if sampleRate == 0 || channels == 0 {
				return nil, 0, fmt.Errorf("data chunk before fmt chunk")
			}
			frames := chunkLen / (2 * channels)
			samples := make([]float32, frames)
			for i := range frames {
				s := int16(binary.LittleEndian.Uint16(data[body+i*2*channels:]))
				samples[i] = float32(s) / math.MaxInt16
			}
			return samples, sampleRate, nil
		}

		pos = body + chunkLen
		if chunkLen%2 == 1 {
			pos++
		}
	}

	return nil, 0, fmt.Errorf("no data chunk")
}
