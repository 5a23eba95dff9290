package audio

import (
	"math"
	"testing"
)

func TestUlawRoundTrip_ApproximatesInput(t *testing.T) {
	t.Parallel()
	samples := make([]float32, 160)
	for i := range samples {
		samples[i] = float32(0.5 * math.Sin(2*math.Pi*440*float64(i)/8000))
	}

	decoded := DecodeUlaw(EncodeUlaw(samples))
	if len(decoded) != len(samples) {
		t.Fatalf("decoded length = %d, want %d", len(decoded), len(samples))
	}
	for i := range samples {
		if diff := math.Abs(float64(decoded[i] - samples[i])); diff > 0.03 {
			t.Fatalf("sample %d: decoded %f, want within 0.03 of %f", i, decoded[i], samples[i])
		}
	}
}

func TestEncodeUlaw_ClipsOutOfRange(t *testing.T) {
	t.Parallel()
	decoded := DecodeUlaw(EncodeUlaw([]float32{2.0, -2.0}))
	for i, s := range decoded {
		if s > 1.0 || s < -1.0 {
			t.Fatalf("sample %d = %f, want within [-1, 1]", i, s)
		}
	}
}

func TestPCM16RoundTrip(t *testing.T) {
	t.Parallel()
	samples := []float32{0, 0.25, -0.25, 0.99, -0.99}
	decoded := DecodePCM16(EncodePCM16(samples))
	if len(decoded) != len(samples) {
		t.Fatalf("decoded length = %d, want %d", len(decoded), len(samples))
	}
	for i := range samples {
		if diff := math.Abs(float64(decoded[i] - samples[i])); diff > 0.001 {
			t.Fatalf("sample %d: decoded %f, want within 0.001 of %f", i, decoded[i], samples[i])
		}
	}
}

func TestWAVRoundTrip_PreservesSamplesAndRate(t *testing.T) {
	t.Parallel()
	samples := make([]float32, 240)
	for i := range samples {
		samples[i] = float32(0.3 * math.Sin(2*math.Pi*300*float64(i)/24000))
	}

	decoded, rate, err := WAVToSamples(SamplesToWAV(samples, 24000))
	if err != nil {
		t.Fatalf("WAVToSamples error: %v", err)
	}
	if rate != 24000 {
		t.Fatalf("sample rate = %d, want 24000", rate)
	}
	if len(decoded) != len(samples) {
		t.Fatalf("decoded length = %d, want %d", len(decoded), len(samples))
	}
	for i := range samples {
		if diff := math.Abs(float64(decoded[i] - samples[i])); diff > 0.001 {
			t.Fatalf("sample %d: decoded %f, want within 0.001 of %f", i, decoded[i], samples[i])
		}
	}
}

func TestWAVToSamples_RejectsGarbage(t *testing.T) {
	t.Parallel()
	if _, _, err := WAVToSamples([]byte("not a wav file at all")); err == nil {
		t.Fatal("expected error for non-WAV input")
	}
}

func TestResample_ScalesLength(t *testing.T) {
	t.Parallel()
	in := make([]float32, 24000)
	for i := range in {
		in[i] = float32(math.Sin(2 * math.Pi * 200 * float64(i) / 24000))
	}

	out := Resample(in, 24000, 8000)
	want := 8000
	if len(out) < want-1 || len(out) > want+1 {
		t.Fatalf("resampled length = %d, want about %d", len(out), want)
	}
}

func TestResample_SameRateIsIdentity(t *testing.T) {
	t.Parallel()
	in := []float32{0.1, 0.2, 0.3}
	out := Resample(in, 16000, 16000)
	if len(out) != len(in) {
		t.Fatalf("length = %d, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("sample %d changed: %f != %f", i, out[i], in[i])
		}
	}
}
