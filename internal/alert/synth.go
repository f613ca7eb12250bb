package alert

import (
	"encoding/binary"
	"math"
	"time"
)

// DefaultSampleRate is the rate used for rendering and playback.
const DefaultSampleRate = 44100

// Render mixes the tones into mono samples in [-1, 1].
func Render(tones []Tone, sampleRate int) []float64 {
	if sampleRate <= 0 || len(tones) == 0 {
		return nil
	}
	length := int64(Length(tones))
	second := int64(time.Second)
	count := (length*int64(sampleRate) + second - 1) / second
	samples := make([]float64, count)
	for index := range samples {
		at := time.Duration(float64(index) / float64(sampleRate) * float64(time.Second))
		var mixed float64
		for _, tone := range tones {
			mixed += tone.Sample(at)
		}
		samples[index] = clamp(mixed)
	}
	return samples
}

// EncodePCM16 converts samples to signed 16-bit little-endian PCM.
func EncodePCM16(samples []float64) []byte {
	buffer := make([]byte, len(samples)*2)
	for index, sample := range samples {
		value := int16(math.Round(clamp(sample) * math.MaxInt16))
		binary.LittleEndian.PutUint16(buffer[index*2:], uint16(value))
	}
	return buffer
}

func clamp(sample float64) float64 {
	if sample > 1 {
		return 1
	}
	if sample < -1 {
		return -1
	}
	return sample
}
