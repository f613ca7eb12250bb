package alert

import (
	"math"
	"time"
)

// Waveform is the oscillator shape of a tone.
type Waveform string

const (
	WaveformSine     Waveform = "sine"
	WaveformSquare   Waveform = "square"
	WaveformTriangle Waveform = "triangle"
)

// Envelope shapes the gain of a tone: a linear ramp from silence to Peak
// over Attack, then an exponential decay reaching Floor at the tone's end.
type Envelope struct {
	Peak   float64
	Attack time.Duration
	Floor  float64
}

// Gain returns the envelope value at elapsed time within a tone of the given length.
func (envelope Envelope) Gain(elapsed, length time.Duration) float64 {
	if elapsed < 0 || elapsed >= length {
		return 0
	}
	if elapsed < envelope.Attack {
		return envelope.Peak * float64(elapsed) / float64(envelope.Attack)
	}
	decay := length - envelope.Attack
	if decay <= 0 || envelope.Peak <= 0 || envelope.Floor <= 0 {
		return envelope.Peak
	}
	ratio := float64(elapsed-envelope.Attack) / float64(decay)
	return envelope.Peak * math.Pow(envelope.Floor/envelope.Peak, ratio)
}

// Tone describes one synthesized tone relative to the start of a sequence.
type Tone struct {
	Offset    time.Duration
	Frequency float64
	Waveform  Waveform
	Duration  time.Duration
	Envelope  Envelope
}

// End returns the offset at which the tone falls silent.
func (tone Tone) End() time.Duration {
	return tone.Offset + tone.Duration
}

// Sample returns the tone's amplitude at time at, measured from the sequence start.
func (tone Tone) Sample(at time.Duration) float64 {
	elapsed := at - tone.Offset
	gain := tone.Envelope.Gain(elapsed, tone.Duration)
	if gain == 0 {
		return 0
	}
	phase := 2 * math.Pi * tone.Frequency * elapsed.Seconds()
	return gain * oscillate(tone.Waveform, phase)
}

// oscillate returns the unit-amplitude waveform value at phase. Unknown
// waveforms fall back to sine.
func oscillate(waveform Waveform, phase float64) float64 {
	switch waveform {
	case WaveformSquare:
		if math.Sin(phase) >= 0 {
			return 1
		}
		return -1
	case WaveformTriangle:
		return 2 / math.Pi * math.Asin(math.Sin(phase))
	default:
		return math.Sin(phase)
	}
}

var chimeEnvelope = Envelope{
	Peak:   0.3,
	Attack: 10 * time.Millisecond,
	Floor:  0.01,
}

// Chime returns the three-tone completion sequence. Tones overlap.
func Chime() []Tone {
	return []Tone{
		{Offset: 0, Frequency: 800, Waveform: WaveformSine, Duration: 500 * time.Millisecond, Envelope: chimeEnvelope},
		{Offset: 200 * time.Millisecond, Frequency: 800, Waveform: WaveformSine, Duration: 500 * time.Millisecond, Envelope: chimeEnvelope},
		{Offset: 400 * time.Millisecond, Frequency: 1000, Waveform: WaveformSine, Duration: 700 * time.Millisecond, Envelope: chimeEnvelope},
	}
}

// Length returns the time until the last tone in the sequence ends.
func Length(tones []Tone) time.Duration {
	var length time.Duration
	for _, tone := range tones {
		if end := tone.End(); end > length {
			length = end
		}
	}
	return length
}
