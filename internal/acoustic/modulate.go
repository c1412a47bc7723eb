package acoustic

import (
	"context"
	"math"
	"time"
)

// Tone is one scheduled carrier burst.
type Tone struct {
	Freq  float64
	Start time.Duration
	Len   time.Duration
}

// Modulation is the result of modulating a text: the tone schedule and a
// way to wait out its playback duration.
type Modulation struct {
	Text     string
	Tones    []Tone
	Duration time.Duration
}

// Modulate builds the tone schedule for text: lead-in silence, then one
// tone per frame bit at the configured baud rate.
func Modulate(text string) *Modulation {
	bits := FrameBits(text)
	bitLen := time.Second / BaudRate
	leadIn := time.Duration(LeadInSeconds * float64(time.Second))

	tones := make([]Tone, 0, len(bits))
	at := leadIn
	for _, bit := range bits {
		freq := SpaceFreq
		if bit == 1 {
			freq = MarkFreq
		}
		tones = append(tones, Tone{Freq: freq, Start: at, Len: bitLen})
		at += bitLen
	}

	return &Modulation{Text: text, Tones: tones, Duration: at}
}

// Wait blocks until the scheduled duration has elapsed, signalling that
// playback of the waveform is complete.
func (m *Modulation) Wait(ctx context.Context) error {
	timer := time.NewTimer(m.Duration)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Samples synthesizes the schedule as mono float64 PCM in [-1, 1] at
// SampleRate. Tone edges are shaped with a short raised-cosine ramp to
// avoid clicks.
func (m *Modulation) Samples() []float64 {
	total := int(m.Duration.Seconds() * SampleRate)
	out := make([]float64, total)

	ramp := SampleRate / 200 // 5 ms

	for _, tone := range m.Tones {
		start := int(tone.Start.Seconds() * SampleRate)
		n := int(tone.Len.Seconds() * SampleRate)

		for i := 0; i < n && start+i < total; i++ {
			s := 0.8 * math.Sin(2*math.Pi*tone.Freq*float64(i)/SampleRate)

			if i < ramp {
				s *= 0.5 * (1 - math.Cos(math.Pi*float64(i)/float64(ramp)))
			} else if n-i < ramp {
				s *= 0.5 * (1 - math.Cos(math.Pi*float64(n-i)/float64(ramp)))
			}

			out[start+i] = s
		}
	}

	return out
}
