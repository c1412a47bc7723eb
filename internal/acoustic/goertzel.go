package acoustic

import "math"

// Goertzel computes the normalized magnitude of a single frequency in a
// block of samples. Cheaper than a full FFT when only the two carrier
// bands matter.
func Goertzel(samples []float64, sampleRate, freq float64) float64 {
	if len(samples) == 0 {
		return 0
	}

	k := 2 * math.Cos(2*math.Pi*freq/sampleRate)

	var s0, s1, s2 float64
	for _, x := range samples {
		s0 = x + k*s1 - s2
		s2 = s1
		s1 = s0
	}

	power := s1*s1 + s2*s2 - k*s1*s2
	if power < 0 {
		power = 0
	}

	// Normalize so a full-scale pure tone at freq reads close to 1.
	return 2 * math.Sqrt(power) / float64(len(samples))
}

// DemodulatePCM slices a synthesized waveform into one window per bit and
// decides each bit by comparing carrier energies. Windows below the noise
// floor on both carriers produce no bit. The lead-in silence is skipped
// by energy, not by timestamp, so minor leading padding is tolerated.
func DemodulatePCM(samples []float64) []int {
	window := SampleRate / BaudRate

	var bits []int
	started := false

	for off := 0; off+window <= len(samples); off += window {
		chunk := samples[off : off+window]
		mark := Goertzel(chunk, SampleRate, MarkFreq)
		space := Goertzel(chunk, SampleRate, SpaceFreq)

		if mark < NoiseFloor && space < NoiseFloor {
			if started {
				break
			}
			continue
		}
		started = true

		if mark > space {
			bits = append(bits, 1)
		} else {
			bits = append(bits, 0)
		}
	}

	return bits
}
