// Package acoustic implements the audible announce channel: a filename is
// frequency-shift keyed onto two carrier tones, and a live spectrum is
// demodulated back into a bit stream by comparing band energies.
//
// The demodulator is deliberately simple: it decides one bit per analysis
// frame and leaves bit-boundary alignment with the sender's baud rate to
// the consumer (DecodeBits helps once bits are on a clean boundary).
// There is no forward error correction.
package acoustic

// Signal parameters. Both ends must agree on all of them.
const (
	// SpaceFreq carries bit 0, MarkFreq carries bit 1.
	SpaceFreq = 1200.0
	MarkFreq  = 2000.0

	// BaudRate is bits per second on the air.
	BaudRate = 20

	// SampleRate for synthesized waveforms.
	SampleRate = 44100

	// LeadInSeconds of silence before the first bit.
	LeadInSeconds = 0.25

	// NoiseFloor is the minimum band energy (normalized magnitude) for a
	// frame to count as signal at all.
	NoiseFloor = 0.1

	// BinSpread is how many adjacent spectrum bins on each side of a
	// carrier are scanned for energy, tolerating small frequency drift.
	BinSpread = 2
)

const (
	preambleLen = 8
	trailerLen  = 4
	bitsPerChar = 8
)
