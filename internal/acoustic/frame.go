package acoustic

// FrameBits builds the over-the-air bit sequence for a text announce:
// an 8-bit alternating preamble (starting with 1), 8 bits per character
// most-significant-bit first, and a 4-bit zero trailer.
func FrameBits(text string) []int {
	bits := make([]int, 0, preambleLen+len(text)*bitsPerChar+trailerLen)

	for i := 0; i < preambleLen; i++ {
		bits = append(bits, (i+1)%2)
	}

	for _, b := range []byte(text) {
		for shift := bitsPerChar - 1; shift >= 0; shift-- {
			bits = append(bits, int(b>>shift)&1)
		}
	}

	for i := 0; i < trailerLen; i++ {
		bits = append(bits, 0)
	}

	return bits
}

// DecodeBits recovers the announced text from a decided-bit stream. It
// scans for the preamble, then consumes 8-bit groups until the stream
// runs out or a zero byte (the trailer region) appears. The second return
// is false when no preamble was found.
//
// The input must already be on clean bit boundaries; the demodulator does
// not align them itself.
func DecodeBits(bits []int) (string, bool) {
	start := findPreamble(bits)
	if start < 0 {
		return "", false
	}

	var out []byte
	for i := start; i+bitsPerChar <= len(bits); i += bitsPerChar {
		var b byte
		for j := 0; j < bitsPerChar; j++ {
			b = b<<1 | byte(bits[i+j])
		}
		if b == 0 {
			break
		}
		out = append(out, b)
	}

	return string(out), true
}

func findPreamble(bits []int) int {
	want := make([]int, preambleLen)
	for i := range want {
		want[i] = (i + 1) % 2
	}

outer:
	for i := 0; i+preambleLen <= len(bits); i++ {
		for j := 0; j < preambleLen; j++ {
			if bits[i+j] != want[j] {
				continue outer
			}
		}
		return i + preambleLen
	}
	return -1
}
