package compress

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aethershare/aether/internal/common"
)

func TestDeflateInflate_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: []byte{}},
		{name: "short text", data: []byte("hello, aether")},
		{name: "repetitive", data: bytes.Repeat([]byte("abcd"), 10000)},
		{name: "binary", data: func() []byte {
			b := make([]byte, 4096)
			for i := range b {
				b[i] = byte(i * 31)
			}
			return b
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			packed, err := Deflate(tt.data)
			require.NoError(t, err)
			require.NotEmpty(t, packed)

			got, err := Inflate(packed)
			require.NoError(t, err)
			assert.Equal(t, tt.data, got)
		})
	}
}

func TestDeflate_ShrinksRepetitiveInput(t *testing.T) {
	data := bytes.Repeat([]byte("la"), 50000)
	packed, err := Deflate(data)
	require.NoError(t, err)
	assert.Less(t, len(packed), len(data))
}

func TestInflate_CorruptStream(t *testing.T) {
	_, err := Inflate([]byte{0xff, 0x00, 0xde, 0xad, 0xbe, 0xef})
	assert.ErrorIs(t, err, common.ErrCorruptStream)
}

func TestInflate_TruncatedStream(t *testing.T) {
	packed, err := Deflate(bytes.Repeat([]byte("data"), 1000))
	require.NoError(t, err)

	_, err = Inflate(packed[:len(packed)/2])
	assert.ErrorIs(t, err, common.ErrCorruptStream)
}

// makeTestPNG fills the image with deterministic noise so the PNG encoding
// stays large and the lossy JPEG rendition is reliably smaller.
func makeTestPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	rnd := rand.New(rand.NewSource(42))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(rnd.Intn(256)),
				G: uint8(rnd.Intn(256)),
				B: uint8(rnd.Intn(256)),
				A: 255,
			})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestTranscodeImage_PNGBecomesSmallerJPEG(t *testing.T) {
	src := makeTestPNG(t, 64, 64)

	out := TranscodeImage(src, 0.3)
	require.NotEqual(t, src, out)

	// Result must itself decode as an image.
	_, format, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Less(t, len(out), len(src))
}

func TestTranscodeImage_NonImagePassesThrough(t *testing.T) {
	data := []byte("definitely not an image")
	out := TranscodeImage(data, 0.5)
	assert.Equal(t, data, out)
}

func TestTranscodeImage_QualityClamped(t *testing.T) {
	src := makeTestPNG(t, 32, 32)

	// Out-of-range quality values must not panic or error out.
	for _, q := range []float64{-1, 0, 2} {
		out := TranscodeImage(src, q)
		assert.NotEmpty(t, out)
	}
}
