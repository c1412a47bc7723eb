package compress

import (
	"bytes"
	"image"
	"image/jpeg"

	_ "image/gif"
	_ "image/png"
)

// TranscodeImage re-encodes a raster image (PNG, JPEG or GIF) as JPEG at
// the given quality in (0, 1]. Anything that does not decode as a raster
// image is returned unchanged; this function never fails. If the JPEG
// rendition comes out larger than the original, the original wins.
func TranscodeImage(data []byte, quality float64) []byte {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return data
	}

	q := int(quality * 100)
	if q < 1 {
		q = 1
	}
	if q > 100 {
		q = 100
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: q}); err != nil {
		return data
	}
	if buf.Len() >= len(data) {
		return data
	}
	return buf.Bytes()
}
