// Package compress implements the lossless stage of the payload pipeline
// (raw DEFLATE) and an optional lossy pre-stage that re-encodes raster
// images as JPEG before compression.
package compress

import (
	"bytes"
	"compress/flate"
	"fmt"
	"io"

	"github.com/aethershare/aether/internal/common"
)

// Deflate compresses data with raw DEFLATE at the highest compression
// level. The empty input compresses to a valid (non-empty) stream.
func Deflate(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return nil, fmt.Errorf("creating deflate writer: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("compressing: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("flushing deflate stream: %w", err)
	}
	return buf.Bytes(), nil
}

// Inflate decompresses a raw DEFLATE stream produced by Deflate. Invalid
// input surfaces as common.ErrCorruptStream.
func Inflate(data []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCorruptStream, err)
	}
	return out, nil
}
