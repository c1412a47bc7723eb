// Package beam implements the chunked peer-channel transfer: a single
// metadata frame followed by fixed-size chunk frames, strictly in send
// order, reassembled on the receive side into one byte buffer.
//
// The underlying channel is assumed ordered and reliable; this package
// does not reorder, retransmit, or speculatively buffer.
package beam

import (
	"encoding/json"
	"fmt"
)

const (
	kindMeta  = "meta"
	kindChunk = "chunk"
)

// Meta describes the transfer before any chunk is sent. Salt and IV are
// present when the payload bytes were encrypted before sending.
type Meta struct {
	Name      string `json:"name"`
	Size      int64  `json:"size"`
	Mime      string `json:"mime,omitempty"`
	Chunks    int    `json:"chunks"`
	Encrypted bool   `json:"encrypted,omitempty"`
	Salt      []byte `json:"salt,omitempty"`
	IV        []byte `json:"iv,omitempty"`
}

// Chunk is one contiguous byte range of the payload.
type Chunk struct {
	Offset int64  `json:"offset"`
	Data   []byte `json:"data"`
}

type wireFrame struct {
	Kind string `json:"kind"`

	// meta fields
	Name      string `json:"name,omitempty"`
	Size      int64  `json:"size,omitempty"`
	Mime      string `json:"mime,omitempty"`
	Chunks    int    `json:"chunks,omitempty"`
	Encrypted bool   `json:"encrypted,omitempty"`
	Salt      []byte `json:"salt,omitempty"`
	IV        []byte `json:"iv,omitempty"`

	// chunk fields
	Offset int64  `json:"offset,omitempty"`
	Data   []byte `json:"data,omitempty"`
}

// EncodeMeta serializes a metadata frame.
func EncodeMeta(m *Meta) ([]byte, error) {
	return json.Marshal(&wireFrame{
		Kind:      kindMeta,
		Name:      m.Name,
		Size:      m.Size,
		Mime:      m.Mime,
		Chunks:    m.Chunks,
		Encrypted: m.Encrypted,
		Salt:      m.Salt,
		IV:        m.IV,
	})
}

// EncodeChunk serializes a chunk frame.
func EncodeChunk(c *Chunk) ([]byte, error) {
	return json.Marshal(&wireFrame{
		Kind:   kindChunk,
		Offset: c.Offset,
		Data:   c.Data,
	})
}

// DecodeFrame parses a received frame into either *Meta or *Chunk.
func DecodeFrame(b []byte) (any, error) {
	var f wireFrame
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("decoding frame: %w", err)
	}

	switch f.Kind {
	case kindMeta:
		if f.Name == "" || f.Size < 0 {
			return nil, fmt.Errorf("invalid meta frame")
		}
		return &Meta{
			Name:      f.Name,
			Size:      f.Size,
			Mime:      f.Mime,
			Chunks:    f.Chunks,
			Encrypted: f.Encrypted,
			Salt:      f.Salt,
			IV:        f.IV,
		}, nil
	case kindChunk:
		if f.Offset < 0 {
			return nil, fmt.Errorf("invalid chunk frame")
		}
		return &Chunk{Offset: f.Offset, Data: f.Data}, nil
	default:
		return nil, fmt.Errorf("unknown frame kind %q", f.Kind)
	}
}
