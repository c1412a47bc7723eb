package beam

import (
	"context"
	"fmt"
	"io"

	"github.com/aethershare/aether/internal/common"
	"github.com/aethershare/aether/internal/logging"
)

// ProgressFunc is invoked after every sent or received chunk.
type ProgressFunc func(percent float64, done, total int64)

// Sender is the sending half of the beam transfer.
type Sender struct {
	logger    logging.Logger
	chunkSize int
}

// NewSender creates a Sender. chunkSize 0 selects the default.
func NewSender(l logging.Logger, chunkSize int) *Sender {
	if chunkSize <= 0 {
		chunkSize = common.ChunkSize
	}
	return &Sender{
		logger:    l.With("module", "beam_sender"),
		chunkSize: chunkSize,
	}
}

// SendStream writes the metadata frame, then splits src into chunks of the
// configured size (the last one may be shorter) and sends them strictly in
// order. After every common.DrainInterval chunks the channel is drained so
// buffered-but-unsent data can flush before more is queued; without this
// a slow channel would buffer the entire payload. onProgress may be nil.
//
// src must yield exactly meta.Size bytes; a short read aborts the send.
func (s *Sender) SendStream(ctx context.Context, src io.Reader, meta *Meta, ch FrameChannel, onProgress ProgressFunc) error {
	meta.Chunks = int((meta.Size + int64(s.chunkSize) - 1) / int64(s.chunkSize))

	frame, err := EncodeMeta(meta)
	if err != nil {
		return err
	}
	if err := ch.Send(ctx, frame); err != nil {
		return fmt.Errorf("sending meta frame: %w", err)
	}

	s.logger.Info(ctx, "beam send started",
		"name", meta.Name, "size", meta.Size, "chunks", meta.Chunks)

	var (
		offset int64
		buf    = make([]byte, s.chunkSize)
	)

	for i := 0; i < meta.Chunks; i++ {
		want := int64(s.chunkSize)
		if remaining := meta.Size - offset; remaining < want {
			want = remaining
		}

		n, err := io.ReadFull(src, buf[:want])
		if err != nil {
			return fmt.Errorf("reading source at offset %d: %w", offset, err)
		}

		frame, err := EncodeChunk(&Chunk{Offset: offset, Data: buf[:n]})
		if err != nil {
			return err
		}
		if err := ch.Send(ctx, frame); err != nil {
			return fmt.Errorf("sending chunk at offset %d: %w", offset, err)
		}

		offset += int64(n)

		if onProgress != nil {
			onProgress(float64(offset)/float64(meta.Size)*100, offset, meta.Size)
		}

		// Cooperative yield: let the channel flush before queueing more.
		if (i+1)%common.DrainInterval == 0 {
			if err := ch.Drain(ctx); err != nil {
				return fmt.Errorf("draining channel: %w", err)
			}
		}
	}

	s.logger.Info(ctx, "beam send finished", "name", meta.Name, "bytes", offset)
	return nil
}
