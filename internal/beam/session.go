package beam

import (
	"context"
	"fmt"
	"sync"

	"github.com/aethershare/aether/internal/common"
	"github.com/aethershare/aether/internal/logging"
)

// Session is the receive-side state of one beam transfer. Chunks arriving
// before the metadata frame are dropped with a warning, never buffered.
// Completion is declared exactly once, at the moment the accumulated size
// first reaches the declared total.
//
// All methods are safe for concurrent use; a single mutex guards the state.
type Session struct {
	logger logging.Logger

	mu       sync.Mutex
	meta     *Meta
	bufs     [][]byte
	received int64
	result   []byte
	complete bool
	failed   error

	done chan struct{}
}

func NewSession(l logging.Logger) *Session {
	return &Session{
		logger: l.With("module", "beam_session"),
		done:   make(chan struct{}),
	}
}

// OnMeta initializes the session from the metadata frame. A second meta
// frame on the same session is a protocol violation.
func (s *Session) OnMeta(ctx context.Context, m *Meta) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.meta != nil {
		return fmt.Errorf("duplicate meta frame")
	}
	if s.failed != nil || s.complete {
		return fmt.Errorf("session already finished")
	}

	s.meta = m
	s.logger.Info(ctx, "beam receive started",
		"name", m.Name, "size", m.Size, "chunks", m.Chunks)

	// An empty file completes with no chunk frames at all.
	if m.Size == 0 {
		s.finalizeLocked(ctx)
	}

	return nil
}

// OnChunk appends one received byte range. Arrival order is assumed equal
// to send order; offsets are sanity-checked, not used for reordering.
func (s *Session) OnChunk(ctx context.Context, c *Chunk) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.meta == nil {
		s.logger.Warn(ctx, "chunk before meta frame, dropping", "offset", c.Offset)
		return
	}
	if s.complete || s.failed != nil {
		s.logger.Warn(ctx, "chunk after session end, dropping", "offset", c.Offset)
		return
	}
	if c.Offset != s.received {
		s.logger.Warn(ctx, "chunk offset mismatch, dropping",
			"offset", c.Offset, "expected", s.received)
		return
	}

	s.bufs = append(s.bufs, c.Data)
	s.received += int64(len(c.Data))

	if s.received >= s.meta.Size {
		s.finalizeLocked(ctx)
	}
}

// finalizeLocked concatenates the buffers in arrival order, discards them,
// and declares completion. Caller holds s.mu.
func (s *Session) finalizeLocked(ctx context.Context) {
	out := make([]byte, 0, s.received)
	for _, b := range s.bufs {
		out = append(out, b...)
	}
	s.bufs = nil
	s.result = out
	s.complete = true
	close(s.done)

	s.logger.Info(ctx, "beam receive complete", "name", s.meta.Name, "bytes", s.received)
}

// Abort marks the session as failed if it has not completed. Used when
// the peer channel closes mid-transfer. Idempotent.
func (s *Session) Abort(ctx context.Context, cause error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.complete || s.failed != nil {
		return
	}

	var expected int64
	if s.meta != nil {
		expected = s.meta.Size
	}
	s.failed = fmt.Errorf("%w: received %d of %d bytes: %v",
		common.ErrTransferAborted, s.received, expected, cause)
	s.bufs = nil
	close(s.done)

	s.logger.Error(ctx, "beam receive aborted",
		"received", s.received, "expected", expected, "cause", cause)
}

// Done is closed when the session reaches a terminal state, either
// completion or failure.
func (s *Session) Done() <-chan struct{} { return s.done }

// Completed reports whether the full payload has been received.
func (s *Session) Completed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.complete
}

// Meta returns the metadata frame, or nil before it arrives.
func (s *Session) Meta() *Meta {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meta
}

// Progress returns accumulated and expected byte counts.
func (s *Session) Progress() (received, expected int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.meta != nil {
		expected = s.meta.Size
	}
	return s.received, expected
}

// Bytes returns the reassembled payload. It fails with ErrTransferAborted
// until the session has completed.
func (s *Session) Bytes() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failed != nil {
		return nil, s.failed
	}
	if !s.complete {
		return nil, fmt.Errorf("%w: transfer still in progress", common.ErrTransferAborted)
	}
	return s.result, nil
}
