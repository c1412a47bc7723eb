package beam

import (
	"context"
	"errors"
	"sync"
)

// ErrChannelClosed is returned by channel operations after Close.
var ErrChannelClosed = errors.New("channel closed")

// FrameChannel is an ordered, reliable, message-framed duplex channel
// between two peers. Implementations exist for websocket relays and
// WebRTC data channels; tests use the in-memory pipe below.
type FrameChannel interface {
	// Send queues one frame for delivery.
	Send(ctx context.Context, frame []byte) error

	// Receive blocks until the next frame arrives, the peer closes the
	// channel (ErrChannelClosed), or ctx is done.
	Receive(ctx context.Context) ([]byte, error)

	// Drain blocks until the channel's internal send buffer has room
	// again. The sender calls it periodically as a cooperative yield so
	// buffered-but-unsent data can flush before more is queued.
	Drain(ctx context.Context) error

	// Flush blocks until every queued frame has left the channel. It is
	// called once after the final chunk; Close may discard anything still
	// queued, so a completed send must flush first.
	Flush(ctx context.Context) error

	// Close tears the channel down. Pending Receives unblock with
	// ErrChannelClosed.
	Close() error
}

// Pipe returns two connected in-memory FrameChannel halves. Frames sent
// on one half arrive on the other in order. Used by tests and local
// loopback transfers.
func Pipe() (FrameChannel, FrameChannel) {
	a2b := make(chan []byte, 64)
	b2a := make(chan []byte, 64)
	shared := &pipeState{}
	return &pipeHalf{in: b2a, out: a2b, state: shared},
		&pipeHalf{in: a2b, out: b2a, state: shared}
}

type pipeState struct {
	mu      sync.Mutex
	closed  bool
	closeCh chan struct{}
}

type pipeHalf struct {
	in    <-chan []byte
	out   chan<- []byte
	state *pipeState
}

func (p *pipeHalf) Send(ctx context.Context, frame []byte) error {
	p.state.mu.Lock()
	closed := p.state.closed
	p.state.mu.Unlock()
	if closed {
		return ErrChannelClosed
	}

	buf := make([]byte, len(frame))
	copy(buf, frame)

	select {
	case p.out <- buf:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *pipeHalf) Receive(ctx context.Context) ([]byte, error) {
	select {
	case frame := <-p.in:
		return frame, nil
	default:
	}

	// Nothing buffered: block on arrival, close, or cancellation. A
	// closed pipe may still hold buffered frames, drained above first.
	p.state.mu.Lock()
	closed := p.state.closed
	p.state.mu.Unlock()
	if closed {
		return nil, ErrChannelClosed
	}

	select {
	case frame := <-p.in:
		return frame, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-p.closedCh():
		// Drain any frame that raced with the close.
		select {
		case frame := <-p.in:
			return frame, nil
		default:
			return nil, ErrChannelClosed
		}
	}
}

func (p *pipeHalf) Drain(ctx context.Context) error {
	// The in-memory pipe delivers synchronously; nothing to flush.
	return nil
}

func (p *pipeHalf) Flush(ctx context.Context) error {
	// Buffered frames survive Close (Receive drains them first), so the
	// pipe has nothing extra to wait for.
	return nil
}

func (p *pipeHalf) Close() error {
	p.state.mu.Lock()
	defer p.state.mu.Unlock()
	if !p.state.closed {
		p.state.closed = true
		if p.state.closeCh != nil {
			close(p.state.closeCh)
		}
	}
	return nil
}

func (p *pipeHalf) closedCh() <-chan struct{} {
	p.state.mu.Lock()
	defer p.state.mu.Unlock()
	if p.state.closeCh == nil {
		p.state.closeCh = make(chan struct{})
		if p.state.closed {
			close(p.state.closeCh)
		}
	}
	return p.state.closeCh
}
