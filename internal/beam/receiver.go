package beam

import (
	"context"

	"github.com/aethershare/aether/internal/logging"
)

// Receiver drives a Session from a FrameChannel until the transfer
// reaches a terminal state.
type Receiver struct {
	logger logging.Logger
}

func NewReceiver(l logging.Logger) *Receiver {
	return &Receiver{logger: l.With("module", "beam_receiver")}
}

// Receive reads frames from ch and feeds them into sess until the
// declared payload size has accumulated. If the channel closes or ctx is
// cancelled before that, the session is aborted and the transfer error is
// returned; a truncated payload is never reported as success. Malformed
// frames are logged and skipped. onProgress may be nil.
func (r *Receiver) Receive(ctx context.Context, ch FrameChannel, sess *Session, onProgress ProgressFunc) error {
	for !sess.Completed() {
		frame, err := ch.Receive(ctx)
		if err != nil {
			sess.Abort(ctx, err)
			_, terminalErr := sess.Bytes()
			return terminalErr
		}

		v, err := DecodeFrame(frame)
		if err != nil {
			r.logger.Warn(ctx, "skipping malformed frame", "error", err)
			continue
		}

		switch f := v.(type) {
		case *Meta:
			if err := sess.OnMeta(ctx, f); err != nil {
				r.logger.Warn(ctx, "rejected meta frame", "error", err)
			}
		case *Chunk:
			sess.OnChunk(ctx, f)
			if onProgress != nil {
				received, expected := sess.Progress()
				if expected > 0 {
					onProgress(float64(received)/float64(expected)*100, received, expected)
				}
			}
		}
	}

	return nil
}
