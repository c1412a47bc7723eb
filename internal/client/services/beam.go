package services

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"time"

	"github.com/aethershare/aether/internal/beam"
	"github.com/aethershare/aether/internal/client/models"
	"github.com/aethershare/aether/internal/logging"
	"github.com/aethershare/aether/internal/peer"
)

// BeamService runs chunked peer transfers through a relay session.
type BeamService interface {
	Send(ctx context.Context, sessionID, name string, data []byte, direct bool, onProgress beam.ProgressFunc) error
	Receive(ctx context.Context, sessionID string, direct bool, onProgress beam.ProgressFunc) (*beam.Meta, []byte, error)
}

type beamService struct {
	logger        logging.Logger
	relayURL      string
	directTimeout time.Duration
	history       HistoryService
}

// NewBeamService creates a BeamService. history may be nil, in which case
// completed transfers are not recorded.
func NewBeamService(l logging.Logger, relayURL string, directTimeout time.Duration, history HistoryService) BeamService {
	return &beamService{
		logger:        l.With("module", "beam_service"),
		relayURL:      relayURL,
		directTimeout: directTimeout,
		history:       history,
	}
}

// connect dials the relay session, waits for the peer, and, when direct is
// requested, tries to upgrade to a peer-to-peer link. An upgrade failure is
// not fatal; the transfer stays on the relay.
func (s *beamService) connect(ctx context.Context, sessionID string, initiator, direct bool) (beam.FrameChannel, func(), error) {
	ws, err := peer.DialSession(ctx, s.relayURL, sessionID, s.logger)
	if err != nil {
		return nil, nil, err
	}

	if err := ws.WaitReady(ctx); err != nil {
		ws.Close()
		return nil, nil, fmt.Errorf("waiting for peer: %w", err)
	}

	if !direct {
		return ws, func() { ws.Close() }, nil
	}

	rtcCtx, cancel := context.WithTimeout(ctx, s.directTimeout)
	defer cancel()

	rtc, err := peer.ConnectRTC(rtcCtx, ws, initiator, s.logger)
	if err != nil {
		s.logger.Warn(ctx, "direct link failed, staying on relay", "error", err)
		return ws, func() { ws.Close() }, nil
	}

	s.logger.Info(ctx, "direct link established", "session", sessionID)
	return rtc, func() { rtc.Close(); ws.Close() }, nil
}

func (s *beamService) Send(ctx context.Context, sessionID, name string, data []byte, direct bool, onProgress beam.ProgressFunc) error {
	ch, teardown, err := s.connect(ctx, sessionID, true, direct)
	if err != nil {
		return err
	}
	defer teardown()

	meta := &beam.Meta{
		Name: name,
		Size: int64(len(data)),
		Mime: mime.TypeByExtension(filepath.Ext(name)),
	}

	sender := beam.NewSender(s.logger, 0)
	if err := sender.SendStream(ctx, bytes.NewReader(data), meta, ch, onProgress); err != nil {
		return err
	}

	// Everything queued must reach the wire before teardown closes the
	// channel, or the receiver sees an aborted transfer.
	if err := ch.Flush(ctx); err != nil {
		return err
	}

	return s.record(ctx, name, models.DirectionSend, int64(len(data)))
}

func (s *beamService) Receive(ctx context.Context, sessionID string, direct bool, onProgress beam.ProgressFunc) (*beam.Meta, []byte, error) {
	ch, teardown, err := s.connect(ctx, sessionID, false, direct)
	if err != nil {
		return nil, nil, err
	}
	defer teardown()

	sess := beam.NewSession(s.logger)
	recv := beam.NewReceiver(s.logger)

	if err := recv.Receive(ctx, ch, sess, onProgress); err != nil {
		return nil, nil, err
	}

	data, err := sess.Bytes()
	if err != nil {
		return nil, nil, err
	}
	meta := sess.Meta()

	if err := s.record(ctx, meta.Name, models.DirectionRecv, meta.Size); err != nil {
		return nil, nil, err
	}
	return meta, data, nil
}

func (s *beamService) record(ctx context.Context, name, direction string, size int64) error {
	if s.history == nil {
		return nil
	}
	return s.history.Record(ctx, &models.Transfer{
		Name:      name,
		Direction: direction,
		Channel:   models.ChannelBeam,
		Size:      size,
	})
}
