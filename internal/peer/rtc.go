package peer

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/pion/webrtc/v4"

	"github.com/aethershare/aether/internal/beam"
	"github.com/aethershare/aether/internal/logging"
)

// bufferedAmountLowThreshold is the data-channel backlog level below which
// Drain unblocks. One drain interval of full chunks fits comfortably above
// it, so the sender stalls only when the channel is genuinely behind.
const bufferedAmountLowThreshold = 256 * 1024

// RTCChannel is a beam.FrameChannel over a WebRTC data channel. Data
// channels are ordered and reliable by default, matching the beam
// transport's assumptions, and expose the buffered-amount signal the
// sender's drain point needs.
type RTCChannel struct {
	pc     *webrtc.PeerConnection
	dc     *webrtc.DataChannel
	logger logging.Logger

	frames chan []byte
	bufLow chan struct{}

	closeOnce sync.Once
	closed    chan struct{}
}

type signalEnvelope struct {
	Type string `json:"type"`
	SDP  string `json:"sdp"`
}

// signaler is the subset of WSChannel used to exchange session
// descriptions. Tests substitute an in-memory implementation.
type signaler interface {
	SendSignal(ctx context.Context, payload string) error
	ReceiveSignal(ctx context.Context) (string, error)
}

// ConnectRTC upgrades a relay session to a direct peer connection. The
// initiator (the sending side) creates the data channel and the offer;
// the responder answers. Signaling travels over the relay; once the data
// channel opens, payload bytes flow peer to peer.
func ConnectRTC(ctx context.Context, sig signaler, initiator bool, l logging.Logger) (*RTCChannel, error) {
	pc, err := webrtc.NewPeerConnection(webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{{URLs: []string{"stun:stun.l.google.com:19302"}}},
	})
	if err != nil {
		return nil, fmt.Errorf("creating peer connection: %w", err)
	}

	c := &RTCChannel{
		pc:     pc,
		logger: l.With("module", "rtc_channel"),
		frames: make(chan []byte, 64),
		bufLow: make(chan struct{}, 1),
		closed: make(chan struct{}),
	}

	opened := make(chan struct{})

	if initiator {
		dc, err := pc.CreateDataChannel("beam", nil)
		if err != nil {
			pc.Close()
			return nil, fmt.Errorf("creating data channel: %w", err)
		}
		c.bindDataChannel(dc, opened)

		if err := c.exchangeOffer(ctx, sig); err != nil {
			pc.Close()
			return nil, err
		}
	} else {
		pc.OnDataChannel(func(dc *webrtc.DataChannel) {
			c.bindDataChannel(dc, opened)
		})

		if err := c.exchangeAnswer(ctx, sig); err != nil {
			pc.Close()
			return nil, err
		}
	}

	select {
	case <-opened:
		return c, nil
	case <-ctx.Done():
		pc.Close()
		return nil, ctx.Err()
	}
}

func (c *RTCChannel) bindDataChannel(dc *webrtc.DataChannel, opened chan struct{}) {
	c.dc = dc
	dc.SetBufferedAmountLowThreshold(bufferedAmountLowThreshold)

	dc.OnOpen(func() {
		close(opened)
	})
	dc.OnMessage(func(msg webrtc.DataChannelMessage) {
		select {
		case c.frames <- msg.Data:
		case <-c.closed:
		}
	})
	dc.OnBufferedAmountLow(func() {
		select {
		case c.bufLow <- struct{}{}:
		default:
		}
	})
	dc.OnClose(func() {
		c.Close()
	})
}

func (c *RTCChannel) exchangeOffer(ctx context.Context, sig signaler) error {
	offer, err := c.pc.CreateOffer(nil)
	if err != nil {
		return fmt.Errorf("creating offer: %w", err)
	}

	gathered := webrtc.GatheringCompletePromise(c.pc)
	if err := c.pc.SetLocalDescription(offer); err != nil {
		return fmt.Errorf("setting local description: %w", err)
	}

	// Non-trickle: wait for all candidates so one message carries the
	// complete description.
	select {
	case <-gathered:
	case <-ctx.Done():
		return ctx.Err()
	}

	if err := c.sendDescription(ctx, sig, c.pc.LocalDescription()); err != nil {
		return err
	}

	answer, err := c.receiveDescription(ctx, sig)
	if err != nil {
		return err
	}
	if err := c.pc.SetRemoteDescription(*answer); err != nil {
		return fmt.Errorf("setting remote description: %w", err)
	}

	return nil
}

func (c *RTCChannel) exchangeAnswer(ctx context.Context, sig signaler) error {
	offer, err := c.receiveDescription(ctx, sig)
	if err != nil {
		return err
	}
	if err := c.pc.SetRemoteDescription(*offer); err != nil {
		return fmt.Errorf("setting remote description: %w", err)
	}

	answer, err := c.pc.CreateAnswer(nil)
	if err != nil {
		return fmt.Errorf("creating answer: %w", err)
	}

	gathered := webrtc.GatheringCompletePromise(c.pc)
	if err := c.pc.SetLocalDescription(answer); err != nil {
		return fmt.Errorf("setting local description: %w", err)
	}
	select {
	case <-gathered:
	case <-ctx.Done():
		return ctx.Err()
	}

	return c.sendDescription(ctx, sig, c.pc.LocalDescription())
}

func (c *RTCChannel) sendDescription(ctx context.Context, sig signaler, desc *webrtc.SessionDescription) error {
	payload, err := json.Marshal(&signalEnvelope{Type: desc.Type.String(), SDP: desc.SDP})
	if err != nil {
		return err
	}
	return sig.SendSignal(ctx, string(payload))
}

func (c *RTCChannel) receiveDescription(ctx context.Context, sig signaler) (*webrtc.SessionDescription, error) {
	payload, err := sig.ReceiveSignal(ctx)
	if err != nil {
		return nil, err
	}

	var env signalEnvelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		return nil, fmt.Errorf("decoding signal: %w", err)
	}

	desc := &webrtc.SessionDescription{SDP: env.SDP}
	switch env.Type {
	case "offer":
		desc.Type = webrtc.SDPTypeOffer
	case "answer":
		desc.Type = webrtc.SDPTypeAnswer
	default:
		return nil, fmt.Errorf("unexpected signal type %q", env.Type)
	}
	return desc, nil
}

// Send queues one frame on the data channel.
func (c *RTCChannel) Send(ctx context.Context, frame []byte) error {
	select {
	case <-c.closed:
		return beam.ErrChannelClosed
	default:
	}
	if err := c.dc.Send(frame); err != nil {
		return fmt.Errorf("sending on data channel: %w", err)
	}
	return nil
}

// Receive returns the next frame from the data channel.
func (c *RTCChannel) Receive(ctx context.Context) ([]byte, error) {
	select {
	case frame := <-c.frames:
		return frame, nil
	default:
	}

	select {
	case frame := <-c.frames:
		return frame, nil
	case <-c.closed:
		select {
		case frame := <-c.frames:
			return frame, nil
		default:
			return nil, beam.ErrChannelClosed
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Drain blocks until the data channel's send backlog falls below the
// buffered-amount-low threshold. This is the real backpressure signal the
// sender's cooperative yield point relies on.
func (c *RTCChannel) Drain(ctx context.Context) error {
	for c.dc.BufferedAmount() > bufferedAmountLowThreshold {
		select {
		case <-c.bufLow:
		case <-c.closed:
			return beam.ErrChannelClosed
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Flush blocks until the data channel's send queue is empty. Close tears
// the SCTP association down without waiting for queued data, so a finished
// send must flush to zero first, not merely below the drain threshold.
func (c *RTCChannel) Flush(ctx context.Context) error {
	c.dc.SetBufferedAmountLowThreshold(0)

	// The ticker covers a buffered-amount-low signal racing the threshold
	// change; the loop condition stays authoritative.
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()

	for c.dc.BufferedAmount() > 0 {
		select {
		case <-c.bufLow:
		case <-ticker.C:
		case <-c.closed:
			return beam.ErrChannelClosed
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Close shuts the data channel and the peer connection down.
func (c *RTCChannel) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		if c.dc != nil {
			_ = c.dc.Close()
		}
		err = c.pc.Close()
	})
	return err
}
