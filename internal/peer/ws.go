package peer

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/aethershare/aether/internal/beam"
	"github.com/aethershare/aether/internal/logging"
)

// WSChannel is a beam.FrameChannel over a websocket connection to the
// relay. Binary messages carry beam frames; text messages carry relay
// control and WebRTC signaling.
type WSChannel struct {
	conn   *websocket.Conn
	logger logging.Logger

	writeMu sync.Mutex

	frames  chan []byte
	signals chan string
	ready   chan struct{}

	closeOnce sync.Once
	closed    chan struct{}
	readErr   error
}

// DialSession connects to a relay session. The returned channel is usable
// immediately, but frames sent before WaitReady reports the peer may sit
// in the relay's socket buffers.
func DialSession(ctx context.Context, relayURL, sessionID string, l logging.Logger) (*WSChannel, error) {
	u, err := url.Parse(relayURL)
	if err != nil {
		return nil, fmt.Errorf("parsing relay url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = "/session/" + sessionID

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dialing relay: %w", err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	c := &WSChannel{
		conn:    conn,
		logger:  l.With("module", "ws_channel", "session", sessionID),
		frames:  make(chan []byte, 64),
		signals: make(chan string, 16),
		ready:   make(chan struct{}),
		closed:  make(chan struct{}),
	}
	go c.readLoop()

	return c, nil
}

func (c *WSChannel) readLoop() {
	defer c.Close()

	var readyOnce sync.Once

	for {
		mt, data, err := c.conn.ReadMessage()
		if err != nil {
			c.readErr = err
			return
		}

		switch mt {
		case websocket.BinaryMessage:
			select {
			case c.frames <- data:
			case <-c.closed:
				return
			}
		case websocket.TextMessage:
			text := string(data)
			switch {
			case text == readyMessage:
				readyOnce.Do(func() { close(c.ready) })
			case strings.HasPrefix(text, signalPrefix):
				select {
				case c.signals <- strings.TrimPrefix(text, signalPrefix):
				case <-c.closed:
					return
				}
			default:
				c.logger.Warn(context.Background(), "unexpected control message", "text", text)
			}
		}
	}
}

// WaitReady blocks until the relay reports that both peers of the session
// are connected.
func (c *WSChannel) WaitReady(ctx context.Context) error {
	select {
	case <-c.ready:
		return nil
	case <-c.closed:
		return beam.ErrChannelClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Send queues one binary beam frame.
func (c *WSChannel) Send(ctx context.Context, frame []byte) error {
	select {
	case <-c.closed:
		return beam.ErrChannelClosed
	default:
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if deadline, ok := ctx.Deadline(); ok {
		_ = c.conn.SetWriteDeadline(deadline)
	} else {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	}

	if err := c.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	return nil
}

// SendSignal relays a WebRTC signaling payload to the peer.
func (c *WSChannel) SendSignal(ctx context.Context, payload string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := c.conn.WriteMessage(websocket.TextMessage, []byte(signalPrefix+payload)); err != nil {
		return fmt.Errorf("writing signal: %w", err)
	}
	return nil
}

// Receive returns the next binary beam frame.
func (c *WSChannel) Receive(ctx context.Context) ([]byte, error) {
	select {
	case frame := <-c.frames:
		return frame, nil
	default:
	}

	select {
	case frame := <-c.frames:
		return frame, nil
	case <-c.closed:
		// Frames may have raced with the close.
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

// ReceiveSignal returns the next relayed WebRTC signaling payload.
func (c *WSChannel) ReceiveSignal(ctx context.Context) (string, error) {
	select {
	case s := <-c.signals:
		return s, nil
	case <-c.closed:
		return "", beam.ErrChannelClosed
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Drain is a no-op: websocket writes block until handed to the kernel, so
// the channel holds no internal backlog of its own.
func (c *WSChannel) Drain(ctx context.Context) error { return nil }

// Flush is a no-op for the same reason as Drain.
func (c *WSChannel) Flush(ctx context.Context) error { return nil }

// Close tears down the websocket. Safe to call more than once.
func (c *WSChannel) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		c.writeMu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		c.writeMu.Unlock()
		err = c.conn.Close()
	})
	return err
}
