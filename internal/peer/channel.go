// Package peer provides the concrete FrameChannel implementations used by
// the beam path: a websocket channel through the rendezvous relay, and a
// direct WebRTC data channel signaled over the same relay.
package peer

import "time"

const (
	// readyMessage is the relay's text-frame notification that both
	// peers of a session are connected.
	readyMessage = "ready"

	// signalPrefix marks text frames carrying WebRTC signaling payloads
	// relayed between the peers.
	signalPrefix = "signal:"

	writeTimeout = 10 * time.Second
)
