// Package models defines the records the Aether client persists locally.
package models

// Transfer directions.
const (
	DirectionSend = "send"
	DirectionRecv = "recv"
)

// Transfer channels.
const (
	ChannelInline = "inline"
	ChannelBeam   = "beam"
	ChannelChirp  = "chirp"
)

// Transfer is one row of the local transfer history.
type Transfer struct {
	Id        string
	Name      string
	Direction string
	Channel   string
	Size      int64
	Encrypted bool
	Vibe      string
	CreatedAt int64 // unix milliseconds
}
