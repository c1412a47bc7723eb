// Package locator implements the shareable locator text format and the
// top-level pipeline that assembles and opens it.
//
// Four wire variants exist, selected purely syntactically:
//
//	AETHER|<base64 JSON header>|<base64 payload>      current inline format
//	SECURE|<name>|<salt>|<iv>|<payload>               legacy encrypted
//	<name>|<payload>                                  legacy plaintext
//	BEAM|<peer address>|<name>|<size>                 peer-channel descriptor
//
// Names in the legacy and beam variants are URL-escaped; salts, IVs and
// payloads are standard base64.
package locator

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/aethershare/aether/internal/common"
	"github.com/aethershare/aether/internal/header"
)

// Locator is the tagged union of the wire variants. Exactly one concrete
// type is produced per locator string.
type Locator interface {
	locator()
}

// Inline carries the whole payload inside the locator. Payload is the raw
// pipeline output (compressed, possibly encrypted); Open reverses it.
type Inline struct {
	Header  *header.FileHeader
	Payload []byte
}

// LegacySecure is the pre-JSON-header encrypted format with positional
// fields.
type LegacySecure struct {
	Name    string
	Salt    []byte
	IV      []byte
	Payload []byte
}

// LegacyPlain is the oldest format: URL-escaped name plus base64 payload,
// no compression, no encryption.
type LegacyPlain struct {
	Name    string
	Payload []byte
}

// Beam points at a live peer session; the payload travels separately over
// the peer channel.
type Beam struct {
	PeerAddr string
	Name     string
	Size     int64
}

func (*Inline) locator()       {}
func (*LegacySecure) locator() {}
func (*LegacyPlain) locator()  {}
func (*Beam) locator()         {}

// Parse inspects the scheme prefix and segment count and constructs the
// matching typed variant. It is purely syntactic: payloads are decoded
// from base64 but not decrypted or inflated. Text with no delimiter at all
// is not a locator and yields common.ErrUnsupportedLocator.
func Parse(s string) (Locator, error) {
	if !strings.Contains(s, common.Delimiter) {
		return nil, common.ErrUnsupportedLocator
	}

	fields := strings.Split(s, common.Delimiter)

	switch {
	case fields[0] == common.SchemeBeam:
		return parseBeam(fields)
	case fields[0] == common.SchemeInline:
		return parseInline(fields)
	case fields[0] == common.SchemeSecure:
		return parseLegacySecure(fields)
	default:
		return parseLegacyPlain(fields)
	}
}

func parseInline(fields []string) (*Inline, error) {
	if len(fields) != 3 {
		return nil, fmt.Errorf("%w: inline locator needs 3 segments, got %d", common.ErrUnsupportedLocator, len(fields))
	}

	h, err := header.Decode(fields[1])
	if err != nil {
		return nil, err
	}

	payload, err := decodeBase64(fields[2])
	if err != nil {
		return nil, err
	}

	return &Inline{Header: h, Payload: payload}, nil
}

func parseLegacySecure(fields []string) (*LegacySecure, error) {
	if len(fields) != 5 {
		return nil, fmt.Errorf("%w: secure locator needs 5 segments, got %d", common.ErrUnsupportedLocator, len(fields))
	}

	name, err := url.QueryUnescape(fields[1])
	if err != nil || name == "" {
		return nil, fmt.Errorf("%w: bad filename segment", common.ErrUnsupportedLocator)
	}

	salt, err := decodeBase64(fields[2])
	if err != nil {
		return nil, err
	}
	iv, err := decodeBase64(fields[3])
	if err != nil {
		return nil, err
	}
	payload, err := decodeBase64(fields[4])
	if err != nil {
		return nil, err
	}

	if len(salt) != common.SaltSize || len(iv) != common.NonceSize {
		return nil, fmt.Errorf("%w: bad crypto segment sizes", common.ErrUnsupportedLocator)
	}

	return &LegacySecure{Name: name, Salt: salt, IV: iv, Payload: payload}, nil
}

func parseLegacyPlain(fields []string) (*LegacyPlain, error) {
	if len(fields) != 2 {
		return nil, fmt.Errorf("%w: plain locator needs 2 segments, got %d", common.ErrUnsupportedLocator, len(fields))
	}

	name, err := url.QueryUnescape(fields[0])
	if err != nil || name == "" {
		return nil, fmt.Errorf("%w: bad filename segment", common.ErrUnsupportedLocator)
	}

	payload, err := decodeBase64(fields[1])
	if err != nil {
		return nil, err
	}

	return &LegacyPlain{Name: name, Payload: payload}, nil
}

func parseBeam(fields []string) (*Beam, error) {
	if len(fields) != 4 {
		return nil, fmt.Errorf("%w: beam locator needs 4 segments, got %d", common.ErrUnsupportedLocator, len(fields))
	}

	if fields[1] == "" {
		return nil, fmt.Errorf("%w: empty peer address", common.ErrUnsupportedLocator)
	}

	name, err := url.QueryUnescape(fields[2])
	if err != nil || name == "" {
		return nil, fmt.Errorf("%w: bad filename segment", common.ErrUnsupportedLocator)
	}

	size, err := strconv.ParseInt(fields[3], 10, 64)
	if err != nil || size < 0 {
		return nil, fmt.Errorf("%w: bad size segment", common.ErrUnsupportedLocator)
	}

	return &Beam{PeerAddr: fields[1], Name: name, Size: size}, nil
}
