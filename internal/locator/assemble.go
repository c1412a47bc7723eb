package locator

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aethershare/aether/internal/common"
	"github.com/aethershare/aether/internal/compress"
	"github.com/aethershare/aether/internal/cryptox"
	"github.com/aethershare/aether/internal/header"
	"github.com/aethershare/aether/internal/logging"
	"github.com/aethershare/aether/internal/vibe"
)

// Assembler composes the pipeline stages end to end: it is the only
// component that touches more than one stage at a time.
type Assembler struct {
	logger logging.Logger
	vibes  *vibe.Table

	// now is a test seam for expiry checks.
	now func() time.Time
}

func NewAssembler(l logging.Logger, vibes *vibe.Table) *Assembler {
	return &Assembler{
		logger: l.With("module", "assembler"),
		vibes:  vibes,
		now:    time.Now,
	}
}

// BuildOptions tunes BuildInline. The zero value produces an unencrypted,
// untranscoded locator with no policy fields.
type BuildOptions struct {
	// Password enables the encryption stage when non-empty.
	Password []byte
	// ImageQuality in (0,1] enables lossy image re-encoding before
	// compression. Zero disables it.
	ImageQuality float64
	// Vibe is an opaque theme key; it must exist in the vibe table.
	Vibe string
	// Expiry is a unix-milliseconds deadline, 0 for none.
	Expiry int64
	// Geo limits receivers to a circle, nil for none.
	Geo *header.Geo
}

// File is a reconstructed payload plus the metadata that travelled with it.
type File struct {
	Name string
	Mime string
	Data []byte
}

// BuildInline runs data through the transcode, compression and (optional)
// encryption stages and assembles the current-format inline locator.
func (a *Assembler) BuildInline(ctx context.Context, name string, data []byte, mime string, opts BuildOptions) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty filename", common.ErrMalformedHeader)
	}
	if !a.vibes.Valid(opts.Vibe) {
		return "", fmt.Errorf("unknown vibe %q", opts.Vibe)
	}

	if opts.ImageQuality > 0 {
		before := len(data)
		data = compress.TranscodeImage(data, opts.ImageQuality)
		if len(data) != before {
			a.logger.Debug(ctx, "image transcoded", "before", before, "after", len(data))
		}
	}

	packed, err := compress.Deflate(data)
	if err != nil {
		return "", err
	}

	h := &header.FileHeader{
		Name:   name,
		Mime:   mime,
		Vibe:   opts.Vibe,
		Expiry: opts.Expiry,
		Geo:    opts.Geo,
	}

	payload := packed
	if len(opts.Password) > 0 {
		sealed, err := cryptox.Encrypt(packed, opts.Password)
		if err != nil {
			return "", err
		}
		h.Encrypted = true
		h.Salt = sealed.Salt
		h.IV = sealed.Nonce
		payload = sealed.Ciphertext
	}

	encodedHeader, err := header.Encode(h)
	if err != nil {
		return "", err
	}

	a.logger.Info(ctx, "inline locator built",
		"name", name, "encrypted", h.Encrypted, "payload_bytes", len(payload))

	return strings.Join([]string{
		common.SchemeInline,
		encodedHeader,
		base64.StdEncoding.EncodeToString(payload),
	}, common.Delimiter), nil
}

// BuildBeam formats a beam locator. The file bytes are not touched; they
// travel over the peer channel once the receiver connects.
func (a *Assembler) BuildBeam(peerAddr, name string, size int64) string {
	return strings.Join([]string{
		common.SchemeBeam,
		peerAddr,
		url.QueryEscape(name),
		strconv.FormatInt(size, 10),
	}, common.Delimiter)
}

// OpenOptions carries the receiver-side inputs to Open.
type OpenOptions struct {
	// Password is required when the locator payload is encrypted.
	Password []byte
	// Position is the receiver's location for geofenced locators. A
	// geofenced locator with no position is treated as out of range.
	Position *header.Geo
}

// Open reverses the pipeline for a parsed payload-bearing locator and
// enforces its expiry/geofence policy. Beam locators carry no payload and
// are rejected; the caller drives the peer channel instead.
func (a *Assembler) Open(ctx context.Context, loc Locator, opts OpenOptions) (*File, error) {
	switch v := loc.(type) {
	case *Inline:
		return a.openInline(ctx, v, opts)
	case *LegacySecure:
		plain, err := cryptox.Decrypt(v.Payload, opts.Password, v.Salt, v.IV)
		if err != nil {
			return nil, err
		}
		return &File{Name: v.Name, Data: plain}, nil
	case *LegacyPlain:
		return &File{Name: v.Name, Data: v.Payload}, nil
	case *Beam:
		return nil, fmt.Errorf("%w: beam locator carries no payload", common.ErrUnsupportedLocator)
	default:
		return nil, common.ErrUnsupportedLocator
	}
}

func (a *Assembler) openInline(ctx context.Context, v *Inline, opts OpenOptions) (*File, error) {
	h := v.Header

	if err := a.checkPolicy(h, opts); err != nil {
		return nil, err
	}

	payload := v.Payload
	if h.Encrypted {
		plain, err := cryptox.Decrypt(payload, opts.Password, h.Salt, h.IV)
		if err != nil {
			return nil, err
		}
		payload = plain
	}

	data, err := compress.Inflate(payload)
	if err != nil {
		return nil, err
	}

	a.logger.Info(ctx, "inline locator opened", "name", h.Name, "bytes", len(data))

	return &File{Name: h.Name, Mime: h.Mime, Data: data}, nil
}

func (a *Assembler) checkPolicy(h *header.FileHeader, opts OpenOptions) error {
	if h.Expiry > 0 && a.now().UnixMilli() > h.Expiry {
		return common.ErrExpired
	}

	if h.Geo != nil {
		if opts.Position == nil {
			return common.ErrOutOfRange
		}
		d := haversineMeters(h.Geo.Lat, h.Geo.Lng, opts.Position.Lat, opts.Position.Lng)
		if d > h.Geo.Radius {
			return common.ErrOutOfRange
		}
	}

	return nil
}

func decodeBase64(s string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: bad base64 segment", common.ErrUnsupportedLocator)
	}
	return b, nil
}
