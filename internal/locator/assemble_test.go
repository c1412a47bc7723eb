package locator

import (
	"bytes"
	"context"
	"encoding/base64"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aethershare/aether/internal/common"
	"github.com/aethershare/aether/internal/cryptox"
	"github.com/aethershare/aether/internal/header"
	"github.com/aethershare/aether/internal/logging"
	"github.com/aethershare/aether/internal/vibe"
)

func newTestAssembler() *Assembler {
	return NewAssembler(logging.NewNopLogger(), vibe.NewTable())
}

func TestBuildInline_OpenRoundTrip_Plain(t *testing.T) {
	ctx := context.Background()
	a := newTestAssembler()
	data := bytes.Repeat([]byte("aether payload "), 100)

	s, err := a.BuildInline(ctx, "notes-ремонт.txt", data, "text/plain", BuildOptions{})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(s, "AETHER|"))

	loc, err := Parse(s)
	require.NoError(t, err)

	file, err := a.Open(ctx, loc, OpenOptions{})
	require.NoError(t, err)
	assert.Equal(t, "notes-ремонт.txt", file.Name)
	assert.Equal(t, "text/plain", file.Mime)
	assert.Equal(t, data, file.Data)
}

func TestBuildInline_OpenRoundTrip_Encrypted(t *testing.T) {
	ctx := context.Background()
	a := newTestAssembler()
	data := []byte("for your eyes only")
	password := []byte("hunter2")

	s, err := a.BuildInline(ctx, "secret.txt", data, "", BuildOptions{Password: password})
	require.NoError(t, err)

	loc, err := Parse(s)
	require.NoError(t, err)

	inline, ok := loc.(*Inline)
	require.True(t, ok)
	assert.True(t, inline.Header.Encrypted)

	// Correct password recovers the bytes.
	file, err := a.Open(ctx, loc, OpenOptions{Password: password})
	require.NoError(t, err)
	assert.Equal(t, data, file.Data)

	// Wrong password is an authentication failure, not garbage output.
	_, err = a.Open(ctx, loc, OpenOptions{Password: []byte("wrong")})
	assert.ErrorIs(t, err, common.ErrAuthentication)
}

func TestBuildInline_RejectsUnknownVibe(t *testing.T) {
	a := newTestAssembler()
	_, err := a.BuildInline(context.Background(), "a.txt", []byte("x"), "", BuildOptions{Vibe: "nope"})
	assert.Error(t, err)
}

func TestBuildInline_EmptyName(t *testing.T) {
	a := newTestAssembler()
	_, err := a.BuildInline(context.Background(), "", []byte("x"), "", BuildOptions{})
	assert.ErrorIs(t, err, common.ErrMalformedHeader)
}

func TestOpen_Expired(t *testing.T) {
	ctx := context.Background()
	a := newTestAssembler()

	s, err := a.BuildInline(ctx, "a.txt", []byte("x"), "", BuildOptions{
		Expiry: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli(),
	})
	require.NoError(t, err)

	loc, err := Parse(s)
	require.NoError(t, err)

	a.now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }
	_, err = a.Open(ctx, loc, OpenOptions{})
	assert.ErrorIs(t, err, common.ErrExpired)

	a.now = func() time.Time { return time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC) }
	_, err = a.Open(ctx, loc, OpenOptions{})
	assert.NoError(t, err)
}

func TestOpen_Geofence(t *testing.T) {
	ctx := context.Background()
	a := newTestAssembler()

	// Centered on Riga, 1 km radius.
	s, err := a.BuildInline(ctx, "a.txt", []byte("x"), "", BuildOptions{
		Geo: &header.Geo{Lat: 56.9496, Lng: 24.1052, Radius: 1000},
	})
	require.NoError(t, err)

	loc, err := Parse(s)
	require.NoError(t, err)

	// No position at all: treated as out of range.
	_, err = a.Open(ctx, loc, OpenOptions{})
	assert.ErrorIs(t, err, common.ErrOutOfRange)

	// A few hundred meters away: inside.
	_, err = a.Open(ctx, loc, OpenOptions{Position: &header.Geo{Lat: 56.9510, Lng: 24.1100}})
	assert.NoError(t, err)

	// Another city: outside.
	_, err = a.Open(ctx, loc, OpenOptions{Position: &header.Geo{Lat: 54.6872, Lng: 25.2797}})
	assert.ErrorIs(t, err, common.ErrOutOfRange)
}

func TestOpen_LegacySecure(t *testing.T) {
	ctx := context.Background()
	a := newTestAssembler()
	password := []byte("legacy-pass")
	data := []byte("legacy encrypted payload")

	sealed, err := cryptox.Encrypt(data, password)
	require.NoError(t, err)

	s := strings.Join([]string{
		"SECURE",
		url.QueryEscape("old file.bin"),
		base64.StdEncoding.EncodeToString(sealed.Salt),
		base64.StdEncoding.EncodeToString(sealed.Nonce),
		base64.StdEncoding.EncodeToString(sealed.Ciphertext),
	}, common.Delimiter)

	loc, err := Parse(s)
	require.NoError(t, err)
	require.IsType(t, &LegacySecure{}, loc)

	file, err := a.Open(ctx, loc, OpenOptions{Password: password})
	require.NoError(t, err)
	assert.Equal(t, "old file.bin", file.Name)
	assert.Equal(t, data, file.Data)

	_, err = a.Open(ctx, loc, OpenOptions{Password: []byte("bad")})
	assert.ErrorIs(t, err, common.ErrAuthentication)
}

func TestOpen_LegacyPlain(t *testing.T) {
	ctx := context.Background()
	a := newTestAssembler()
	data := []byte{0x89, 0x50, 0x4e, 0x47}

	s := "photo.png" + common.Delimiter + base64.StdEncoding.EncodeToString(data)

	loc, err := Parse(s)
	require.NoError(t, err)

	file, err := a.Open(ctx, loc, OpenOptions{})
	require.NoError(t, err)
	assert.Equal(t, "photo.png", file.Name)
	assert.Equal(t, data, file.Data)
}

func TestOpen_BeamHasNoPayload(t *testing.T) {
	a := newTestAssembler()
	loc, err := Parse(a.BuildBeam("session-1", "big.iso", 1<<30))
	require.NoError(t, err)

	_, err = a.Open(context.Background(), loc, OpenOptions{})
	assert.ErrorIs(t, err, common.ErrUnsupportedLocator)
}

func TestBuildBeam_RoundTrip(t *testing.T) {
	a := newTestAssembler()

	s := a.BuildBeam("7f9c2ba4", "весёлый файл.mp4", 99)
	loc, err := Parse(s)
	require.NoError(t, err)

	beam, ok := loc.(*Beam)
	require.True(t, ok)
	assert.Equal(t, "7f9c2ba4", beam.PeerAddr)
	assert.Equal(t, "весёлый файл.mp4", beam.Name)
	assert.Equal(t, int64(99), beam.Size)
}

func TestBuildInline_ImageTranscode(t *testing.T) {
	ctx := context.Background()
	a := newTestAssembler()

	// Non-image data must pass through the transcode stage unchanged.
	data := []byte("not an image, just text that should survive")
	s, err := a.BuildInline(ctx, "a.txt", data, "text/plain", BuildOptions{ImageQuality: 0.5})
	require.NoError(t, err)

	loc, err := Parse(s)
	require.NoError(t, err)
	file, err := a.Open(ctx, loc, OpenOptions{})
	require.NoError(t, err)
	assert.Equal(t, data, file.Data)
}

func TestInflateFailure_SurfacesCorruptStream(t *testing.T) {
	ctx := context.Background()
	a := newTestAssembler()

	h := &header.FileHeader{Name: "a.txt"}
	encoded, err := header.Encode(h)
	require.NoError(t, err)

	s := strings.Join([]string{
		common.SchemeInline,
		encoded,
		base64.StdEncoding.EncodeToString([]byte{0xff, 0xfe, 0xfd}),
	}, common.Delimiter)

	loc, err := Parse(s)
	require.NoError(t, err)

	_, err = a.Open(ctx, loc, OpenOptions{})
	assert.ErrorIs(t, err, common.ErrCorruptStream)
}
