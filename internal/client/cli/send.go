package cli

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/aethershare/aether/internal/client/models"
	"github.com/aethershare/aether/internal/common"
	"github.com/aethershare/aether/internal/header"
	"github.com/aethershare/aether/internal/locator"
)

// Send packs a local file into an inline locator and prints it.
func (a *App) Send(ctx context.Context) error {

	path, err := GetSimpleText(a.reader, "File to send", os.Stdout)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	name := filepath.Base(path)

	password, err := GetOptionalPassword(a.reader, os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	vibeKey, err := GetSimpleText(a.reader, "Vibe (empty for none, 'vibes' lists them)", os.Stdout)
	if err != nil {
		return err
	}

	expiry, err := a.askExpiry()
	if err != nil {
		return err
	}

	geo, err := a.askGeofence()
	if err != nil {
		return err
	}

	opts := locator.BuildOptions{
		Password:     password,
		ImageQuality: float64(a.config.ImageQuality) / 100,
		Vibe:         vibeKey,
		Expiry:       expiry,
		Geo:          geo,
	}

	loc, err := a.assembler.BuildInline(ctx, name, data, mime.TypeByExtension(filepath.Ext(name)), opts)
	if err != nil {
		return err
	}

	printlnFn("Locator:")
	printlnFn(loc)

	return a.history.Record(ctx, &models.Transfer{
		Name:      name,
		Direction: models.DirectionSend,
		Channel:   models.ChannelInline,
		Size:      int64(len(data)),
		Encrypted: len(password) > 0,
		Vibe:      vibeKey,
	})
}

// askExpiry reads an optional lifetime in hours and converts it to a
// unix-milliseconds deadline. Empty input means no expiry.
func (a *App) askExpiry() (int64, error) {
	text, err := GetSimpleText(a.reader, "Expires in hours (empty for never)", os.Stdout)
	if err != nil {
		return 0, err
	}
	if text == "" {
		return 0, nil
	}

	hours, err := strconv.ParseFloat(text, 64)
	if err != nil || hours <= 0 {
		return 0, fmt.Errorf("invalid expiry %q", text)
	}
	return time.Now().Add(time.Duration(hours * float64(time.Hour))).UnixMilli(), nil
}

// askGeofence reads an optional "lat,lng,radius_m" circle limiting where
// the locator may be opened. Empty input means no geofence.
func (a *App) askGeofence() (*header.Geo, error) {
	text, err := GetSimpleText(a.reader, "Geofence lat,lng,radius_m (empty for none)", os.Stdout)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, nil
	}

	parts := strings.Split(text, ",")
	if len(parts) != 3 {
		return nil, fmt.Errorf("invalid geofence %q", text)
	}

	vals := make([]float64, 3)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid geofence %q", text)
		}
		vals[i] = v
	}
	if vals[2] <= 0 {
		return nil, fmt.Errorf("geofence radius must be positive")
	}

	return &header.Geo{Lat: vals[0], Lng: vals[1], Radius: vals[2]}, nil
}
