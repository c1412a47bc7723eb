package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/aethershare/aether/internal/client/models"
	"github.com/aethershare/aether/internal/common"
	"github.com/aethershare/aether/internal/filex"
	"github.com/aethershare/aether/internal/header"
	"github.com/aethershare/aether/internal/locator"
)

// Recv opens a locator pasted by the user and saves the payload to the
// output directory. Beam locators have no inline payload; they hand off
// to the beam receive path.
func (a *App) Recv(ctx context.Context) error {

	text, err := GetSimpleText(a.reader, "Paste locator", os.Stdout)
	if err != nil {
		return err
	}

	loc, err := locator.Parse(text)
	if err != nil {
		return err
	}

	if b, ok := loc.(*locator.Beam); ok {
		printlnFn(fmt.Sprintf("Beam locator for %q (%d bytes), connecting...", b.Name, b.Size))
		return a.beamRecv(ctx, b)
	}

	opts := locator.OpenOptions{}
	if needsPassword(loc) {
		pw, err := GetPassword(os.Stdout)
		if err != nil {
			return err
		}
		defer common.WipeByteArray(pw)
		opts.Password = pw
	}
	if needsPosition(loc) {
		pos, err := a.askPosition()
		if err != nil {
			return err
		}
		opts.Position = pos
	}

	file, err := a.assembler.Open(ctx, loc, opts)
	if err != nil {
		if errors.Is(err, common.ErrAuthentication) {
			printlnFn("Wrong password or corrupted payload.")
		}
		return err
	}

	if err := a.saveFile(file.Name, file.Data); err != nil {
		return err
	}

	return a.history.Record(ctx, &models.Transfer{
		Name:      file.Name,
		Direction: models.DirectionRecv,
		Channel:   models.ChannelInline,
		Size:      int64(len(file.Data)),
		Encrypted: needsPassword(loc),
	})
}

// needsPassword reports whether the locator's payload is encrypted.
func needsPassword(loc locator.Locator) bool {
	switch v := loc.(type) {
	case *locator.Inline:
		return v.Header.Encrypted
	case *locator.LegacySecure:
		return true
	default:
		return false
	}
}

// needsPosition reports whether the locator carries a geofence.
func needsPosition(loc locator.Locator) bool {
	v, ok := loc.(*locator.Inline)
	return ok && v.Header.Geo != nil
}

// askPosition reads the receiver's "lat,lng" for geofenced locators.
func (a *App) askPosition() (*header.Geo, error) {
	text, err := GetSimpleText(a.reader, "This locator is geofenced. Your position lat,lng", os.Stdout)
	if err != nil {
		return nil, err
	}

	parts := strings.Split(text, ",")
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid position %q", text)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid position %q", text)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid position %q", text)
	}

	return &header.Geo{Lat: lat, Lng: lng}, nil
}

// saveFile writes a received payload to the output directory.
func (a *App) saveFile(name string, data []byte) error {
	dir, err := filex.EnsureSubDir(a.config.OutputDir)
	if err != nil {
		return err
	}

	path, err := filex.SaveReceived(dir, name, data)
	if err != nil {
		return err
	}
	printlnFn("Saved to", path)
	return nil
}
