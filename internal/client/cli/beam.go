package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/aethershare/aether/internal/beam"
	"github.com/aethershare/aether/internal/locator"
)

// BeamSend streams a local file to a peer through the relay. It prints a
// beam locator carrying the session id, then blocks until the peer
// connects and the transfer finishes.
func (a *App) BeamSend(ctx context.Context) error {

	path, err := GetSimpleText(a.reader, "File to beam", os.Stdout)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	name := filepath.Base(path)

	direct, err := a.askDirect()
	if err != nil {
		return err
	}

	session := uuid.NewString()
	printlnFn("Locator (give this to the receiver):")
	printlnFn(a.assembler.BuildBeam(session, name, int64(len(data))))
	printlnFn("Waiting for peer...")

	return a.beams.Send(ctx, session, name, data, direct, progressPrinter())
}

// BeamRecv receives a beam transfer for a pasted beam locator.
func (a *App) BeamRecv(ctx context.Context) error {

	text, err := GetSimpleText(a.reader, "Paste beam locator", os.Stdout)
	if err != nil {
		return err
	}

	loc, err := locator.Parse(text)
	if err != nil {
		return err
	}
	b, ok := loc.(*locator.Beam)
	if !ok {
		return fmt.Errorf("not a beam locator")
	}

	return a.beamRecv(ctx, b)
}

func (a *App) beamRecv(ctx context.Context, b *locator.Beam) error {
	direct, err := a.askDirect()
	if err != nil {
		return err
	}

	meta, data, err := a.beams.Receive(ctx, b.PeerAddr, direct, progressPrinter())
	if err != nil {
		return err
	}

	// History is recorded by the beam service; only persist the bytes here.
	return a.saveFile(meta.Name, data)
}

func (a *App) askDirect() (bool, error) {
	answer, err := GetSimpleText(a.reader, "Try a direct peer link? (y/N)", os.Stdout)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(answer, "y"), nil
}

// progressPrinter returns a callback that renders one progress line per
// started decile, tracking the last printed one across calls so chunk
// boundaries falling inside a decile do not suppress it.
func progressPrinter() beam.ProgressFunc {
	last := -1
	return func(percent float64, done, total int64) {
		step := int(percent) / 10
		if done == total {
			step = 10
		}
		if step > last {
			last = step
			printlnFn(fmt.Sprintf("  %3.0f%% (%d/%d bytes)", percent, done, total))
		}
	}
}
