package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/aethershare/aether/internal/acoustic"
	"github.com/aethershare/aether/internal/client/models"
	"github.com/aethershare/aether/internal/filex"
)

// Chirp announces a file name over the audible channel: the name is
// FSK-modulated and written out as a WAV file ready to be played.
func (a *App) Chirp(ctx context.Context) error {

	name, err := GetSimpleText(a.reader, "File name to announce", os.Stdout)
	if err != nil {
		return err
	}
	if name == "" {
		return fmt.Errorf("nothing to announce")
	}

	m := acoustic.Modulate(name)
	wav := acoustic.EncodeWAV(m.Samples(), acoustic.SampleRate)

	dir, err := filex.EnsureSubDir(a.config.OutputDir)
	if err != nil {
		return err
	}
	path, err := filex.SaveReceived(dir, "chirp.wav", wav)
	if err != nil {
		return err
	}

	printlnFn(fmt.Sprintf("Chirp written to %s (%.1fs of audio)", path, m.Duration.Seconds()))

	return a.history.Record(ctx, &models.Transfer{
		Name:      name,
		Direction: models.DirectionSend,
		Channel:   models.ChannelChirp,
		Size:      int64(len(wav)),
	})
}

// Listen decodes a chirp announcement from a WAV recording and prints the
// announced file name.
func (a *App) Listen(ctx context.Context) error {

	path, err := GetSimpleText(a.reader, "WAV file to decode", os.Stdout)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	samples, rate, err := acoustic.DecodeWAV(data)
	if err != nil {
		return err
	}
	if rate != acoustic.SampleRate {
		return fmt.Errorf("unsupported sample rate %d, want %d", rate, acoustic.SampleRate)
	}

	bits := acoustic.DemodulatePCM(samples)
	name, ok := acoustic.DecodeBits(bits)
	if !ok {
		return fmt.Errorf("no announcement found in %s", path)
	}

	printlnFn("Announced file:", name)

	return a.history.Record(ctx, &models.Transfer{
		Name:      name,
		Direction: models.DirectionRecv,
		Channel:   models.ChannelChirp,
	})
}
