package acoustic

import (
	"context"
	"math"
	"sync"

	"github.com/aethershare/aether/internal/logging"
)

// SpectrumFrame is one snapshot of the input's magnitude spectrum.
// Bins[i] covers frequencies around i*BinHz.
type SpectrumFrame struct {
	Bins  []float64
	BinHz float64
}

// SpectrumSource produces spectrum frames from an audio input. Close
// must release the underlying input synchronously; a closed source makes
// Next return an error.
type SpectrumSource interface {
	Next(ctx context.Context) (*SpectrumFrame, error)
	Close() error
}

// BitFunc receives each decided bit and the winning band's energy.
type BitFunc func(bit int, energy float64)

// SpectrumFunc receives every raw frame, decided or not, for
// visualization.
type SpectrumFunc func(frame *SpectrumFrame)

// Demodulator turns a stream of spectrum frames into a stream of decided
// bits: per frame, the energy in narrow bands around the mark and space
// carriers is compared, and if either clears the noise floor the louder
// band wins. One decision per frame; no bit-boundary synchronization.
type Demodulator struct {
	logger     logging.Logger
	onBit      BitFunc
	onSpectrum SpectrumFunc

	mu      sync.Mutex
	src     SpectrumSource
	running bool
	stopped chan struct{}
}

func NewDemodulator(l logging.Logger, onSpectrum SpectrumFunc, onBit BitFunc) *Demodulator {
	return &Demodulator{
		logger:     l.With("module", "demodulator"),
		onBit:      onBit,
		onSpectrum: onSpectrum,
	}
}

// ProcessFrame runs the decision logic for one frame.
func (d *Demodulator) ProcessFrame(frame *SpectrumFrame) {
	if d.onSpectrum != nil {
		d.onSpectrum(frame)
	}

	mark := bandEnergy(frame, MarkFreq)
	space := bandEnergy(frame, SpaceFreq)

	if mark < NoiseFloor && space < NoiseFloor {
		return
	}

	if d.onBit == nil {
		return
	}
	if mark > space {
		d.onBit(1, mark)
	} else {
		d.onBit(0, space)
	}
}

// Listen pulls frames from src until the context ends, the source fails,
// or Stop is called. It owns src and closes it on exit.
func (d *Demodulator) Listen(ctx context.Context, src SpectrumSource) error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		src.Close()
		return nil
	}
	d.src = src
	d.running = true
	d.stopped = make(chan struct{})
	stopped := d.stopped
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.running = false
		d.src = nil
		d.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			src.Close()
			return ctx.Err()
		case <-stopped:
			return nil
		default:
		}

		frame, err := src.Next(ctx)
		if err != nil {
			select {
			case <-stopped:
				// Stop closed the source under us; a clean shutdown.
				return nil
			default:
			}
			return err
		}
		d.ProcessFrame(frame)
	}
}

// Stop releases the audio input synchronously. The Listen loop exits on
// its next iteration.
func (d *Demodulator) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running {
		return
	}
	close(d.stopped)
	if d.src != nil {
		_ = d.src.Close()
	}
}

// bandEnergy is the maximum magnitude within BinSpread bins of the
// carrier, tolerating small frequency drift.
func bandEnergy(frame *SpectrumFrame, freq float64) float64 {
	if frame.BinHz <= 0 || len(frame.Bins) == 0 {
		return 0
	}

	center := int(math.Round(freq / frame.BinHz))
	best := 0.0
	for i := center - BinSpread; i <= center+BinSpread; i++ {
		if i < 0 || i >= len(frame.Bins) {
			continue
		}
		if frame.Bins[i] > best {
			best = frame.Bins[i]
		}
	}
	return best
}
