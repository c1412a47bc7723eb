package cli

import (
	"bufio"
	"context"
	"os"

	"github.com/aethershare/aether/internal/client/client"
	"github.com/aethershare/aether/internal/client/config"
	"github.com/aethershare/aether/internal/client/services"
	"github.com/aethershare/aether/internal/locator"
	"github.com/aethershare/aether/internal/logging"
	"github.com/aethershare/aether/internal/vibe"

	_ "modernc.org/sqlite"
)

// App is the interactive Aether client. It owns the pipeline assembler,
// the beam service and the local history database.
type App struct {
	config    *config.Config
	logger    logging.Logger
	repos     *client.Repositories
	assembler *locator.Assembler
	vibes     *vibe.Table
	beams     services.BeamService
	history   services.HistoryService
	reader    *bufio.Reader
}

func NewApp(c *config.Config, l logging.Logger) (*App, error) {

	ctx := context.Background()

	repos, err := client.InitDatabase(ctx, c.HistoryDSN)
	if err != nil {
		l.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	vibes := vibe.NewTable()
	history := services.NewHistoryService(repos)
	beams := services.NewBeamService(l, c.RelayURL, c.DirectTimeout, history)

	return &App{
		config:    c,
		logger:    l,
		repos:     repos,
		assembler: locator.NewAssembler(l, vibes),
		vibes:     vibes,
		beams:     beams,
		history:   history,
		reader:    bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.Close()
	a.Root(ctx)
}

func (a *App) Close() {
	if a.repos != nil && a.repos.DB != nil {
		_ = a.repos.DB.Close()
	}
}
