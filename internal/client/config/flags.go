package config

import (
	"flag"
	"os"
	"time"

	"github.com/aethershare/aether/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-r string   base URL of the beam relay (default from Config)
//	-o string   output directory for received files (default from Config)
//	-d string   SQLite DSN for the transfer history (default from Config)
//	-q int      JPEG quality for inlined images, 1-100 (default from Config)
//	-t int      direct link timeout in seconds (default from Config)
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	// Filter args to include only those handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-r", "-o", "-d", "-q", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.RelayURL, "r", cfg.RelayURL, "base URL of the beam relay")
	fs.StringVar(&cfg.OutputDir, "o", cfg.OutputDir, "output directory for received files")
	fs.StringVar(&cfg.HistoryDSN, "d", cfg.HistoryDSN, "SQLite DSN for the transfer history")
	fs.IntVar(&cfg.ImageQuality, "q", cfg.ImageQuality, "JPEG quality for inlined images (1-100)")
	directTimeout := fs.Int("t", int(cfg.DirectTimeout.Seconds()), "direct link timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.DirectTimeout = time.Duration(*directTimeout) * time.Second
}
