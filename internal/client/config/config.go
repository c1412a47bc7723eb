package config

import "time"

// Config holds runtime settings for the Aether CLI.
//
// Fields:
//   - RelayURL: base URL of the relay that pairs beam peers.
//   - OutputDir: directory (relative to cwd) where received files are saved.
//   - HistoryDSN: SQLite DSN for the local transfer history.
//   - ImageQuality: JPEG quality used when shrinking images before inlining.
//   - DirectTimeout: how long to wait for a direct peer link before staying
//     on the relay.
//
// Units: DirectTimeout is a time.Duration (e.g., 5*time.Second).
type Config struct {
	RelayURL      string
	OutputDir     string
	HistoryDSN    string
	ImageQuality  int
	DirectTimeout time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.RelayURL = "http://127.0.0.1:8787"
	c.OutputDir = "received"
	c.HistoryDSN = "aether.db"
	c.ImageQuality = 80
	c.DirectTimeout = 5 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
