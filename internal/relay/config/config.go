// Package config handles configuration for the relay component, including
// defaults, JSON overlay, and command-line flags.
package config

// Config holds runtime settings for the Aether relay.
//
// Fields:
//   - EndpointAddr: bind address for the public websocket endpoint.
type Config struct {
	EndpointAddr string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.EndpointAddr = ":8787"
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present). Later
// sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
