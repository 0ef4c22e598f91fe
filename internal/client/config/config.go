package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds runtime settings for the diary client.
//
// Units: all intervals and timeouts are time.Duration values.
type Config struct {
	// ServerEndpointAddr is host:port of the remote diary service.
	ServerEndpointAddr string
	// OnlineCheckInterval is how often the connectivity watcher pings.
	OnlineCheckInterval time.Duration
	// DataDir holds one sub-directory per account.
	DataDir string
	// PullInterval is the period of the background reconcile.
	PullInterval time.Duration
	// AggregatorURL is the base URL of the bulk aggregator. Empty disables it.
	AggregatorURL      string
	AggregatorInterval time.Duration
	// AnalysisTimeout bounds a single analysis request.
	AnalysisTimeout time.Duration
	// AccessToken is only read from the JSON file. The CLI prompts for it
	// when empty.
	AccessToken string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.OnlineCheckInterval = 3 * time.Second
	c.DataDir = defaultDataDir()
	c.PullInterval = 5 * time.Minute
	c.AggregatorURL = ""
	c.AggregatorInterval = 30 * time.Minute
	c.AnalysisTimeout = 2 * time.Minute
	c.AccessToken = ""
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "gophdiary")
	}
	return ".gophdiary"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg, os.Args[1:])
	return cfg
}
