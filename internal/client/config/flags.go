package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/gophdiary/internal/flagx"
)

var ownFlags = []string{"-a", "-i", "-d", "-p", "-g", "-t"}

// parseFlags overlays cfg with command-line flags. Intervals are given in
// whole seconds. args are filtered with flagx.FilterArgs so flags owned by
// other loaders do not interfere. Panics on malformed values.
func parseFlags(cfg *Config, args []string) {
	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	onlineCheck := fs.Int("i", seconds(cfg.OnlineCheckInterval), "online check interval (in seconds)")
	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "local data directory")
	pull := fs.Int("p", seconds(cfg.PullInterval), "background pull interval (in seconds)")
	fs.StringVar(&cfg.AggregatorURL, "g", cfg.AggregatorURL, "aggregator base url")
	analysis := fs.Int("t", seconds(cfg.AnalysisTimeout), "analysis timeout (in seconds)")

	if err := fs.Parse(flagx.FilterArgs(args, ownFlags)); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheck) * time.Second
	cfg.PullInterval = time.Duration(*pull) * time.Second
	cfg.AnalysisTimeout = time.Duration(*analysis) * time.Second
}

func seconds(d time.Duration) int {
	return int(d / time.Second)
}
