package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	base := func() *Config {
		return &Config{
			ServerEndpointAddr:  "127.0.0.1:50051",
			OnlineCheckInterval: 3 * time.Second,
			DataDir:             "/data",
			PullInterval:        5 * time.Minute,
			AggregatorInterval:  30 * time.Minute,
			AnalysisTimeout:     2 * time.Minute,
		}
	}

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"-a", "127.0.0.1:9090", "-i", "10", "-d", "/other", "-p", "60", "-g", "http://agg", "-t", "30"},
			expected: &Config{
				ServerEndpointAddr:  "127.0.0.1:9090",
				OnlineCheckInterval: 10 * time.Second,
				DataDir:             "/other",
				PullInterval:        time.Minute,
				AggregatorURL:       "http://agg",
				AggregatorInterval:  30 * time.Minute,
				AnalysisTimeout:     30 * time.Second,
			},
		},
		{name: "no flags keeps values", args: nil, expected: base()},
		{
			name:     "foreign flags ignored",
			args:     []string{"-c", "cfg.json", "-x", "-a", "h:1"},
			expected: func() *Config { c := base(); c.ServerEndpointAddr = "h:1"; return c }(),
		},
		{name: "incorrect check interval", args: []string{"-i", "abc"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(cfg, tt.args) })
				return
			}
			require.NotPanics(t, func() { parseFlags(cfg, tt.args) })
			assert.Empty(t, cmp.Diff(tt.expected, cfg))
		})
	}
}
