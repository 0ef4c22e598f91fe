package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophdiary/internal/flagx"
	"github.com/dmitrijs2005/gophdiary/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Intervals use
// timex.Duration so they can be strings like "3s" or integer nanoseconds.
type JsonConfig struct {
	ServerEndpointAddr  string         `json:"server_endpoint_addr"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	DataDir             string         `json:"data_dir"`
	PullInterval        timex.Duration `json:"pull_interval"`
	AggregatorURL       string         `json:"aggregator_url"`
	AggregatorInterval  timex.Duration `json:"aggregator_interval"`
	AnalysisTimeout     timex.Duration `json:"analysis_timeout"`
	AccessToken         string         `json:"access_token"`
}

// parseJson overlays cfg with the file named by -c or -config. Fields absent
// from the file keep their current value. Panics on read or decode errors.
func parseJson(cfg *Config) {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}
	jc.apply(cfg)
}

func (jc JsonConfig) apply(cfg *Config) {
	setString(&cfg.ServerEndpointAddr, jc.ServerEndpointAddr)
	setString(&cfg.DataDir, jc.DataDir)
	setString(&cfg.AggregatorURL, jc.AggregatorURL)
	setString(&cfg.AccessToken, jc.AccessToken)

	if jc.OnlineCheckInterval.Duration > 0 {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.PullInterval.Duration > 0 {
		cfg.PullInterval = jc.PullInterval.Duration
	}
	if jc.AggregatorInterval.Duration > 0 {
		cfg.AggregatorInterval = jc.AggregatorInterval.Duration
	}
	if jc.AnalysisTimeout.Duration > 0 {
		cfg.AnalysisTimeout = jc.AnalysisTimeout.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
