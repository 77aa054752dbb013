// internal/workers/search/track-listing-rank/config.go
package tracklistingrank

import (
	"time"

	"marketplace-search/internal/common/config"
)

type Config struct {
	Timeout    time.Duration
	MaxQueries int
}

func LoadConfig(wcfg config.WorkerConfig) *Config {
	cfg := &Config{
		Timeout:    config.GetDuration(wcfg.Timeout),
		MaxQueries: 10,
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return cfg
}
