// internal/workers/search/similar-listings/config.go
package similarlistings

import (
	"time"

	"marketplace-search/internal/common/config"
)

type Config struct {
	Timeout      time.Duration
	DefaultLimit int
	MaxLimit     int
}

func LoadConfig(wcfg config.WorkerConfig, search config.SearchConfig) *Config {
	cfg := &Config{
		Timeout:      config.GetDuration(wcfg.Timeout),
		DefaultLimit: search.DefaultLimit,
		MaxLimit:     50,
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 10
	}
	return cfg
}
