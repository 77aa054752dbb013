// internal/workers/search/search-listings/config.go
package searchlistings

import (
	"time"

	"marketplace-search/internal/common/config"
)

type Config struct {
	Timeout         time.Duration
	DefaultPageSize int
}

func LoadConfig(wcfg config.WorkerConfig, search config.SearchConfig) *Config {
	cfg := &Config{
		Timeout:         config.GetDuration(wcfg.Timeout),
		DefaultPageSize: search.DefaultLimit,
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 20
	}
	return cfg
}
