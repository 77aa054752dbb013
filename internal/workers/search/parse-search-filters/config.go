// internal/workers/search/parse-search-filters/config.go
package parsesearchfilters

import (
	"time"

	"marketplace-search/internal/common/config"
)

type Config struct {
	Timeout         time.Duration
	MaxRadiusKm     float64
	DefaultPageSize int
	MaxPageSize     int
}

func LoadConfig(wcfg config.WorkerConfig, search config.SearchConfig) *Config {
	cfg := &Config{
		Timeout:         config.GetDuration(wcfg.Timeout),
		MaxRadiusKm:     search.MaxRadiusKm,
		DefaultPageSize: search.DefaultLimit,
		MaxPageSize:     100,
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 20
	}
	return cfg
}
