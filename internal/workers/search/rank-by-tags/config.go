// internal/workers/search/rank-by-tags/config.go
package rankbytags

import (
	"time"

	"marketplace-search/internal/common/config"
)

type Config struct {
	Timeout      time.Duration
	DefaultLimit int
	MaxTags      int
}

func LoadConfig(wcfg config.WorkerConfig, search config.SearchConfig) *Config {
	cfg := &Config{
		Timeout:      config.GetDuration(wcfg.Timeout),
		DefaultLimit: search.DefaultLimit,
		MaxTags:      10,
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 20
	}
	return cfg
}
