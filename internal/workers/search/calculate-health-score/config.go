// internal/workers/search/calculate-health-score/config.go
package calculatehealthscore

import (
	"time"

	"marketplace-search/internal/common/config"
)

type Config struct {
	Timeout     time.Duration
	MaxListings int
}

func LoadConfig(wcfg config.WorkerConfig) *Config {
	cfg := &Config{
		Timeout:     config.GetDuration(wcfg.Timeout),
		MaxListings: 200,
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	return cfg
}
