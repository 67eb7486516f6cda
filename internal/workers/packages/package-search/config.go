// internal/workers/packages/package-search/config.go
package packagesearch

import (
	"time"

	"package-provider/internal/common/config"
)

const defaultTimeout = 30 * time.Second

type Config struct {
	Timeout       time.Duration
	MaxJobsActive int
}

func LoadConfig(cfg *config.Config) *Config {
	wc := config.GetWorkerConfig(cfg, TaskType)
	c := &Config{
		Timeout:       config.GetDuration(wc.Timeout),
		MaxJobsActive: wc.MaxJobsActive,
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.MaxJobsActive <= 0 {
		c.MaxJobsActive = cfg.Camunda.MaxJobsActive
	}
	return c
}
