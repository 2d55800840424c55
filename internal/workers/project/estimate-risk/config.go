// internal/workers/project/estimate-risk/config.go
package estimaterisk

import (
	"time"

	"chronocost/internal/risk"
)

type Config struct {
	Timeout time.Duration
	Weights risk.Weights
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 5 * time.Second,
		Weights: risk.DefaultWeights(),
	}
}
