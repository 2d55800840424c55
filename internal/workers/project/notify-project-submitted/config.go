// internal/workers/project/notify-project-submitted/config.go
package notifyprojectsubmitted

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{Timeout: 15 * time.Second}
}
