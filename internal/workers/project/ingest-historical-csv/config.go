// internal/workers/project/ingest-historical-csv/config.go
package ingesthistoricalcsv

import "time"

type Config struct {
	Timeout  time.Duration
	MaxBytes int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:  10 * time.Second,
		MaxBytes: 10 << 20,
	}
}
