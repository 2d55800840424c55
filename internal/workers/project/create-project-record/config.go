// internal/workers/project/create-project-record/config.go
package createprojectrecord

import "time"

type Config struct {
	Timeout            time.Duration
	DatabaseID         string
	ProjectsCollection string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:            10 * time.Second,
		DatabaseID:         "chronocost",
		ProjectsCollection: "projects",
	}
}
