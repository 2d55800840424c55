// internal/common/config/loader_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const minimalConfig = `
database:
  postgres:
    host: localhost
    database: chronocost
    user: chronocost
  redis:
    address: localhost:6379
`

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "chronocost", cfg.App.Name)
	assert.Equal(t, ":8080", cfg.HTTP.Address)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, "projects", cfg.Database.Elasticsearch.Index)
	assert.Equal(t, "projects", cfg.DocumentStore.ProjectsCollection)
	assert.Equal(t, 60, cfg.Submission.GuardTTL)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadFromFile_RiskOverrides(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, minimalConfig+`
risk:
  terrain_weights:
    swamp: 0.25
  type_weights:
    Construction: 0.2
`))
	require.NoError(t, err)

	assert.InDelta(t, 0.25, cfg.Risk.TerrainWeights["swamp"], 1e-9)
	// viper lower-cases map keys
	assert.InDelta(t, 0.2, cfg.Risk.TypeWeights["construction"], 1e-9)
}

func TestLoadFromFile_ExpandsEnv(t *testing.T) {
	t.Setenv("CHRONOCOST_TEST_DB_HOST", "db.internal")
	cfg, err := LoadFromFile(writeConfig(t, `
database:
  postgres:
    host: ${CHRONOCOST_TEST_DB_HOST}
    database: chronocost
    user: chronocost
  redis:
    address: localhost:6379
`))
	require.NoError(t, err)
	assert.Equal(t, "db.internal", cfg.Database.Postgres.Host)
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "missing redis",
			body:    "database:\n  postgres:\n    host: h\n    database: d\n    user: u\n",
			wantErr: "database.redis.address is required",
		},
		{
			name:    "search enabled without addresses",
			body:    minimalConfig + "  elasticsearch:\n    enabled: true\n",
			wantErr: "database.elasticsearch.addresses is required",
		},
		{
			name:    "weight out of range",
			body:    minimalConfig + "risk:\n  terrain_weights:\n    flat: 3\n",
			wantErr: "risk.terrain_weights.flat",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetWorkerConfig_Fallback(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{
		"estimate-risk": {Enabled: false, MaxJobsActive: 2, Timeout: 1000},
	}}

	assert.False(t, IsWorkerEnabled(cfg, "estimate-risk"))
	assert.True(t, IsWorkerEnabled(cfg, "create-project-record"))
	assert.Equal(t, 5, GetWorkerConfig(cfg, "create-project-record").MaxJobsActive)
	assert.Equal(t, time.Second, GetDuration(GetWorkerConfig(cfg, "estimate-risk").Timeout))
}
