package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("NAEP_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8605, cfg.Server.Port)
	assert.True(t, cfg.Server.OpenBrowser)
	assert.Equal(t, "data/naep_scores.csv", cfg.Dataset.File)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.Security.RateLimit.Enabled)
	assert.Equal(t, 50.0, cfg.Security.RateLimit.RPS)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("NAEP_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("NAEP_SERVER_PORT", "9100")
	t.Setenv("NAEP_SERVER_HOST", "0.0.0.0")
	t.Setenv("NAEP_DATASET_FILE", "/srv/naep/scores.xlsx")
	t.Setenv("NAEP_LOGGING_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "/srv/naep/scores.xlsx", cfg.Dataset.File)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadMergesYAMLFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "naepdash.yaml")
	yaml := `
server:
  port: 9200
dataset:
  file: custom/scores.csv
`
	require.NoError(t, os.WriteFile(configPath, []byte(yaml), 0o644))
	t.Setenv("NAEP_CONFIG_FILE", configPath)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9200, cfg.Server.Port)
	assert.Equal(t, "custom/scores.csv", cfg.Dataset.File)
	// untouched fields keep their defaults
	assert.Equal(t, "localhost", cfg.Server.Host)
}

func TestLoadEnvironmentWinsOverFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "naepdash.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("server:\n  port: 9200\n"), 0o644))
	t.Setenv("NAEP_CONFIG_FILE", configPath)
	t.Setenv("NAEP_SERVER_PORT", "9300")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9300, cfg.Server.Port)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "invalid port",
			env:     map[string]string{"NAEP_SERVER_PORT": "70000"},
			wantErr: "invalid server port",
		},
		{
			name:    "unsupported dataset format",
			env:     map[string]string{"NAEP_DATASET_FILE": "scores.parquet"},
			wantErr: "unsupported dataset format",
		},
		{
			name:    "invalid log level",
			env:     map[string]string{"NAEP_LOGGING_LEVEL": "verbose"},
			wantErr: "invalid log level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NAEP_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestAddrAndBaseURL(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Host = "localhost"
	cfg.Server.Port = 8605

	assert.Equal(t, "localhost:8605", cfg.Addr())
	assert.Equal(t, "http://localhost:8605", cfg.BaseURL())
}
