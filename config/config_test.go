package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/pitchmodel/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_RepoConfig(t *testing.T) {
	cfg, err := config.Load("config.yaml")
	require.NoError(t, err)

	require.Len(t, cfg.Fetch.Players, 7)
	assert.Equal(t, "Imanaga", cfg.Fetch.Players[0].Last)
	assert.Equal(t, []float64{0.01, 0.1, 1.0, 10.0}, cfg.Train.Grid)
	assert.Equal(t, 5, cfg.Train.Folds)
	assert.Equal(t, 5, cfg.Train.MinPitchCount)

	start, end, err := cfg.DateRange()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), end)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, "log:\n  level: debug\n"))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Empty(t, cfg.Fetch.Players)
	assert.Equal(t, "data", cfg.Paths.DataDir)
	assert.Equal(t, "models", cfg.Paths.ModelsDir)
	assert.Equal(t, "pitchmodel.db", cfg.Storage.DSN)
	assert.Equal(t, 120*time.Second, cfg.Timeout())
	assert.Equal(t, 0, cfg.Fetch.MaxRetries)
	assert.Equal(t, 1, cfg.Fetch.Workers)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("PITCHMODEL_DATA_DIR", "/tmp/datasets")
	t.Setenv("PITCHMODEL_MODELS_DIR", "/tmp/models")
	t.Setenv("PITCHMODEL_DSN", ":memory:")

	cfg, err := config.Load(writeConfig(t, "paths:\n  data_dir: data\n"))
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "/tmp/datasets", cfg.Paths.DataDir)
	assert.Equal(t, "/tmp/models", cfg.Paths.ModelsDir)
	assert.Equal(t, ":memory:", cfg.Storage.DSN)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"reversed range": "fetch:\n  start_date: \"2024-12-31\"\n  end_date: \"2022-01-01\"\n",
		"bad date":       "fetch:\n  start_date: \"2022/01/01\"\n",
		"one fold":       "train:\n  folds: 1\n",
		"negative C":     "train:\n  grid: [-1]\n",
		"nameless":       "fetch:\n  players:\n    - { first: Shota }\n",
		"not yaml":       "fetch: [",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
