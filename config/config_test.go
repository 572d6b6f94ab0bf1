package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"suite": "SIMBA",
		"epochs": 3,
		"batch_size": 8,
		"metrics_path": "metrics.db"
	}`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "SIMBA", cfg.Suite)
	require.Equal(t, 3, cfg.Epochs)
	require.Equal(t, 8, cfg.BatchSize)
	require.Equal(t, "metrics.db", cfg.MetricsPath)
	// untouched defaults survive
	require.Equal(t, "CV", cfg.DatasetType)
	require.Equal(t, 1e-4, cfg.LearningRate)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"learningrate": 0.01}`), 0644))
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero learning rate", func(c *Config) { c.LearningRate = 0 }},
		{"zero batch size", func(c *Config) { c.BatchSize = 0 }},
		{"zero epochs", func(c *Config) { c.Epochs = 0 }},
		{"negative val fraction", func(c *Config) { c.ValFraction = -0.1 }},
		{"full val fraction", func(c *Config) { c.ValFraction = 1 }},
		{"negative workers", func(c *Config) { c.Workers = -1 }},
		{"empty suite", func(c *Config) { c.Suite = "" }},
		{"empty dataset type", func(c *Config) { c.DatasetType = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestArtifactPaths(t *testing.T) {
	cfg := Default()
	cfg.WeightsDir = "out"

	require.Equal(t, "unet_illustristng_cv_v1.json.z", cfg.ModelName())
	require.Equal(t, filepath.Join("out", "best_unet_illustristng_cv_v1.json.z"), cfg.BestCheckpointPath())
	require.Equal(t, filepath.Join("out", "unet_illustristng_cv_v1.json.z"), cfg.FinalCheckpointPath())
	require.Equal(t, filepath.Join("out", "traced_unet_model.json.z"), cfg.GraphPath())
}
