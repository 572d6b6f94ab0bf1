// Package config holds the explicit run configuration. There are no
// process-wide mutable globals: a Config value is constructed once and
// passed into each component's constructor.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config captures every knob of a training/export run.
type Config struct {
	// dataset
	DataDir     string  `json:"data_dir"`
	Suite       string  `json:"suite"`
	DatasetType string  `json:"dataset_type"`
	Redshift    float64 `json:"redshift"`
	Cache       bool    `json:"cache"` // materialize the archive in memory at open

	// training
	LearningRate float64 `json:"learning_rate"`
	BatchSize    int     `json:"batch_size"`
	Epochs       int     `json:"epochs"`
	ValFraction  float64 `json:"val_fraction"`
	Seed         int64   `json:"seed"`
	Shuffle      bool    `json:"shuffle"`
	Workers      int     `json:"workers"` // batch prefetch parallelism, 0 = synchronous
	Hidden       int     `json:"hidden"`

	// artifacts
	WeightsDir  string `json:"weights_dir"`
	MetricsPath string `json:"metrics_path"` // sqlite metrics file, empty disables telemetry
}

// Default mirrors the reference run: the small cosmic-variance set of the
// IllustrisTNG suite at redshift zero.
func Default() Config {
	return Config{
		DataDir:      "data",
		Suite:        "IllustrisTNG",
		DatasetType:  "CV",
		Redshift:     0.0,
		LearningRate: 1e-4,
		BatchSize:    4,
		Epochs:       15,
		ValFraction:  0.1,
		Seed:         42,
		Shuffle:      true,
		Workers:      0,
		Hidden:       16,
		WeightsDir:   "weights",
		MetricsPath:  "",
	}
}

// Load reads a JSON config file over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects configurations the run could not honor.
func (c Config) Validate() error {
	if c.LearningRate <= 0 {
		return fmt.Errorf("learning_rate must be > 0, got %g", c.LearningRate)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be > 0, got %d", c.BatchSize)
	}
	if c.Epochs <= 0 {
		return fmt.Errorf("epochs must be > 0, got %d", c.Epochs)
	}
	if c.ValFraction < 0 || c.ValFraction >= 1 {
		return fmt.Errorf("val_fraction must be in [0,1), got %g", c.ValFraction)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	if c.Suite == "" || c.DatasetType == "" {
		return fmt.Errorf("suite and dataset_type must be set")
	}
	return nil
}

// ModelName is the final snapshot file name; the best snapshot carries a
// best_ prefix next to it.
func (c Config) ModelName() string {
	return fmt.Sprintf("unet_%s_%s_v1.json.z",
		strings.ToLower(c.Suite), strings.ToLower(c.DatasetType))
}

// BestCheckpointPath resolves the best-so-far snapshot location.
func (c Config) BestCheckpointPath() string {
	return filepath.Join(c.WeightsDir, "best_"+c.ModelName())
}

// FinalCheckpointPath resolves the end-of-run snapshot location.
func (c Config) FinalCheckpointPath() string {
	return filepath.Join(c.WeightsDir, c.ModelName())
}

// GraphPath resolves the portable graph location.
func (c Config) GraphPath() string {
	return filepath.Join(c.WeightsDir, "traced_unet_model.json.z")
}
