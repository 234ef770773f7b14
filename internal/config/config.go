// Package config provides explicit configuration for the analysis pipeline.
// Values come from defaults, an optional YAML file, and environment
// overrides, in that precedence order. Seeds and split fractions are plain
// parameters here rather than constants buried in the stages, so tests can
// vary them.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Default configuration values.
const (
	DefaultSplitFraction = 0.2
	DefaultSplitSeed     = 42
	DefaultForestSeed    = 42
	DefaultTreeCount     = 100
	DefaultTopK          = 10
	DefaultMaxTrackAge   = 50
	DefaultReferenceDate = "2023-12-31"
	DefaultLogLevel      = "info"
)

// envPrefix namespaces environment overrides (e.g. INSIGHTS_TOP_K).
const envPrefix = "insights"

// InputConfig describes the raw catalog file.
type InputConfig struct {
	Path      string `yaml:"path" envconfig:"INPUT_PATH"`
	Delimiter string `yaml:"delimiter" envconfig:"INPUT_DELIMITER"`
	Latin1    bool   `yaml:"latin1" envconfig:"INPUT_LATIN1"`
}

// SplitConfig controls the train/holdout partition.
type SplitConfig struct {
	Fraction float64 `yaml:"fraction" envconfig:"SPLIT_FRACTION"`
	Seed     int64   `yaml:"seed" envconfig:"SPLIT_SEED"`
}

// ForestConfig controls the tree ensemble.
type ForestConfig struct {
	Trees    int   `yaml:"trees" envconfig:"FOREST_TREES"`
	MaxDepth int   `yaml:"max_depth" envconfig:"FOREST_MAX_DEPTH"`
	Seed     int64 `yaml:"seed" envconfig:"FOREST_SEED"`
	Workers  int   `yaml:"workers" envconfig:"FOREST_WORKERS"`
}

// Config is the pipeline's full configuration.
type Config struct {
	Input         InputConfig  `yaml:"input"`
	Split         SplitConfig  `yaml:"split"`
	Forest        ForestConfig `yaml:"forest"`
	TopK          int          `yaml:"top_k" envconfig:"TOP_K"`
	MaxTrackAge   int64        `yaml:"max_track_age" envconfig:"MAX_TRACK_AGE"`
	ReferenceDate string       `yaml:"reference_date" envconfig:"REFERENCE_DATE"`
	LogLevel      string       `yaml:"log_level" envconfig:"LOG_LEVEL"`
}

// Default returns the reference configuration: 80/20 split, 100 trees,
// both seeds fixed at 42, age anchored to the end of the 2023 analysis year.
func Default() Config {
	return Config{
		Input: InputConfig{
			Delimiter: ",",
			Latin1:    true,
		},
		Split: SplitConfig{
			Fraction: DefaultSplitFraction,
			Seed:     DefaultSplitSeed,
		},
		Forest: ForestConfig{
			Trees:    DefaultTreeCount,
			MaxDepth: 0,
			Seed:     DefaultForestSeed,
		},
		TopK:          DefaultTopK,
		MaxTrackAge:   DefaultMaxTrackAge,
		ReferenceDate: DefaultReferenceDate,
		LogLevel:      DefaultLogLevel,
	}
}

// LoadFile reads a YAML file over the defaults.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// FromEnv applies INSIGHTS_* environment overrides in place.
func FromEnv(cfg *Config) error {
	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return fmt.Errorf("applying environment overrides: %w", err)
	}
	return nil
}

// ReferenceTime parses the configured reference date.
func (c Config) ReferenceTime() (time.Time, error) {
	t, err := time.ParseInLocation(time.DateOnly, c.ReferenceDate, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid reference_date %q: %w", c.ReferenceDate, err)
	}
	return t, nil
}

// Validate checks the configuration for values no stage can work with.
func (c Config) Validate() error {
	if c.Split.Fraction <= 0 || c.Split.Fraction >= 1 {
		return fmt.Errorf("split.fraction must be in (0, 1), got %g", c.Split.Fraction)
	}
	if c.Forest.Trees <= 0 {
		return fmt.Errorf("forest.trees must be positive, got %d", c.Forest.Trees)
	}
	if c.Forest.MaxDepth < 0 {
		return fmt.Errorf("forest.max_depth must be >= 0, got %d", c.Forest.MaxDepth)
	}
	if c.Forest.Workers < 0 {
		return fmt.Errorf("forest.workers must be >= 0, got %d", c.Forest.Workers)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("top_k must be positive, got %d", c.TopK)
	}
	if c.MaxTrackAge < 0 {
		return fmt.Errorf("max_track_age must be >= 0, got %d", c.MaxTrackAge)
	}
	if len([]rune(c.Input.Delimiter)) != 1 {
		return fmt.Errorf("input.delimiter must be a single character, got %q", c.Input.Delimiter)
	}
	if _, err := c.ReferenceTime(); err != nil {
		return err
	}
	return nil
}

// DelimiterRune returns the input delimiter as a rune. Validate guarantees
// exactly one character.
func (c Config) DelimiterRune() rune {
	runes := []rune(c.Input.Delimiter)
	if len(runes) != 1 {
		return ','
	}
	return runes[0]
}
