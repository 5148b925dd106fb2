// Package train runs the epoch loop over batched window samples and
// tracks validation error.
package train

import (
	"fmt"
	"os"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds every tunable of a training run. Zero values are filled
// from the default tags, so an empty file yields a working setup.
type Config struct {
	// Lookback is the window length fed to the network.
	Lookback int `yaml:"lookback" default:"16" validate:"min=1"`
	// BatchSize groups window samples per parameter update.
	BatchSize int `yaml:"batch_size" default:"64" validate:"min=1"`

	HiddenSize int     `yaml:"hidden_size" default:"50" validate:"min=1"`
	NumLayers  int     `yaml:"num_layers" default:"1" validate:"min=1"`
	LearnRate  float64 `yaml:"learning_rate" default:"0.001" validate:"gt=0"`

	Epochs     int `yaml:"epochs" default:"50" validate:"min=1"`
	EvalPeriod int `yaml:"eval_period" default:"5" validate:"min=1"`

	// TrainRatio is the positional train/test split point.
	TrainRatio float64 `yaml:"train_ratio" default:"0.67" validate:"gt=0,lt=1"`
}

var validate = validator.New()

// DefaultConfig returns a Config with every field at its default.
func DefaultConfig() Config {
	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		panic(err)
	}
	return cfg
}

// LoadConfig reads a YAML config file, fills unset fields with defaults
// and validates the result.
func LoadConfig(path string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := defaults.Set(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to apply config defaults: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks all field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
