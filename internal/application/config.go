// Package application holds the user-facing configuration of a count
// run and its loading/validation logic.
package application

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/preflib/runoff/internal/engine"
)

// Package-level validator instance for configuration validation.
var validate = validator.New()

// CountConfig is the complete configuration of one count run: the
// engine parameters plus the presentation and normalization knobs that
// live outside the engine.
type CountConfig struct {
	// Threshold is the winning vote share, a fraction in (0, 1].
	Threshold float64 `yaml:"threshold" validate:"required,gt=0,lte=1"`

	// TieBreak resolves exact winning ties: ballot_order or error.
	TieBreak engine.TieBreak `yaml:"tie_break" validate:"required,oneof=ballot_order error"`

	// Report enables the round-by-round report, which also turns on
	// trace recording in the engine.
	Report bool `yaml:"report"`

	// MaxParallelism caps the goroutines used for ballot normalization.
	// Zero means one per available CPU.
	MaxParallelism int `yaml:"max_parallelism" validate:"omitempty,min=1"`
}

// DefaultCountConfig returns the simple-majority defaults.
func DefaultCountConfig() CountConfig {
	return CountConfig{
		Threshold: 0.5,
		TieBreak:  engine.TieBallotOrder,
	}
}

// Validate checks the configuration against its constraints.
func (c CountConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("count configuration invalid: %w", err)
	}
	return nil
}

// EngineConfig derives the engine's parameters from this configuration.
func (c CountConfig) EngineConfig() engine.Config {
	return engine.Config{
		Threshold: c.Threshold,
		TieBreak:  c.TieBreak,
		Trace:     c.Report,
	}
}

// LoadCountConfig reads a YAML configuration file over the defaults.
// Fields absent from the file keep their default values; the merged
// result is validated before being returned.
func LoadCountConfig(path string) (CountConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return CountConfig{}, fmt.Errorf("reading config: %w", err)
	}

	config := DefaultCountConfig()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return CountConfig{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return CountConfig{}, err
	}
	return config, nil
}
