package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Validator is implemented by config structs that check their own
// cross-field constraints after parsing.
type Validator interface {
	Validate() error
}

// Load parses environment variables into cfg, which must be a pointer to
// a struct with `env` tags. Unset variables marked `required` are errors.
// If cfg implements Validator it is validated after parsing.
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	if v, ok := cfg.(Validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("validate config: %w", err)
		}
	}
	return nil
}
