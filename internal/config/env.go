package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
)

var errReadingEnv = errors.New("reading environment")

// parseEnv fills cfg from the process environment. Nested groups take their
// prefix from the envPrefix tags on [StructuredConfig]; unset variables leave
// the zero value so later sources can fill them.
func parseEnv(cfg *StructuredConfig) error {
	if err := env.ParseWithOptions(cfg, env.Options{}); err != nil {
		return fmt.Errorf("%w: %w", errReadingEnv, err)
	}

	return nil
}
