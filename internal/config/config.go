// Package config binds the garbage collector's and the host program's
// tunables to environment variables, the way the teacher binds its own
// process-wide settings, using github.com/caarlos0/env/v6 struct tags
// instead of a hand-rolled flag/getenv layer.
package config

import (
	"github.com/caarlos0/env/v6"
)

// Config holds every tunable the interpreter reads from the environment.
// Defaults match spec.md §4.5's nominal GC behavior.
type Config struct {
	// GCInitialThreshold is the number of bytes allocated on the heap before
	// the first collection is considered.
	GCInitialThreshold int64 `env:"EMBER_GC_INITIAL_THRESHOLD" envDefault:"1048576"`

	// GCGrowthFactor multiplies the bytes retained by the previous collection
	// to compute the next collection threshold.
	GCGrowthFactor float64 `env:"EMBER_GC_GROWTH_FACTOR" envDefault:"2.0"`

	// GCStress, when true, runs a collection before every single allocation.
	// Intended for GC bug-hunting in tests, never for normal use.
	GCStress bool `env:"EMBER_GC_STRESS" envDefault:"false"`

	// LogLevel controls the verbosity of the logrus logger used for GC and VM
	// diagnostic tracing (independent of the language's own stdout/stderr
	// protocol, which config never touches).
	LogLevel string `env:"EMBER_LOG_LEVEL" envDefault:"warn"`
}

// Load reads Config from the environment, applying defaults for anything
// unset.
func Load() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, err
	}
	return c, nil
}
