package bench

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is a polybench.toml benchmark configuration.
type Config struct {
	Runs    Runs    `toml:"runs"`
	Output  Output  `toml:"output"`
	History History `toml:"history"`
}

// Runs configures the measurement loop.
type Runs struct {
	Iterations int      `toml:"iterations"`
	Warmup     int      `toml:"warmup"`
	Scenarios  []string `toml:"scenarios"`
}

// Output configures where and how results are written.
type Output struct {
	Path   string `toml:"path"`   // empty means stdout only
	Format string `toml:"format"` // "table" or "cbor"
}

// History configures the run-history database.
type History struct {
	Database string `toml:"database"` // empty disables history
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Runs:   Runs{Iterations: 1_000_000, Warmup: 10_000},
		Output: Output{Format: "table"},
	}
}

// LoadConfig parses a TOML config file, filling unset fields with
// defaults and validating the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("bench: cannot read %s: %w", path, err)
	}

	c := DefaultConfig()
	if err := toml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("bench: parse error in %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("bench: invalid config %s: %w", path, err)
	}
	return c, nil
}

// Validate checks field values and scenario names.
func (c *Config) Validate() error {
	if c.Runs.Iterations <= 0 {
		return fmt.Errorf("runs.iterations must be positive, got %d", c.Runs.Iterations)
	}
	if c.Runs.Warmup < 0 {
		return fmt.Errorf("runs.warmup must not be negative, got %d", c.Runs.Warmup)
	}
	if c.Output.Format != "table" && c.Output.Format != "cbor" {
		return fmt.Errorf("output.format must be \"table\" or \"cbor\", got %q", c.Output.Format)
	}
	for _, s := range c.Runs.Scenarios {
		if !knownScenario(s) {
			return fmt.Errorf("unknown scenario %q", s)
		}
	}
	return nil
}

// Runner builds a Runner from the configuration.
func (c *Config) Runner() *Runner {
	return &Runner{
		Iterations: c.Runs.Iterations,
		Warmup:     c.Runs.Warmup,
		Scenarios:  c.Runs.Scenarios,
	}
}

func knownScenario(name string) bool {
	for _, s := range AllScenarios {
		if s == name {
			return true
		}
	}
	return false
}
