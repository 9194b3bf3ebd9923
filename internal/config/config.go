// Package config loads blackjack settings from an HCL file with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/kelseyhightower/envconfig"

	"github.com/lox/blackjack-ipc/internal/statistics"
	"github.com/lox/blackjack-ipc/internal/transport"
)

// EnvPrefix prefixes every environment override, e.g. BLACKJACK_ROUNDS
const EnvPrefix = "blackjack"

// ErrInvalid is returned by Validate
var ErrInvalid = errors.New("invalid configuration")

// Config represents the complete configuration
type Config struct {
	Simulation *SimulationConfig `hcl:"simulation,block"`
	Log        *LogConfig        `hcl:"log,block"`
	Results    *ResultsConfig    `hcl:"results,block"`
}

// SimulationConfig controls a session
type SimulationConfig struct {
	Rounds    int    `hcl:"rounds,optional"`
	Seed      int64  `hcl:"seed,optional"`
	Transport string `hcl:"transport,optional"`
	Buffer    int    `hcl:"buffer,optional"`
	Scoring   string `hcl:"scoring,optional"`
}

// LogConfig controls logging
type LogConfig struct {
	Level string `hcl:"level,optional"`
}

// ResultsConfig controls persistence of finished runs. An empty database
// disables it.
type ResultsConfig struct {
	Database string `hcl:"database,optional"`
}

// overrides are read from the environment. Unset variables leave the
// corresponding setting alone.
type overrides struct {
	Rounds    *int    `envconfig:"rounds"`
	Seed      *int64  `envconfig:"seed"`
	Transport *string `envconfig:"transport"`
	Buffer    *int    `envconfig:"buffer"`
	Scoring   *string `envconfig:"scoring"`
	LogLevel  *string `envconfig:"log_level"`
	Database  *string `envconfig:"database"`
}

// Default returns the default configuration
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads configuration from an HCL file. A missing file yields the
// defaults. Environment overrides are applied on top in either case.
func Load(filename string) (*Config, error) {
	config := Default()
	if filename != "" {
		src, err := os.ReadFile(filename)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if config, err = Decode(src, filename); err != nil {
				return nil, err
			}
		}
	}

	if err := config.ApplyEnv(); err != nil {
		return nil, err
	}
	return config, nil
}

// Decode parses HCL source and fills in defaults for anything left unset
func Decode(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config.applyDefaults()
	return &config, nil
}

// ApplyEnv overlays any BLACKJACK_* environment variables
func (c *Config) ApplyEnv() error {
	var env overrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("environment overrides: %w", err)
	}

	if env.Rounds != nil {
		c.Simulation.Rounds = *env.Rounds
	}
	if env.Seed != nil {
		c.Simulation.Seed = *env.Seed
	}
	if env.Transport != nil {
		c.Simulation.Transport = *env.Transport
	}
	if env.Buffer != nil {
		c.Simulation.Buffer = *env.Buffer
	}
	if env.Scoring != nil {
		c.Simulation.Scoring = *env.Scoring
	}
	if env.LogLevel != nil {
		c.Log.Level = *env.LogLevel
	}
	if env.Database != nil {
		c.Results.Database = *env.Database
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Simulation == nil {
		c.Simulation = &SimulationConfig{}
	}
	if c.Log == nil {
		c.Log = &LogConfig{}
	}
	if c.Results == nil {
		c.Results = &ResultsConfig{}
	}

	if c.Simulation.Rounds == 0 {
		c.Simulation.Rounds = 1000
	}
	if c.Simulation.Transport == "" {
		c.Simulation.Transport = string(transport.Chan)
	}
	if c.Simulation.Scoring == "" {
		c.Simulation.Scoring = string(statistics.PerPlayer)
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Simulation.Rounds < 1 {
		return fmt.Errorf("%w: rounds must be positive, got %d", ErrInvalid, c.Simulation.Rounds)
	}
	if c.Simulation.Buffer < 0 {
		return fmt.Errorf("%w: buffer must not be negative, got %d", ErrInvalid, c.Simulation.Buffer)
	}
	if _, err := transport.ParseKind(c.Simulation.Transport); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if _, err := statistics.ParseScoring(c.Simulation.Scoring); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log level: %w", ErrInvalid, err)
	}
	return nil
}

// TransportKind returns the configured transport
func (c *Config) TransportKind() transport.Kind {
	return transport.Kind(c.Simulation.Transport)
}

// ScoringMode returns the configured scoring mode
func (c *Config) ScoringMode() statistics.Scoring {
	return statistics.Scoring(c.Simulation.Scoring)
}

// LogLevel returns the configured log level, falling back to info
func (c *Config) LogLevel() log.Level {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return level
}
