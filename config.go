package reflow

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/tsawler/reflow/som"
)

// ErrInvalidConfig is returned when a configuration fails validation
var ErrInvalidConfig = errors.New("invalid configuration")

// Config aggregates the tunable parts of a reflow run. It is read from YAML:
//
//	construction:
//	  word_gap_ratio: 1.5
//	  separator:
//	    min_separation: 3
//	log_level: debug
type Config struct {
	// Construction holds the page construction thresholds, rule line
	// detection included
	Construction som.Config `yaml:"construction"`

	// LogLevel is the logrus level used by the command line tool
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns the configuration used when none is given
func DefaultConfig() Config {
	return Config{
		Construction: som.DefaultConfig(),
		LogLevel:     "warn",
	}
}

// Validate checks every threshold and the log level
func (c Config) Validate() error {
	if err := c.Construction.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level: %w", ErrInvalidConfig, err)
	}
	return nil
}

// ParseConfig reads a YAML configuration over the defaults. Unknown keys
// are rejected.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads a YAML configuration file
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data)
}
