package relaxavro

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Config is the file form of the decoder options.
type Config struct {
	Mode              Mode   `yaml:"mode"`
	LogLevel          string `yaml:"log_level"`
	DisableNormalizer bool   `yaml:"disable_normalizer"`
}

// DefaultConfig returns relaxed mode at info level.
func DefaultConfig() Config {
	return Config{Mode: ModeRelaxed, LogLevel: "info"}
}

// LoadConfig reads a YAML document over DefaultConfig. Unknown keys are
// rejected.
func LoadConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("relaxavro: config: %w", err)
	}
	return cfg, nil
}

// Options converts the config into decoder options.
func (c Config) Options() []Option {
	return []Option{WithMode(c.Mode), WithNormalizer(!c.DisableNormalizer)}
}
