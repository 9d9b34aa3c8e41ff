package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type (
	// Config holds the demo settings, loadable from a YAML file and
	// overridable with command line flags.
	Config struct {
		// Addr is the host:port the server listens on and clients
		// connect to.
		Addr string `yaml:"addr"`
		// Secure enables TLS with a generated self-signed certificate.
		Secure bool `yaml:"secure"`
		// Interval paces the scripted event stream.
		Interval Duration `yaml:"interval"`
		// SSEPath and WSPath are the routes the two transports serve.
		SSEPath string `yaml:"sse_path"`
		WSPath  string `yaml:"ws_path"`
	}

	// Duration wraps time.Duration so YAML values like "250ms" parse.
	Duration struct {
		time.Duration
	}
)

// UnmarshalYAML parses a duration string such as "100ms" or "2s".
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	d.Duration = parsed
	return nil
}

// MarshalYAML renders the duration back to its string form.
func (d Duration) MarshalYAML() (any, error) {
	return d.Duration.String(), nil
}

// DefaultConfig returns the settings used when no config file is given.
func DefaultConfig() Config {
	return Config{
		Addr:     "localhost:8765",
		Interval: Duration{100 * time.Millisecond},
		SSEPath:  "/events",
		WSPath:   "/ws",
	}
}

// LoadConfig reads cfg from a YAML file, starting from the defaults so
// absent keys keep their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
