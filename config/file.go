package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a YAML config. Unknown keys are an error. Timeouts take
// the same forms as the env vars: Go durations or plain seconds.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var c Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		if len(bytes.TrimSpace(data)) == 0 {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if c.ConnectTimeout < 0 || c.RequestTimeout < 0 {
		return Config{}, fmt.Errorf("parse config %s: timeouts cannot be negative", path)
	}
	return c, nil
}

// Load builds the effective config: defaults, then the file (if path is
// set), then TERNARY_* variables.
func Load(path string) (Config, error) {
	c := Default()
	if path != "" {
		fc, err := LoadFile(path)
		if err != nil {
			return Config{}, err
		}
		c = c.Merge(fc)
	}
	ec, err := FromEnv()
	if err != nil {
		return Config{}, err
	}
	return c.Merge(ec), nil
}

var fileKeys = map[string]bool{
	"connect_timeout": true,
	"timeout":         true,
	"user_agent":      true,
	"headers":         true,
	"insecure":        true,
	"no_redirect":     true,
	"log_level":       true,
}

// UnmarshalYAML reads timeouts through ParseDuration, so "5", "0.5" and
// "1500ms" all work.
func (c *Config) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i]
			if !fileKeys[key.Value] {
				return fmt.Errorf("line %d: unknown field %q", key.Line, key.Value)
			}
		}
	}

	var raw struct {
		ConnectTimeout string            `yaml:"connect_timeout"`
		RequestTimeout string            `yaml:"timeout"`
		UserAgent      string            `yaml:"user_agent"`
		Headers        map[string]string `yaml:"headers"`
		Insecure       bool              `yaml:"insecure"`
		NoRedirect     bool              `yaml:"no_redirect"`
		LogLevel       string            `yaml:"log_level"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}

	out := Config{
		UserAgent:  raw.UserAgent,
		Headers:    raw.Headers,
		Insecure:   raw.Insecure,
		NoRedirect: raw.NoRedirect,
		LogLevel:   raw.LogLevel,
	}
	var err error
	if raw.ConnectTimeout != "" {
		if out.ConnectTimeout, err = ParseDuration(raw.ConnectTimeout); err != nil {
			return fmt.Errorf("connect_timeout: %w", err)
		}
	}
	if raw.RequestTimeout != "" {
		if out.RequestTimeout, err = ParseDuration(raw.RequestTimeout); err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
	}
	*c = out
	return nil
}
