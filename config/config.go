// Package config loads builder defaults from env vars, .env files and YAML.
package config

import (
	"maps"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Config struct {
	ConnectTimeout time.Duration     `yaml:"connect_timeout"`
	RequestTimeout time.Duration     `yaml:"timeout"`
	UserAgent      string            `yaml:"user_agent"`
	Headers        map[string]string `yaml:"headers"`
	Insecure       bool              `yaml:"insecure"`
	NoRedirect     bool              `yaml:"no_redirect"`
	LogLevel       string            `yaml:"log_level"`
}

// Default mirrors the builder defaults: 5s to connect, 30s overall, warn logs.
func Default() Config {
	return Config{
		ConnectTimeout: 5 * time.Second,
		RequestTimeout: 30 * time.Second,
		LogLevel:       "warn",
	}
}

// Merge overlays the non-zero fields of other onto c. Headers are merged
// key by key with other winning. Booleans can only be switched on.
func (c Config) Merge(other Config) Config {
	out := c
	out.Headers = maps.Clone(c.Headers)

	if other.ConnectTimeout != 0 {
		out.ConnectTimeout = other.ConnectTimeout
	}
	if other.RequestTimeout != 0 {
		out.RequestTimeout = other.RequestTimeout
	}
	if other.UserAgent != "" {
		out.UserAgent = other.UserAgent
	}
	if len(other.Headers) > 0 {
		if out.Headers == nil {
			out.Headers = make(map[string]string, len(other.Headers))
		}
		maps.Copy(out.Headers, other.Headers)
	}
	out.Insecure = out.Insecure || other.Insecure
	out.NoRedirect = out.NoRedirect || other.NoRedirect
	if other.LogLevel != "" {
		out.LogLevel = other.LogLevel
	}
	return out
}

// Level parses LogLevel; unknown or empty values fall back to warn.
func (c Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(c.LogLevel)))
	if err != nil || c.LogLevel == "" {
		return zerolog.WarnLevel
	}
	return lvl
}
