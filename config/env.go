package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvConnectTimeout = "TERNARY_CONNECT_TIMEOUT"
	EnvTimeout        = "TERNARY_TIMEOUT"
	EnvUserAgent      = "TERNARY_USER_AGENT"
	EnvInsecure       = "TERNARY_INSECURE"
	EnvNoRedirect     = "TERNARY_NO_REDIRECT"
	EnvLogLevel       = "TERNARY_LOG_LEVEL"
)

// LoadDotEnv loads variables from a .env file if present.
// Already set variables are never overridden.
func LoadDotEnv(paths ...string) error {
	if len(paths) > 0 {
		return godotenv.Load(paths...)
	}
	// try CWD first
	if err := godotenv.Load(); err == nil {
		return nil
	}

	wd, _ := os.Getwd()
	dir := wd
	for range 6 { // up to 6 parent levels
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			return godotenv.Load(envPath)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return os.ErrNotExist
}

// GetEnv returns the environment variable value if set, or the default.
func GetEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// FromEnv reads the TERNARY_* variables. Unset variables leave the field
// zero, so the result is meant to be merged over Default or a file config.
// Timeouts accept Go durations ("1500ms") or plain seconds ("3", "0.5").
func FromEnv() (Config, error) {
	var c Config
	var err error

	if c.ConnectTimeout, err = envDuration(EnvConnectTimeout); err != nil {
		return Config{}, err
	}
	if c.RequestTimeout, err = envDuration(EnvTimeout); err != nil {
		return Config{}, err
	}
	if c.Insecure, err = envBool(EnvInsecure); err != nil {
		return Config{}, err
	}
	if c.NoRedirect, err = envBool(EnvNoRedirect); err != nil {
		return Config{}, err
	}
	c.UserAgent = os.Getenv(EnvUserAgent)
	c.LogLevel = os.Getenv(EnvLogLevel)
	return c, nil
}

func envDuration(key string) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, nil
	}
	d, err := ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func envBool(key string) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

// ParseDuration accepts Go durations or a bare number of seconds.
// Negative values are rejected.
func ParseDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		secs, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		d = time.Duration(secs * float64(time.Second))
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %q", s)
	}
	return d, nil
}
