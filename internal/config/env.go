package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// EnvPrefix prefixes every environment variable the tool reads.
	EnvPrefix = "PIXELAUDIT_"

	// DefaultEnvFile is read when present in the working directory.
	DefaultEnvFile = ".env"
)

// ReadEnvFile returns the PIXELAUDIT_* entries of a .env file.
// A missing file yields an empty map.
func ReadEnvFile(path string) (map[string]string, error) {
	if path == "" {
		return map[string]string{}, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return map[string]string{}, nil
	}

	all, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return withPrefix(all), nil
}

// LoadEnv applies PIXELAUDIT_* settings from the .env file at cfg.EnvFile and
// from the process environment. Real environment variables win over the
// file, as usual for .env files.
func LoadEnv(cfg *Config) error {
	env, err := ReadEnvFile(cfg.EnvFile)
	if err != nil {
		return err
	}
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if ok && strings.HasPrefix(key, EnvPrefix) {
			env[key] = value
		}
	}
	return ApplyEnv(cfg, env)
}

// ApplyEnv applies the recognized PIXELAUDIT_* keys in env to cfg.
// Unknown keys are ignored; malformed values return ErrInvalidEnv.
func ApplyEnv(cfg *Config, env map[string]string) error {
	for key, value := range env {
		name, ok := strings.CutPrefix(key, EnvPrefix)
		if !ok {
			continue
		}
		if err := applyEnvValue(cfg, name, strings.TrimSpace(value)); err != nil {
			return fmt.Errorf("%w: %s=%q: %w", ErrInvalidEnv, key, value, err)
		}
	}
	return nil
}

func applyEnvValue(cfg *Config, name, value string) error {
	switch name {
	case "CONCURRENCY":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.Concurrency = n
	case "TIMEOUT":
		d, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		cfg.Timeout = d
	case "MAX_REDIRECTS":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.MaxRedirects = n
	case "LATIN1":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		cfg.Latin1 = b
	case "STABLE_ORDER":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		cfg.StableOrder = b
	case "PROXY":
		cfg.ProxyAddress = value
	case "USER_AGENT":
		cfg.UserAgent = value
	case "METHOD":
		cfg.Method = value
	case "ID_COLUMN":
		cfg.IdentifierColumn = value
	case "URL_COLUMN":
		cfg.URLColumn = value
	case "TABLE":
		cfg.Table = value
	}
	return nil
}

func withPrefix(all map[string]string) map[string]string {
	out := make(map[string]string, len(all))
	for k, v := range all {
		if strings.HasPrefix(k, EnvPrefix) {
			out[k] = v
		}
	}
	return out
}
