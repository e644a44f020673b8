package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file settings.
const (
	EnvLockTimeout = "AUDIOTAG_LOCK_TIMEOUT"
	EnvLogLevel    = "AUDIOTAG_LOG_LEVEL"
)

// Load reads the YAML file at path over the defaults, applies environment
// overrides and validates the result. An empty path or a missing file
// yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			defer f.Close()
			if err := yaml.NewDecoder(f).Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("decode config %s: %w", path, err)
			}
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvLockTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvLockTimeout, err)
		}
		cfg.Lock.Timeout = d
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logger.Level = v
	}
	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		id3 := sl.Current().Interface().(ID3v2)
		if id3.Version == 3 && (id3.Encoding == "utf8" || id3.Encoding == "utf16be") {
			sl.ReportError(id3.Encoding, "Encoding", "encoding", "v24only", "")
		}
	}, ID3v2{})
	return v
}

// Validate checks every field against its constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// Save writes cfg as YAML to path.
func Save(path string, cfg *Config) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	if err := Write(f, cfg); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Write encodes cfg as YAML to w.
func Write(w io.Writer, cfg *Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}
