package audiotag

import (
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/simonhull/audiotag/internal/config"
)

// Config holds every tunable of a Tagger. Re-exported from internal/config.
type Config = config.Config

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return config.Default()
}

// LoadConfig reads a YAML configuration file, applies the AUDIOTAG_*
// environment overrides and validates the result. A missing file yields
// the defaults.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

// SaveConfig writes cfg as YAML to path, in the form LoadConfig reads.
func SaveConfig(path string, cfg *Config) error {
	return config.Save(path, cfg)
}

// WriteConfig encodes cfg as YAML to w.
func WriteConfig(w io.Writer, cfg *Config) error {
	return config.Write(w, cfg)
}

// Option configures a Tagger.
//
// Options use the functional options pattern:
//
//	t, err := audiotag.New(
//	    audiotag.WithLockTimeout(5*time.Second),
//	    audiotag.WithLogger(slog.Default()),
//	)
type Option func(*settings)

// settings collects options before New builds the Tagger.
type settings struct {
	cfg         *Config
	logger      *slog.Logger
	registerer  prometheus.Registerer
	plugins     []Plugin
	lockTimeout time.Duration
	workers     int
}

// WithConfig applies a configuration. Later options override its values.
func WithConfig(cfg *Config) Option {
	return func(s *settings) {
		if cfg != nil {
			c := *cfg
			s.cfg = &c
		}
	}
}

// WithLogger sets the logger. By default nothing is logged.
//
// Operations log at debug level with an operation ID; lock timeouts log
// at warn level.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithMetrics registers the Tagger's Prometheus collectors on reg.
// Several Taggers may share one registry.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(s *settings) {
		s.registerer = reg
	}
}

// WithLockTimeout bounds how long an operation waits for another
// operation on the same file. Waits that exceed it fail with
// ErrLockTimeout. Default 60 seconds.
func WithLockTimeout(d time.Duration) Option {
	return func(s *settings) {
		s.lockTimeout = d
	}
}

// WithWorkers bounds how many asynchronous operations run at once.
// Default runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(s *settings) {
		s.workers = n
	}
}

// WithPlugins adds format plugins. They are consulted before the built-in
// ID3v2, FLAC and ID3v1 plugins.
func WithPlugins(plugins ...Plugin) Option {
	return func(s *settings) {
		s.plugins = append(s.plugins, plugins...)
	}
}
