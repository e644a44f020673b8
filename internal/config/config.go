// Package config loads audiotag settings from YAML with environment
// overrides.
package config

import "time"

// Config holds every tunable of a Tagger.
type Config struct {
	Lock    Lock   `yaml:"lock"`
	ID3v2   ID3v2  `yaml:"id3v2"`
	FLAC    FLAC   `yaml:"flac"`
	Write   Write  `yaml:"write"`
	Workers int    `yaml:"workers" validate:"gte=0,lte=1024"`
	Logger  Logger `yaml:"logger"`
}

// Lock configures the per-path lock.
type Lock struct {
	Timeout time.Duration `yaml:"timeout" validate:"gte=0"`
}

// ID3v2 configures tags written to MPEG files.
type ID3v2 struct {
	Version     int    `yaml:"version" validate:"oneof=3 4"`
	Encoding    string `yaml:"encoding" validate:"oneof=latin1 utf16 utf16be utf8"`
	UnknownKeys string `yaml:"unknown_keys" validate:"oneof=txxx drop"`
	Padding     int    `yaml:"padding" validate:"gte=0,lte=1048576"`
}

// FLAC configures rewritten FLAC metadata.
type FLAC struct {
	Vendor  string `yaml:"vendor" validate:"required"`
	Padding int    `yaml:"padding" validate:"gte=0,lte=16777215"`
}

// Write configures how files are replaced on disk.
type Write struct {
	PreserveModTime bool   `yaml:"preserve_mod_time"`
	BackupSuffix    string `yaml:"backup_suffix" validate:"omitempty,excludesall=/\\"`
	Validate        bool   `yaml:"validate"`
}

// Logger configures logging output.
type Logger struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json logfmt"`
}
