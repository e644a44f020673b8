package config

import "time"

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Lock: Lock{Timeout: 60 * time.Second},
		ID3v2: ID3v2{
			Version:     4,
			Encoding:    "utf16",
			UnknownKeys: "txxx",
			Padding:     1024,
		},
		FLAC: FLAC{
			Vendor:  "audiotag",
			Padding: 4096,
		},
		Workers: 0, // runtime.GOMAXPROCS
		Logger: Logger{
			Level:  "info",
			Format: "text",
		},
	}
}
