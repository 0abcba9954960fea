package config

import (
	"fmt"
	"strconv"
)

// Config represents the persistent memostack configuration stored as
// config.toml in the .memostack/ directory. The TOML layout uses sections
// for logical grouping.
type Config struct {
	Version int           `toml:"version"`
	Storage StorageConfig `toml:"storage"`
	Stack   StackConfig   `toml:"stack"`
}

// StorageConfig holds storage backend settings.
type StorageConfig struct {
	Provider    string `toml:"provider,omitempty"`
	SQLitePath  string `toml:"sqlite_path,omitempty"`
	PostgresDSN string `toml:"postgres_dsn,omitempty"`
}

// StackConfig holds stack and display behavior settings.
type StackConfig struct {
	MaxHotCount              uint `toml:"max_hot_count,omitempty"`
	SpotlightIntervalSeconds uint `toml:"spotlight_interval_seconds,omitempty"`
	TabSpaces                uint `toml:"tab_spaces,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"storage.provider": {
		get: func(c *Config) string { return c.Storage.Provider },
		set: func(c *Config, v string) error { c.Storage.Provider = v; return nil },
	},
	"storage.sqlite_path": {
		get: func(c *Config) string { return c.Storage.SQLitePath },
		set: func(c *Config, v string) error { c.Storage.SQLitePath = v; return nil },
	},
	"storage.postgres_dsn": {
		get: func(c *Config) string { return c.Storage.PostgresDSN },
		set: func(c *Config, v string) error { c.Storage.PostgresDSN = v; return nil },
	},
	"stack.max_hot_count": {
		get: func(c *Config) string { return formatUint(c.Stack.MaxHotCount) },
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for stack.max_hot_count: %w", err)
			}
			c.Stack.MaxHotCount = uint(n)
			return nil
		},
	},
	"stack.spotlight_interval_seconds": {
		get: func(c *Config) string { return strconv.FormatUint(uint64(c.Stack.SpotlightIntervalSeconds), 10) },
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for stack.spotlight_interval_seconds: %w", err)
			}
			c.Stack.SpotlightIntervalSeconds = uint(n)
			return nil
		},
	},
	"stack.tab_spaces": {
		get: func(c *Config) string { return formatUint(c.Stack.TabSpaces) },
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for stack.tab_spaces: %w", err)
			}
			c.Stack.TabSpaces = uint(n)
			return nil
		},
	},
}

func formatUint(n uint) string {
	if n == 0 {
		return ""
	}
	return strconv.FormatUint(uint64(n), 10)
}
