package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g., --sqlite
// on both "memostack stack" and "memostack capture").
type Flag struct {
	// Name is the long flag name (e.g. "sqlite").
	Name string

	// Shorthand is the one-letter short flag (e.g. "s"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "storage.sqlite_path").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddUintFlag,
// and BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagStorageProvider   = "storage-provider"
	FlagSQLite            = "sqlite"
	FlagPostgresDSN       = "postgres-dsn"
	FlagMaxHotCount       = "max-hot"
	FlagSpotlightInterval = "spotlight-interval"
	FlagTabSpaces         = "tab-spaces"
)

// DefaultFlagSet returns the flag definitions shared by the memostack
// commands.
func DefaultFlagSet() FlagSet {
	return FlagSet{
		FlagStorageProvider: {
			Name:        "storage-provider",
			ViperKey:    "storage.provider",
			Description: "storage backend to use (sqlite, postgres, or memory)",
		},
		FlagSQLite: {
			Name:        "sqlite",
			ViperKey:    "storage.sqlite_path",
			Description: "path to the SQLite database file",
		},
		FlagPostgresDSN: {
			Name:        "postgres-dsn",
			ViperKey:    "storage.postgres_dsn",
			Description: "PostgreSQL connection string",
		},
		FlagMaxHotCount: {
			Name:        "max-hot",
			ViperKey:    "stack.max_hot_count",
			Description: "maximum number of memos on the hot stack",
		},
		FlagSpotlightInterval: {
			Name:        "spotlight-interval",
			ViperKey:    "stack.spotlight_interval_seconds",
			Description: "seconds between spotlight resamples, 0 disables",
		},
		FlagTabSpaces: {
			Name:        "tab-spaces",
			ViperKey:    "stack.tab_spaces",
			Description: "spaces inserted when pressing tab in the capture input",
		},
	}
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddUintFlag registers a uint flag on cmd from the given FlagSet.
func AddUintFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *uint) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultUint(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().UintVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().UintVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}

// defaultUint returns the default uint value for a viper key from NewDefaultConfig.
func defaultUint(viperKey string) uint {
	v := viper.New()
	setViperDefaults(v)
	return v.GetUint(viperKey)
}
