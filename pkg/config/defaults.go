package config

const (
	defaultStorageProvider = "sqlite"

	defaultMaxHotCount              = 7
	defaultSpotlightIntervalSeconds = 60
	defaultTabSpaces                = 2
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Storage: StorageConfig{
			Provider: defaultStorageProvider,
		},
		Stack: StackConfig{
			MaxHotCount:              defaultMaxHotCount,
			SpotlightIntervalSeconds: defaultSpotlightIntervalSeconds,
			TabSpaces:                defaultTabSpaces,
		},
	}
}
