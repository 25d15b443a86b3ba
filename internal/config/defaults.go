package config

// DefaultPath is the config file looked up when --config is not given.
const DefaultPath = ".chanman.yml"

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Auth: AuthConfig{
			MaxPages:  50,
			PageLimit: 200,
		},
		Store: StoreConfig{
			Driver: StoreSQLite,
			Path:   "data/chanman.db",
		},
		Server: ServerConfig{
			Port: 3000,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "json",
			MaxSizeMB:  100,
			MaxBackups: 5,
			MaxAgeDays: 28,
		},
	}
}
