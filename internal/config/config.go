package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override. Nested keys use a double
// underscore: CHANMAN_SLACK__BOT_TOKEN -> slack.bot_token.
const EnvPrefix = "CHANMAN_"

// maxAuthPages mirrors auth.MaxPagesLimit.
const maxAuthPages = 1000

// LoadDotEnv loads KEY=value pairs from path into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// envKey maps CHANMAN_SLACK__BOT_TOKEN to slack.bot_token.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (CHANMAN_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validDrivers = map[StoreDriver]bool{
	StoreSQLite: true,
	StoreFile:   true,
}

var validLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Slack.BotToken == "" {
		return fmt.Errorf("slack.bot_token is required")
	}

	if c.Auth.GatingChannel == "" {
		return fmt.Errorf("auth.gating_channel is required")
	}
	if strings.HasPrefix(c.Auth.GatingChannel, "#") {
		return fmt.Errorf("auth.gating_channel must be a bare channel name, got %q", c.Auth.GatingChannel)
	}
	if c.Auth.MaxPages < 1 || c.Auth.MaxPages > maxAuthPages {
		return fmt.Errorf("auth.max_pages must be between 1 and %d", maxAuthPages)
	}
	if c.Auth.PageLimit < 0 {
		return fmt.Errorf("auth.page_limit must be non-negative")
	}
	if c.Auth.RatePerMinute < 0 {
		return fmt.Errorf("auth.rate_per_minute must be non-negative")
	}

	if !validDrivers[c.Store.Driver] {
		return fmt.Errorf("invalid store.driver %q: must be one of sqlite, file", c.Store.Driver)
	}
	if c.Store.Path == "" {
		return fmt.Errorf("store.path is required")
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}

	if c.Log.Level != "" && !validLevels[c.Log.Level] {
		return fmt.Errorf("invalid log.level %q: must be one of debug, info, warn, error", c.Log.Level)
	}

	return nil
}

// ListingToken returns the token used for users.conversations.
func (c *Config) ListingToken() string {
	if c.Slack.UserToken != "" {
		return c.Slack.UserToken
	}
	return c.Slack.BotToken
}
