package config

// StoreDriver selects the channel store backend.
type StoreDriver string

const (
	StoreSQLite StoreDriver = "sqlite"
	StoreFile   StoreDriver = "file"
)

// Config is the top-level channel-manager configuration, corresponding to
// .chanman.yml.
type Config struct {
	Slack  SlackConfig  `yaml:"slack" koanf:"slack"`
	Auth   AuthConfig   `yaml:"auth" koanf:"auth"`
	Store  StoreConfig  `yaml:"store" koanf:"store"`
	Server ServerConfig `yaml:"server" koanf:"server"`
	Log    LogConfig    `yaml:"log" koanf:"log"`
}

// SlackConfig holds Slack credentials and the bot's identity.
type SlackConfig struct {
	BotToken      string `yaml:"bot_token" koanf:"bot_token"`
	UserToken     string `yaml:"user_token" koanf:"user_token"` // used for users.conversations; falls back to bot_token
	SigningSecret string `yaml:"signing_secret" koanf:"signing_secret"`
	APIURL        string `yaml:"api_url" koanf:"api_url"`
	BotID         string `yaml:"bot_id" koanf:"bot_id"`           // resolved with auth.test when empty
	BotUserID     string `yaml:"bot_user_id" koanf:"bot_user_id"` // resolved with auth.test when empty
}

// AuthConfig controls the gating-channel membership check.
type AuthConfig struct {
	GatingChannel string `yaml:"gating_channel" koanf:"gating_channel"`
	MaxPages      int    `yaml:"max_pages" koanf:"max_pages"`
	PageLimit     int    `yaml:"page_limit" koanf:"page_limit"`
	RatePerMinute int    `yaml:"rate_per_minute" koanf:"rate_per_minute"`
}

// StoreConfig selects where channel records live.
type StoreConfig struct {
	Driver StoreDriver `yaml:"driver" koanf:"driver"`
	Path   string      `yaml:"path" koanf:"path"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port     int  `yaml:"port" koanf:"port"`
	AllowAll bool `yaml:"allow_all" koanf:"allow_all"` // allow all CORS origins
}

// LogConfig mirrors logging.Options.
type LogConfig struct {
	Level      string `yaml:"level" koanf:"level"`
	Format     string `yaml:"format" koanf:"format"`
	File       string `yaml:"file" koanf:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" koanf:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" koanf:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days" koanf:"max_age_days"`
}
