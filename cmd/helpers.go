package cmd

import (
	"fmt"

	"github.com/slack-go/slack"
	"go.uber.org/zap"

	"github.com/ziadkadry99/channel-manager/internal/channels"
	"github.com/ziadkadry99/channel-manager/internal/config"
	"github.com/ziadkadry99/channel-manager/internal/db"
	"github.com/ziadkadry99/channel-manager/internal/logging"
)

// loadConfig loads the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `chanman init` to create a config file", err)
	}
	return cfg, nil
}

// newLogger builds the process logger; --verbose forces debug level.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	opts := logging.Options{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	}
	if verbose {
		opts.Level = "debug"
	}
	return logging.New(opts)
}

// openRepository opens the configured channel store. The returned database is
// nil for the file store.
func openRepository(cfg *config.Config) (channels.Repository, *db.DB, error) {
	switch cfg.Store.Driver {
	case config.StoreFile:
		store, err := channels.NewFileStore(cfg.Store.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("opening file store: %w", err)
		}
		return store, nil, nil
	case config.StoreSQLite, "":
		database, err := db.Open(cfg.Store.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("opening database: %w", err)
		}
		return channels.NewStore(database), database, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// newSlackClient creates a Web API client for token.
func newSlackClient(cfg *config.Config, token string) *slack.Client {
	var opts []slack.Option
	if cfg.Slack.APIURL != "" {
		opts = append(opts, slack.OptionAPIURL(cfg.Slack.APIURL))
	}
	return slack.New(token, opts...)
}
