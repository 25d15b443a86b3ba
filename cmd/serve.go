package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ziadkadry99/channel-manager/internal/audit"
	"github.com/ziadkadry99/channel-manager/internal/auth"
	"github.com/ziadkadry99/channel-manager/internal/bots"
	"github.com/ziadkadry99/channel-manager/internal/channels"
	"github.com/ziadkadry99/channel-manager/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Slack events server",
	Long: `Starts the HTTP server that receives Slack Events API and interactive
message callbacks on /slack/events and /slack/interactions.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if servePort != 0 {
			cfg.Server.Port = servePort
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer logger.Sync()

		repo, database, err := openRepository(cfg)
		if err != nil {
			return err
		}
		defer repo.Close()

		var (
			pinger server.Pinger
			trail  audit.Logger = audit.Nop{}
			audits *audit.Store
		)
		if database != nil {
			pinger = database
			audits = audit.NewStore(database)
			trail = audits
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		botClient := newSlackClient(cfg, cfg.Slack.BotToken)
		var adminClient = botClient
		if cfg.Slack.UserToken != "" {
			adminClient = newSlackClient(cfg, cfg.Slack.UserToken)
		}

		identity, err := bots.ResolveIdentity(ctx, botClient, bots.Identity{
			BotID:  cfg.Slack.BotID,
			UserID: cfg.Slack.BotUserID,
		})
		if err != nil {
			// Without an identity any bot-authored message is treated as our own.
			logger.Warn("could not resolve bot identity", zap.Error(err))
		}

		oracle, err := auth.NewOracle(newSlackClient(cfg, cfg.ListingToken()), auth.Config{
			GatingChannel: cfg.Auth.GatingChannel,
			MaxPages:      cfg.Auth.MaxPages,
			PageLimit:     cfg.Auth.PageLimit,
			RatePerMinute: cfg.Auth.RatePerMinute,
		}, logger.Named("auth"))
		if err != nil {
			return fmt.Errorf("creating authorization oracle: %w", err)
		}

		router := bots.NewRouter(bots.RouterDeps{
			Identity:   identity,
			Authorizer: oracle,
			Searcher:   channels.NewService(repo),
			Mutator:    repo,
			Platform:   bots.NewSlackPlatform(botClient, adminClient),
			Audit:      trail,
			Logger:     logger.Named("router"),
		})
		dispatcher := bots.NewDispatcher(router, cfg.Slack.SigningSecret, logger.Named("dispatcher"))
		if cfg.Slack.SigningSecret == "" {
			logger.Warn("slack.signing_secret is empty; requests are not verified")
		}

		srv := server.New(server.Config{
			Port:     cfg.Server.Port,
			AllowAll: cfg.Server.AllowAll,
		}, pinger, logger.Named("http"))
		bots.RegisterRoutes(srv.Router(), dispatcher)
		if audits != nil {
			audit.RegisterRoutes(srv.Router(), audits)
		}

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start()
		}()

		logger.Info("chanman started",
			zap.String("addr", srv.Addr()),
			zap.String("gating_channel", cfg.Auth.GatingChannel),
			zap.String("store", string(cfg.Store.Driver)),
			zap.String("bot_id", identity.BotID),
		)

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error: %w", err)
			}
		case <-ctx.Done():
			logger.Info("shutting down")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown", zap.Error(err))
		}
		dispatcher.Wait()
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (overrides server.port)")
	rootCmd.AddCommand(serveCmd)
}
