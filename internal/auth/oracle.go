// Package auth decides whether a Slack user may use the bot, based on
// membership of a gating private channel.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/slack-go/slack"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// DefaultMaxPages is the page budget used when none is configured.
	DefaultMaxPages = 50
	// MaxPagesLimit is the largest page budget accepted.
	MaxPagesLimit = 1000
)

var (
	// ErrPlatformCallFailed wraps a rejected users.conversations call.
	ErrPlatformCallFailed = errors.New("platform call failed")
	// ErrPageBudgetExceeded is returned when the scan stopped at MaxPages
	// without reaching the end of the listing.
	ErrPageBudgetExceeded = errors.New("authorization page budget exceeded")
)

// ConversationLister is the part of *slack.Client the oracle needs.
type ConversationLister interface {
	GetConversationsForUserContext(ctx context.Context, params *slack.GetConversationsForUserParameters) ([]slack.Channel, string, error)
}

// Config configures an Oracle.
type Config struct {
	// GatingChannel is the name (not id) of the private channel whose
	// members are authorized.
	GatingChannel string
	// MaxPages bounds the listing scan; 0 means DefaultMaxPages.
	MaxPages int
	// PageLimit is the page size requested from Slack; 0 lets Slack decide.
	PageLimit int
	// RatePerMinute throttles listing calls; 0 disables throttling.
	RatePerMinute int
}

// Oracle answers membership questions by scanning the private channels a
// user belongs to. Decisions are never cached.
type Oracle struct {
	lister  ConversationLister
	cfg     Config
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewOracle creates an Oracle. It fails when no gating channel is set or the
// page budget is out of range.
func NewOracle(lister ConversationLister, cfg Config, logger *zap.Logger) (*Oracle, error) {
	if cfg.GatingChannel == "" {
		return nil, fmt.Errorf("gating channel is required")
	}
	if cfg.MaxPages == 0 {
		cfg.MaxPages = DefaultMaxPages
	}
	if cfg.MaxPages < 0 || cfg.MaxPages > MaxPagesLimit {
		return nil, fmt.Errorf("max pages must be between 1 and %d, got %d", MaxPagesLimit, cfg.MaxPages)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	o := &Oracle{lister: lister, cfg: cfg, logger: logger}
	if cfg.RatePerMinute > 0 {
		o.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RatePerMinute)), 1)
	}
	return o, nil
}

// IsAuthorized reports whether userID is a member of the gating channel.
// Each page of the scan is one users.conversations call; the scan stops at
// the first match, at an empty next cursor, or at the page budget. Any
// failure denies access.
func (o *Oracle) IsAuthorized(ctx context.Context, userID string) (bool, error) {
	cursor := ""
	for page := 1; page <= o.cfg.MaxPages; page++ {
		if o.limiter != nil {
			if err := o.limiter.Wait(ctx); err != nil {
				return false, fmt.Errorf("waiting for rate limiter: %w", err)
			}
		}

		channels, next, err := o.lister.GetConversationsForUserContext(ctx, &slack.GetConversationsForUserParameters{
			UserID:          userID,
			Cursor:          cursor,
			Types:           []string{"private_channel"},
			Limit:           o.cfg.PageLimit,
			ExcludeArchived: true,
		})
		if err != nil {
			return false, fmt.Errorf("%w: users.conversations page %d: %v", ErrPlatformCallFailed, page, err)
		}

		for _, ch := range channels {
			if ch.Name == o.cfg.GatingChannel {
				return true, nil
			}
		}

		if next == "" {
			return false, nil
		}
		cursor = next
	}

	o.logger.Warn("Authorization scan hit page budget",
		zap.String("user", userID),
		zap.Int("max_pages", o.cfg.MaxPages))
	return false, fmt.Errorf("%w: %d pages", ErrPageBudgetExceeded, o.cfg.MaxPages)
}
