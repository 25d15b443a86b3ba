package bots

import (
	"context"
	"errors"
	"fmt"

	"github.com/slack-go/slack"

	"github.com/ziadkadry99/channel-manager/internal/render"
)

// ErrPlatformCallFailed wraps any failed Slack Web API call.
var ErrPlatformCallFailed = errors.New("slack platform call failed")

// Platform is the outbound side of the bot.
type Platform interface {
	PostMessage(ctx context.Context, channelID string, msg render.Message) error
	InviteUser(ctx context.Context, channelID, userID string) error
	ArchiveChannel(ctx context.Context, channelID string) error
}

// SlackPlatform implements Platform with the Slack Web API. Posting uses the
// bot token; invites and archives use the admin client, which for private
// channels is usually a user token.
type SlackPlatform struct {
	bot   *slack.Client
	admin *slack.Client
}

// NewSlackPlatform creates a platform. A nil admin client falls back to bot.
func NewSlackPlatform(bot, admin *slack.Client) *SlackPlatform {
	if admin == nil {
		admin = bot
	}
	return &SlackPlatform{bot: bot, admin: admin}
}

func (p *SlackPlatform) PostMessage(ctx context.Context, channelID string, msg render.Message) error {
	if _, _, err := p.bot.PostMessageContext(ctx, channelID, msg.MsgOptions()...); err != nil {
		return fmt.Errorf("%w: chat.postMessage: %v", ErrPlatformCallFailed, err)
	}
	return nil
}

func (p *SlackPlatform) InviteUser(ctx context.Context, channelID, userID string) error {
	if _, err := p.admin.InviteUsersToConversationContext(ctx, channelID, userID); err != nil {
		return fmt.Errorf("%w: conversations.invite: %v", ErrPlatformCallFailed, err)
	}
	return nil
}

func (p *SlackPlatform) ArchiveChannel(ctx context.Context, channelID string) error {
	if err := p.admin.ArchiveConversationContext(ctx, channelID); err != nil {
		return fmt.Errorf("%w: conversations.archive: %v", ErrPlatformCallFailed, err)
	}
	return nil
}

// ResolveIdentity asks Slack who the bot token belongs to. Ids already set in
// known win over the ones Slack reports.
func ResolveIdentity(ctx context.Context, client *slack.Client, known Identity) (Identity, error) {
	if known.BotID != "" && known.UserID != "" {
		return known, nil
	}
	resp, err := client.AuthTestContext(ctx)
	if err != nil {
		return known, fmt.Errorf("%w: auth.test: %v", ErrPlatformCallFailed, err)
	}
	if known.BotID == "" {
		known.BotID = resp.BotID
	}
	if known.UserID == "" {
		known.UserID = resp.UserID
	}
	return known, nil
}
