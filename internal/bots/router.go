package bots

import (
	"context"
	"errors"

	"github.com/slack-go/slack"
	"go.uber.org/zap"

	"github.com/ziadkadry99/channel-manager/internal/audit"
	"github.com/ziadkadry99/channel-manager/internal/channels"
	"github.com/ziadkadry99/channel-manager/internal/pagination"
	"github.com/ziadkadry99/channel-manager/internal/render"
)

// Authorizer decides whether a user may use the bot.
type Authorizer interface {
	IsAuthorized(ctx context.Context, userID string) (bool, error)
}

// Searcher runs paged channel searches.
type Searcher interface {
	SearchPage(ctx context.Context, c pagination.Cursor) (channels.Page, error)
}

// Mutator applies structural channel events to the store.
type Mutator interface {
	Get(ctx context.Context, id string) (*channels.Record, error)
	Rename(ctx context.Context, id, name string) error
	Remove(ctx context.Context, id string) (bool, error)
}

// Response is the synchronous answer to an interactive callback.
type Response struct {
	Message render.Message
	Replace bool
}

// RouterDeps groups everything a Router needs.
type RouterDeps struct {
	Identity   Identity
	Authorizer Authorizer
	Searcher   Searcher
	Mutator    Mutator
	Platform   Platform
	Audit      audit.Logger // optional
	Logger     *zap.Logger
}

// Router turns inbound Slack events into store updates and replies.
type Router struct {
	self     Identity
	auth     Authorizer
	search   Searcher
	store    Mutator
	platform Platform
	audit    audit.Logger
	logger   *zap.Logger
}

// NewRouter creates a router.
func NewRouter(deps RouterDeps) *Router {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	trail := deps.Audit
	if trail == nil {
		trail = audit.Nop{}
	}
	return &Router{
		self:     deps.Identity,
		auth:     deps.Authorizer,
		search:   deps.Searcher,
		store:    deps.Mutator,
		platform: deps.Platform,
		audit:    trail,
		logger:   logger,
	}
}

// HandleMessage replies to a chat message in the channel it came from.
func (r *Router) HandleMessage(ctx context.Context, ev MessageEvent) error {
	reply := r.Reply(ctx, ev)
	if reply == nil {
		return nil
	}
	return r.platform.PostMessage(ctx, ev.Channel, *reply)
}

// Reply computes the answer to ev without posting it. A nil reply means the
// message is ignored.
func (r *Router) Reply(ctx context.Context, ev MessageEvent) *render.Message {
	log := loggerFrom(ctx, r.logger)

	if ev.Subtype != "" && ev.Subtype != "message_changed" {
		return nil
	}
	if IsOwnEmission(ev, r.self) {
		return nil
	}
	user, text := ev.Author()
	if user == "" {
		return nil
	}

	log = log.With(zap.String("user", user), zap.String("channel", ev.Channel))
	if !r.authorized(ctx, log, user) {
		log.Info("unauthorized message", zap.String("text", text))
		r.record(ctx, log, audit.Entry{ActorType: audit.ActorUser, ActorID: user, Action: audit.ActionAccessDenied, Summary: text})
		msg := render.NotAuthorized()
		return &msg
	}

	cmd := Classify(text)
	log.Debug("classified message", zap.Stringer("intent", cmd.Intent))

	var msg render.Message
	switch cmd.Intent {
	case IntentHelp:
		msg = render.Help()
	case IntentList:
		msg = r.listPage(ctx, log, pagination.First(cmd.SearchTerms))
	default:
		msg = render.Unrecognized()
	}
	return &msg
}

// HandleInteraction answers a button click. A nil response acknowledges the
// click without changing anything.
func (r *Router) HandleInteraction(ctx context.Context, cb slack.InteractionCallback) (*Response, error) {
	log := loggerFrom(ctx, r.logger)

	if cb.User.ID == "" || IsOwnCallback(cb, r.self) {
		return nil, nil
	}
	actions := cb.ActionCallback.AttachmentActions
	if len(actions) == 0 || actions[0] == nil {
		log.Debug("interaction without attachment action", zap.String("callback_id", cb.CallbackID))
		return nil, nil
	}
	action := actions[0]
	log = log.With(
		zap.String("user", cb.User.ID),
		zap.String("channel", cb.Channel.ID),
		zap.String("action", action.Name),
	)

	if !r.authorized(ctx, log, cb.User.ID) {
		log.Info("unauthorized interaction")
		r.record(ctx, log, audit.Entry{
			ActorType: audit.ActorUser,
			ActorID:   cb.User.ID,
			Action:    audit.ActionAccessDenied,
			ChannelID: action.Value,
			Summary:   action.Name,
		})
		return &Response{Message: render.NotAuthorized()}, nil
	}

	switch action.Name {
	case render.ActionListChannels:
		cursor, err := pagination.DecodeOrReset(action.Value)
		if err != nil {
			log.Warn("resetting malformed cursor", zap.String("value", action.Value), zap.Error(err))
		}
		return &Response{Message: r.listPage(ctx, log, cursor), Replace: true}, nil

	case render.ActionJoinChannel:
		if err := r.platform.InviteUser(ctx, action.Value, cb.User.ID); err != nil {
			return &Response{Message: render.ActionFailure(action.Name)}, err
		}
		log.Info("user joined channel", zap.String("target", action.Value))
		r.record(ctx, log, audit.Entry{ActorType: audit.ActorUser, ActorID: cb.User.ID, Action: audit.ActionUserJoined, ChannelID: action.Value})
		return &Response{Message: render.Joined(action.Value)}, nil

	case render.ActionArchiveChannel:
		if err := r.platform.ArchiveChannel(ctx, action.Value); err != nil {
			return &Response{Message: render.ActionFailure(action.Name)}, err
		}
		log.Info("channel archived", zap.String("target", action.Value))
		r.record(ctx, log, audit.Entry{ActorType: audit.ActorUser, ActorID: cb.User.ID, Action: audit.ActionChannelArchived, ChannelID: action.Value})
		return &Response{Message: render.Archived(action.Value)}, nil

	case render.ActionRequestChannel:
		return &Response{Message: render.RequestForm()}, nil

	default:
		log.Debug("ignoring unknown action")
		return nil, nil
	}
}

// HandleRename applies a group_rename event.
func (r *Router) HandleRename(ctx context.Context, ev RenameEvent) error {
	log := loggerFrom(ctx, r.logger).With(zap.String("channel", ev.ChannelID))
	if ev.ChannelID == "" || ev.Name == "" {
		log.Debug("ignoring incomplete rename")
		return nil
	}
	prev, err := r.store.Get(ctx, ev.ChannelID)
	if err != nil {
		return err
	}
	if prev == nil {
		log.Debug("renamed channel is not tracked")
		return nil
	}
	err = r.store.Rename(ctx, ev.ChannelID, ev.Name)
	if errors.Is(err, channels.ErrNotFound) {
		log.Debug("renamed channel is not tracked")
		return nil
	}
	if err != nil {
		return err
	}
	log.Info("channel renamed", zap.String("from", prev.Name), zap.String("name", ev.Name))
	r.record(ctx, log, audit.Entry{
		ActorType:     audit.ActorSystem,
		Action:        audit.ActionChannelRenamed,
		ChannelID:     ev.ChannelID,
		PreviousValue: prev.Name,
		NewValue:      ev.Name,
	})
	return nil
}

// HandleArchive applies a group_archive event.
func (r *Router) HandleArchive(ctx context.Context, ev ChannelEvent) error {
	return r.remove(ctx, ev, EventGroupArchive)
}

// HandleDeleted applies a group_deleted event.
func (r *Router) HandleDeleted(ctx context.Context, ev ChannelEvent) error {
	return r.remove(ctx, ev, EventGroupDeleted)
}

func (r *Router) remove(ctx context.Context, ev ChannelEvent, cause string) error {
	log := loggerFrom(ctx, r.logger).With(zap.String("channel", ev.Channel))
	if ev.Channel == "" {
		return nil
	}
	removed, err := r.store.Remove(ctx, ev.Channel)
	if err != nil {
		return err
	}
	log.Info("channel removed", zap.String("cause", cause), zap.Bool("removed", removed))
	if removed {
		r.record(ctx, log, audit.Entry{ActorType: audit.ActorSystem, Action: audit.ActionChannelRemoved, ChannelID: ev.Channel, Summary: cause})
	}
	return nil
}

// record writes an audit entry. Failures are logged and never surface to users.
func (r *Router) record(ctx context.Context, log *zap.Logger, e audit.Entry) {
	e.CorrelationID = CorrelationID(ctx)
	if err := r.audit.Log(ctx, e); err != nil {
		log.Warn("audit write failed", zap.String("action", string(e.Action)), zap.Error(err))
	}
}

func (r *Router) authorized(ctx context.Context, log *zap.Logger, user string) bool {
	ok, err := r.auth.IsAuthorized(ctx, user)
	if err != nil {
		log.Warn("authorization check failed", zap.Error(err))
		return false
	}
	return ok
}

func (r *Router) listPage(ctx context.Context, log *zap.Logger, cursor pagination.Cursor) render.Message {
	page, err := r.search.SearchPage(ctx, cursor)
	if err != nil {
		log.Error("channel search failed",
			zap.String("terms", cursor.SearchTerms),
			zap.Int("offset", cursor.Offset),
			zap.Error(err),
		)
		return render.QueryFailure()
	}
	return render.ChannelPage(page, cursor)
}

type (
	loggerKey      struct{}
	correlationKey struct{}
)

func withCorrelation(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

// CorrelationID returns the id the dispatcher assigned to the current event.
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}

func withLogger(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

func loggerFrom(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok && l != nil {
		return l
	}
	return fallback
}
