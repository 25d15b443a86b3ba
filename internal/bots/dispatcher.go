package bots

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"

	"github.com/google/uuid"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// Dispatcher receives Slack HTTP callbacks and hands them to the Router.
// Event callbacks are acknowledged at once and handled in their own
// goroutine; interactive callbacks are answered synchronously.
type Dispatcher struct {
	router        *Router
	signingSecret string
	logger        *zap.Logger
	wg            sync.WaitGroup
}

// NewDispatcher creates a dispatcher. An empty signing secret disables
// request verification.
func NewDispatcher(router *Router, signingSecret string, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{router: router, signingSecret: signingSecret, logger: logger}
}

// HandleEvent handles POST /slack/events.
func (d *Dispatcher) HandleEvent(w http.ResponseWriter, r *http.Request) {
	body, ok := d.readVerified(w, r)
	if !ok {
		return
	}

	var envelope slackevents.EventsAPICallbackEvent
	if err := json.Unmarshal(body, &envelope); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	switch envelope.Type {
	case slackevents.URLVerification:
		var challenge slackevents.EventsAPIURLVerificationEvent
		if err := json.Unmarshal(body, &challenge); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		writeJSON(w, map[string]string{"challenge": challenge.Challenge})

	case slackevents.CallbackEvent:
		w.WriteHeader(http.StatusOK)
		if retry := r.Header.Get("X-Slack-Retry-Num"); retry != "" {
			d.logger.Debug("dropping slack retry",
				zap.String("event_id", envelope.EventID),
				zap.String("retry", retry),
				zap.String("reason", r.Header.Get("X-Slack-Retry-Reason")),
			)
			return
		}
		if envelope.InnerEvent == nil {
			d.logger.Warn("event callback without inner event", zap.String("event_id", envelope.EventID))
			return
		}
		inner := append(json.RawMessage(nil), *envelope.InnerEvent...)
		d.spawn(context.WithoutCancel(r.Context()), envelope.EventID, inner)

	default:
		w.WriteHeader(http.StatusOK)
	}
}

func (d *Dispatcher) spawn(ctx context.Context, eventID string, inner json.RawMessage) {
	correlation := uuid.NewString()
	log := d.logger.With(
		zap.String("correlation_id", correlation),
		zap.String("event_id", eventID),
	)
	ctx = withCorrelation(ctx, correlation)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if p := recover(); p != nil {
				log.Error("event handler panicked", zap.Any("panic", p))
			}
		}()
		if err := d.Dispatch(withLogger(ctx, log), inner); err != nil {
			log.Error("event handling failed", zap.Error(err))
		}
	}()
}

// Dispatch routes one inner event synchronously.
func (d *Dispatcher) Dispatch(ctx context.Context, inner json.RawMessage) error {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(inner, &head); err != nil {
		return fmt.Errorf("decoding inner event: %w", err)
	}

	switch head.Type {
	case EventMessage:
		var ev MessageEvent
		if err := json.Unmarshal(inner, &ev); err != nil {
			return fmt.Errorf("decoding message event: %w", err)
		}
		return d.router.HandleMessage(ctx, ev)

	case EventGroupRename:
		var ev RenameEvent
		if err := json.Unmarshal(inner, &ev); err != nil {
			return fmt.Errorf("decoding %s event: %w", head.Type, err)
		}
		return d.router.HandleRename(ctx, ev)

	case EventGroupArchive, EventGroupDeleted:
		var ev ChannelEvent
		if err := json.Unmarshal(inner, &ev); err != nil {
			return fmt.Errorf("decoding %s event: %w", head.Type, err)
		}
		if head.Type == EventGroupArchive {
			return d.router.HandleArchive(ctx, ev)
		}
		return d.router.HandleDeleted(ctx, ev)

	default:
		loggerFrom(ctx, d.logger).Debug("ignoring event", zap.String("type", head.Type))
		return nil
	}
}

// HandleInteraction handles POST /slack/interactions.
func (d *Dispatcher) HandleInteraction(w http.ResponseWriter, r *http.Request) {
	body, ok := d.readVerified(w, r)
	if !ok {
		return
	}

	form, err := url.ParseQuery(string(body))
	if err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	var cb slack.InteractionCallback
	if err := json.Unmarshal([]byte(form.Get("payload")), &cb); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	correlation := uuid.NewString()
	log := d.logger.With(zap.String("correlation_id", correlation))
	ctx := withCorrelation(withLogger(r.Context(), log), correlation)
	resp, err := d.router.HandleInteraction(ctx, cb)
	if err != nil {
		log.Error("interaction handling failed", zap.String("user", cb.User.ID), zap.Error(err))
	}
	if resp == nil {
		w.WriteHeader(http.StatusOK)
		return
	}

	data, err := resp.Message.ResponseJSON(resp.Replace)
	if err != nil {
		log.Error("encoding interaction response", zap.Error(err))
		w.WriteHeader(http.StatusOK)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// Wait blocks until every in-flight event task has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) readVerified(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return nil, false
	}

	if d.signingSecret == "" {
		return body, true
	}
	sv, err := slack.NewSecretsVerifier(r.Header, d.signingSecret)
	if err == nil {
		if _, err = sv.Write(body); err == nil {
			err = sv.Ensure()
		}
	}
	if err != nil {
		d.logger.Warn("rejecting unsigned slack request", zap.String("path", r.URL.Path), zap.Error(err))
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return nil, false
	}
	return body, true
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
