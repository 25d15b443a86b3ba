// Package audit records who did what to which private channel.
package audit

import (
	"context"
	"time"
)

// ActorType identifies who performed an action.
type ActorType string

const (
	ActorUser   ActorType = "user"
	ActorSystem ActorType = "system"
)

// Action describes what was done.
type Action string

const (
	ActionUserJoined      Action = "user_joined"
	ActionChannelArchived Action = "channel_archived"
	ActionChannelRenamed  Action = "channel_renamed"
	ActionChannelRemoved  Action = "channel_removed"
	ActionAccessDenied    Action = "access_denied"
)

// Entry is a single audit trail record.
type Entry struct {
	ID            string    `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	ActorType     ActorType `json:"actor_type"`
	ActorID       string    `json:"actor_id,omitempty"`
	Action        Action    `json:"action"`
	ChannelID     string    `json:"channel_id,omitempty"`
	Summary       string    `json:"summary,omitempty"`
	PreviousValue string    `json:"previous_value,omitempty"`
	NewValue      string    `json:"new_value,omitempty"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// Logger accepts audit entries.
type Logger interface {
	Log(ctx context.Context, entry Entry) error
}

// Nop drops every entry.
type Nop struct{}

func (Nop) Log(context.Context, Entry) error { return nil }
