package bots

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Identity is who the bot is on Slack. Events carrying either id are the
// bot's own emissions.
type Identity struct {
	BotID  string
	UserID string
}

// NestedMessage is the "message" sub-object of edited-message events.
type NestedMessage struct {
	BotID string `json:"bot_id,omitempty"`
	User  string `json:"user,omitempty"`
	Text  string `json:"text,omitempty"`
}

// MessageEvent is a Slack "message" event.
type MessageEvent struct {
	Type    string         `json:"type"`
	Subtype string         `json:"subtype,omitempty"`
	BotID   string         `json:"bot_id,omitempty"`
	User    string         `json:"user"`
	Text    string         `json:"text"`
	Channel string         `json:"channel"`
	TS      string         `json:"ts,omitempty"`
	Message *NestedMessage `json:"message,omitempty"`
}

// Author returns the acting user and text, looking through edit wrappers.
func (e MessageEvent) Author() (user, text string) {
	if e.Subtype == "message_changed" && e.Message != nil {
		return e.Message.User, e.Message.Text
	}
	return e.User, e.Text
}

// RenameEvent is a "group_rename" event.
type RenameEvent struct {
	ChannelID string
	Name      string
}

// UnmarshalJSON accepts both the Slack shape {"channel":{"id","name"}} and
// the flat {"channel":"G1","name":"new"} shape.
func (e *RenameEvent) UnmarshalJSON(data []byte) error {
	var raw struct {
		Channel json.RawMessage `json:"channel"`
		Name    string          `json:"name"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	trimmed := bytes.TrimSpace(raw.Channel)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var ch struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		}
		if err := json.Unmarshal(trimmed, &ch); err != nil {
			return fmt.Errorf("decoding renamed channel: %w", err)
		}
		e.ChannelID, e.Name = ch.ID, ch.Name
		return nil
	}
	if len(trimmed) > 0 {
		if err := json.Unmarshal(trimmed, &e.ChannelID); err != nil {
			return fmt.Errorf("decoding renamed channel id: %w", err)
		}
	}
	e.Name = raw.Name
	return nil
}

// ChannelEvent is a "group_archive" or "group_deleted" event.
type ChannelEvent struct {
	Type    string `json:"type"`
	Channel string `json:"channel"`
}

// Inner event types the dispatcher routes.
const (
	EventMessage      = "message"
	EventGroupRename  = "group_rename"
	EventGroupArchive = "group_archive"
	EventGroupDeleted = "group_deleted"
)
