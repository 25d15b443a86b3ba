package bots

import (
	"testing"

	"github.com/slack-go/slack"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		text      string
		wantInt   Intent
		wantTerms string
	}{
		{"HELP me", IntentHelp, ""},
		{"  show me the Menu ", IntentHelp, ""},
		{"what options do I have", IntentHelp, ""},
		{"list", IntentList, ""},
		{"list foo bar", IntentList, "foo|bar"},
		{"LIST   Foo \t bar  ", IntentList, "foo|bar"},
		{"list commands", IntentHelp, ""},
		{"listing", IntentUnrecognized, ""},
		{"please list foo", IntentUnrecognized, ""},
		{"xyz", IntentUnrecognized, ""},
		{"", IntentUnrecognized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := Classify(tt.text)
			if got.Intent != tt.wantInt {
				t.Errorf("Classify(%q).Intent = %v, want %v", tt.text, got.Intent, tt.wantInt)
			}
			if got.SearchTerms != tt.wantTerms {
				t.Errorf("Classify(%q).SearchTerms = %q, want %q", tt.text, got.SearchTerms, tt.wantTerms)
			}
		})
	}
}

func TestIntentString(t *testing.T) {
	if IntentHelp.String() != "help" || IntentList.String() != "list" || Intent(42).String() != "unrecognized" {
		t.Error("unexpected intent names")
	}
}

func TestIsOwnEmission(t *testing.T) {
	self := Identity{BotID: "B1", UserID: "U_BOT"}
	tests := []struct {
		name string
		ev   MessageEvent
		self Identity
		want bool
	}{
		{"human", MessageEvent{User: "U1", Text: "help"}, self, false},
		{"own bot id", MessageEvent{BotID: "B1", Text: "hi"}, self, true},
		{"own user id", MessageEvent{User: "U_BOT"}, self, true},
		{"nested own bot id", MessageEvent{Subtype: "message_changed", Message: &NestedMessage{BotID: "B1"}}, self, true},
		{"nested own user", MessageEvent{Subtype: "message_changed", Message: &NestedMessage{User: "U_BOT"}}, self, true},
		{"other bot", MessageEvent{BotID: "B2", User: "U2"}, self, false},
		{"unknown identity treats any bot as own", MessageEvent{BotID: "B2"}, Identity{}, true},
		{"unknown identity human", MessageEvent{User: "U1"}, Identity{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsOwnEmission(tt.ev, tt.self); got != tt.want {
				t.Errorf("IsOwnEmission = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsOwnCallback(t *testing.T) {
	self := Identity{BotID: "B1", UserID: "U_BOT"}
	tests := []struct {
		name string
		cb   slack.InteractionCallback
		self Identity
		want bool
	}{
		{"human click on own message", slack.InteractionCallback{User: slack.User{ID: "U1"}, Message: slack.Message{Msg: slack.Msg{BotID: "B1"}}}, self, false},
		{"own user", slack.InteractionCallback{User: slack.User{ID: "U_BOT"}}, self, true},
		{"unknown identity human", slack.InteractionCallback{User: slack.User{ID: "U1"}}, Identity{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsOwnCallback(tt.cb, tt.self); got != tt.want {
				t.Errorf("IsOwnCallback = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRenameEventShapes(t *testing.T) {
	tests := []struct {
		name, body   string
		wantID, want string
	}{
		{"nested", `{"type":"group_rename","channel":{"id":"G1","name":"new-name","created":1}}`, "G1", "new-name"},
		{"flat", `{"type":"group_rename","channel":"G2","name":"flat-name"}`, "G2", "flat-name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ev RenameEvent
			if err := ev.UnmarshalJSON([]byte(tt.body)); err != nil {
				t.Fatalf("UnmarshalJSON: %v", err)
			}
			if ev.ChannelID != tt.wantID || ev.Name != tt.want {
				t.Errorf("got %+v, want id=%s name=%s", ev, tt.wantID, tt.want)
			}
		})
	}

	var ev RenameEvent
	if err := ev.UnmarshalJSON([]byte(`{"channel":{"id":5}}`)); err == nil {
		t.Error("expected error for non-string channel id")
	}
}
