package render

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/slack-go/slack"

	"github.com/ziadkadry99/channel-manager/internal/channels"
	"github.com/ziadkadry99/channel-manager/internal/pagination"
)

func makePage(n, total int) channels.Page {
	page := channels.Page{TotalCount: total}
	for i := 0; i < n; i++ {
		page.Documents = append(page.Documents, channels.Record{
			ID:      fmt.Sprintf("G%d", i),
			Name:    fmt.Sprintf("chan-%d", i),
			Created: int64(1000 + i),
		})
	}
	return page
}

// navActions returns the navigation buttons by label, or nil when the
// message has no navigation attachment.
func navActions(m Message) map[string]slack.AttachmentAction {
	for _, a := range m.Attachments {
		if a.Text == SeeMoreText {
			out := map[string]slack.AttachmentAction{}
			for _, act := range a.Actions {
				out[act.Text] = act
			}
			return out
		}
	}
	return nil
}

func TestHelp(t *testing.T) {
	m := Help()
	if m.Text != HelpText {
		t.Errorf("unexpected help text: %q", m.Text)
	}
	if len(m.Attachments) != 1 {
		t.Fatalf("expected 1 attachment, got %d", len(m.Attachments))
	}
	actions := m.Attachments[0].Actions
	if len(actions) != 2 {
		t.Fatalf("expected 2 actions, got %d", len(actions))
	}
	if actions[0].Name != ActionRequestChannel || actions[0].Value != "" {
		t.Errorf("unexpected request action: %+v", actions[0])
	}
	if actions[1].Name != ActionListChannels {
		t.Errorf("unexpected list action: %+v", actions[1])
	}
	c, err := pagination.Decode(actions[1].Value)
	if err != nil || c != pagination.First("") {
		t.Errorf("list action carries %q (%v), want first unfiltered page", actions[1].Value, err)
	}
}

func TestChannelPageEmpty(t *testing.T) {
	m := ChannelPage(channels.Page{TotalCount: 0}, pagination.First("x"))
	if m.Text != NoMatchesText {
		t.Errorf("unexpected text %q", m.Text)
	}
	if len(m.Attachments) != 0 {
		t.Errorf("expected no attachments, got %d", len(m.Attachments))
	}
}

func TestChannelPageEntries(t *testing.T) {
	page := channels.Page{
		TotalCount: 1,
		Documents: []channels.Record{{
			ID: "G42", Name: "acme", Topic: "Incident", Purpose: "Coordinate", Created: 1530000000,
		}},
	}
	m := ChannelPage(page, pagination.First(""))
	if m.Text != ListHeaderText {
		t.Errorf("unexpected header %q", m.Text)
	}
	if len(m.Attachments) != 1 {
		t.Fatalf("expected 1 attachment, got %d", len(m.Attachments))
	}
	a := m.Attachments[0]
	if a.Title != "#acme" {
		t.Errorf("title = %q", a.Title)
	}
	if a.Text != "_Incident_\nCoordinate" {
		t.Errorf("text = %q", a.Text)
	}
	if string(a.Ts) != "1530000000" {
		t.Errorf("ts = %q", a.Ts)
	}
	if len(a.Actions) != 2 {
		t.Fatalf("expected join and archive actions, got %d", len(a.Actions))
	}
	join, archive := a.Actions[0], a.Actions[1]
	if join.Name != ActionJoinChannel || join.Value != "G42" || join.Style != "primary" {
		t.Errorf("unexpected join action %+v", join)
	}
	if archive.Name != ActionArchiveChannel || archive.Value != "G42" {
		t.Errorf("unexpected archive action %+v", archive)
	}
	if archive.Confirm == nil || !strings.Contains(archive.Confirm.Text, "acme") {
		t.Errorf("archive action needs a confirmation naming the channel: %+v", archive.Confirm)
	}
}

func TestChannelPageNavigation(t *testing.T) {
	tests := []struct {
		name     string
		offset   int
		docs     int
		total    int
		wantNav  bool
		wantPrev bool
		wantNext bool
	}{
		{"single page", 0, 3, 3, false, false, false},
		{"exactly one page", 0, 5, 5, false, false, false},
		{"first of two", 0, 5, 6, true, false, true},
		{"last of two", 5, 1, 6, true, true, false},
		{"middle", 5, 5, 15, true, true, true},
		{"last full page", 10, 5, 15, true, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cursor := pagination.Cursor{Offset: tt.offset, SearchTerms: "foo|bar"}
			m := ChannelPage(makePage(tt.docs, tt.total), cursor)
			nav := navActions(m)
			if (nav != nil) != tt.wantNav {
				t.Fatalf("navigation present = %v, want %v", nav != nil, tt.wantNav)
			}
			wantAttachments := tt.docs
			if tt.wantNav {
				wantAttachments++
			}
			if len(m.Attachments) != wantAttachments {
				t.Errorf("attachments = %d, want %d", len(m.Attachments), wantAttachments)
			}
			prev, hasPrev := nav["Prev page"]
			next, hasNext := nav["Next page"]
			if hasPrev != tt.wantPrev || hasNext != tt.wantNext {
				t.Fatalf("prev=%v next=%v, want prev=%v next=%v", hasPrev, hasNext, tt.wantPrev, tt.wantNext)
			}
			if hasPrev {
				c, err := pagination.Decode(prev.Value)
				if err != nil || c.Offset != tt.offset-5 || c.SearchTerms != "foo|bar" {
					t.Errorf("prev cursor = %+v (%v)", c, err)
				}
			}
			if hasNext {
				c, err := pagination.Decode(next.Value)
				if err != nil || c.Offset != tt.offset+5 || c.SearchTerms != "foo|bar" {
					t.Errorf("next cursor = %+v (%v)", c, err)
				}
			}
		})
	}
}

func TestFixedMessagesHaveNoControls(t *testing.T) {
	for _, m := range []Message{QueryFailure(), NotAuthorized(), Unrecognized(), RequestForm(), ActionFailure(ActionJoinChannel)} {
		if len(m.Attachments) != 0 {
			t.Errorf("%q should not carry attachments", m.Text)
		}
		if m.Text == "" {
			t.Error("fixed message with empty text")
		}
	}
}

func TestResponseJSON(t *testing.T) {
	data, err := Help().ResponseJSON(true)
	if err != nil {
		t.Fatalf("ResponseJSON: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["replace_original"] != true {
		t.Errorf("replace_original missing: %s", data)
	}
	if decoded["text"] != HelpText {
		t.Errorf("text missing: %s", data)
	}
	if _, ok := decoded["attachments"].([]interface{}); !ok {
		t.Errorf("attachments missing: %s", data)
	}
}

func TestMsgOptions(t *testing.T) {
	if got := len(Unrecognized().MsgOptions()); got != 1 {
		t.Errorf("text-only message should yield 1 option, got %d", got)
	}
	if got := len(Help().MsgOptions()); got != 2 {
		t.Errorf("message with attachments should yield 2 options, got %d", got)
	}
}

func TestResponseJSONKeepsOriginal(t *testing.T) {
	data, err := Joined("G1").ResponseJSON(false)
	if err != nil {
		t.Fatalf("ResponseJSON: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["replace_original"] != false {
		t.Errorf("replace_original = %v, want false", decoded["replace_original"])
	}
	if _, ok := decoded["attachments"]; ok {
		t.Errorf("empty attachments should be omitted: %s", data)
	}
}
