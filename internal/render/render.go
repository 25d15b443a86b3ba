// Package render builds the Slack messages the bot replies with.
package render

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/slack-go/slack"

	"github.com/ziadkadry99/channel-manager/internal/channels"
	"github.com/ziadkadry99/channel-manager/internal/pagination"
)

// Action names carried by interactive buttons.
const (
	ActionRequestChannel = "request_private_channel"
	ActionListChannels   = "list_private_channels"
	ActionJoinChannel    = "join_channel"
	ActionArchiveChannel = "archive_channel"
)

// Callback ids of the attachments holding those buttons.
const (
	CallbackMenu        = "menu_button"
	CallbackJoinChannel = "join_channel_button"
)

const menuColor = "#3AA3E3"

// Fixed reply texts.
const (
	HelpText = "Here are your options. Type:\n" +
		"- :information_source: | `help`: Print this help message\n" +
		"- :scroll: | `list [keywords ...]`: List active private channels that match your query\n\n" +
		"You can also click on the following options:"
	NotAuthorizedText = ":no_entry_sign: *Oops, looks like you're not authorized to use this app.*\n" +
		"If you would like access, please contact the administrators."

	ListHeaderText   = "Here is a `list` of active private channels that match your query:"
	NoMatchesText    = "There are no active private channels that match your query, type `help` if you would like to request one."
	QueryFailureText = ":heavy_exclamation_mark: An error occurred while trying to get a list of channels."
	UnrecognizedText = "Hello there, I don't recognize your command. Try typing `help` for more options."
	RequestFormText  = "Private channel requests are submitted through the request form. Please contact the administrators if it is not available."
	SeeMoreText      = "See more channels..."
	menuFallbackText = "You are unable to choose an option"
)

// Message is a structured reply: text plus legacy interactive attachments.
type Message struct {
	Text        string             `json:"text"`
	Attachments []slack.Attachment `json:"attachments,omitempty"`
}

// MsgOptions converts m into chat.postMessage options.
func (m Message) MsgOptions() []slack.MsgOption {
	opts := []slack.MsgOption{slack.MsgOptionText(m.Text, false)}
	if len(m.Attachments) > 0 {
		opts = append(opts, slack.MsgOptionAttachments(m.Attachments...))
	}
	return opts
}

// ResponseJSON encodes m as an interactive-message response. With replace
// set, Slack swaps it in for the message the button was clicked on.
func (m Message) ResponseJSON(replace bool) ([]byte, error) {
	return json.Marshal(struct {
		Message
		ReplaceOriginal bool `json:"replace_original"`
	}{m, replace})
}

// Help renders the command menu.
func Help() Message {
	return Message{
		Text: HelpText,
		Attachments: []slack.Attachment{{
			Fallback:   menuFallbackText,
			CallbackID: CallbackMenu,
			Color:      menuColor,
			Actions: []slack.AttachmentAction{
				{
					Name: ActionRequestChannel,
					Text: "Request a private channel",
					Type: "button",
				},
				{
					Name:  ActionListChannels,
					Text:  "List active private channels",
					Type:  "button",
					Value: pagination.Encode(pagination.First("")),
				},
			},
		}},
	}
}

// ChannelPage renders one page of search results with join/archive buttons
// and, when the result spans more than one page, prev/next navigation.
func ChannelPage(page channels.Page, cursor pagination.Cursor) Message {
	if len(page.Documents) == 0 {
		return Message{Text: NoMatchesText}
	}

	attachments := make([]slack.Attachment, 0, len(page.Documents)+1)
	for _, ch := range page.Documents {
		attachments = append(attachments, channelEntry(ch))
	}

	if page.TotalCount > pagination.PageSize {
		attachments = append(attachments, slack.Attachment{
			Text:       SeeMoreText,
			CallbackID: CallbackMenu,
			Actions:    navigation(page.TotalCount, cursor),
		})
	}

	return Message{Text: ListHeaderText, Attachments: attachments}
}

func channelEntry(ch channels.Record) slack.Attachment {
	text := ""
	if ch.Topic != "" {
		text += "_" + ch.Topic + "_"
	}
	if ch.Purpose != "" {
		text += "\n" + ch.Purpose
	}

	return slack.Attachment{
		Title:      "#" + ch.Name,
		Text:       text,
		CallbackID: CallbackJoinChannel,
		Actions: []slack.AttachmentAction{
			{
				Name:  ActionJoinChannel,
				Text:  "Join",
				Type:  "button",
				Style: "primary",
				Value: ch.ID,
			},
			{
				Name:  ActionArchiveChannel,
				Text:  "Archive",
				Type:  "button",
				Value: ch.ID,
				Confirm: &slack.ConfirmationField{
					Title:       "Archive #" + ch.Name,
					Text:        fmt.Sprintf("Are you sure you want to archive %s?", ch.Name),
					OkText:      "Yes",
					DismissText: "No",
				},
			},
		},
		Footer:     "Date created",
		Ts:         json.Number(strconv.FormatInt(ch.Created, 10)),
		MarkdownIn: []string{"text"},
	}
}

func navigation(total int, cursor pagination.Cursor) []slack.AttachmentAction {
	var actions []slack.AttachmentAction
	if cursor.HasPrev() {
		actions = append(actions, slack.AttachmentAction{
			Name:  ActionListChannels,
			Text:  "Prev page",
			Type:  "button",
			Value: pagination.Encode(cursor.Prev()),
		})
	}
	if cursor.HasNext(total) {
		actions = append(actions, slack.AttachmentAction{
			Name:  ActionListChannels,
			Text:  "Next page",
			Type:  "button",
			Value: pagination.Encode(cursor.Next()),
		})
	}
	return actions
}

// QueryFailure is shown when the channel search could not run.
func QueryFailure() Message { return Message{Text: QueryFailureText} }

// NotAuthorized is shown to users outside the gating channel.
func NotAuthorized() Message { return Message{Text: NotAuthorizedText} }

// Unrecognized is shown for messages that match no command.
func Unrecognized() Message { return Message{Text: UnrecognizedText} }

// RequestForm answers the request button; the form itself lives elsewhere.
func RequestForm() Message { return Message{Text: RequestFormText} }

// ActionFailure is shown when a join or archive call was rejected.
func ActionFailure(action string) Message {
	switch action {
	case ActionJoinChannel:
		return Message{Text: ":heavy_exclamation_mark: Sorry, I couldn't add you to that channel."}
	case ActionArchiveChannel:
		return Message{Text: ":heavy_exclamation_mark: Sorry, I couldn't archive that channel."}
	default:
		return Message{Text: ":heavy_exclamation_mark: Sorry, that action failed."}
	}
}

// Joined confirms a successful join.
func Joined(channelID string) Message {
	return Message{Text: fmt.Sprintf(":white_check_mark: You have been added to <#%s>.", channelID)}
}

// Archived confirms a successful archive.
func Archived(channelID string) Message {
	return Message{Text: fmt.Sprintf(":file_cabinet: <#%s> has been archived.", channelID)}
}
