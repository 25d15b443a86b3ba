package bots

import (
	"strings"

	"github.com/ziadkadry99/channel-manager/internal/channels"
)

// Intent is the classified purpose of a chat message.
type Intent int

const (
	IntentUnrecognized Intent = iota
	IntentHelp
	IntentList
)

func (i Intent) String() string {
	switch i {
	case IntentHelp:
		return "help"
	case IntentList:
		return "list"
	default:
		return "unrecognized"
	}
}

// Command is a classified message.
type Command struct {
	Intent      Intent
	SearchTerms string // pipe-joined words after "list"
}

// HelpKeywords trigger the help menu anywhere in a message.
var HelpKeywords = []string{"help", "option", "action", "command", "menu"}

const listWord = "list"

type intentRule struct {
	intent Intent
	match  func(text string) bool
}

// intentRules is evaluated in order; the first match wins.
var intentRules = []intentRule{
	{intent: IntentHelp, match: containsAny(HelpKeywords)},
	{intent: IntentList, match: startsWithWord(listWord)},
}

func containsAny(words []string) func(string) bool {
	return func(text string) bool {
		for _, w := range words {
			if strings.Contains(text, w) {
				return true
			}
		}
		return false
	}
}

func startsWithWord(word string) func(string) bool {
	return func(text string) bool {
		if !strings.HasPrefix(text, word) {
			return false
		}
		rest := text[len(word):]
		return rest == "" || strings.TrimLeft(rest, " \t\n") != rest
	}
}

// Normalize trims and lowercases message text.
func Normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// Classify maps message text to a Command.
func Classify(text string) Command {
	normalized := Normalize(text)
	for _, rule := range intentRules {
		if !rule.match(normalized) {
			continue
		}
		cmd := Command{Intent: rule.intent}
		if rule.intent == IntentList {
			cmd.SearchTerms = channels.JoinTerms(strings.TrimPrefix(normalized, listWord))
		}
		return cmd
	}
	return Command{Intent: IntentUnrecognized}
}
