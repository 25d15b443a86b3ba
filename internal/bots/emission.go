package bots

import "github.com/slack-go/slack"

// IsOwnEmission reports whether ev was produced by the bot itself, directly
// or as the nested message of an edit. With no known bot id, any bot-authored
// event counts so replies can never loop.
func IsOwnEmission(ev MessageEvent, self Identity) bool {
	botIDs := []string{ev.BotID}
	users := []string{ev.User}
	if ev.Message != nil {
		botIDs = append(botIDs, ev.Message.BotID)
		users = append(users, ev.Message.User)
	}
	return isOwnActor(self, botIDs, users)
}

// IsOwnCallback reports whether the bot itself clicked a button. Only the
// clicking user is an actor: the message carrying the buttons is always ours.
func IsOwnCallback(cb slack.InteractionCallback, self Identity) bool {
	return isOwnActor(self, nil, []string{cb.User.ID})
}

func isOwnActor(self Identity, botIDs, users []string) bool {
	for _, id := range botIDs {
		if id == "" {
			continue
		}
		if self.BotID == "" || id == self.BotID {
			return true
		}
	}
	if self.UserID != "" {
		for _, u := range users {
			if u == self.UserID {
				return true
			}
		}
	}
	return false
}
