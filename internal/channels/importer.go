package channels

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"

	"github.com/ziadkadry99/channel-manager/internal/progress"
)

// ConversationSource lists workspace conversations.
type ConversationSource interface {
	GetConversationsContext(ctx context.Context, params *slack.GetConversationsParameters) ([]slack.Channel, string, error)
}

// ImportResult summarises an import run.
type ImportResult struct {
	Pages    int
	Imported int
}

// Importer copies the private channels visible to a token into a Repository.
type Importer struct {
	source   ConversationSource
	repo     Repository
	reporter progress.Reporter
	pageSize int
}

// NewImporter creates an importer. A nil reporter discards progress.
func NewImporter(source ConversationSource, repo Repository, reporter progress.Reporter) *Importer {
	if reporter == nil {
		reporter = progress.Nop{}
	}
	return &Importer{source: source, repo: repo, reporter: reporter, pageSize: 200}
}

// Run pages through conversations.list and upserts every active private
// channel. Organizations already stored are kept since Slack does not know
// them.
func (im *Importer) Run(ctx context.Context) (ImportResult, error) {
	var res ImportResult
	params := &slack.GetConversationsParameters{
		Types:           []string{"private_channel"},
		ExcludeArchived: true,
		Limit:           im.pageSize,
	}

	im.reporter.Start(-1)
	defer im.reporter.Finish()

	for {
		chans, next, err := im.source.GetConversationsContext(ctx, params)
		if err != nil {
			return res, fmt.Errorf("listing conversations (page %d): %w", res.Pages+1, err)
		}
		res.Pages++

		for _, ch := range chans {
			rec := Record{
				ID:      ch.ID,
				Name:    ch.Name,
				Topic:   ch.Topic.Value,
				Purpose: ch.Purpose.Value,
				Created: int64(ch.Created),
			}
			existing, err := im.repo.Get(ctx, ch.ID)
			if err != nil {
				return res, err
			}
			if existing != nil {
				rec.Organization = existing.Organization
			}
			if err := im.repo.Upsert(ctx, rec); err != nil {
				return res, err
			}
			res.Imported++
			im.reporter.Update(res.Imported, "#"+ch.Name)
		}

		if next == "" {
			return res, nil
		}
		params.Cursor = next
	}
}
