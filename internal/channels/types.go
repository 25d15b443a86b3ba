// Package channels stores the private channels the bot manages and answers
// paginated searches over them.
package channels

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrQueryFailed wraps any store failure surfaced by a search.
	ErrQueryFailed = errors.New("channel query failed")
	// ErrNotFound is returned when a mutation targets an unknown channel.
	ErrNotFound = errors.New("channel not found")
)

// Record is a private channel known to the bot.
type Record struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Organization string `json:"organization,omitempty"`
	Topic        string `json:"topic,omitempty"`
	Purpose      string `json:"purpose,omitempty"`
	Created      int64  `json:"created"` // unix seconds
}

// Page is one window of a search plus the total number of matches.
type Page struct {
	Documents  []Record
	TotalCount int
}

// Filter selects records whose name or organization contains any of Terms,
// case-insensitively. An empty filter matches every record.
type Filter struct {
	Terms []string
}

// ParseTerms builds a Filter from a pipe-delimited alternation such as
// "foo|bar". Blank alternatives are dropped.
func ParseTerms(searchTerms string) Filter {
	var f Filter
	for _, part := range strings.Split(searchTerms, "|") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			f.Terms = append(f.Terms, part)
		}
	}
	return f
}

// JoinTerms turns free-text words into the pipe-delimited alternation
// carried by search cursors.
func JoinTerms(text string) string {
	return strings.Join(strings.Fields(text), "|")
}

// Matches reports whether r satisfies the filter.
func (f Filter) Matches(r Record) bool {
	if len(f.Terms) == 0 {
		return true
	}
	name := strings.ToLower(r.Name)
	org := strings.ToLower(r.Organization)
	for _, term := range f.Terms {
		if strings.Contains(name, term) || strings.Contains(org, term) {
			return true
		}
	}
	return false
}

// Repository is the persistence contract shared by the SQLite and flat-file
// backends.
type Repository interface {
	Search(ctx context.Context, filter Filter, offset, limit int) (Page, error)
	Get(ctx context.Context, id string) (*Record, error)
	Upsert(ctx context.Context, r Record) error
	Rename(ctx context.Context, id, name string) error
	Remove(ctx context.Context, id string) (bool, error)
	Close() error
}
