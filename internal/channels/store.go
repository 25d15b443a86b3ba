package channels

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/ziadkadry99/channel-manager/internal/db"
)

// Store manages persistence of channel records in SQLite.
type Store struct {
	db *db.DB
}

// NewStore creates a new SQLite-backed channel store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// whereClause renders the filter as a SQL condition and its arguments.
// Terms are matched literally with LIKE; user text never reaches a regex.
// SQLite only folds ASCII case, so matching runs against the *_lc columns,
// which hold strings.ToLower of name and organization.
func whereClause(f Filter) (string, []interface{}) {
	if len(f.Terms) == 0 {
		return "1=1", nil
	}
	var conds []string
	var args []interface{}
	for _, term := range f.Terms {
		pattern := "%" + escapeLike(term) + "%"
		conds = append(conds, `(name_lc LIKE ? ESCAPE '\' OR organization_lc LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}
	return strings.Join(conds, " OR "), args
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// Search returns one page of matching channels ordered by creation time.
func (s *Store) Search(ctx context.Context, filter Filter, offset, limit int) (Page, error) {
	where, args := whereClause(filter)

	var page Page
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM channels WHERE "+where, args...).Scan(&page.TotalCount); err != nil {
		return Page{}, fmt.Errorf("counting channels: %w", err)
	}

	query := `SELECT id, name, organization, topic, purpose, created
		 FROM channels WHERE ` + where + ` ORDER BY created ASC, id ASC LIMIT ? OFFSET ?`
	rows, err := s.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return Page{}, fmt.Errorf("listing channels: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.Name, &r.Organization, &r.Topic, &r.Purpose, &r.Created); err != nil {
			return Page{}, fmt.Errorf("scanning channel: %w", err)
		}
		page.Documents = append(page.Documents, r)
	}
	return page, rows.Err()
}

// Get retrieves a channel by id. It returns nil, nil when absent.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	var r Record
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, organization, topic, purpose, created FROM channels WHERE id = ?`, id,
	).Scan(&r.ID, &r.Name, &r.Organization, &r.Topic, &r.Purpose, &r.Created)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting channel: %w", err)
	}
	return &r, nil
}

// Upsert inserts a channel or replaces the stored copy with the same id.
func (s *Store) Upsert(ctx context.Context, r Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO channels (id, name, organization, name_lc, organization_lc, topic, purpose, created, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, datetime('now'))
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name,
		   organization = excluded.organization,
		   name_lc = excluded.name_lc,
		   organization_lc = excluded.organization_lc,
		   topic = excluded.topic,
		   purpose = excluded.purpose,
		   created = excluded.created,
		   updated_at = excluded.updated_at`,
		r.ID, r.Name, r.Organization, strings.ToLower(r.Name), strings.ToLower(r.Organization),
		r.Topic, r.Purpose, r.Created,
	)
	if err != nil {
		return fmt.Errorf("upserting channel: %w", err)
	}
	return nil
}

// Rename sets a new name on an existing channel.
func (s *Store) Rename(ctx context.Context, id, name string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE channels SET name = ?, name_lc = ?, updated_at = datetime('now') WHERE id = ?`,
		name, strings.ToLower(name), id)
	if err != nil {
		return fmt.Errorf("renaming channel: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Remove deletes a channel and reports whether a record existed.
func (s *Store) Remove(ctx context.Context, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM channels WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("removing channel: %w", err)
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
