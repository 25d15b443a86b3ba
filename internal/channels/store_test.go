package channels

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/ziadkadry99/channel-manager/internal/db"
)

// backends runs fn against both repository implementations.
func backends(t *testing.T, fn func(t *testing.T, repo Repository)) {
	t.Run("sqlite", func(t *testing.T) {
		database, err := db.OpenMemory()
		if err != nil {
			t.Fatalf("OpenMemory: %v", err)
		}
		store := NewStore(database)
		defer store.Close()
		fn(t, store)
	})
	t.Run("file", func(t *testing.T) {
		store, err := NewFileStore(filepath.Join(t.TempDir(), "channels.jsonl"))
		if err != nil {
			t.Fatalf("NewFileStore: %v", err)
		}
		defer store.Close()
		fn(t, store)
	})
}

func seed(t *testing.T, repo Repository, records ...Record) {
	t.Helper()
	for _, r := range records {
		if err := repo.Upsert(context.Background(), r); err != nil {
			t.Fatalf("Upsert(%s): %v", r.ID, err)
		}
	}
}

var fixtures = []Record{
	{ID: "G1", Name: "acme-incident", Organization: "Acme", Created: 100},
	{ID: "G2", Name: "ops-war-room", Organization: "Internal", Topic: "On call", Created: 200},
	{ID: "G3", Name: "customer-beta", Organization: "FooCorp", Purpose: "Beta rollout", Created: 300},
	{ID: "G4", Name: "foo_bar", Created: 400},
	{ID: "G5", Name: "launch", Organization: "BARINDUSTRIES", Created: 500},
}

func ids(page Page) []string {
	var out []string
	for _, r := range page.Documents {
		out = append(out, r.ID)
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSearchFilter(t *testing.T) {
	backends(t, func(t *testing.T, repo Repository) {
		seed(t, repo, fixtures...)
		ctx := context.Background()

		tests := []struct {
			terms string
			want  []string
		}{
			{"", []string{"G1", "G2", "G3", "G4", "G5"}},
			{"acme", []string{"G1"}},
			{"ACME", []string{"G1"}},
			{"foo", []string{"G3", "G4"}},
			{"foo|bar", []string{"G3", "G4", "G5"}},
			{"internal|incident", []string{"G1", "G2"}},
			{"nomatch", nil},
			{"%", nil},
			{"_", []string{"G4"}},
		}
		for _, tt := range tests {
			page, err := repo.Search(ctx, ParseTerms(tt.terms), 0, 10)
			if err != nil {
				t.Fatalf("Search(%q): %v", tt.terms, err)
			}
			if got := ids(page); !equalIDs(got, tt.want) {
				t.Errorf("Search(%q) = %v, want %v", tt.terms, got, tt.want)
			}
			if page.TotalCount != len(tt.want) {
				t.Errorf("Search(%q) total = %d, want %d", tt.terms, page.TotalCount, len(tt.want))
			}
		}
	})
}

func TestSearchFilterNonASCIICase(t *testing.T) {
	backends(t, func(t *testing.T, repo Repository) {
		seed(t, repo,
			Record{ID: "U1", Name: "Ärger-team", Organization: "ÉCOLE", Created: 100},
			Record{ID: "U2", Name: "plain", Organization: "none", Created: 200},
		)
		ctx := context.Background()

		tests := []struct {
			terms string
			want  []string
		}{
			{"ärger", []string{"U1"}},
			{"ÄRGER", []string{"U1"}},
			{"école", []string{"U1"}},
			{"École|plain", []string{"U1", "U2"}},
		}
		for _, tt := range tests {
			page, err := repo.Search(ctx, ParseTerms(tt.terms), 0, 10)
			if err != nil {
				t.Fatalf("Search(%q): %v", tt.terms, err)
			}
			if got := ids(page); !equalIDs(got, tt.want) {
				t.Errorf("Search(%q) = %v, want %v", tt.terms, got, tt.want)
			}
		}

		if err := repo.Rename(ctx, "U2", "Ölwechsel"); err != nil {
			t.Fatalf("Rename: %v", err)
		}
		page, err := repo.Search(ctx, ParseTerms("ölwechsel"), 0, 10)
		if err != nil {
			t.Fatalf("Search after rename: %v", err)
		}
		if got := ids(page); !equalIDs(got, []string{"U2"}) {
			t.Errorf("after rename = %v, want [U2]", got)
		}
	})
}

func TestSearchOffsetLimit(t *testing.T) {
	backends(t, func(t *testing.T, repo Repository) {
		seed(t, repo, fixtures...)
		page, err := repo.Search(context.Background(), Filter{}, 2, 2)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if got := ids(page); !equalIDs(got, []string{"G3", "G4"}) {
			t.Errorf("page = %v, want [G3 G4]", got)
		}
		if page.TotalCount != 5 {
			t.Errorf("total = %d, want 5", page.TotalCount)
		}

		page, err = repo.Search(context.Background(), Filter{}, 50, 5)
		if err != nil {
			t.Fatalf("Search past end: %v", err)
		}
		if len(page.Documents) != 0 || page.TotalCount != 5 {
			t.Errorf("past end: docs=%d total=%d", len(page.Documents), page.TotalCount)
		}
	})
}

func TestRenameAndRemove(t *testing.T) {
	backends(t, func(t *testing.T, repo Repository) {
		seed(t, repo, fixtures...)
		ctx := context.Background()

		if err := repo.Rename(ctx, "G2", "ops-renamed"); err != nil {
			t.Fatalf("Rename: %v", err)
		}
		got, err := repo.Get(ctx, "G2")
		if err != nil || got == nil {
			t.Fatalf("Get after rename: %v %v", got, err)
		}
		if got.Name != "ops-renamed" || got.Topic != "On call" {
			t.Errorf("rename changed wrong fields: %+v", got)
		}

		if err := repo.Rename(ctx, "GX", "ghost"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Rename unknown: err = %v, want ErrNotFound", err)
		}

		removed, err := repo.Remove(ctx, "G3")
		if err != nil || !removed {
			t.Fatalf("Remove: removed=%v err=%v", removed, err)
		}
		removed, err = repo.Remove(ctx, "G3")
		if err != nil || removed {
			t.Errorf("second Remove: removed=%v err=%v", removed, err)
		}

		page, err := repo.Search(ctx, Filter{}, 0, 10)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if page.TotalCount != 4 {
			t.Errorf("expected 4 records after remove, got %d", page.TotalCount)
		}
		if gone, _ := repo.Get(ctx, "G3"); gone != nil {
			t.Errorf("G3 still present: %+v", gone)
		}
	})
}

func TestUpsertReplaces(t *testing.T) {
	backends(t, func(t *testing.T, repo Repository) {
		seed(t, repo, Record{ID: "G1", Name: "old", Created: 1})
		seed(t, repo, Record{ID: "G1", Name: "new", Organization: "Acme", Created: 1})

		page, err := repo.Search(context.Background(), Filter{}, 0, 10)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if page.TotalCount != 1 || page.Documents[0].Name != "new" || page.Documents[0].Organization != "Acme" {
			t.Errorf("unexpected page after upsert: %+v", page)
		}
	})
}

func TestFileStoreConcurrentWriters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "channels.jsonl")
	a, err := NewFileStore(path)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewFileStore(path)
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	done := make(chan error, 20)
	for i := 0; i < 10; i++ {
		i := i
		go func() { done <- a.Upsert(ctx, Record{ID: "A" + string(rune('0'+i)), Name: "a"}) }()
		go func() { done <- b.Upsert(ctx, Record{ID: "B" + string(rune('0'+i)), Name: "b"}) }()
	}
	for i := 0; i < 20; i++ {
		if err := <-done; err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}

	page, err := a.Search(ctx, Filter{}, 0, 100)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if page.TotalCount != 20 {
		t.Errorf("expected 20 records, got %d (lost update)", page.TotalCount)
	}
}
