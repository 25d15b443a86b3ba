package channels

import (
	"context"
	"errors"
	"testing"

	"github.com/ziadkadry99/channel-manager/internal/pagination"
)

// stubRepo records the arguments of the last search.
type stubRepo struct {
	Repository
	filter        Filter
	offset, limit int
	page          Page
	err           error
}

func (s *stubRepo) Search(_ context.Context, f Filter, offset, limit int) (Page, error) {
	s.filter, s.offset, s.limit = f, offset, limit
	return s.page, s.err
}

func TestParseTerms(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{"foo", []string{"foo"}},
		{"Foo|BAR", []string{"foo", "bar"}},
		{"foo||bar|", []string{"foo", "bar"}},
		{" | ", nil},
	}
	for _, tt := range tests {
		got := ParseTerms(tt.input).Terms
		if !equalIDs(got, tt.want) {
			t.Errorf("ParseTerms(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestJoinTerms(t *testing.T) {
	if got := JoinTerms("foo bar"); got != "foo|bar" {
		t.Errorf("JoinTerms = %q, want foo|bar", got)
	}
	if got := JoinTerms("  foo   bar  "); got != "foo|bar" {
		t.Errorf("JoinTerms collapses whitespace: got %q", got)
	}
	if got := JoinTerms(""); got != "" {
		t.Errorf("JoinTerms empty = %q", got)
	}
}

func TestServiceSearchDefaults(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo)

	if _, err := svc.Search(context.Background(), "foo|bar", -10, 0); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if repo.offset != 0 {
		t.Errorf("negative offset should clamp to 0, got %d", repo.offset)
	}
	if repo.limit != pagination.PageSize {
		t.Errorf("limit = %d, want %d", repo.limit, pagination.PageSize)
	}
	if !equalIDs(repo.filter.Terms, []string{"foo", "bar"}) {
		t.Errorf("filter terms = %v", repo.filter.Terms)
	}

	if _, err := svc.SearchPage(context.Background(), pagination.Cursor{Offset: 10, SearchTerms: "x"}); err != nil {
		t.Fatalf("SearchPage: %v", err)
	}
	if repo.offset != 10 || repo.limit != pagination.PageSize {
		t.Errorf("SearchPage passed offset=%d limit=%d", repo.offset, repo.limit)
	}
}

func TestServiceSearchQueryFailed(t *testing.T) {
	repo := &stubRepo{err: errors.New("disk I/O error")}
	svc := NewService(repo)

	_, err := svc.Search(context.Background(), "", 0, 5)
	if !errors.Is(err, ErrQueryFailed) {
		t.Fatalf("expected ErrQueryFailed, got %v", err)
	}
}

func TestServiceEmptyPageIsNotError(t *testing.T) {
	svc := NewService(&stubRepo{})
	page, err := svc.Search(context.Background(), "nothing", 0, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Documents) != 0 || page.TotalCount != 0 {
		t.Errorf("expected empty page, got %+v", page)
	}
}
