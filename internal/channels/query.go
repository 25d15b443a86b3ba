package channels

import (
	"context"
	"fmt"

	"github.com/ziadkadry99/channel-manager/internal/pagination"
)

// maxLimit caps the page size a caller can request.
const maxLimit = 100

// Service answers paginated channel searches on top of a Repository.
type Service struct {
	repo Repository
}

// NewService creates a query service over the given repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Search returns the page of channels matching searchTerms (a pipe-delimited
// alternation, empty for all channels) starting at offset. Any store failure
// is reported as ErrQueryFailed. No matches yields an empty page.
func (s *Service) Search(ctx context.Context, searchTerms string, offset, limit int) (Page, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > maxLimit {
		limit = pagination.PageSize
	}

	page, err := s.repo.Search(ctx, ParseTerms(searchTerms), offset, limit)
	if err != nil {
		return Page{}, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	return page, nil
}

// SearchPage is Search at the cursor's position with the standard page size.
func (s *Service) SearchPage(ctx context.Context, c pagination.Cursor) (Page, error) {
	return s.Search(ctx, c.SearchTerms, c.Offset, pagination.PageSize)
}
