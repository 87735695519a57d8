package usecases

import (
	"context"

	"github.com/samirrijal/travelplan/internal/core/domain"
	"github.com/samirrijal/travelplan/internal/core/ports"
	"github.com/samirrijal/travelplan/internal/pkg/metrics"
)

// SearchService finds travels matching sparse, AND-ed filters.
type SearchService struct {
	store ports.Store
}

// NewSearchService creates a new SearchService.
func NewSearchService(store ports.Store) *SearchService {
	return &SearchService{store: store}
}

// Search returns matching non-completed travels, each hydrated with its
// segments, activities and lodgings. No match yields an empty slice.
func (s *SearchService) Search(ctx context.Context, filters domain.SearchFilters) ([]domain.Travel, error) {
	filters = filters.Normalized()
	candidates, err := s.store.Travels().SearchCandidates(ctx, filters)
	if err != nil {
		return nil, err
	}

	out := []domain.Travel{}
	for i := range candidates {
		t := &candidates[i]
		if err := hydrate(ctx, s.store, t); err != nil {
			return nil, err
		}
		if filters.Matches(t) {
			out = append(out, *t)
		}
	}
	metrics.SearchResults.Observe(float64(len(out)))
	return out, nil
}
