package usecases

import (
	"context"

	"github.com/samirrijal/travelplan/internal/core/domain"
	"github.com/samirrijal/travelplan/internal/core/ports"
)

// SegmentService exposes direct CRUD over itinerary segments.
type SegmentService struct {
	store ports.Store
}

// NewSegmentService creates a new SegmentService.
func NewSegmentService(store ports.Store) *SegmentService {
	return &SegmentService{store: store}
}

func (s *SegmentService) Create(ctx context.Context, seg *domain.Segment) error {
	if err := seg.Validate(); err != nil {
		return err
	}
	return s.store.Segments().Create(ctx, seg)
}

func (s *SegmentService) GetByID(ctx context.Context, id int64) (*domain.Segment, error) {
	return s.store.Segments().GetByID(ctx, id)
}

func (s *SegmentService) List(ctx context.Context) ([]domain.Segment, error) {
	return s.store.Segments().List(ctx)
}

// ListForTravel returns the travel's segments ordered by start time.
func (s *SegmentService) ListForTravel(ctx context.Context, travelID int64) ([]domain.Segment, error) {
	if _, err := s.store.Travels().GetByID(ctx, travelID); err != nil {
		return nil, err
	}
	return s.store.Segments().ListForTravel(ctx, travelID)
}

func (s *SegmentService) ListTouchingCity(ctx context.Context, cityID int64) ([]domain.Segment, error) {
	return s.store.Segments().ListTouchingCity(ctx, cityID)
}

func (s *SegmentService) Update(ctx context.Context, seg *domain.Segment) error {
	if err := seg.Validate(); err != nil {
		return err
	}
	return s.store.Segments().Update(ctx, seg)
}

func (s *SegmentService) Delete(ctx context.Context, id int64) error {
	return s.store.Segments().Delete(ctx, id)
}
