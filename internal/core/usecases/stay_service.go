package usecases

import (
	"context"

	"github.com/samirrijal/travelplan/internal/core/domain"
	"github.com/samirrijal/travelplan/internal/core/ports"
)

// StayService manages activities and lodgings that travels link to.
type StayService struct {
	store ports.Store
}

// NewStayService creates a new StayService.
func NewStayService(store ports.Store) *StayService {
	return &StayService{store: store}
}

func (s *StayService) CreateActivity(ctx context.Context, a *domain.Activity) error {
	if err := a.Validate(); err != nil {
		return err
	}
	return s.store.Activities().Create(ctx, a)
}

func (s *StayService) GetActivity(ctx context.Context, id int64) (*domain.Activity, error) {
	return s.store.Activities().GetByID(ctx, id)
}

func (s *StayService) ListActivities(ctx context.Context) ([]domain.Activity, error) {
	return s.store.Activities().List(ctx)
}

func (s *StayService) DeleteActivity(ctx context.Context, id int64) error {
	return s.store.Activities().Delete(ctx, id)
}

func (s *StayService) CreateLodging(ctx context.Context, l *domain.Lodging) error {
	if err := l.Validate(); err != nil {
		return err
	}
	return s.store.Lodgings().Create(ctx, l)
}

func (s *StayService) GetLodging(ctx context.Context, id int64) (*domain.Lodging, error) {
	return s.store.Lodgings().GetByID(ctx, id)
}

func (s *StayService) ListLodgings(ctx context.Context) ([]domain.Lodging, error) {
	return s.store.Lodgings().List(ctx)
}

func (s *StayService) DeleteLodging(ctx context.Context, id int64) error {
	return s.store.Lodgings().Delete(ctx, id)
}
