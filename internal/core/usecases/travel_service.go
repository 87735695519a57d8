package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/samirrijal/travelplan/internal/core/domain"
	"github.com/samirrijal/travelplan/internal/core/ports"
)

// TravelService manages the travel aggregate.
type TravelService struct {
	store     ports.Store
	publisher ports.EventPublisher
}

// NewTravelService creates a new TravelService. publisher may be nil.
func NewTravelService(store ports.Store, publisher ports.EventPublisher) *TravelService {
	return &TravelService{store: store, publisher: publisher}
}

// Create stores a travel with its activity and lodging links.
func (s *TravelService) Create(ctx context.Context, t *domain.Travel) error {
	if err := t.Validate(); err != nil {
		return err
	}
	return s.store.Travels().Create(ctx, t)
}

// GetByID returns the travel hydrated with segments, activities and lodgings.
func (s *TravelService) GetByID(ctx context.Context, id int64) (*domain.Travel, error) {
	t, err := s.store.Travels().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := hydrate(ctx, s.store, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TravelService) List(ctx context.Context) ([]domain.Travel, error) {
	return s.store.Travels().List(ctx)
}

func (s *TravelService) Update(ctx context.Context, t *domain.Travel) error {
	if err := t.Validate(); err != nil {
		return err
	}
	return s.store.Travels().Update(ctx, t)
}

// Delete removes the travel together with its segments and links.
func (s *TravelService) Delete(ctx context.Context, id int64) error {
	return s.store.Travels().Delete(ctx, id)
}

// Complete marks a travel as completed.
func (s *TravelService) Complete(ctx context.Context, id int64) error {
	if err := s.store.Travels().SetStatus(ctx, id, domain.StatusCompleted); err != nil {
		return err
	}
	if s.publisher != nil {
		_ = s.publisher.PublishItineraryEvent(ctx, &domain.ItineraryEvent{
			Type:       domain.EventTravelCompleted,
			TravelIDs:  []int64{id},
			OccurredAt: time.Now().UTC(),
		})
	}
	return nil
}

// Archive lists completed travels, hydrated.
func (s *TravelService) Archive(ctx context.Context) ([]domain.Travel, error) {
	travels, err := s.store.Travels().ListByStatus(ctx, domain.StatusCompleted)
	if err != nil {
		return nil, err
	}
	for i := range travels {
		if err := hydrate(ctx, s.store, &travels[i]); err != nil {
			return nil, err
		}
	}
	return travels, nil
}

// ListFinished returns ids of travels that are not completed and whose last
// segment ended before now. Travels without segments never finish.
func (s *TravelService) ListFinished(ctx context.Context, now time.Time, limit int) ([]int64, error) {
	travels, err := s.store.Travels().List(ctx)
	if err != nil {
		return nil, err
	}
	ids := []int64{}
	for _, t := range travels {
		if t.Status == domain.StatusCompleted {
			continue
		}
		segs, err := s.store.Segments().ListForTravel(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		t.Segments = segs
		if _, end, ok := t.Window(); ok && end.Before(now) {
			ids = append(ids, t.ID)
			if limit > 0 && len(ids) >= limit {
				break
			}
		}
	}
	return ids, nil
}

// ItineraryView is a travel's ordered chain of legs.
type ItineraryView struct {
	TravelID  int64            `json:"travel_id"`
	Segments  []domain.Segment `json:"routes"`
	Connected bool             `json:"connected"`
	Problem   string           `json:"problem,omitempty"`
}

// Itinerary returns the travel's ordered segments and reports whether each
// leg departs from where the previous one arrived.
func (s *TravelService) Itinerary(ctx context.Context, id int64) (*ItineraryView, error) {
	if _, err := s.store.Travels().GetByID(ctx, id); err != nil {
		return nil, err
	}
	segs, err := s.store.Segments().ListForTravel(ctx, id)
	if err != nil {
		return nil, err
	}
	view := &ItineraryView{TravelID: id, Segments: segs, Connected: true}
	if err := domain.CheckChain(segs); err != nil {
		view.Connected = false
		view.Problem = err.Error()
	}
	return view, nil
}

// hydrate fills segments, activities and lodgings of a travel.
func hydrate(ctx context.Context, store ports.Store, t *domain.Travel) error {
	segs, err := store.Segments().ListForTravel(ctx, t.ID)
	if err != nil {
		return fmt.Errorf("travel %d segments: %w", t.ID, err)
	}
	acts, err := store.Activities().ListForTravel(ctx, t.ID)
	if err != nil {
		return fmt.Errorf("travel %d activities: %w", t.ID, err)
	}
	lodgings, err := store.Lodgings().ListForTravel(ctx, t.ID)
	if err != nil {
		return fmt.Errorf("travel %d lodgings: %w", t.ID, err)
	}
	t.Segments, t.Activities, t.Lodgings = segs, acts, lodgings
	return nil
}
