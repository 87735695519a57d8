package usecases

import (
	"context"
	"fmt"

	"github.com/samirrijal/travelplan/internal/core/domain"
	"github.com/samirrijal/travelplan/internal/core/ports"
)

const cityListKey = "cities:all"

func cityKey(id int64) string { return fmt.Sprintf("cities:id:%d", id) }

// CityService manages the city directory.
type CityService struct {
	store ports.Store
	cache ports.CacheService
	ttl   int
}

// NewCityService creates a new CityService. cache may be nil.
func NewCityService(store ports.Store, cache ports.CacheService, ttlSeconds int) *CityService {
	return &CityService{store: store, cache: cache, ttl: ttlSeconds}
}

func (s *CityService) Create(ctx context.Context, city *domain.City) error {
	if err := city.Validate(); err != nil {
		return err
	}
	if err := s.store.Cities().Create(ctx, city); err != nil {
		return err
	}
	invalidate(ctx, s.cache, cityListKey)
	return nil
}

func (s *CityService) GetByID(ctx context.Context, id int64) (*domain.City, error) {
	return cached(ctx, s.cache, cityKey(id), s.ttl, func() (*domain.City, error) {
		return s.store.Cities().GetByID(ctx, id)
	})
}

func (s *CityService) List(ctx context.Context) ([]domain.City, error) {
	return cached(ctx, s.cache, cityListKey, s.ttl, func() ([]domain.City, error) {
		return s.store.Cities().List(ctx)
	})
}

// Update renames a city. Cities referenced by offers are immutable.
func (s *CityService) Update(ctx context.Context, city *domain.City) error {
	if err := city.Validate(); err != nil {
		return err
	}
	if err := s.store.Cities().Update(ctx, city); err != nil {
		return err
	}
	invalidate(ctx, s.cache, cityListKey, cityKey(city.ID))
	return nil
}

func (s *CityService) Delete(ctx context.Context, id int64) error {
	if err := s.store.Cities().Delete(ctx, id); err != nil {
		return err
	}
	invalidate(ctx, s.cache, cityListKey, cityKey(id))
	return nil
}

// Invalidate drops cached entries for the given cities.
func (s *CityService) Invalidate(ctx context.Context, ids ...int64) {
	keys := []string{cityListKey}
	for _, id := range ids {
		keys = append(keys, cityKey(id))
	}
	invalidate(ctx, s.cache, keys...)
}
