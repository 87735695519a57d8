package usecases

import (
	"context"
	"fmt"

	"github.com/samirrijal/travelplan/internal/core/domain"
	"github.com/samirrijal/travelplan/internal/core/ports"
)

func offerKey(id int64) string { return fmt.Sprintf("offers:id:%d", id) }

func offerPairKey(from, to int64) string { return fmt.Sprintf("offers:pair:%d:%d", from, to) }

// CatalogService owns transport offers. Segments only hold offer ids, so all
// offer mutation goes through here.
type CatalogService struct {
	store ports.Store
	cache ports.CacheService
	ttl   int
}

// NewCatalogService creates a new CatalogService. cache may be nil.
func NewCatalogService(store ports.Store, cache ports.CacheService, ttlSeconds int) *CatalogService {
	return &CatalogService{store: store, cache: cache, ttl: ttlSeconds}
}

// Get returns an offer by id, served from cache when configured.
func (s *CatalogService) Get(ctx context.Context, id int64) (*domain.TransportOffer, error) {
	return cached(ctx, s.cache, offerKey(id), s.ttl, func() (*domain.TransportOffer, error) {
		return s.store.Offers().GetByID(ctx, id)
	})
}

// GetByCityPair returns the first offer for the ordered pair.
func (s *CatalogService) GetByCityPair(ctx context.Context, from, to int64) (*domain.TransportOffer, error) {
	offers, err := s.ListByCityPair(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if len(offers) == 0 {
		return nil, fmt.Errorf("transport offer %d->%d: %w", from, to, domain.ErrNotFound)
	}
	return &offers[0], nil
}

// ListByCityPair returns every offer for the ordered pair, possibly none.
func (s *CatalogService) ListByCityPair(ctx context.Context, from, to int64) ([]domain.TransportOffer, error) {
	return cached(ctx, s.cache, offerPairKey(from, to), s.ttl, func() ([]domain.TransportOffer, error) {
		return s.store.Offers().ListByCityPair(ctx, from, to)
	})
}

// List returns every offer. It bypasses the cache.
func (s *CatalogService) List(ctx context.Context) ([]domain.TransportOffer, error) {
	return s.store.Offers().List(ctx)
}

// Add validates and stores a new offer.
func (s *CatalogService) Add(ctx context.Context, offer *domain.TransportOffer) error {
	if err := offer.Validate(); err != nil {
		return err
	}
	if err := s.store.Offers().Create(ctx, offer); err != nil {
		return err
	}
	s.Invalidate(ctx, *offer)
	return nil
}

// Update replaces every field of an existing offer.
func (s *CatalogService) Update(ctx context.Context, offer *domain.TransportOffer) error {
	if err := offer.Validate(); err != nil {
		return err
	}
	prev, err := s.store.Offers().GetByID(ctx, offer.ID)
	if err != nil {
		return err
	}
	if err := s.store.Offers().Update(ctx, offer); err != nil {
		return err
	}
	s.Invalidate(ctx, *prev, *offer)
	return nil
}

// ChangeTransport updates mode and cost in place; distance and cities stay.
func (s *CatalogService) ChangeTransport(ctx context.Context, id int64, mode string, cost int64) (*domain.TransportOffer, error) {
	m, err := domain.ParseTransportMode(mode)
	if err != nil {
		return nil, err
	}
	if cost <= 0 {
		return nil, domain.Invalidf("price must be positive")
	}

	var changed *domain.TransportOffer
	err = s.store.WithinTx(ctx, func(tx ports.Store) error {
		if err := tx.Offers().ChangeTransport(ctx, id, m, cost); err != nil {
			return err
		}
		changed, err = tx.Offers().GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.Invalidate(ctx, *changed)
	return changed, nil
}

// Delete removes an offer. Offers still referenced by segments fail with
// domain.ErrReferenced.
func (s *CatalogService) Delete(ctx context.Context, id int64) error {
	prev, err := s.store.Offers().GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Offers().Delete(ctx, id); err != nil {
		return err
	}
	s.Invalidate(ctx, *prev)
	return nil
}

// DeleteByCity removes every offer departing from or arriving at the city.
func (s *CatalogService) DeleteByCity(ctx context.Context, cityID int64) (int, error) {
	offers, err := s.store.Offers().ListByCity(ctx, cityID)
	if err != nil {
		return 0, err
	}
	n, err := s.store.Offers().DeleteByCity(ctx, cityID)
	if err != nil {
		return 0, err
	}
	s.Invalidate(ctx, offers...)
	return n, nil
}

// Invalidate drops cached entries for the given offers.
func (s *CatalogService) Invalidate(ctx context.Context, offers ...domain.TransportOffer) {
	keys := make([]string, 0, 2*len(offers))
	for _, o := range offers {
		keys = append(keys, offerKey(o.ID), offerPairKey(o.DepartureCityID, o.DestinationCityID))
	}
	invalidate(ctx, s.cache, keys...)
}
