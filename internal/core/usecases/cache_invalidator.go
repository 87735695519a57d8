package usecases

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samirrijal/travelplan/internal/core/domain"
	"github.com/samirrijal/travelplan/internal/core/ports"
)

// CacheInvalidator drops shared cache entries made stale by itinerary edits
// that ran in another process, such as the importer or a second API node.
type CacheInvalidator struct {
	store   ports.Store
	catalog *CatalogService
	logger  *slog.Logger
}

// NewCacheInvalidator creates a new CacheInvalidator.
func NewCacheInvalidator(store ports.Store, catalog *CatalogService, logger *slog.Logger) *CacheInvalidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &CacheInvalidator{store: store, catalog: catalog, logger: logger}
}

// HandleItineraryEvent matches ports.EventSubscriber's handler signature.
// A returned error asks the broker to redeliver.
func (i *CacheInvalidator) HandleItineraryEvent(ctx context.Context, ev *domain.ItineraryEvent) error {
	switch ev.Type {
	case domain.EventTransportChanged:
		offer, err := i.store.Offers().GetByID(ctx, ev.OfferID)
		if errors.Is(err, domain.ErrNotFound) {
			invalidate(ctx, i.catalog.cache, offerKey(ev.OfferID))
			return nil
		}
		if err != nil {
			return err
		}
		i.catalog.Invalidate(ctx, *offer)

	case domain.EventCityRemoved:
		cities, err := i.store.Cities().List(ctx)
		if err != nil {
			return err
		}
		keys := make([]string, 0, len(ev.OfferIDs)+2*len(cities))
		for _, id := range ev.OfferIDs {
			keys = append(keys, offerKey(id))
		}
		for _, c := range cities {
			keys = append(keys, offerPairKey(ev.CityID, c.ID), offerPairKey(c.ID, ev.CityID))
		}
		invalidate(ctx, i.catalog.cache, keys...)
	}

	i.logger.DebugContext(ctx, "cache invalidated", "event", ev.Type)
	return nil
}
