package ports

import (
	"context"

	"github.com/samirrijal/travelplan/internal/core/domain"
)

// Store groups the repositories of one storage backend. Repositories obtained
// from the Store passed to a WithinTx callback share that transaction.
type Store interface {
	Cities() CityRepository
	Offers() TransportOfferRepository
	Segments() SegmentRepository
	Travels() TravelRepository
	Activities() ActivityRepository
	Lodgings() LodgingRepository

	// WithinTx runs fn in a single transaction. The transaction commits when
	// fn returns nil and rolls back otherwise. Nested calls join the outer
	// transaction.
	WithinTx(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
}

// CityRepository persists the city directory.
type CityRepository interface {
	Create(ctx context.Context, city *domain.City) error
	GetByID(ctx context.Context, id int64) (*domain.City, error)
	List(ctx context.Context) ([]domain.City, error)
	Update(ctx context.Context, city *domain.City) error
	Delete(ctx context.Context, id int64) error
}

// TransportOfferRepository persists the transport catalog.
type TransportOfferRepository interface {
	Create(ctx context.Context, offer *domain.TransportOffer) error
	GetByID(ctx context.Context, id int64) (*domain.TransportOffer, error)
	// GetByCityPair returns the lowest-id offer from one city to another.
	GetByCityPair(ctx context.Context, from, to int64) (*domain.TransportOffer, error)
	ListByCityPair(ctx context.Context, from, to int64) ([]domain.TransportOffer, error)
	ListByCity(ctx context.Context, cityID int64) ([]domain.TransportOffer, error)
	List(ctx context.Context) ([]domain.TransportOffer, error)
	Update(ctx context.Context, offer *domain.TransportOffer) error
	ChangeTransport(ctx context.Context, id int64, mode domain.TransportMode, cost int64) error
	Delete(ctx context.Context, id int64) error
	DeleteByCity(ctx context.Context, cityID int64) (int, error)
}

// SegmentRepository persists itinerary segments. Every read hydrates Offer.
type SegmentRepository interface {
	Create(ctx context.Context, seg *domain.Segment) error
	GetByID(ctx context.Context, id int64) (*domain.Segment, error)
	List(ctx context.Context) ([]domain.Segment, error)
	// ListForTravel returns a travel's segments in itinerary order: by
	// start_time, with shared start times following the chain.
	ListForTravel(ctx context.Context, travelID int64) ([]domain.Segment, error)
	ListTouchingCity(ctx context.Context, cityID int64) ([]domain.Segment, error)
	ListByOffer(ctx context.Context, offerID int64) ([]domain.Segment, error)
	Update(ctx context.Context, seg *domain.Segment) error
	Delete(ctx context.Context, id int64) error
}

// TravelRepository persists travels and their activity/lodging join rows.
// Reads fill ActivityIDs and LodgingIDs but not the hydrated slices.
type TravelRepository interface {
	Create(ctx context.Context, travel *domain.Travel) error
	GetByID(ctx context.Context, id int64) (*domain.Travel, error)
	List(ctx context.Context) ([]domain.Travel, error)
	ListByStatus(ctx context.Context, status domain.TravelStatus) ([]domain.Travel, error)
	// SearchCandidates returns a superset of the non-completed travels
	// matching the filters. Callers apply SearchFilters.Matches.
	SearchCandidates(ctx context.Context, filters domain.SearchFilters) ([]domain.Travel, error)
	Update(ctx context.Context, travel *domain.Travel) error
	SetStatus(ctx context.Context, id int64, status domain.TravelStatus) error
	// Delete removes the travel with its segments and join rows.
	Delete(ctx context.Context, id int64) error
}

// ActivityRepository persists activities.
type ActivityRepository interface {
	Create(ctx context.Context, a *domain.Activity) error
	GetByID(ctx context.Context, id int64) (*domain.Activity, error)
	List(ctx context.Context) ([]domain.Activity, error)
	ListForTravel(ctx context.Context, travelID int64) ([]domain.Activity, error)
	Delete(ctx context.Context, id int64) error
}

// LodgingRepository persists lodgings.
type LodgingRepository interface {
	Create(ctx context.Context, l *domain.Lodging) error
	GetByID(ctx context.Context, id int64) (*domain.Lodging, error)
	List(ctx context.Context) ([]domain.Lodging, error)
	ListForTravel(ctx context.Context, travelID int64) ([]domain.Lodging, error)
	Delete(ctx context.Context, id int64) error
}
