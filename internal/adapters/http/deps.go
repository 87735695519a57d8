package http

import (
	"github.com/nats-io/nats.go"
	"github.com/samirrijal/travelplan/internal/adapters/valkey"
	"github.com/samirrijal/travelplan/internal/core/ports"
	"github.com/samirrijal/travelplan/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Cities   *usecases.CityService
	Catalog  *usecases.CatalogService
	Segments *usecases.SegmentService
	Editor   *usecases.ItineraryEditor
	Travels  *usecases.TravelService
	Search   *usecases.SearchService
	Stays    *usecases.StayService
	Store    ports.Store
	NATS     *nats.Conn
	Cache    *valkey.Cache
}
