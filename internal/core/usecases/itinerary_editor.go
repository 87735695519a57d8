package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/travelplan/internal/core/domain"
	"github.com/samirrijal/travelplan/internal/core/ports"
	"github.com/samirrijal/travelplan/internal/pkg/metrics"
)

var tracer = otel.Tracer("github.com/samirrijal/travelplan/internal/core/usecases")

// CityRemoval summarises a citywide purge.
type CityRemoval struct {
	CityID          int64   `json:"city_id"`
	SegmentsRemoved int     `json:"segments_removed"`
	OffersRemoved   int     `json:"offers_removed"`
	TravelIDs       []int64 `json:"travel_ids"`
}

// ItineraryEditor performs structural edits on travel itineraries. Each edit
// runs in one store transaction and publishes an event after commit.
type ItineraryEditor struct {
	store     ports.Store
	catalog   *CatalogService
	publisher ports.EventPublisher
	policy    domain.WindowPolicy
	logger    *slog.Logger
	now       func() time.Time
}

// NewItineraryEditor creates a new ItineraryEditor. publisher may be nil. A
// nil catalog is replaced by an uncached one over store.
func NewItineraryEditor(store ports.Store, catalog *CatalogService, publisher ports.EventPublisher, policy domain.WindowPolicy, logger *slog.Logger) *ItineraryEditor {
	if catalog == nil {
		catalog = NewCatalogService(store, nil, 0)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if policy == "" {
		policy = domain.WindowInherit
	}
	return &ItineraryEditor{
		store:     store,
		catalog:   catalog,
		publisher: publisher,
		policy:    policy,
		logger:    logger,
		now:       time.Now,
	}
}

// InsertCity splices newCity into the travel's from→to leg, replacing that
// segment with from→newCity and newCity→to.
func (e *ItineraryEditor) InsertCity(ctx context.Context, travelID, newCityID, fromCityID, toCityID int64) (segs []domain.Segment, err error) {
	ctx, span := tracer.Start(ctx, "itinerary.insert_city", trace.WithAttributes(
		attribute.Int64("travel.id", travelID),
		attribute.Int64("city.new", newCityID),
		attribute.Int64("city.from", fromCityID),
		attribute.Int64("city.to", toCityID),
	))
	defer func(start time.Time) { e.finish(span, "insert_city", start, err) }(time.Now())

	var replaced int64
	err = e.store.WithinTx(ctx, func(tx ports.Store) error {
		if _, err := tx.Cities().GetByID(ctx, newCityID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("city %d: %w", newCityID, domain.ErrCityNotFound)
			}
			return err
		}
		if _, err := tx.Travels().GetByID(ctx, travelID); err != nil {
			return err
		}

		current, err := tx.Segments().ListForTravel(ctx, travelID)
		if err != nil {
			return err
		}
		idx, ok := domain.FindLeg(current, fromCityID, toCityID)
		if !ok {
			return fmt.Errorf("travel %d has no leg %d->%d: %w", travelID, fromCityID, toCityID, domain.ErrSegmentNotFound)
		}
		if err := domain.CheckNeighbours(current, idx); err != nil {
			return err
		}

		first, err := resolveLeg(ctx, tx, fromCityID, newCityID)
		if err != nil {
			return err
		}
		second, err := resolveLeg(ctx, tx, newCityID, toCityID)
		if err != nil {
			return err
		}

		target := current[idx]
		w1, w2 := domain.SplitWindow(e.policy, target.StartTime, target.EndTime, first.Distance, second.Distance)

		if err := tx.Segments().Delete(ctx, target.ID); err != nil {
			return err
		}
		segs = []domain.Segment{
			{TravelID: travelID, OfferID: first.ID, Offer: first, StartTime: w1[0], EndTime: w1[1]},
			{TravelID: travelID, OfferID: second.ID, Offer: second, StartTime: w2[0], EndTime: w2[1]},
		}
		for i := range segs {
			if err := tx.Segments().Create(ctx, &segs[i]); err != nil {
				return err
			}
		}
		replaced = target.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.publish(ctx, &domain.ItineraryEvent{
		Type:       domain.EventCityInserted,
		TravelIDs:  []int64{travelID},
		CityID:     newCityID,
		SegmentIDs: []int64{replaced, segs[0].ID, segs[1].ID},
	})
	return segs, nil
}

func resolveLeg(ctx context.Context, tx ports.Store, from, to int64) (*domain.TransportOffer, error) {
	offer, err := tx.Offers().GetByCityPair(ctx, from, to)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("no transport offer %d->%d: %w", from, to, domain.ErrNoRouteAvailable)
	}
	return offer, err
}

// DeleteCityFromRoute purges a city: every segment of any travel whose offer
// touches it, then every such offer. An unknown city is a logged no-op.
func (e *ItineraryEditor) DeleteCityFromRoute(ctx context.Context, cityID int64) (res *CityRemoval, err error) {
	ctx, span := tracer.Start(ctx, "itinerary.delete_city", trace.WithAttributes(
		attribute.Int64("city.id", cityID),
	))
	defer func(start time.Time) { e.finish(span, "delete_city", start, err) }(time.Now())

	res = &CityRemoval{CityID: cityID, TravelIDs: []int64{}}
	var removedOffers []domain.TransportOffer
	missing := false
	err = e.store.WithinTx(ctx, func(tx ports.Store) error {
		if _, err := tx.Cities().GetByID(ctx, cityID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				missing = true
				return nil
			}
			return err
		}

		segs, err := tx.Segments().ListTouchingCity(ctx, cityID)
		if err != nil {
			return err
		}
		seen := map[int64]bool{}
		for _, seg := range segs {
			if err := tx.Segments().Delete(ctx, seg.ID); err != nil {
				return err
			}
			if !seen[seg.TravelID] {
				seen[seg.TravelID] = true
				res.TravelIDs = append(res.TravelIDs, seg.TravelID)
			}
		}
		res.SegmentsRemoved = len(segs)

		if removedOffers, err = tx.Offers().ListByCity(ctx, cityID); err != nil {
			return err
		}
		res.OffersRemoved, err = tx.Offers().DeleteByCity(ctx, cityID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if missing {
		e.logger.InfoContext(ctx, "delete city from route: city does not exist", "city_id", cityID)
		span.AddEvent("city missing")
		return res, nil
	}

	e.catalog.Invalidate(ctx, removedOffers...)
	e.logger.InfoContext(ctx, "city removed from routes",
		"city_id", cityID,
		"segments", res.SegmentsRemoved,
		"offers", res.OffersRemoved,
		"travels", len(res.TravelIDs),
	)
	ev := &domain.ItineraryEvent{
		Type:      domain.EventCityRemoved,
		TravelIDs: res.TravelIDs,
		CityID:    cityID,
	}
	for _, o := range removedOffers {
		ev.OfferIDs = append(ev.OfferIDs, o.ID)
	}
	e.publish(ctx, ev)
	return res, nil
}

// ChangeTransport changes mode and cost of the offer behind a segment. The
// offer is shared, so every segment referencing it sees the change.
func (e *ItineraryEditor) ChangeTransport(ctx context.Context, segmentID int64, mode string, cost int64) (offer *domain.TransportOffer, err error) {
	ctx, span := tracer.Start(ctx, "itinerary.change_transport", trace.WithAttributes(
		attribute.Int64("segment.id", segmentID),
		attribute.String("transport.mode", mode),
	))
	defer func(start time.Time) { e.finish(span, "change_transport", start, err) }(time.Now())

	seg, err := e.store.Segments().GetByID(ctx, segmentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("segment %d: %w", segmentID, domain.ErrSegmentNotFound)
		}
		return nil, err
	}

	offer, err = e.catalog.ChangeTransport(ctx, seg.OfferID, mode, cost)
	if err != nil {
		return nil, err
	}

	affected, err := e.store.Segments().ListByOffer(ctx, offer.ID)
	if err != nil {
		// the change is committed; only the event loses detail
		e.logger.WarnContext(ctx, "list segments sharing offer", "offer_id", offer.ID, "error", err)
	}
	ev := &domain.ItineraryEvent{Type: domain.EventTransportChanged, OfferID: offer.ID, TravelIDs: []int64{}}
	seen := map[int64]bool{}
	for _, s := range affected {
		ev.SegmentIDs = append(ev.SegmentIDs, s.ID)
		if !seen[s.TravelID] {
			seen[s.TravelID] = true
			ev.TravelIDs = append(ev.TravelIDs, s.TravelID)
		}
	}
	e.publish(ctx, ev)
	return offer, nil
}

func (e *ItineraryEditor) finish(span trace.Span, op string, start time.Time, err error) {
	metrics.ObserveEdit(op, start, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// publish is best effort: the edit has already committed.
func (e *ItineraryEditor) publish(ctx context.Context, ev *domain.ItineraryEvent) {
	if e.publisher == nil {
		return
	}
	ev.OccurredAt = e.now().UTC()
	if err := e.publisher.PublishItineraryEvent(ctx, ev); err != nil {
		metrics.EventsPublished.WithLabelValues(string(ev.Type), "error").Inc()
		e.logger.WarnContext(ctx, "publish itinerary event", "type", ev.Type, "error", err)
		return
	}
	metrics.EventsPublished.WithLabelValues(string(ev.Type), "ok").Inc()
}
