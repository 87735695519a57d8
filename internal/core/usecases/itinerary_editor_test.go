package usecases_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/travelplan/internal/core/domain"
	"github.com/samirrijal/travelplan/internal/core/ports"
	"github.com/samirrijal/travelplan/internal/core/usecases"
)

type world struct {
	store      ports.Store
	spb, msk   int64
	kgd        int64
	ferry      int64
	travel     int64
	segment    int64
	start, end time.Time
}

// newWorld builds travel 1 with one SPB→Kaliningrad ferry leg.
func newWorld(t *testing.T) *world {
	s := newStore(t)
	w := &world{store: s, start: day(2025, 4, 2, 8), end: day(2025, 4, 3, 8)}
	w.spb = mustCity(t, s, "Saint Petersburg")
	w.msk = mustCity(t, s, "Moscow")
	w.kgd = mustCity(t, s, "Kaliningrad")
	w.ferry = mustOffer(t, s, domain.ModeShip, 3987, 966, w.spb, w.kgd)
	w.travel = mustTravel(t, s, domain.StatusInProgress)
	w.segment = mustSegment(t, s, w.travel, w.ferry, w.start, w.end)
	return w
}

func (w *world) editor(pub ports.EventPublisher, policy domain.WindowPolicy) *usecases.ItineraryEditor {
	catalog := usecases.NewCatalogService(w.store, nil, 0)
	return usecases.NewItineraryEditor(w.store, catalog, pub, policy, nil)
}

func TestInsertCity_NoRouteAvailable(t *testing.T) {
	w := newWorld(t)
	pub := &mockPublisher{}

	_, err := w.editor(pub, domain.WindowInherit).InsertCity(context.Background(), w.travel, w.msk, w.spb, w.kgd)
	if !errors.Is(err, domain.ErrNoRouteAvailable) {
		t.Fatalf("expected ErrNoRouteAvailable, got %v", err)
	}

	segs, err := w.store.Segments().ListForTravel(context.Background(), w.travel)
	require.NoError(t, err)
	require.Len(t, segs, 1)
	assert.Equal(t, w.segment, segs[0].ID)
	assert.Zero(t, pub.count(), "failed edit must not publish")
}

func TestInsertCity_SplicesLeg(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	toMsk := mustOffer(t, w.store, domain.ModeTrain, 2500, 700, w.spb, w.msk)
	toKgd := mustOffer(t, w.store, domain.ModePlane, 6000, 1100, w.msk, w.kgd)
	pub := &mockPublisher{}

	created, err := w.editor(pub, domain.WindowInherit).InsertCity(ctx, w.travel, w.msk, w.spb, w.kgd)
	require.NoError(t, err)
	require.Len(t, created, 2)

	segs, err := w.store.Segments().ListForTravel(ctx, w.travel)
	require.NoError(t, err)
	require.Len(t, segs, 2)

	offers := map[int64]bool{}
	for _, s := range segs {
		assert.NotEqual(t, w.segment, s.ID)
		assert.True(t, s.StartTime.Equal(w.start), "start_time inherited")
		assert.True(t, s.EndTime.Equal(w.end), "end_time inherited")
		offers[s.OfferID] = true
	}
	assert.True(t, offers[toMsk] && offers[toKgd], "both replacement offers used")

	_, err = w.store.Segments().GetByID(ctx, w.segment)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.Equal(t, 1, pub.count())
	assert.Equal(t, domain.EventCityInserted, pub.events[0].Type)
	assert.Equal(t, []int64{w.travel}, pub.events[0].TravelIDs)
}

func TestInsertCity_NestedInsertKeepsChainOrder(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	tver := mustCity(t, w.store, "Tver")
	mustOffer(t, w.store, domain.ModeTrain, 2500, 700, w.spb, w.msk)
	mustOffer(t, w.store, domain.ModePlane, 6000, 1100, w.msk, w.kgd)
	mustOffer(t, w.store, domain.ModeBus, 900, 500, w.spb, tver)
	mustOffer(t, w.store, domain.ModeTrain, 700, 170, tver, w.msk)
	editor := w.editor(nil, domain.WindowInherit)

	_, err := editor.InsertCity(ctx, w.travel, w.msk, w.spb, w.kgd)
	require.NoError(t, err)
	_, err = editor.InsertCity(ctx, w.travel, tver, w.spb, w.msk)
	require.NoError(t, err)

	segs, err := w.store.Segments().ListForTravel(ctx, w.travel)
	require.NoError(t, err)
	require.Len(t, segs, 3)
	require.NoError(t, domain.CheckChain(segs))
	assert.Equal(t, w.spb, segs[0].Offer.DepartureCityID)
	assert.Equal(t, tver, segs[1].Offer.DepartureCityID)
	assert.Equal(t, w.kgd, segs[2].Offer.DestinationCityID)

	// the MSK->KGD leg from the first insert passes the neighbour check and
	// fails only for lack of an offer
	_, err = editor.InsertCity(ctx, w.travel, tver, w.msk, w.kgd)
	assert.ErrorIs(t, err, domain.ErrNoRouteAvailable)

	found, err := usecases.NewSearchService(w.store).Search(ctx, domain.SearchFilters{
		DepartureCity: &w.spb,
		ArrivalCity:   &w.kgd,
	})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, w.travel, found[0].ID)
}

func TestInsertCity_DistanceWindowPolicy(t *testing.T) {
	w := newWorld(t)
	mustOffer(t, w.store, domain.ModeTrain, 2500, 100, w.spb, w.msk)
	mustOffer(t, w.store, domain.ModePlane, 6000, 300, w.msk, w.kgd)

	created, err := w.editor(nil, domain.WindowDistance).InsertCity(context.Background(), w.travel, w.msk, w.spb, w.kgd)
	require.NoError(t, err)

	// 24h window split 1:3
	mid := w.start.Add(6 * time.Hour)
	assert.True(t, created[0].StartTime.Equal(w.start))
	assert.True(t, created[0].EndTime.Equal(mid), "got %v", created[0].EndTime)
	assert.True(t, created[1].StartTime.Equal(mid))
	assert.True(t, created[1].EndTime.Equal(w.end))
}

func TestInsertCity_Preconditions(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	ed := w.editor(nil, domain.WindowInherit)

	_, err := ed.InsertCity(ctx, w.travel, 404, w.spb, w.kgd)
	assert.ErrorIs(t, err, domain.ErrCityNotFound)

	_, err = ed.InsertCity(ctx, w.travel, w.msk, w.kgd, w.spb)
	assert.ErrorIs(t, err, domain.ErrSegmentNotFound, "direction matters")

	_, err = ed.InsertCity(ctx, 404, w.msk, w.spb, w.kgd)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInsertCity_BrokenChain(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	kazan := mustCity(t, w.store, "Kazan")
	sochi := mustCity(t, w.store, "Sochi")
	// Kazan→Sochi directly after SPB→Kaliningrad does not connect.
	gap := mustOffer(t, w.store, domain.ModePlane, 8000, 1500, kazan, sochi)
	mustSegment(t, w.store, w.travel, gap, day(2025, 4, 5, 8), day(2025, 4, 5, 12))
	mustOffer(t, w.store, domain.ModeTrain, 2500, 700, w.spb, w.msk)
	mustOffer(t, w.store, domain.ModePlane, 6000, 1100, w.msk, w.kgd)

	_, err := w.editor(nil, domain.WindowInherit).InsertCity(ctx, w.travel, w.msk, w.spb, w.kgd)
	assert.ErrorIs(t, err, domain.ErrBrokenChain)

	segs, err := w.store.Segments().ListForTravel(ctx, w.travel)
	require.NoError(t, err)
	assert.Len(t, segs, 2)
}

func TestInsertCity_IsAtomic(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	mustOffer(t, w.store, domain.ModeTrain, 2500, 700, w.spb, w.msk)
	mustOffer(t, w.store, domain.ModePlane, 6000, 1100, w.msk, w.kgd)

	creates := 0
	flaky := flakyStore{Store: w.store, failAt: 2, creates: &creates}
	catalog := usecases.NewCatalogService(flaky, nil, 0)
	ed := usecases.NewItineraryEditor(flaky, catalog, nil, domain.WindowInherit, nil)

	_, err := ed.InsertCity(ctx, w.travel, w.msk, w.spb, w.kgd)
	require.ErrorIs(t, err, errInjected)

	segs, err := w.store.Segments().ListForTravel(ctx, w.travel)
	require.NoError(t, err)
	require.Len(t, segs, 1, "old segment restored, no replacement left behind")
	assert.Equal(t, w.segment, segs[0].ID)
}

func TestDeleteCityFromRoute_MissingCityIsNoop(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	pub := &mockPublisher{}

	res, err := w.editor(pub, domain.WindowInherit).DeleteCityFromRoute(ctx, 404)
	require.NoError(t, err)
	assert.Zero(t, res.SegmentsRemoved)
	assert.Zero(t, res.OffersRemoved)
	assert.Zero(t, pub.count())

	offers, err := w.store.Offers().List(ctx)
	require.NoError(t, err)
	assert.Len(t, offers, 1)
	segs, err := w.store.Segments().List(ctx)
	require.NoError(t, err)
	assert.Len(t, segs, 1)
}

func TestDeleteCityFromRoute_Citywide(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	kazan := mustCity(t, w.store, "Kazan")
	mskKgd := mustOffer(t, w.store, domain.ModeTrain, 4000, 1200, w.msk, w.kgd)
	kznKgd := mustOffer(t, w.store, domain.ModePlane, 9000, 2000, kazan, w.kgd)
	spbMsk := mustOffer(t, w.store, domain.ModeTrain, 2500, 700, w.spb, w.msk)

	other := mustTravel(t, w.store, domain.StatusProcessing)
	keep := mustSegment(t, w.store, other, spbMsk, day(2025, 5, 1, 8), day(2025, 5, 1, 12))
	mustSegment(t, w.store, other, mskKgd, day(2025, 5, 2, 8), day(2025, 5, 2, 20))
	mustSegment(t, w.store, other, kznKgd, day(2025, 5, 4, 8), day(2025, 5, 4, 11))
	pub := &mockPublisher{}

	res, err := w.editor(pub, domain.WindowInherit).DeleteCityFromRoute(ctx, w.kgd)
	require.NoError(t, err)
	assert.Equal(t, 3, res.OffersRemoved)
	assert.Equal(t, 3, res.SegmentsRemoved)
	assert.ElementsMatch(t, []int64{w.travel, other}, res.TravelIDs)

	touching, err := w.store.Segments().ListTouchingCity(ctx, w.kgd)
	require.NoError(t, err)
	assert.Empty(t, touching)
	offers, err := w.store.Offers().ListByCity(ctx, w.kgd)
	require.NoError(t, err)
	assert.Empty(t, offers)

	segs, err := w.store.Segments().List(ctx)
	require.NoError(t, err)
	require.Len(t, segs, 1)
	assert.Equal(t, keep, segs[0].ID)

	_, err = w.store.Cities().GetByID(ctx, w.kgd)
	assert.NoError(t, err, "the city row itself stays")
	require.Equal(t, 1, pub.count())
	assert.Equal(t, domain.EventCityRemoved, pub.events[0].Type)
	assert.Len(t, pub.events[0].OfferIDs, 3)
	assert.Contains(t, pub.events[0].OfferIDs, w.ferry)
}

func TestItineraryEditor_NilCatalog(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	editor := usecases.NewItineraryEditor(w.store, nil, nil, domain.WindowInherit, nil)

	offer, err := editor.ChangeTransport(ctx, w.segment, "train", 1500)
	require.NoError(t, err)
	assert.Equal(t, domain.ModeTrain, offer.Mode)

	res, err := editor.DeleteCityFromRoute(ctx, w.kgd)
	require.NoError(t, err)
	assert.Equal(t, 1, res.SegmentsRemoved)
}

func TestChangeTransport_PropagatesToSharedOffer(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	other := mustTravel(t, w.store, domain.StatusInProgress)
	shared := mustSegment(t, w.store, other, w.ferry, day(2025, 6, 1, 8), day(2025, 6, 2, 8))
	untouched := mustOffer(t, w.store, domain.ModeBus, 900, 700, w.spb, w.msk)
	pub := &mockPublisher{}

	offer, err := w.editor(pub, domain.WindowInherit).ChangeTransport(ctx, w.segment, "Поезд", 2000)
	require.NoError(t, err)
	assert.Equal(t, domain.ModeTrain, offer.Mode)
	assert.Equal(t, int64(2000), offer.Cost)
	assert.Equal(t, int64(966), offer.Distance, "distance unchanged")

	seg, err := w.store.Segments().GetByID(ctx, shared)
	require.NoError(t, err)
	assert.Equal(t, domain.ModeTrain, seg.Offer.Mode)
	assert.Equal(t, int64(2000), seg.Offer.Cost)

	bus, err := w.store.Offers().GetByID(ctx, untouched)
	require.NoError(t, err)
	assert.Equal(t, domain.ModeBus, bus.Mode)
	assert.Equal(t, int64(900), bus.Cost)

	require.Equal(t, 1, pub.count())
	assert.ElementsMatch(t, []int64{w.travel, other}, pub.events[0].TravelIDs)
}

func TestChangeTransport_SegmentNotFound(t *testing.T) {
	w := newWorld(t)
	_, err := w.editor(nil, domain.WindowInherit).ChangeTransport(context.Background(), 404, "train", 10)
	assert.ErrorIs(t, err, domain.ErrSegmentNotFound)
}

func TestChangeTransport_InvalidMode(t *testing.T) {
	w := newWorld(t)
	_, err := w.editor(nil, domain.WindowInherit).ChangeTransport(context.Background(), w.segment, "teleport", 10)
	assert.ErrorIs(t, err, domain.ErrValidation)

	offer, err := w.store.Offers().GetByID(context.Background(), w.ferry)
	require.NoError(t, err)
	assert.Equal(t, domain.ModeShip, offer.Mode)
}

func TestEditor_PublishFailureDoesNotFailEdit(t *testing.T) {
	w := newWorld(t)
	pub := &mockPublisher{
		publishFn: func(ctx context.Context, ev *domain.ItineraryEvent) error {
			return errors.New("nats down")
		},
	}

	_, err := w.editor(pub, domain.WindowInherit).ChangeTransport(context.Background(), w.segment, "plane", 12000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pub.count() != 1 {
		t.Errorf("expected 1 publish attempt, got %d", pub.count())
	}
}
