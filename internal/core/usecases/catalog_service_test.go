package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/travelplan/internal/core/domain"
	"github.com/samirrijal/travelplan/internal/core/usecases"
)

func TestCatalog_ChangeTransportOnlyTouchesOneOffer(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	other := mustOffer(t, w.store, domain.ModePlane, 7000, 966, w.spb, w.kgd)
	svc := usecases.NewCatalogService(w.store, nil, 0)

	changed, err := svc.ChangeTransport(ctx, w.ferry, "Поезд", 2000)
	require.NoError(t, err)
	assert.Equal(t, domain.ModeTrain, changed.Mode)
	assert.Equal(t, int64(2000), changed.Cost)

	o, err := svc.Get(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, domain.ModePlane, o.Mode)
	assert.Equal(t, int64(7000), o.Cost)

	_, err = svc.ChangeTransport(ctx, 404, "bus", 10)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCatalog_AddValidation(t *testing.T) {
	w := newWorld(t)
	svc := usecases.NewCatalogService(w.store, nil, 0)
	ctx := context.Background()

	cases := []domain.TransportOffer{
		{Mode: "rocket", Cost: 1, Distance: 1, DepartureCityID: w.spb, DestinationCityID: w.msk},
		{Mode: domain.ModeBus, Cost: 0, Distance: 1, DepartureCityID: w.spb, DestinationCityID: w.msk},
		{Mode: domain.ModeBus, Cost: 1, Distance: -5, DepartureCityID: w.spb, DestinationCityID: w.msk},
		{Mode: domain.ModeBus, Cost: 1, Distance: 1, DepartureCityID: w.spb, DestinationCityID: w.spb},
	}
	for _, o := range cases {
		o := o
		assert.ErrorIs(t, svc.Add(ctx, &o), domain.ErrValidation, "%+v", o)
	}

	dup := &domain.TransportOffer{Mode: "ferry", Cost: 1, Distance: 1, DepartureCityID: w.spb, DestinationCityID: w.kgd}
	assert.ErrorIs(t, svc.Add(ctx, dup), domain.ErrDuplicateKey)

	missing := &domain.TransportOffer{Mode: domain.ModeBus, Cost: 1, Distance: 1, DepartureCityID: w.spb, DestinationCityID: 404}
	assert.ErrorIs(t, svc.Add(ctx, missing), domain.ErrMissingReference)
}

func TestCatalog_ReadThroughCache(t *testing.T) {
	w := newWorld(t)
	cache := newMockCache()
	svc := usecases.NewCatalogService(w.store, cache, 60)
	ctx := context.Background()

	first, err := svc.GetByCityPair(ctx, w.spb, w.kgd)
	require.NoError(t, err)
	assert.Equal(t, w.ferry, first.ID)
	_, cachedPair := cache.data["offers:pair:1:3"]
	assert.True(t, cachedPair, "pair lookup cached")

	_, err = svc.ChangeTransport(ctx, w.ferry, "plane", 9000)
	require.NoError(t, err)
	assert.Contains(t, cache.deletes, "offers:pair:1:3")

	again, err := svc.GetByCityPair(ctx, w.spb, w.kgd)
	require.NoError(t, err)
	assert.Equal(t, domain.ModePlane, again.Mode, "stale entry not served")
}

func TestCatalog_DeleteReferenced(t *testing.T) {
	w := newWorld(t)
	svc := usecases.NewCatalogService(w.store, nil, 0)

	err := svc.Delete(context.Background(), w.ferry)
	if !errors.Is(err, domain.ErrReferenced) {
		t.Fatalf("expected ErrReferenced, got %v", err)
	}
}

func TestCityService_Lifecycle(t *testing.T) {
	w := newWorld(t)
	cache := newMockCache()
	svc := usecases.NewCityService(w.store, cache, 60)
	ctx := context.Background()

	err := svc.Create(ctx, &domain.City{Name: "   "})
	assert.ErrorIs(t, err, domain.ErrValidation)
	err = svc.Create(ctx, &domain.City{Name: "Llanfairpwllgwyngyllgogerychwyrndrobwllllantysiliogogogoch"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	kazan := &domain.City{Name: "Kazan"}
	require.NoError(t, svc.Create(ctx, kazan))
	cities, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, cities, 4)

	kazan.Name = "Qazan"
	require.NoError(t, svc.Update(ctx, kazan), "unreferenced city may be renamed")
	err = svc.Update(ctx, &domain.City{ID: w.spb, Name: "Leningrad"})
	assert.ErrorIs(t, err, domain.ErrReferenced)

	require.NoError(t, svc.Delete(ctx, kazan.ID))
	_, err = svc.GetByID(ctx, kazan.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
