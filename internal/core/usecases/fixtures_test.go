package usecases_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	badgerstore "github.com/samirrijal/travelplan/internal/adapters/badger"
	"github.com/samirrijal/travelplan/internal/core/domain"
	"github.com/samirrijal/travelplan/internal/core/ports"
)

func newStore(t *testing.T) *badgerstore.Store {
	t.Helper()
	s, err := badgerstore.Open(badgerstore.Options{InMemory: true})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func mustCity(t *testing.T, s ports.Store, name string) int64 {
	t.Helper()
	c := &domain.City{Name: name}
	if err := s.Cities().Create(context.Background(), c); err != nil {
		t.Fatalf("create city %s: %v", name, err)
	}
	return c.ID
}

func mustOffer(t *testing.T, s ports.Store, mode domain.TransportMode, cost, dist, from, to int64) int64 {
	t.Helper()
	o := &domain.TransportOffer{Mode: mode, Cost: cost, Distance: dist, DepartureCityID: from, DestinationCityID: to}
	if err := s.Offers().Create(context.Background(), o); err != nil {
		t.Fatalf("create offer %d->%d: %v", from, to, err)
	}
	return o.ID
}

func mustTravel(t *testing.T, s ports.Store, status domain.TravelStatus, activities ...int64) int64 {
	t.Helper()
	tr := &domain.Travel{Status: status, UserID: 1, ActivityIDs: activities}
	if err := s.Travels().Create(context.Background(), tr); err != nil {
		t.Fatalf("create travel: %v", err)
	}
	return tr.ID
}

func mustSegment(t *testing.T, s ports.Store, travelID, offerID int64, start, end time.Time) int64 {
	t.Helper()
	seg := &domain.Segment{TravelID: travelID, OfferID: offerID, StartTime: start, EndTime: end}
	if err := s.Segments().Create(context.Background(), seg); err != nil {
		t.Fatalf("create segment: %v", err)
	}
	return seg.ID
}

func day(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	mu        sync.Mutex
	events    []domain.ItineraryEvent
	publishFn func(ctx context.Context, ev *domain.ItineraryEvent) error
}

func (m *mockPublisher) PublishItineraryEvent(ctx context.Context, ev *domain.ItineraryEvent) error {
	m.mu.Lock()
	m.events = append(m.events, *ev)
	m.mu.Unlock()
	if m.publishFn != nil {
		return m.publishFn(ctx, ev)
	}
	return nil
}

func (m *mockPublisher) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

// --- Mock CacheService ---

type mockCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	deletes []string
}

func newMockCache() *mockCache { return &mockCache{data: map[string][]byte{}} }

var errCacheMiss = errors.New("cache miss")

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, errCacheMiss
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	m.deletes = append(m.deletes, key)
	return nil
}

// --- failing store wrapper ---

// flakyStore fails the nth segment Create it sees, counting across
// transactions.
type flakyStore struct {
	ports.Store
	failAt  int
	creates *int
}

var errInjected = errors.New("injected failure")

func (f flakyStore) Segments() ports.SegmentRepository {
	return flakySegments{SegmentRepository: f.Store.Segments(), f: f}
}

func (f flakyStore) WithinTx(ctx context.Context, fn func(tx ports.Store) error) error {
	return f.Store.WithinTx(ctx, func(tx ports.Store) error {
		return fn(flakyStore{Store: tx, failAt: f.failAt, creates: f.creates})
	})
}

type flakySegments struct {
	ports.SegmentRepository
	f flakyStore
}

func (s flakySegments) Create(ctx context.Context, seg *domain.Segment) error {
	*s.f.creates++
	if *s.f.creates == s.f.failAt {
		return errInjected
	}
	return s.SegmentRepository.Create(ctx, seg)
}
