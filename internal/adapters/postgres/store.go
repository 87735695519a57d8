package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/samirrijal/travelplan/internal/core/ports"
)

// Store implements ports.Store on PostgreSQL.
type Store struct {
	db   *DB
	q    querier
	inTx bool
}

var _ ports.Store = (*Store)(nil)

// NewStore creates a Store running statements on the pool.
func NewStore(db *DB) *Store { return &Store{db: db, q: db.Pool} }

func (s *Store) Cities() ports.CityRepository { return &CityRepo{q: s.q} }
func (s *Store) Offers() ports.TransportOfferRepository { return &OfferRepo{q: s.q} }
func (s *Store) Segments() ports.SegmentRepository { return &SegmentRepo{q: s.q} }
func (s *Store) Travels() ports.TravelRepository { return &TravelRepo{q: s.q} }
func (s *Store) Activities() ports.ActivityRepository { return &ActivityRepo{q: s.q} }
func (s *Store) Lodgings() ports.LodgingRepository { return &LodgingRepo{q: s.q} }

// WithinTx runs fn inside pgx.BeginFunc. Calls on a transactional Store
// reuse the open transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(tx ports.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	return pgx.BeginFunc(ctx, s.db.Pool, func(tx pgx.Tx) error {
		return fn(&Store{db: s.db, q: tx, inTx: true})
	})
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.Pool.Ping(ctx)
}
