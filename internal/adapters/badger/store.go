// Package badgerstore is an embedded, single-node implementation of the
// storage ports on top of Badger.
package badgerstore

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/samirrijal/travelplan/internal/core/domain"
	"github.com/samirrijal/travelplan/internal/core/ports"
)

const (
	prefixCity     = "city/"
	prefixOffer    = "offer/"
	prefixSegment  = "segment/"
	prefixTravel   = "travel/"
	prefixActivity = "activity/"
	prefixLodging  = "lodging/"
	prefixSeq      = "seq/"
)

// Options configures Open.
type Options struct {
	Dir      string
	InMemory bool
}

// Store implements ports.Store. A Store returned to a WithinTx callback is
// bound to that transaction.
type Store struct {
	db  *badger.DB
	txn *badger.Txn
}

var _ ports.Store = (*Store)(nil)

// Open opens (or creates) a database.
func Open(opts Options) (*Store, error) {
	bopts := badger.DefaultOptions(opts.Dir).WithLogger(nil)
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	}
	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database. Only the root store may be closed.
func (s *Store) Close() error {
	if s.txn != nil {
		return errors.New("badger: close called inside a transaction")
	}
	return s.db.Close()
}

func (s *Store) Cities() ports.CityRepository { return cityRepo{s} }
func (s *Store) Offers() ports.TransportOfferRepository { return offerRepo{s} }
func (s *Store) Segments() ports.SegmentRepository { return segmentRepo{s} }
func (s *Store) Travels() ports.TravelRepository { return travelRepo{s} }
func (s *Store) Activities() ports.ActivityRepository { return activityRepo{s} }
func (s *Store) Lodgings() ports.LodgingRepository { return lodgingRepo{s} }

func (s *Store) WithinTx(ctx context.Context, fn func(tx ports.Store) error) error {
	if s.txn != nil {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return fn(&Store{db: s.db, txn: txn})
	})
}

func (s *Store) Ping(ctx context.Context) error {
	if s.db.IsClosed() {
		return errors.New("badger: database closed")
	}
	return ctx.Err()
}

func (s *Store) view(fn func(txn *badger.Txn) error) error {
	if s.txn != nil {
		return fn(s.txn)
	}
	return s.db.View(fn)
}

func (s *Store) update(fn func(txn *badger.Txn) error) error {
	if s.txn != nil {
		return fn(s.txn)
	}
	return s.db.Update(fn)
}

func key(prefix string, id int64) []byte {
	return []byte(fmt.Sprintf("%s%020d", prefix, id))
}

func get[T any](txn *badger.Txn, k []byte) (*T, error) {
	item, err := txn.Get(k)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var v T
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &v)
	}); err != nil {
		return nil, fmt.Errorf("decode %s: %w", k, err)
	}
	return &v, nil
}

func exists(txn *badger.Txn, k []byte) (bool, error) {
	_, err := txn.Get(k)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	return err == nil, err
}

func put(txn *badger.Txn, k []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", k, err)
	}
	return txn.Set(k, data)
}

// scan decodes every value under prefix in key order. The iterator is closed
// before returning because a read-write txn allows one open iterator.
func scan[T any](txn *badger.Txn, prefix string) ([]T, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	it := txn.NewIterator(opts)
	defer it.Close()

	out := []T{}
	for it.Rewind(); it.Valid(); it.Next() {
		var v T
		if err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &v)
		}); err != nil {
			return nil, fmt.Errorf("decode %s: %w", it.Item().Key(), err)
		}
		out = append(out, v)
	}
	return out, nil
}

// assignID picks the next sequence value for prefix, or claims an explicit id.
func assignID(txn *badger.Txn, prefix string, id int64) (int64, error) {
	seqKey := []byte(prefixSeq + prefix)
	var last int64
	item, err := txn.Get(seqKey)
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
	case err != nil:
		return 0, err
	default:
		if err := item.Value(func(val []byte) error {
			if len(val) == 8 {
				last = int64(binary.BigEndian.Uint64(val))
			}
			return nil
		}); err != nil {
			return 0, err
		}
	}

	if id == 0 {
		id = last + 1
	} else {
		taken, err := exists(txn, key(prefix, id))
		if err != nil {
			return 0, err
		}
		if taken {
			return 0, fmt.Errorf("%sid %d: %w", prefix, id, domain.ErrDuplicateKey)
		}
	}
	if id > last {
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, uint64(id))
		if err := txn.Set(seqKey, buf); err != nil {
			return 0, err
		}
	}
	return id, nil
}
