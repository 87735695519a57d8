package badgerstore

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/samirrijal/travelplan/internal/core/domain"
)

type offerRepo struct{ s *Store }

func (r offerRepo) Create(ctx context.Context, offer *domain.TransportOffer) error {
	return r.s.update(func(txn *badger.Txn) error {
		if err := checkOffer(txn, offer, 0); err != nil {
			return err
		}
		id, err := assignID(txn, prefixOffer, offer.ID)
		if err != nil {
			return err
		}
		offer.ID = id
		return put(txn, key(prefixOffer, id), offer)
	})
}

func (r offerRepo) GetByID(ctx context.Context, id int64) (*domain.TransportOffer, error) {
	var offer *domain.TransportOffer
	err := r.s.view(func(txn *badger.Txn) error {
		var err error
		offer, err = get[domain.TransportOffer](txn, key(prefixOffer, id))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("transport offer %d: %w", id, err)
	}
	return offer, nil
}

func (r offerRepo) GetByCityPair(ctx context.Context, from, to int64) (*domain.TransportOffer, error) {
	offers, err := r.ListByCityPair(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if len(offers) == 0 {
		return nil, fmt.Errorf("transport offer %d->%d: %w", from, to, domain.ErrNotFound)
	}
	return &offers[0], nil
}

func (r offerRepo) ListByCityPair(ctx context.Context, from, to int64) ([]domain.TransportOffer, error) {
	return r.filter(func(o *domain.TransportOffer) bool { return o.Connects(from, to) })
}

func (r offerRepo) ListByCity(ctx context.Context, cityID int64) ([]domain.TransportOffer, error) {
	return r.filter(func(o *domain.TransportOffer) bool { return o.Touches(cityID) })
}

func (r offerRepo) List(ctx context.Context) ([]domain.TransportOffer, error) {
	return r.filter(func(*domain.TransportOffer) bool { return true })
}

func (r offerRepo) filter(keep func(o *domain.TransportOffer) bool) ([]domain.TransportOffer, error) {
	var offers []domain.TransportOffer
	err := r.s.view(func(txn *badger.Txn) error {
		all, err := scan[domain.TransportOffer](txn, prefixOffer)
		if err != nil {
			return err
		}
		offers = all[:0]
		for i := range all {
			if keep(&all[i]) {
				offers = append(offers, all[i])
			}
		}
		return nil
	})
	return offers, err
}

func (r offerRepo) Update(ctx context.Context, offer *domain.TransportOffer) error {
	return r.s.update(func(txn *badger.Txn) error {
		if _, err := get[domain.TransportOffer](txn, key(prefixOffer, offer.ID)); err != nil {
			return fmt.Errorf("transport offer %d: %w", offer.ID, err)
		}
		if err := checkOffer(txn, offer, offer.ID); err != nil {
			return err
		}
		return put(txn, key(prefixOffer, offer.ID), offer)
	})
}

func (r offerRepo) ChangeTransport(ctx context.Context, id int64, mode domain.TransportMode, cost int64) error {
	return r.s.update(func(txn *badger.Txn) error {
		offer, err := get[domain.TransportOffer](txn, key(prefixOffer, id))
		if err != nil {
			return fmt.Errorf("transport offer %d: %w", id, err)
		}
		offer.Mode = mode
		offer.Cost = cost
		if err := checkOffer(txn, offer, id); err != nil {
			return err
		}
		return put(txn, key(prefixOffer, id), offer)
	})
}

func (r offerRepo) Delete(ctx context.Context, id int64) error {
	return r.s.update(func(txn *badger.Txn) error {
		ok, err := exists(txn, key(prefixOffer, id))
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("transport offer %d: %w", id, domain.ErrNotFound)
		}
		segs, err := scan[domain.Segment](txn, prefixSegment)
		if err != nil {
			return err
		}
		for _, seg := range segs {
			if seg.OfferID == id {
				return fmt.Errorf("transport offer %d is used by segment %d: %w", id, seg.ID, domain.ErrReferenced)
			}
		}
		return txn.Delete(key(prefixOffer, id))
	})
}

// DeleteByCity removes every offer touching the city. Segments still
// pointing at one of them make it fail with ErrReferenced.
func (r offerRepo) DeleteByCity(ctx context.Context, cityID int64) (int, error) {
	var n int
	err := r.s.update(func(txn *badger.Txn) error {
		offers, err := scan[domain.TransportOffer](txn, prefixOffer)
		if err != nil {
			return err
		}
		doomed := map[int64]bool{}
		for _, o := range offers {
			if o.Touches(cityID) {
				doomed[o.ID] = true
			}
		}
		if len(doomed) == 0 {
			return nil
		}
		segs, err := scan[domain.Segment](txn, prefixSegment)
		if err != nil {
			return err
		}
		for _, seg := range segs {
			if doomed[seg.OfferID] {
				return fmt.Errorf("transport offer %d is used by segment %d: %w", seg.OfferID, seg.ID, domain.ErrReferenced)
			}
		}
		for id := range doomed {
			if err := txn.Delete(key(prefixOffer, id)); err != nil {
				return err
			}
		}
		n = len(doomed)
		return nil
	})
	return n, err
}

// checkOffer enforces city references and the (from, to, mode) identity.
func checkOffer(txn *badger.Txn, offer *domain.TransportOffer, self int64) error {
	for _, cityID := range []int64{offer.DepartureCityID, offer.DestinationCityID} {
		ok, err := exists(txn, key(prefixCity, cityID))
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("city %d: %w", cityID, domain.ErrMissingReference)
		}
	}
	offers, err := scan[domain.TransportOffer](txn, prefixOffer)
	if err != nil {
		return err
	}
	for _, o := range offers {
		if o.ID != self && o.Connects(offer.DepartureCityID, offer.DestinationCityID) && o.Mode == offer.Mode {
			return fmt.Errorf("transport offer %d->%d by %s: %w",
				offer.DepartureCityID, offer.DestinationCityID, offer.Mode, domain.ErrDuplicateKey)
		}
	}
	return nil
}
