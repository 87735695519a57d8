package badgerstore

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/samirrijal/travelplan/internal/core/domain"
)

type segmentRepo struct{ s *Store }

func (r segmentRepo) Create(ctx context.Context, seg *domain.Segment) error {
	return r.s.update(func(txn *badger.Txn) error {
		if err := checkSegment(txn, seg, 0); err != nil {
			return err
		}
		id, err := assignID(txn, prefixSegment, seg.ID)
		if err != nil {
			return err
		}
		seg.ID = id
		return putSegment(txn, seg)
	})
}

func (r segmentRepo) GetByID(ctx context.Context, id int64) (*domain.Segment, error) {
	var seg *domain.Segment
	err := r.s.view(func(txn *badger.Txn) error {
		var err error
		if seg, err = get[domain.Segment](txn, key(prefixSegment, id)); err != nil {
			return err
		}
		seg.Offer, err = get[domain.TransportOffer](txn, key(prefixOffer, seg.OfferID))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("segment %d: %w", id, err)
	}
	return seg, nil
}

func (r segmentRepo) List(ctx context.Context) ([]domain.Segment, error) {
	return r.filter(func(*domain.Segment) bool { return true })
}

func (r segmentRepo) ListForTravel(ctx context.Context, travelID int64) ([]domain.Segment, error) {
	segs, err := r.filter(func(s *domain.Segment) bool { return s.TravelID == travelID })
	if err != nil {
		return nil, err
	}
	domain.SortSegments(segs)
	return segs, nil
}

func (r segmentRepo) ListTouchingCity(ctx context.Context, cityID int64) ([]domain.Segment, error) {
	return r.filter(func(s *domain.Segment) bool { return s.Offer.Touches(cityID) })
}

func (r segmentRepo) ListByOffer(ctx context.Context, offerID int64) ([]domain.Segment, error) {
	return r.filter(func(s *domain.Segment) bool { return s.OfferID == offerID })
}

// filter returns hydrated segments accepted by keep, in id order.
func (r segmentRepo) filter(keep func(s *domain.Segment) bool) ([]domain.Segment, error) {
	var out []domain.Segment
	err := r.s.view(func(txn *badger.Txn) error {
		segs, err := scan[domain.Segment](txn, prefixSegment)
		if err != nil {
			return err
		}
		out = make([]domain.Segment, 0, len(segs))
		for i := range segs {
			seg := &segs[i]
			if seg.Offer, err = get[domain.TransportOffer](txn, key(prefixOffer, seg.OfferID)); err != nil {
				return fmt.Errorf("segment %d offer %d: %w", seg.ID, seg.OfferID, err)
			}
			if keep(seg) {
				out = append(out, *seg)
			}
		}
		return nil
	})
	return out, err
}

func (r segmentRepo) Update(ctx context.Context, seg *domain.Segment) error {
	return r.s.update(func(txn *badger.Txn) error {
		if _, err := get[domain.Segment](txn, key(prefixSegment, seg.ID)); err != nil {
			return fmt.Errorf("segment %d: %w", seg.ID, err)
		}
		if err := checkSegment(txn, seg, seg.ID); err != nil {
			return err
		}
		return putSegment(txn, seg)
	})
}

func (r segmentRepo) Delete(ctx context.Context, id int64) error {
	return r.s.update(func(txn *badger.Txn) error {
		ok, err := exists(txn, key(prefixSegment, id))
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("segment %d: %w", id, domain.ErrNotFound)
		}
		return txn.Delete(key(prefixSegment, id))
	})
}

// putSegment stores the segment without its hydrated offer.
func putSegment(txn *badger.Txn, seg *domain.Segment) error {
	rec := *seg
	rec.Offer = nil
	return put(txn, key(prefixSegment, seg.ID), &rec)
}

// checkSegment enforces the travel and offer references and the
// (travel, offer, start, end) identity.
func checkSegment(txn *badger.Txn, seg *domain.Segment, self int64) error {
	ok, err := exists(txn, key(prefixTravel, seg.TravelID))
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("travel %d: %w", seg.TravelID, domain.ErrMissingReference)
	}
	offer, err := get[domain.TransportOffer](txn, key(prefixOffer, seg.OfferID))
	if err != nil {
		return fmt.Errorf("transport offer %d: %w", seg.OfferID, domain.ErrMissingReference)
	}
	segs, err := scan[domain.Segment](txn, prefixSegment)
	if err != nil {
		return err
	}
	for _, s := range segs {
		if s.ID != self && s.TravelID == seg.TravelID && s.OfferID == seg.OfferID &&
			s.StartTime.Equal(seg.StartTime) && s.EndTime.Equal(seg.EndTime) {
			return fmt.Errorf("segment for travel %d offer %d: %w", seg.TravelID, seg.OfferID, domain.ErrDuplicateKey)
		}
	}
	seg.Offer = offer
	return nil
}
