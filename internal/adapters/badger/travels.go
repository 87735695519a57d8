package badgerstore

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/samirrijal/travelplan/internal/core/domain"
)

// travelRecord is the stored form of a travel; join ids are kept inline.
type travelRecord struct {
	ID          int64               `json:"id"`
	Status      domain.TravelStatus `json:"status"`
	UserID      int64               `json:"user_id"`
	ActivityIDs []int64             `json:"activity_ids"`
	LodgingIDs  []int64             `json:"lodging_ids"`
}

func (rec travelRecord) travel() domain.Travel {
	t := domain.Travel{
		ID: rec.ID, Status: rec.Status, UserID: rec.UserID,
		ActivityIDs: rec.ActivityIDs, LodgingIDs: rec.LodgingIDs,
	}
	if t.ActivityIDs == nil {
		t.ActivityIDs = []int64{}
	}
	if t.LodgingIDs == nil {
		t.LodgingIDs = []int64{}
	}
	return t
}

func recordOf(t *domain.Travel) travelRecord {
	return travelRecord{
		ID: t.ID, Status: t.Status, UserID: t.UserID,
		ActivityIDs: t.ActivityIDs, LodgingIDs: t.LodgingIDs,
	}
}

type travelRepo struct{ s *Store }

func (r travelRepo) Create(ctx context.Context, t *domain.Travel) error {
	return r.s.update(func(txn *badger.Txn) error {
		if err := checkStays(txn, t); err != nil {
			return err
		}
		id, err := assignID(txn, prefixTravel, t.ID)
		if err != nil {
			return err
		}
		t.ID = id
		return put(txn, key(prefixTravel, id), recordOf(t))
	})
}

func (r travelRepo) GetByID(ctx context.Context, id int64) (*domain.Travel, error) {
	var rec *travelRecord
	err := r.s.view(func(txn *badger.Txn) error {
		var err error
		rec, err = get[travelRecord](txn, key(prefixTravel, id))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("travel %d: %w", id, err)
	}
	t := rec.travel()
	return &t, nil
}

func (r travelRepo) List(ctx context.Context) ([]domain.Travel, error) {
	return r.filter(func(*travelRecord) bool { return true })
}

func (r travelRepo) ListByStatus(ctx context.Context, status domain.TravelStatus) ([]domain.Travel, error) {
	return r.filter(func(rec *travelRecord) bool { return rec.Status == status })
}

// SearchCandidates only narrows on status; the remaining predicates need
// hydrated travels.
func (r travelRepo) SearchCandidates(ctx context.Context, _ domain.SearchFilters) ([]domain.Travel, error) {
	return r.filter(func(rec *travelRecord) bool { return rec.Status != domain.StatusCompleted })
}

func (r travelRepo) filter(keep func(rec *travelRecord) bool) ([]domain.Travel, error) {
	var out []domain.Travel
	err := r.s.view(func(txn *badger.Txn) error {
		recs, err := scan[travelRecord](txn, prefixTravel)
		if err != nil {
			return err
		}
		out = make([]domain.Travel, 0, len(recs))
		for i := range recs {
			if keep(&recs[i]) {
				out = append(out, recs[i].travel())
			}
		}
		return nil
	})
	return out, err
}

func (r travelRepo) Update(ctx context.Context, t *domain.Travel) error {
	return r.s.update(func(txn *badger.Txn) error {
		if _, err := get[travelRecord](txn, key(prefixTravel, t.ID)); err != nil {
			return fmt.Errorf("travel %d: %w", t.ID, err)
		}
		if err := checkStays(txn, t); err != nil {
			return err
		}
		return put(txn, key(prefixTravel, t.ID), recordOf(t))
	})
}

func (r travelRepo) SetStatus(ctx context.Context, id int64, status domain.TravelStatus) error {
	return r.s.update(func(txn *badger.Txn) error {
		rec, err := get[travelRecord](txn, key(prefixTravel, id))
		if err != nil {
			return fmt.Errorf("travel %d: %w", id, err)
		}
		rec.Status = status
		return put(txn, key(prefixTravel, id), rec)
	})
}

func (r travelRepo) Delete(ctx context.Context, id int64) error {
	return r.s.update(func(txn *badger.Txn) error {
		ok, err := exists(txn, key(prefixTravel, id))
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("travel %d: %w", id, domain.ErrNotFound)
		}
		segs, err := scan[domain.Segment](txn, prefixSegment)
		if err != nil {
			return err
		}
		for _, seg := range segs {
			if seg.TravelID == id {
				if err := txn.Delete(key(prefixSegment, seg.ID)); err != nil {
					return err
				}
			}
		}
		return txn.Delete(key(prefixTravel, id))
	})
}

func checkStays(txn *badger.Txn, t *domain.Travel) error {
	for _, id := range t.ActivityIDs {
		ok, err := exists(txn, key(prefixActivity, id))
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("activity %d: %w", id, domain.ErrMissingReference)
		}
	}
	for _, id := range t.LodgingIDs {
		ok, err := exists(txn, key(prefixLodging, id))
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("lodging %d: %w", id, domain.ErrMissingReference)
		}
	}
	return nil
}
