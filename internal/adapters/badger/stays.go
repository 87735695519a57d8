package badgerstore

import (
	"context"
	"fmt"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/samirrijal/travelplan/internal/core/domain"
)

type activityRepo struct{ s *Store }

func (r activityRepo) Create(ctx context.Context, a *domain.Activity) error {
	return r.s.update(func(txn *badger.Txn) error {
		id, err := assignID(txn, prefixActivity, a.ID)
		if err != nil {
			return err
		}
		a.ID = id
		return put(txn, key(prefixActivity, id), a)
	})
}

func (r activityRepo) GetByID(ctx context.Context, id int64) (*domain.Activity, error) {
	var a *domain.Activity
	err := r.s.view(func(txn *badger.Txn) error {
		var err error
		a, err = get[domain.Activity](txn, key(prefixActivity, id))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("activity %d: %w", id, err)
	}
	return a, nil
}

func (r activityRepo) List(ctx context.Context) ([]domain.Activity, error) {
	var out []domain.Activity
	err := r.s.view(func(txn *badger.Txn) error {
		var err error
		out, err = scan[domain.Activity](txn, prefixActivity)
		return err
	})
	return out, err
}

func (r activityRepo) ListForTravel(ctx context.Context, travelID int64) ([]domain.Activity, error) {
	out := []domain.Activity{}
	err := r.s.view(func(txn *badger.Txn) error {
		rec, err := get[travelRecord](txn, key(prefixTravel, travelID))
		if err != nil {
			return fmt.Errorf("travel %d: %w", travelID, err)
		}
		for _, id := range rec.ActivityIDs {
			a, err := get[domain.Activity](txn, key(prefixActivity, id))
			if err != nil {
				return fmt.Errorf("activity %d: %w", id, err)
			}
			out = append(out, *a)
		}
		return nil
	})
	return out, err
}

func (r activityRepo) Delete(ctx context.Context, id int64) error {
	return r.s.update(func(txn *badger.Txn) error {
		return deleteStay(txn, prefixActivity, id, func(rec *travelRecord) []int64 { return rec.ActivityIDs })
	})
}

type lodgingRepo struct{ s *Store }

func (r lodgingRepo) Create(ctx context.Context, l *domain.Lodging) error {
	return r.s.update(func(txn *badger.Txn) error {
		id, err := assignID(txn, prefixLodging, l.ID)
		if err != nil {
			return err
		}
		l.ID = id
		return put(txn, key(prefixLodging, id), l)
	})
}

func (r lodgingRepo) GetByID(ctx context.Context, id int64) (*domain.Lodging, error) {
	var l *domain.Lodging
	err := r.s.view(func(txn *badger.Txn) error {
		var err error
		l, err = get[domain.Lodging](txn, key(prefixLodging, id))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("lodging %d: %w", id, err)
	}
	return l, nil
}

func (r lodgingRepo) List(ctx context.Context) ([]domain.Lodging, error) {
	var out []domain.Lodging
	err := r.s.view(func(txn *badger.Txn) error {
		var err error
		out, err = scan[domain.Lodging](txn, prefixLodging)
		return err
	})
	return out, err
}

func (r lodgingRepo) ListForTravel(ctx context.Context, travelID int64) ([]domain.Lodging, error) {
	out := []domain.Lodging{}
	err := r.s.view(func(txn *badger.Txn) error {
		rec, err := get[travelRecord](txn, key(prefixTravel, travelID))
		if err != nil {
			return fmt.Errorf("travel %d: %w", travelID, err)
		}
		for _, id := range rec.LodgingIDs {
			l, err := get[domain.Lodging](txn, key(prefixLodging, id))
			if err != nil {
				return fmt.Errorf("lodging %d: %w", id, err)
			}
			out = append(out, *l)
		}
		return nil
	})
	return out, err
}

func (r lodgingRepo) Delete(ctx context.Context, id int64) error {
	return r.s.update(func(txn *badger.Txn) error {
		return deleteStay(txn, prefixLodging, id, func(rec *travelRecord) []int64 { return rec.LodgingIDs })
	})
}

// deleteStay removes an activity or lodging unless a travel still links it.
func deleteStay(txn *badger.Txn, prefix string, id int64, links func(rec *travelRecord) []int64) error {
	ok, err := exists(txn, key(prefix, id))
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s%d: %w", prefix, id, domain.ErrNotFound)
	}
	recs, err := scan[travelRecord](txn, prefixTravel)
	if err != nil {
		return err
	}
	for i := range recs {
		if slices.Contains(links(&recs[i]), id) {
			return fmt.Errorf("%s%d is linked to travel %d: %w", prefix, id, recs[i].ID, domain.ErrReferenced)
		}
	}
	return txn.Delete(key(prefix, id))
}
