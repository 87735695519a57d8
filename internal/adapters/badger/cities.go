package badgerstore

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/samirrijal/travelplan/internal/core/domain"
)

type cityRepo struct{ s *Store }

func (r cityRepo) Create(ctx context.Context, city *domain.City) error {
	return r.s.update(func(txn *badger.Txn) error {
		if err := checkCityName(txn, city.Name, 0); err != nil {
			return err
		}
		id, err := assignID(txn, prefixCity, city.ID)
		if err != nil {
			return err
		}
		city.ID = id
		return put(txn, key(prefixCity, id), city)
	})
}

func (r cityRepo) GetByID(ctx context.Context, id int64) (*domain.City, error) {
	var city *domain.City
	err := r.s.view(func(txn *badger.Txn) error {
		var err error
		city, err = get[domain.City](txn, key(prefixCity, id))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("city %d: %w", id, err)
	}
	return city, nil
}

func (r cityRepo) List(ctx context.Context) ([]domain.City, error) {
	var cities []domain.City
	err := r.s.view(func(txn *badger.Txn) error {
		var err error
		cities, err = scan[domain.City](txn, prefixCity)
		return err
	})
	return cities, err
}

func (r cityRepo) Update(ctx context.Context, city *domain.City) error {
	return r.s.update(func(txn *badger.Txn) error {
		cur, err := get[domain.City](txn, key(prefixCity, city.ID))
		if err != nil {
			return fmt.Errorf("city %d: %w", city.ID, err)
		}
		if cur.Name == city.Name {
			return nil
		}
		referenced, err := cityReferenced(txn, city.ID)
		if err != nil {
			return err
		}
		if referenced {
			return fmt.Errorf("city %d is used by transport offers: %w", city.ID, domain.ErrReferenced)
		}
		if err := checkCityName(txn, city.Name, city.ID); err != nil {
			return err
		}
		return put(txn, key(prefixCity, city.ID), city)
	})
}

func (r cityRepo) Delete(ctx context.Context, id int64) error {
	return r.s.update(func(txn *badger.Txn) error {
		ok, err := exists(txn, key(prefixCity, id))
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("city %d: %w", id, domain.ErrNotFound)
		}
		referenced, err := cityReferenced(txn, id)
		if err != nil {
			return err
		}
		if referenced {
			return fmt.Errorf("city %d is used by transport offers: %w", id, domain.ErrReferenced)
		}
		return txn.Delete(key(prefixCity, id))
	})
}

func checkCityName(txn *badger.Txn, name string, self int64) error {
	cities, err := scan[domain.City](txn, prefixCity)
	if err != nil {
		return err
	}
	for _, c := range cities {
		if c.Name == name && c.ID != self {
			return fmt.Errorf("city %q: %w", name, domain.ErrDuplicateKey)
		}
	}
	return nil
}

func cityReferenced(txn *badger.Txn, id int64) (bool, error) {
	offers, err := scan[domain.TransportOffer](txn, prefixOffer)
	if err != nil {
		return false, err
	}
	for _, o := range offers {
		if o.Touches(id) {
			return true, nil
		}
	}
	return false, nil
}
