package postgres

import (
	"context"
	"fmt"

	"github.com/samirrijal/travelplan/internal/core/domain"
)

// CityRepo implements ports.CityRepository.
type CityRepo struct {
	q querier
}

func (r *CityRepo) Create(ctx context.Context, city *domain.City) error {
	explicit := city.ID != 0
	err := r.q.QueryRow(ctx, `
		INSERT INTO cities (id, name)
		VALUES (COALESCE(NULLIF($1::bigint, 0), nextval(pg_get_serial_sequence('cities', 'id'))), $2)
		RETURNING id
	`, city.ID, city.Name).Scan(&city.ID)
	if err != nil {
		return mapErr(err, "city "+city.Name)
	}
	if !explicit {
		return nil
	}
	return bumpSequence(ctx, r.q, "cities")
}

func (r *CityRepo) GetByID(ctx context.Context, id int64) (*domain.City, error) {
	var c domain.City
	err := r.q.QueryRow(ctx, `SELECT id, name FROM cities WHERE id = $1`, id).Scan(&c.ID, &c.Name)
	if err != nil {
		return nil, mapErr(err, fmt.Sprintf("city %d", id))
	}
	return &c, nil
}

func (r *CityRepo) List(ctx context.Context) ([]domain.City, error) {
	rows, err := r.q.Query(ctx, `SELECT id, name FROM cities ORDER BY id`)
	if err != nil {
		return nil, mapErr(err, "cities")
	}
	defer rows.Close()

	cities := []domain.City{}
	for rows.Next() {
		var c domain.City
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		cities = append(cities, c)
	}
	return cities, rows.Err()
}

// Update renames a city unless a transport offer references it.
func (r *CityRepo) Update(ctx context.Context, city *domain.City) error {
	cur, err := r.GetByID(ctx, city.ID)
	if err != nil {
		return err
	}
	if cur.Name == city.Name {
		return nil
	}
	tag, err := r.q.Exec(ctx, `
		UPDATE cities SET name = $2
		WHERE id = $1 AND NOT EXISTS (
			SELECT 1 FROM transport_offers
			WHERE departure_city_id = $1 OR destination_city_id = $1
		)
	`, city.ID, city.Name)
	if err != nil {
		return mapErr(err, "city "+city.Name)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("city %d is used by transport offers: %w", city.ID, domain.ErrReferenced)
	}
	return nil
}

func (r *CityRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM cities WHERE id = $1`, id)
	if err != nil {
		return mapDeleteErr(err, fmt.Sprintf("city %d", id))
	}
	return affected(tag, fmt.Sprintf("city %d", id))
}
