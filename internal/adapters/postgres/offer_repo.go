package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/samirrijal/travelplan/internal/core/domain"
)

const offerColumns = `id, mode, cost, distance, departure_city_id, destination_city_id`

// OfferRepo implements ports.TransportOfferRepository.
type OfferRepo struct {
	q querier
}

func scanOffer(row pgx.Row, o *domain.TransportOffer) error {
	return row.Scan(&o.ID, &o.Mode, &o.Cost, &o.Distance, &o.DepartureCityID, &o.DestinationCityID)
}

func (r *OfferRepo) Create(ctx context.Context, o *domain.TransportOffer) error {
	explicit := o.ID != 0
	err := r.q.QueryRow(ctx, `
		INSERT INTO transport_offers (id, mode, cost, distance, departure_city_id, destination_city_id)
		VALUES (COALESCE(NULLIF($1::bigint, 0), nextval(pg_get_serial_sequence('transport_offers', 'id'))), $2, $3, $4, $5, $6)
		RETURNING id
	`, o.ID, o.Mode, o.Cost, o.Distance, o.DepartureCityID, o.DestinationCityID).Scan(&o.ID)
	if err != nil {
		return mapErr(err, fmt.Sprintf("transport offer %d->%d", o.DepartureCityID, o.DestinationCityID))
	}
	if !explicit {
		return nil
	}
	return bumpSequence(ctx, r.q, "transport_offers")
}

func (r *OfferRepo) GetByID(ctx context.Context, id int64) (*domain.TransportOffer, error) {
	var o domain.TransportOffer
	row := r.q.QueryRow(ctx, `SELECT `+offerColumns+` FROM transport_offers WHERE id = $1`, id)
	if err := scanOffer(row, &o); err != nil {
		return nil, mapErr(err, fmt.Sprintf("transport offer %d", id))
	}
	return &o, nil
}

func (r *OfferRepo) GetByCityPair(ctx context.Context, from, to int64) (*domain.TransportOffer, error) {
	var o domain.TransportOffer
	row := r.q.QueryRow(ctx, `
		SELECT `+offerColumns+` FROM transport_offers
		WHERE departure_city_id = $1 AND destination_city_id = $2
		ORDER BY id LIMIT 1
	`, from, to)
	if err := scanOffer(row, &o); err != nil {
		return nil, mapErr(err, fmt.Sprintf("transport offer %d->%d", from, to))
	}
	return &o, nil
}

func (r *OfferRepo) ListByCityPair(ctx context.Context, from, to int64) ([]domain.TransportOffer, error) {
	return r.list(ctx, `WHERE departure_city_id = $1 AND destination_city_id = $2`, from, to)
}

func (r *OfferRepo) ListByCity(ctx context.Context, cityID int64) ([]domain.TransportOffer, error) {
	return r.list(ctx, `WHERE departure_city_id = $1 OR destination_city_id = $1`, cityID)
}

func (r *OfferRepo) List(ctx context.Context) ([]domain.TransportOffer, error) {
	return r.list(ctx, ``)
}

func (r *OfferRepo) list(ctx context.Context, where string, args ...any) ([]domain.TransportOffer, error) {
	rows, err := r.q.Query(ctx, `SELECT `+offerColumns+` FROM transport_offers `+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, mapErr(err, "transport offers")
	}
	defer rows.Close()

	offers := []domain.TransportOffer{}
	for rows.Next() {
		var o domain.TransportOffer
		if err := scanOffer(rows, &o); err != nil {
			return nil, err
		}
		offers = append(offers, o)
	}
	return offers, rows.Err()
}

func (r *OfferRepo) Update(ctx context.Context, o *domain.TransportOffer) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE transport_offers
		SET mode = $2, cost = $3, distance = $4, departure_city_id = $5, destination_city_id = $6
		WHERE id = $1
	`, o.ID, o.Mode, o.Cost, o.Distance, o.DepartureCityID, o.DestinationCityID)
	if err != nil {
		return mapErr(err, fmt.Sprintf("transport offer %d", o.ID))
	}
	return affected(tag, fmt.Sprintf("transport offer %d", o.ID))
}

func (r *OfferRepo) ChangeTransport(ctx context.Context, id int64, mode domain.TransportMode, cost int64) error {
	tag, err := r.q.Exec(ctx, `UPDATE transport_offers SET mode = $2, cost = $3 WHERE id = $1`, id, mode, cost)
	if err != nil {
		return mapErr(err, fmt.Sprintf("transport offer %d", id))
	}
	return affected(tag, fmt.Sprintf("transport offer %d", id))
}

func (r *OfferRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM transport_offers WHERE id = $1`, id)
	if err != nil {
		return mapDeleteErr(err, fmt.Sprintf("transport offer %d", id))
	}
	return affected(tag, fmt.Sprintf("transport offer %d", id))
}

func (r *OfferRepo) DeleteByCity(ctx context.Context, cityID int64) (int, error) {
	tag, err := r.q.Exec(ctx, `
		DELETE FROM transport_offers WHERE departure_city_id = $1 OR destination_city_id = $1
	`, cityID)
	if err != nil {
		return 0, mapDeleteErr(err, fmt.Sprintf("transport offers of city %d", cityID))
	}
	return int(tag.RowsAffected()), nil
}
