package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/samirrijal/travelplan/internal/core/domain"
)

// ActivityRepo implements ports.ActivityRepository.
type ActivityRepo struct {
	q querier
}

func scanActivity(row pgx.CollectableRow) (domain.Activity, error) {
	var a domain.Activity
	err := row.Scan(&a.ID, &a.Name, &a.Kind, &a.Address, &a.DurationHours, &a.StartsAt)
	return a, err
}

func (r *ActivityRepo) Create(ctx context.Context, a *domain.Activity) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO activities (name, kind, address, duration_hours, starts_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, a.Name, a.Kind, a.Address, a.DurationHours, a.StartsAt).Scan(&a.ID)
	return mapErr(err, "activity "+a.Name)
}

func (r *ActivityRepo) GetByID(ctx context.Context, id int64) (*domain.Activity, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, name, kind, address, duration_hours, starts_at FROM activities WHERE id = $1
	`, id)
	if err != nil {
		return nil, mapErr(err, fmt.Sprintf("activity %d", id))
	}
	a, err := pgx.CollectExactlyOneRow(rows, scanActivity)
	if err != nil {
		return nil, mapErr(err, fmt.Sprintf("activity %d", id))
	}
	return &a, nil
}

func (r *ActivityRepo) List(ctx context.Context) ([]domain.Activity, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, name, kind, address, duration_hours, starts_at FROM activities ORDER BY id
	`)
	if err != nil {
		return nil, mapErr(err, "activities")
	}
	return pgx.CollectRows(rows, scanActivity)
}

func (r *ActivityRepo) ListForTravel(ctx context.Context, travelID int64) ([]domain.Activity, error) {
	rows, err := r.q.Query(ctx, `
		SELECT a.id, a.name, a.kind, a.address, a.duration_hours, a.starts_at
		FROM activities a
		JOIN travel_activities ta ON ta.activity_id = a.id
		WHERE ta.travel_id = $1
		ORDER BY a.id
	`, travelID)
	if err != nil {
		return nil, mapErr(err, fmt.Sprintf("travel %d activities", travelID))
	}
	return pgx.CollectRows(rows, scanActivity)
}

func (r *ActivityRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM activities WHERE id = $1`, id)
	if err != nil {
		return mapDeleteErr(err, fmt.Sprintf("activity %d", id))
	}
	return affected(tag, fmt.Sprintf("activity %d", id))
}

// LodgingRepo implements ports.LodgingRepository.
type LodgingRepo struct {
	q querier
}

func scanLodging(row pgx.CollectableRow) (domain.Lodging, error) {
	var l domain.Lodging
	err := row.Scan(&l.ID, &l.Name, &l.Kind, &l.Address, &l.Cost, &l.Rating, &l.CheckIn, &l.CheckOut)
	return l, err
}

func (r *LodgingRepo) Create(ctx context.Context, l *domain.Lodging) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO lodgings (name, kind, address, cost, rating, check_in, check_out)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, l.Name, l.Kind, l.Address, l.Cost, l.Rating, l.CheckIn, l.CheckOut).Scan(&l.ID)
	return mapErr(err, "lodging "+l.Name)
}

func (r *LodgingRepo) GetByID(ctx context.Context, id int64) (*domain.Lodging, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, name, kind, address, cost, rating, check_in, check_out FROM lodgings WHERE id = $1
	`, id)
	if err != nil {
		return nil, mapErr(err, fmt.Sprintf("lodging %d", id))
	}
	l, err := pgx.CollectExactlyOneRow(rows, scanLodging)
	if err != nil {
		return nil, mapErr(err, fmt.Sprintf("lodging %d", id))
	}
	return &l, nil
}

func (r *LodgingRepo) List(ctx context.Context) ([]domain.Lodging, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, name, kind, address, cost, rating, check_in, check_out FROM lodgings ORDER BY id
	`)
	if err != nil {
		return nil, mapErr(err, "lodgings")
	}
	return pgx.CollectRows(rows, scanLodging)
}

func (r *LodgingRepo) ListForTravel(ctx context.Context, travelID int64) ([]domain.Lodging, error) {
	rows, err := r.q.Query(ctx, `
		SELECT l.id, l.name, l.kind, l.address, l.cost, l.rating, l.check_in, l.check_out
		FROM lodgings l
		JOIN travel_lodgings tl ON tl.lodging_id = l.id
		WHERE tl.travel_id = $1
		ORDER BY l.id
	`, travelID)
	if err != nil {
		return nil, mapErr(err, fmt.Sprintf("travel %d lodgings", travelID))
	}
	return pgx.CollectRows(rows, scanLodging)
}

func (r *LodgingRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM lodgings WHERE id = $1`, id)
	if err != nil {
		return mapDeleteErr(err, fmt.Sprintf("lodging %d", id))
	}
	return affected(tag, fmt.Sprintf("lodging %d", id))
}
