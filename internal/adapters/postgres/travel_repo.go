package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/samirrijal/travelplan/internal/core/domain"
)

// TravelRepo implements ports.TravelRepository.
type TravelRepo struct {
	q querier
}

func (r *TravelRepo) Create(ctx context.Context, t *domain.Travel) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO travels (status, user_id) VALUES ($1, $2) RETURNING id
	`, t.Status, t.UserID).Scan(&t.ID)
	if err != nil {
		return mapErr(err, "travel")
	}
	return r.writeLinks(ctx, t)
}

// writeLinks replaces the travel's activity and lodging join rows.
func (r *TravelRepo) writeLinks(ctx context.Context, t *domain.Travel) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM travel_activities WHERE travel_id = $1`, t.ID); err != nil {
		return mapErr(err, fmt.Sprintf("travel %d activities", t.ID))
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM travel_lodgings WHERE travel_id = $1`, t.ID); err != nil {
		return mapErr(err, fmt.Sprintf("travel %d lodgings", t.ID))
	}
	if len(t.ActivityIDs) > 0 {
		if _, err := r.q.Exec(ctx, `
			INSERT INTO travel_activities (travel_id, activity_id)
			SELECT $1, unnest($2::bigint[])
		`, t.ID, t.ActivityIDs); err != nil {
			return mapErr(err, fmt.Sprintf("travel %d activities", t.ID))
		}
	}
	if len(t.LodgingIDs) > 0 {
		if _, err := r.q.Exec(ctx, `
			INSERT INTO travel_lodgings (travel_id, lodging_id)
			SELECT $1, unnest($2::bigint[])
		`, t.ID, t.LodgingIDs); err != nil {
			return mapErr(err, fmt.Sprintf("travel %d lodgings", t.ID))
		}
	}
	return nil
}

func (r *TravelRepo) GetByID(ctx context.Context, id int64) (*domain.Travel, error) {
	travels, err := r.list(ctx, `WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(travels) == 0 {
		return nil, fmt.Errorf("travel %d: %w", id, domain.ErrNotFound)
	}
	return &travels[0], nil
}

func (r *TravelRepo) List(ctx context.Context) ([]domain.Travel, error) {
	return r.list(ctx, ``)
}

func (r *TravelRepo) ListByStatus(ctx context.Context, status domain.TravelStatus) ([]domain.Travel, error) {
	return r.list(ctx, `WHERE status = $1`, status)
}

// SearchCandidates pushes every filter into SQL. ILIKE treats % and _ in
// the needle as wildcards, which only widens the candidate set.
func (r *TravelRepo) SearchCandidates(ctx context.Context, f domain.SearchFilters) ([]domain.Travel, error) {
	f = f.Normalized()
	return r.list(ctx, `
		WHERE status <> 'completed'
		  AND ($1::timestamptz IS NULL OR (SELECT MIN(s.start_time) FROM segments s WHERE s.travel_id = travels.id) >= $1)
		  AND ($2::timestamptz IS NULL OR (SELECT MAX(s.end_time) FROM segments s WHERE s.travel_id = travels.id) <= $2)
		  AND ($3::bigint IS NULL OR EXISTS (
		        SELECT 1 FROM segments s JOIN transport_offers o ON o.id = s.offer_id
		        WHERE s.travel_id = travels.id AND o.departure_city_id = $3))
		  AND ($4::bigint IS NULL OR EXISTS (
		        SELECT 1 FROM segments s JOIN transport_offers o ON o.id = s.offer_id
		        WHERE s.travel_id = travels.id AND o.destination_city_id = $4))
		  AND ($5::text IS NULL OR EXISTS (
		        SELECT 1 FROM travel_activities ta JOIN activities a ON a.id = ta.activity_id
		        WHERE ta.travel_id = travels.id AND a.name ILIKE '%' || $5 || '%'))
	`, f.StartTime, f.EndTime, f.DepartureCity, f.ArrivalCity, f.EntertainmentName)
}

func (r *TravelRepo) list(ctx context.Context, where string, args ...any) ([]domain.Travel, error) {
	rows, err := r.q.Query(ctx, `SELECT id, status, user_id FROM travels `+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, mapErr(err, "travels")
	}
	travels, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Travel, error) {
		t := domain.Travel{ActivityIDs: []int64{}, LodgingIDs: []int64{}}
		err := row.Scan(&t.ID, &t.Status, &t.UserID)
		return t, err
	})
	if err != nil {
		return nil, mapErr(err, "travels")
	}
	if len(travels) == 0 {
		return travels, nil
	}

	ids := make([]int64, len(travels))
	index := make(map[int64]*domain.Travel, len(travels))
	for i := range travels {
		ids[i] = travels[i].ID
		index[travels[i].ID] = &travels[i]
	}
	if err := r.loadLinks(ctx, `SELECT travel_id, activity_id FROM travel_activities WHERE travel_id = ANY($1) ORDER BY activity_id`, ids,
		func(t *domain.Travel, id int64) { t.ActivityIDs = append(t.ActivityIDs, id) }, index); err != nil {
		return nil, err
	}
	if err := r.loadLinks(ctx, `SELECT travel_id, lodging_id FROM travel_lodgings WHERE travel_id = ANY($1) ORDER BY lodging_id`, ids,
		func(t *domain.Travel, id int64) { t.LodgingIDs = append(t.LodgingIDs, id) }, index); err != nil {
		return nil, err
	}
	return travels, nil
}

func (r *TravelRepo) loadLinks(ctx context.Context, sql string, ids []int64, add func(t *domain.Travel, id int64), index map[int64]*domain.Travel) error {
	rows, err := r.q.Query(ctx, sql, ids)
	if err != nil {
		return mapErr(err, "travel links")
	}
	defer rows.Close()
	for rows.Next() {
		var travelID, id int64
		if err := rows.Scan(&travelID, &id); err != nil {
			return err
		}
		if t, ok := index[travelID]; ok {
			add(t, id)
		}
	}
	return rows.Err()
}

func (r *TravelRepo) Update(ctx context.Context, t *domain.Travel) error {
	tag, err := r.q.Exec(ctx, `UPDATE travels SET status = $2, user_id = $3 WHERE id = $1`, t.ID, t.Status, t.UserID)
	if err != nil {
		return mapErr(err, fmt.Sprintf("travel %d", t.ID))
	}
	if err := affected(tag, fmt.Sprintf("travel %d", t.ID)); err != nil {
		return err
	}
	return r.writeLinks(ctx, t)
}

func (r *TravelRepo) SetStatus(ctx context.Context, id int64, status domain.TravelStatus) error {
	tag, err := r.q.Exec(ctx, `UPDATE travels SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return mapErr(err, fmt.Sprintf("travel %d", id))
	}
	return affected(tag, fmt.Sprintf("travel %d", id))
}

// Delete relies on ON DELETE CASCADE for segments and join rows.
func (r *TravelRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM travels WHERE id = $1`, id)
	if err != nil {
		return mapDeleteErr(err, fmt.Sprintf("travel %d", id))
	}
	return affected(tag, fmt.Sprintf("travel %d", id))
}
