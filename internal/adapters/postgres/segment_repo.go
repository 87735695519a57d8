package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/samirrijal/travelplan/internal/core/domain"
)

const segmentSelect = `
	SELECT s.id, s.travel_id, s.offer_id, s.start_time, s.end_time,
	       o.id, o.mode, o.cost, o.distance, o.departure_city_id, o.destination_city_id
	FROM segments s
	JOIN transport_offers o ON o.id = s.offer_id
`

// SegmentRepo implements ports.SegmentRepository.
type SegmentRepo struct {
	q querier
}

func scanSegment(row pgx.Row) (domain.Segment, error) {
	var s domain.Segment
	o := &domain.TransportOffer{}
	err := row.Scan(&s.ID, &s.TravelID, &s.OfferID, &s.StartTime, &s.EndTime,
		&o.ID, &o.Mode, &o.Cost, &o.Distance, &o.DepartureCityID, &o.DestinationCityID)
	s.Offer = o
	return s, err
}

func (r *SegmentRepo) Create(ctx context.Context, seg *domain.Segment) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO segments (travel_id, offer_id, start_time, end_time)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, seg.TravelID, seg.OfferID, seg.StartTime, seg.EndTime).Scan(&seg.ID)
	return mapErr(err, fmt.Sprintf("segment for travel %d offer %d", seg.TravelID, seg.OfferID))
}

func (r *SegmentRepo) GetByID(ctx context.Context, id int64) (*domain.Segment, error) {
	s, err := scanSegment(r.q.QueryRow(ctx, segmentSelect+` WHERE s.id = $1`, id))
	if err != nil {
		return nil, mapErr(err, fmt.Sprintf("segment %d", id))
	}
	return &s, nil
}

func (r *SegmentRepo) List(ctx context.Context) ([]domain.Segment, error) {
	return r.list(ctx, `ORDER BY s.id`)
}

func (r *SegmentRepo) ListForTravel(ctx context.Context, travelID int64) ([]domain.Segment, error) {
	segs, err := r.list(ctx, `WHERE s.travel_id = $1 ORDER BY s.start_time, s.id`, travelID)
	if err != nil {
		return nil, err
	}
	// SQL only orders by time; shared start times follow the chain.
	domain.SortSegments(segs)
	return segs, nil
}

func (r *SegmentRepo) ListTouchingCity(ctx context.Context, cityID int64) ([]domain.Segment, error) {
	return r.list(ctx, `WHERE o.departure_city_id = $1 OR o.destination_city_id = $1 ORDER BY s.id`, cityID)
}

func (r *SegmentRepo) ListByOffer(ctx context.Context, offerID int64) ([]domain.Segment, error) {
	return r.list(ctx, `WHERE s.offer_id = $1 ORDER BY s.id`, offerID)
}

func (r *SegmentRepo) list(ctx context.Context, tail string, args ...any) ([]domain.Segment, error) {
	rows, err := r.q.Query(ctx, segmentSelect+tail, args...)
	if err != nil {
		return nil, mapErr(err, "segments")
	}
	defer rows.Close()

	segs := []domain.Segment{}
	for rows.Next() {
		s, err := scanSegment(rows)
		if err != nil {
			return nil, err
		}
		segs = append(segs, s)
	}
	return segs, rows.Err()
}

func (r *SegmentRepo) Update(ctx context.Context, seg *domain.Segment) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE segments SET travel_id = $2, offer_id = $3, start_time = $4, end_time = $5
		WHERE id = $1
	`, seg.ID, seg.TravelID, seg.OfferID, seg.StartTime, seg.EndTime)
	if err != nil {
		return mapErr(err, fmt.Sprintf("segment %d", seg.ID))
	}
	return affected(tag, fmt.Sprintf("segment %d", seg.ID))
}

func (r *SegmentRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM segments WHERE id = $1`, id)
	if err != nil {
		return mapErr(err, fmt.Sprintf("segment %d", id))
	}
	return affected(tag, fmt.Sprintf("segment %d", id))
}
