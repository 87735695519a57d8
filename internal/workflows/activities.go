package workflows

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/samirrijal/travelplan/internal/pkg/metrics"
)

// TravelArchiver is the travel lifecycle surface the archive activities drive.
// *usecases.TravelService implements it.
type TravelArchiver interface {
	ListFinished(ctx context.Context, now time.Time, limit int) ([]int64, error)
	Complete(ctx context.Context, id int64) error
}

// ArchiveActivities holds the activity implementations for the archive workflow.
type ArchiveActivities struct {
	Travels TravelArchiver
	Logger  *slog.Logger
}

func (a *ArchiveActivities) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.Default()
	}
	return a.Logger
}

// ListFinishedTravels returns up to limit ids of active travels whose last
// route ended before now.
func (a *ArchiveActivities) ListFinishedTravels(ctx context.Context, now time.Time, limit int) ([]int64, error) {
	ids, err := a.Travels.ListFinished(ctx, now, limit)
	if err != nil {
		return nil, fmt.Errorf("list finished travels: %w", err)
	}
	return ids, nil
}

// CompleteTravel marks one travel completed.
func (a *ArchiveActivities) CompleteTravel(ctx context.Context, travelID int64) error {
	if err := a.Travels.Complete(ctx, travelID); err != nil {
		return fmt.Errorf("complete travel %d: %w", travelID, err)
	}
	metrics.TravelsArchived.Inc()
	a.logger().InfoContext(ctx, "travel archived", "travel_id", travelID)
	return nil
}
