package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// ArchiveWorkflowName is the registered name of ArchiveWorkflow.
const ArchiveWorkflowName = "ArchiveWorkflow"

// ArchiveInput is the input for the archive workflow.
type ArchiveInput struct {
	// BatchSize caps how many travels one run completes; 0 means no cap.
	BatchSize int
}

// ArchiveResult reports what one run did.
type ArchiveResult struct {
	Completed []int64
	Failed    []int64
}

// ArchiveWorkflow completes every active travel whose itinerary has ended.
// A travel that fails to complete after retries is reported in Failed and
// picked up again by the next run.
func ArchiveWorkflow(ctx workflow.Context, input ArchiveInput) (*ArchiveResult, error) {
	logger := workflow.GetLogger(ctx)

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	var ids []int64
	err := workflow.ExecuteActivity(ctx, "ListFinishedTravels", workflow.Now(ctx), input.BatchSize).Get(ctx, &ids)
	if err != nil {
		return nil, err
	}
	logger.Info("Archiving finished travels", "count", len(ids))

	res := &ArchiveResult{Completed: []int64{}, Failed: []int64{}}
	for _, id := range ids {
		if err := workflow.ExecuteActivity(ctx, "CompleteTravel", id).Get(ctx, nil); err != nil {
			logger.Warn("complete travel failed", "travel_id", id, "error", err)
			res.Failed = append(res.Failed, id)
			continue
		}
		res.Completed = append(res.Completed, id)
	}

	logger.Info("Archive run finished", "completed", len(res.Completed), "failed", len(res.Failed))
	return res, nil
}
