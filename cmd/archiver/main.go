package main

import (
	"context"
	"log"
	"log/slog"

	"go.temporal.io/sdk/client"
	tlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/samirrijal/travelplan/internal/adapters/nats"
	"github.com/samirrijal/travelplan/internal/bootstrap"
	"github.com/samirrijal/travelplan/internal/core/ports"
	"github.com/samirrijal/travelplan/internal/core/usecases"
	"github.com/samirrijal/travelplan/internal/pkg/config"
	"github.com/samirrijal/travelplan/internal/pkg/logging"
	"github.com/samirrijal/travelplan/internal/workflows"
)

const archiveWorkflowID = "travel-archive-cron"

func main() {
	cfg, err := config.Load("travelplan-archiver")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.Setup("travelplan-archiver", cfg.Log.Level, cfg.Log.Format)

	ctx := context.Background()

	store, err := bootstrap.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer store.Close()

	var publisher ports.EventPublisher
	if cfg.NATS.Enabled {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable, completions will not be announced", "error", err)
		} else {
			defer pub.Close()
			publisher = pub
		}
	}

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    tlog.NewStructuredLogger(logger),
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	w.RegisterWorkflow(workflows.ArchiveWorkflow)
	w.RegisterActivity(&workflows.ArchiveActivities{
		Travels: usecases.NewTravelService(store, publisher),
		Logger:  logger,
	})

	// Starting an already-running cron workflow returns the existing run.
	run, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:           archiveWorkflowID,
		TaskQueue:    cfg.Temporal.TaskQueue,
		CronSchedule: cfg.Temporal.ArchiveCron,
	}, workflows.ArchiveWorkflowName, workflows.ArchiveInput{BatchSize: cfg.Temporal.ArchiveBatch})
	if err != nil {
		log.Fatalf("start archive workflow: %v", err)
	}
	slog.Info("archive schedule registered",
		"workflow_id", run.GetID(),
		"run_id", run.GetRunID(),
		"cron", cfg.Temporal.ArchiveCron,
	)

	slog.Info("archiver worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
