package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/samirrijal/travelplan/internal/bootstrap"
	"github.com/samirrijal/travelplan/internal/core/usecases"
	"github.com/samirrijal/travelplan/internal/pkg/config"
	"github.com/samirrijal/travelplan/internal/pkg/logging"
)

func main() {
	cfg, err := config.Load("travelplan-importer")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup("travelplan-importer", cfg.Log.Level, cfg.Log.Format)

	manifestPath := "manifest.json"
	if len(os.Args) > 1 {
		manifestPath = os.Args[1]
	}

	f, err := os.Open(manifestPath)
	if err != nil {
		log.Fatalf("open manifest: %v", err)
	}
	manifest, err := decodeManifest(f)
	_ = f.Close()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := bootstrap.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer store.Close()

	// No cache here: API nodes expire their entries through the TTL.
	cities := usecases.NewCityService(store, nil, 0)
	catalog := usecases.NewCatalogService(store, nil, 0)

	slog.Info("importing catalogue",
		"source", manifest.Source,
		"cities", len(manifest.Cities),
		"offers", len(manifest.Offers),
	)

	rep, err := importManifest(ctx, cities, catalog, manifest)
	if err != nil {
		slog.Error("import failed", "error", err,
			"cities_created", rep.CitiesCreated, "offers_created", rep.OffersCreated)
		os.Exit(1)
	}

	slog.Info("import complete",
		"cities_created", rep.CitiesCreated,
		"cities_skipped", rep.CitiesSkipped,
		"offers_created", rep.OffersCreated,
		"offers_skipped", rep.OffersSkipped,
	)
}
