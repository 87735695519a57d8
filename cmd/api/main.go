package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/travelplan/internal/adapters/http"
	natsadapter "github.com/samirrijal/travelplan/internal/adapters/nats"
	"github.com/samirrijal/travelplan/internal/adapters/valkey"
	"github.com/samirrijal/travelplan/internal/bootstrap"
	"github.com/samirrijal/travelplan/internal/core/domain"
	"github.com/samirrijal/travelplan/internal/core/ports"
	"github.com/samirrijal/travelplan/internal/core/usecases"
	"github.com/samirrijal/travelplan/internal/pkg/config"
	"github.com/samirrijal/travelplan/internal/pkg/logging"
	"github.com/samirrijal/travelplan/internal/pkg/metrics"
	"github.com/samirrijal/travelplan/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("travelplan-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := logging.Setup("travelplan-api", cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint, cfg.Telemetry.SampleRatio)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer func() { _ = shutdown(context.Background()) }()
		}
	}

	policy, err := domain.ParseWindowPolicy(cfg.Itinerary.WindowPolicy)
	if err != nil {
		log.Fatalf("itinerary config: %v", err)
	}

	// Storage
	store, err := bootstrap.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer store.Close()

	if store.DB != nil {
		go reportPoolStats(ctx, store)
	}

	// Cache. Interfaces stay nil when a backend is disabled or unreachable.
	var (
		cacheSvc ports.CacheService
		vcache   *valkey.Cache
	)
	if cfg.Valkey.Enabled {
		vcache, err = valkey.New(cfg.Valkey.Addr, "travelplan")
		if err != nil {
			slog.Warn("valkey unavailable", "error", err)
		} else {
			defer vcache.Close()
			cacheSvc = vcache
		}
	}

	// NATS
	var (
		publisher ports.EventPublisher
		natsConn  *nats.Conn
	)
	if cfg.NATS.Enabled {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable", "error", err)
		} else {
			defer pub.Close()
			publisher = pub
			natsConn = pub.Conn()
		}
	}

	// Use cases
	citySvc := usecases.NewCityService(store, cacheSvc, cfg.Valkey.TTL)
	catalogSvc := usecases.NewCatalogService(store, cacheSvc, cfg.Valkey.TTL)

	deps := &http.Dependencies{
		Cities:   citySvc,
		Catalog:  catalogSvc,
		Segments: usecases.NewSegmentService(store),
		Editor:   usecases.NewItineraryEditor(store, catalogSvc, publisher, policy, logger),
		Travels:  usecases.NewTravelService(store, publisher),
		Search:   usecases.NewSearchService(store),
		Stays:    usecases.NewStayService(store),
		Store:    store,
		NATS:     natsConn,
		Cache:    vcache,
	}

	// Edits made by other processes invalidate this node's view of the cache.
	if cacheSvc != nil && natsConn != nil {
		sub, err := natsadapter.NewSubscriber(cfg.NATS.URL, consumerName())
		if err != nil {
			slog.Warn("nats subscriber unavailable", "error", err)
		} else {
			defer sub.Close()
			inv := usecases.NewCacheInvalidator(store, catalogSvc, logger)
			if err := sub.SubscribeItineraryEvents(ctx, inv.HandleItineraryEvent); err != nil {
				slog.Warn("subscribe itinerary events", "error", err)
			}
		}
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Travelplan API",
	})
	app.Use(recover.New())

	http.SetupRoutes(app, deps, http.RouterConfig{
		CORSOrigins: cfg.Server.CORSOrigins,
		RateLimit:   cfg.Server.RateLimit,
	})

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "store", cfg.Store.Driver, "window_policy", string(policy))
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

// consumerName gives each API node its own durable so every node sees
// every event.
func consumerName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = fmt.Sprintf("pid-%d", os.Getpid())
	}
	return "api-cache-" + strings.NewReplacer(".", "-", "*", "-", ">", "-").Replace(host)
}

func reportPoolStats(ctx context.Context, store *bootstrap.Store) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.UpdateDBPoolMetrics(store.DB.Pool.Stat())
		}
	}
}
