package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"
	"github.com/samirrijal/travelplan/internal/pkg/metrics"
)

const requestTimeout = 15 * time.Second

// RouterConfig tunes the middleware chain.
type RouterConfig struct {
	CORSOrigins []string
	// RateLimit is requests per minute per IP; 0 means 120.
	RateLimit int
}

func withTimeout(h fiber.Handler) fiber.Handler {
	return timeout.NewWithContext(h, requestTimeout)
}

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies, cfg RouterConfig) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	origins := "*"
	if len(cfg.CORSOrigins) > 0 {
		origins = strings.Join(cfg.CORSOrigins, ",")
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	// Request ID
	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	rate := cfg.RateLimit
	if rate <= 0 {
		rate = 120
	}
	app.Use(limiter.New(limiter.Config{
		Max:        rate,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	// ETag for conditional caching
	app.Use(ETagMiddleware())

	// Default Cache-Control headers
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	v1 := app.Group("/v1")

	v1.Get("/cities", withTimeout(ListCitiesHandler(deps)))
	v1.Post("/cities", withTimeout(CreateCityHandler(deps)))
	v1.Get("/cities/:id", withTimeout(GetCityHandler(deps)))
	v1.Put("/cities/:id", withTimeout(UpdateCityHandler(deps)))
	v1.Delete("/cities/:id", withTimeout(DeleteCityHandler(deps)))

	v1.Get("/offers", withTimeout(ListOffersHandler(deps)))
	v1.Post("/offers", withTimeout(CreateOfferHandler(deps)))
	v1.Get("/offers/:id", withTimeout(GetOfferHandler(deps)))
	v1.Put("/offers/:id", withTimeout(UpdateOfferHandler(deps)))
	v1.Delete("/offers/:id", withTimeout(DeleteOfferHandler(deps)))

	// Itinerary edits go before /routes/:id so the static segments win.
	v1.Post("/routes/add-city", withTimeout(AddCityHandler(deps)))
	v1.Delete("/routes/delete-city", withTimeout(DeleteCityFromRouteHandler(deps)))
	v1.Put("/routes/change-transport", withTimeout(ChangeTransportHandler(deps)))
	v1.Get("/routes", withTimeout(ListRoutesHandler(deps)))
	v1.Post("/routes", withTimeout(CreateRouteHandler(deps)))
	v1.Get("/routes/:id", withTimeout(GetRouteHandler(deps)))
	v1.Put("/routes/:id", withTimeout(UpdateRouteHandler(deps)))
	v1.Delete("/routes/:id", withTimeout(DeleteRouteHandler(deps)))

	v1.Get("/travels/archive", withTimeout(ArchiveHandler(deps)))
	v1.Post("/travels/search", withTimeout(SearchTravelsHandler(deps)))
	v1.Get("/travels", withTimeout(ListTravelsHandler(deps)))
	v1.Post("/travels", withTimeout(CreateTravelHandler(deps)))
	v1.Get("/travels/:id", withTimeout(GetTravelHandler(deps)))
	v1.Put("/travels/:id", withTimeout(UpdateTravelHandler(deps)))
	v1.Delete("/travels/:id", withTimeout(DeleteTravelHandler(deps)))
	v1.Get("/travels/:id/itinerary", withTimeout(ItineraryHandler(deps)))
	v1.Put("/travels/:id/complete", withTimeout(CompleteTravelHandler(deps)))

	v1.Get("/activities", withTimeout(ListActivitiesHandler(deps)))
	v1.Post("/activities", withTimeout(CreateActivityHandler(deps)))
	v1.Get("/activities/:id", withTimeout(GetActivityHandler(deps)))
	v1.Delete("/activities/:id", withTimeout(DeleteActivityHandler(deps)))

	v1.Get("/lodgings", withTimeout(ListLodgingsHandler(deps)))
	v1.Post("/lodgings", withTimeout(CreateLodgingHandler(deps)))
	v1.Get("/lodgings/:id", withTimeout(GetLodgingHandler(deps)))
	v1.Delete("/lodgings/:id", withTimeout(DeleteLodgingHandler(deps)))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app)

	// WebSocket relay, only when NATS is wired
	if deps.NATS != nil {
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		})
		app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
	}
}
