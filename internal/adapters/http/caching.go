package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control headers on GET responses based on
// endpoint, unless the handler set one already. Itinerary data changes with
// every edit, so only the directory style resources are publicly cacheable.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet {
			return err
		}
		if existing := c.GetRespHeader(fiber.HeaderCacheControl); existing != "" {
			return err
		}

		path := c.Path()
		var ttl string

		switch {
		case path == "/v1/health" || path == "/v1/ready":
			ttl = "public, max-age=10"

		case path == "/metrics":
			ttl = "no-cache"

		case strings.HasPrefix(path, "/docs"):
			ttl = "public, max-age=3600"

		case strings.HasPrefix(path, "/v1/cities"),
			strings.HasPrefix(path, "/v1/activities"),
			strings.HasPrefix(path, "/v1/lodgings"):
			ttl = "public, max-age=300"

		case strings.HasPrefix(path, "/v1/offers"):
			ttl = "public, max-age=60"

		case strings.HasPrefix(path, "/v1/routes"),
			strings.HasPrefix(path, "/v1/travels"):
			ttl = "private, no-cache"
		}

		if ttl != "" {
			c.Set(fiber.HeaderCacheControl, ttl)
		}

		return err
	}
}
