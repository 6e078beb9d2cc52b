package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control headers on GET responses based on endpoint.
// Handlers that set their own header win. Admin data is private to the operator,
// so nothing is cached by shared proxies.
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
			ttl = "no-store"

		case path == "/metrics":
			ttl = "no-cache"

		case strings.HasPrefix(path, "/v1/bundles/uploads"):
			ttl = "no-store" // session state changes while polled

		case strings.HasPrefix(path, "/v1/dashboard"):
			ttl = "private, max-age=60"

		case strings.HasPrefix(path, "/v1/bundles"), strings.HasPrefix(path, "/v1/assets"):
			ttl = "private, max-age=30"

		case strings.HasPrefix(path, "/v1/complaints"), strings.HasPrefix(path, "/v1/echoes"):
			ttl = "private, no-cache" // moderation must see its own writes

		case strings.HasPrefix(path, "/v1/map"):
			ttl = "private, max-age=30"

		case path == "/docs" || path == "/docs/openapi.yaml":
			ttl = "public, max-age=3600"

		case strings.HasPrefix(path, "/v1/"):
			ttl = "private, max-age=0"
		}

		if ttl != "" {
			c.Set(fiber.HeaderCacheControl, ttl)
		}

		return err
	}
}
