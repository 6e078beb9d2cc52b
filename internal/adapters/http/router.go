package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/echoadmin/internal/pkg/metrics"
)

// requestTimeout bounds every upstream-backed route except synchronous uploads.
const requestTimeout = 15 * time.Second

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed, // Balance speed vs compression ratio
	}))

	// Request ID
	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	// Rate limiting: 300 requests per minute per IP; the admin polls upload sessions
	app.Use(limiter.New(limiter.Config{
		Max:        300,
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
		c.Set("X-XSS-Protection", "1; mode=block")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	// ETag for conditional caching
	app.Use(ETagMiddleware())

	// Default Cache-Control headers
	app.Use(CachingMiddleware())

	app.Use(DeprecationMiddleware(DeprecatedRoutes))

	// Health & readiness, no timeout
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	with := func(h fiber.Handler) fiber.Handler { return timeout.NewWithContext(h, requestTimeout) }

	v1 := app.Group("/v1")

	// VR bundles
	v1.Get("/bundles", with(ListBundlesHandler(deps)))
	v1.Get("/bundles/stats", with(BundleStatsHandler(deps)))
	v1.Get("/assets", with(ListAssetsHandler(deps)))

	// Bundle uploads: synchronous submits are bounded by the upload run, not the request timeout
	v1.Post("/bundles/uploads", CreateUploadHandler(deps))
	v1.Get("/bundles/uploads/history", with(UploadHistoryHandler(deps)))
	v1.Get("/bundles/uploads/:id", GetUploadHandler(deps))
	v1.Post("/bundles/uploads/:id/retry", RetryUploadHandler(deps))
	v1.Delete("/bundles/uploads/:id", CancelUploadHandler(deps))

	// Complaints
	v1.Get("/complaints", with(ListComplaintsHandler(deps)))
	v1.Get("/complaints/stats", with(ComplaintStatsHandler(deps)))
	v1.Post("/complaints/presigned-url", with(PresignImageHandler(deps)))
	v1.Get("/complaints/:id", with(GetComplaintHandler(deps)))
	v1.Patch("/complaints/:id/resolve", with(ResolveComplaintHandler(deps)))

	// AR echoes
	v1.Get("/echoes", with(ListEchoesHandler(deps)))
	v1.Get("/echoes/:id", with(GetEchoHandler(deps)))
	v1.Delete("/echoes/:id", with(DeleteEchoHandler(deps)))

	// Dashboard aggregates
	v1.Get("/dashboard/:metric", with(DashboardHandler(deps)))

	// Map projection
	v1.Get("/map/markers", with(MarkersHandler(deps)))
	v1.Post("/map/project", ProjectHandler(deps))

	// GraphQL
	app.Post("/graphql", with(GraphQLHandler(deps)))

	// API documentation (Swagger UI)
	SetupDocs(app, OpenAPIPath)

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps)))
}
