package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/echoadmin/internal/adapters/http"
	natsadapter "github.com/samirrijal/echoadmin/internal/adapters/nats"
	"github.com/samirrijal/echoadmin/internal/adapters/postgres"
	"github.com/samirrijal/echoadmin/internal/adapters/upstream"
	"github.com/samirrijal/echoadmin/internal/adapters/valkey"
	"github.com/samirrijal/echoadmin/internal/core/domain"
	"github.com/samirrijal/echoadmin/internal/core/geo"
	"github.com/samirrijal/echoadmin/internal/core/ports"
	"github.com/samirrijal/echoadmin/internal/core/query"
	"github.com/samirrijal/echoadmin/internal/core/upload"
	"github.com/samirrijal/echoadmin/internal/core/usecases"
	"github.com/samirrijal/echoadmin/internal/pkg/config"
	"github.com/samirrijal/echoadmin/internal/pkg/geospatial"
	"github.com/samirrijal/echoadmin/internal/pkg/logging"
	"github.com/samirrijal/echoadmin/internal/pkg/metrics"
	"github.com/samirrijal/echoadmin/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("echoadmin-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logging.Setup(os.Stdout, cfg.Log.Level, cfg.Log.Format, cfg.Telemetry.ServiceName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Upstream platform API
	client := upstream.New(cfg.Upstream)

	// Cache
	var cacheSvc ports.CacheService
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable, caching disabled", "error", err)
	} else {
		cacheSvc = cache
		defer cache.Close()
	}

	// NATS
	var publisher ports.EventPublisher
	nc, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, events disabled", "error", err)
	} else {
		publisher = nc
		defer nc.Close()
	}

	// Upload audit trail (optional)
	var (
		db    *postgres.DB
		audit ports.UploadAuditRepository
	)
	if cfg.Database.Enabled {
		db, err = postgres.New(ctx, cfg.Database.DSN())
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		go reportPool(ctx, db)
		repo := postgres.NewAuditRepo(db)
		audit = repo

		if nc != nil {
			sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
			if err != nil {
				log.Fatalf("nats subscriber: %v", err)
			}
			defer sub.Close()
			if err := sub.SubscribeUploadsFinished(ctx, repo.Record); err != nil {
				log.Fatalf("subscribe upload audit: %v", err)
			}
		} else {
			// Without a broker the finished sessions are written inline.
			publisher = directAudit{repo: repo}
		}
	}

	// Map raster
	bounds, err := mapBounds(cfg.Map)
	if err != nil {
		log.Fatalf("map bounds: %v", err)
	}
	image := mapImage(cfg.Map)

	// Use cases
	ttl := cfg.Valkey.TTLSeconds
	bundleSvc := usecases.NewBundleService(client, cacheSvc, ttl)
	vocab := vocabulary(cfg.Vocab)
	complaintSvc := usecases.NewComplaintService(client, cacheSvc, publisher, ttl).WithVocabulary(vocab)
	echoSvc := usecases.NewEchoService(client, cacheSvc, publisher, ttl).WithVocabulary(vocab)
	dashboardSvc := usecases.NewDashboardService(client, cacheSvc)
	markerSvc := usecases.NewMarkerService(complaintSvc, echoSvc, bounds, image)

	coord := upload.NewCoordinator(client, upstream.NewStorage(cfg.Upload.PutTimeoutDuration()))
	uploadSvc := usecases.NewUploadService(ctx, coord, cfg.Upload.SessionTTLDuration(), bundleSvc, publisher, audit)
	go uploadSvc.Janitor(ctx, time.Minute)

	deps := &http.Dependencies{
		Bundles:    bundleSvc,
		Complaints: complaintSvc,
		Echoes:     echoSvc,
		Dashboard:  dashboardSvc,
		Markers:    markerSvc,
		Uploads:    uploadSvc,
		Upstream:   client,
		DB:         db,
		Cache:      cache,
		MaxFileMB:  cfg.Upload.MaxFileMB,
	}
	if nc != nil {
		deps.NATS = nc.Conn()
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimitMB * 1024 * 1024, // bundle uploads are multi-file forms
		AppName:      "EchoAdmin API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders:    "Link, Location, ETag, Deprecation, Sunset",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "upstream", cfg.Upstream.BaseURL)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	// Stops background uploads and the janitor.
	cancel()

	slog.Info("server stopped")
}

// mapBounds reads the raster edges, deriving them from center and radius when radius_m is set.
func mapBounds(m config.MapConfig) (domain.GeoBounds, error) {
	if m.RadiusM > 0 {
		north, south, west, east := geospatial.Edges(m.CenterLat, m.CenterLon, m.RadiusM)
		return geo.NewBounds(north, south, west, east)
	}
	return geo.NewBounds(m.North, m.South, m.West, m.East)
}

// mapImage decodes the raster header lazily, or uses the configured size.
func mapImage(m config.MapConfig) *geo.ImageLoader {
	if m.ImagePath == "" {
		return geo.StaticImage(domain.Size{Width: m.ImageWidth, Height: m.ImageHeight})
	}
	path := m.ImagePath
	return geo.NewImageLoader(func() (domain.Size, error) {
		size, err := geo.DecodeImageSize(path)
		if err != nil {
			slog.Error("map image decode failed", "path", path, "error", err)
		}
		return size, err
	})
}

func reportPool(ctx context.Context, db *postgres.DB) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.UpdateDBPoolMetrics(db.Stat())
		}
	}
}

// directAudit records finished uploads when no broker carries the events to the subscriber.
type directAudit struct {
	repo *postgres.AuditRepo
}

func (d directAudit) PublishUploadPhase(ctx context.Context, snap domain.UploadSnapshot) error {
	if !snap.Phase.Terminal() {
		return nil
	}
	return d.repo.Record(ctx, snap)
}

func (directAudit) PublishBundleUploaded(context.Context, domain.UploadSnapshot) error { return nil }

func (directAudit) PublishComplaintResolved(context.Context, *domain.Complaint) error { return nil }

func (directAudit) PublishEchoDeleted(context.Context, string) error { return nil }

func vocabulary(c config.VocabConfig) query.Vocabulary {
	return query.Vocabulary{
		ComplaintPending:  c.ComplaintPending,
		ComplaintReviewed: c.ComplaintReviewed,
		ComplaintResolved: c.ComplaintResolved,
		Severities:        c.Severities,
		EchoStatuses:      c.EchoStatuses,
		EchoTypes:         c.EchoTypes,
	}
}
