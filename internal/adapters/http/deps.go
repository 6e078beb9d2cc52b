package http

import (
	"context"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/echoadmin/internal/adapters/postgres"
	"github.com/samirrijal/echoadmin/internal/adapters/valkey"
	"github.com/samirrijal/echoadmin/internal/core/usecases"
)

// Pinger is a dependency that can report whether it is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Bundles    *usecases.BundleService
	Complaints *usecases.ComplaintService
	Echoes     *usecases.EchoService
	Dashboard  *usecases.DashboardService
	Markers    *usecases.MarkerService
	Uploads    *usecases.UploadService
	Upstream   Pinger
	NATS       *nats.Conn
	DB         *postgres.DB
	Cache      *valkey.Cache
	// MaxFileMB caps each uploaded file; 0 disables the check.
	MaxFileMB int
}
