package ports

import (
	"context"

	"github.com/samirrijal/echoadmin/internal/core/domain"
)

// BundleSource reads VR asset bundles from the upstream API.
type BundleSource interface {
	ListBundles(ctx context.Context) ([]domain.Bundle, error)
}

// ComplaintSource reads and updates civic complaints.
type ComplaintSource interface {
	ListComplaints(ctx context.Context) ([]domain.Complaint, error)
	GetComplaint(ctx context.Context, id string) (*domain.Complaint, error)
	ResolveComplaint(ctx context.Context, id string) (*domain.Complaint, error)
	PresignComplaintImage(ctx context.Context, objectURL string) (string, error)
}

// EchoSource reads and deletes AR echoes.
type EchoSource interface {
	ListEchoes(ctx context.Context) ([]domain.Echo, error)
	GetEcho(ctx context.Context, id string) (*domain.Echo, error)
	DeleteEcho(ctx context.Context, id string) error
}

// DashboardSource reads the dashboard aggregates.
type DashboardSource interface {
	Summary(ctx context.Context) (*domain.DashboardSummary, error)
	AiSummary(ctx context.Context) (*domain.AiSummary, error)
	WeeklyDiagnoses(ctx context.Context) ([]domain.WeeklyDiagnosis, error)
	TagDistribution(ctx context.Context) ([]domain.TagDistribution, error)
	HourlyComplaints(ctx context.Context) ([]domain.HourlyComplaint, error)
}

// UploadAuditRepository persists finished upload sessions.
type UploadAuditRepository interface {
	Record(ctx context.Context, snap domain.UploadSnapshot) error
	Recent(ctx context.Context, limit int) ([]domain.UploadSnapshot, error)
}
