package ports

import (
	"context"

	"github.com/samirrijal/echoadmin/internal/core/domain"
)

// UploadAPI is the registration side of the presigned upload flow.
type UploadAPI interface {
	InitiateUpload(ctx context.Context, files []domain.FileInfo) (*domain.PresignedUpload, error)
	FinalizeUpload(ctx context.Context, req domain.FinalizeRequest) (domain.FinalizeResult, error)
}

// ObjectStorage transfers a file body to a presigned URL.
type ObjectStorage interface {
	Put(ctx context.Context, url, contentType string, body []byte) error
}

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishUploadPhase(ctx context.Context, snap domain.UploadSnapshot) error
	PublishBundleUploaded(ctx context.Context, snap domain.UploadSnapshot) error
	PublishComplaintResolved(ctx context.Context, c *domain.Complaint) error
	PublishEchoDeleted(ctx context.Context, id string) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
