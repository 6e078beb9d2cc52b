package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/samirrijal/echoadmin/internal/core/domain"
	"github.com/samirrijal/echoadmin/internal/core/ports"
	"github.com/samirrijal/echoadmin/internal/core/query"
)

const complaintsKey = "complaints:all"

// ComplaintService handles complaint moderation.
type ComplaintService struct {
	complaints ports.ComplaintSource
	cache      ports.CacheService
	publisher  ports.EventPublisher
	ttl        int
	vocab      query.Vocabulary
}

// NewComplaintService creates a new ComplaintService using DefaultVocabulary. publisher may be nil.
func NewComplaintService(complaints ports.ComplaintSource, cache ports.CacheService, publisher ports.EventPublisher, ttl int) *ComplaintService {
	return &ComplaintService{complaints: complaints, cache: cache, publisher: publisher, ttl: ttl, vocab: query.DefaultVocabulary}
}

// WithVocabulary sets the status and severity values used for filtering and stats.
func (s *ComplaintService) WithVocabulary(v query.Vocabulary) *ComplaintService {
	s.vocab = v.WithDefaults()
	return s
}

// All returns every complaint, served from cache when possible.
func (s *ComplaintService) All(ctx context.Context) ([]domain.Complaint, error) {
	complaints, err := readThrough(ctx, s.cache, complaintsKey, s.ttl, s.complaints.ListComplaints)
	if err != nil {
		return nil, fmt.Errorf("list complaints: %w", err)
	}
	return complaints, nil
}

// List applies spec to every complaint and returns one page.
func (s *ComplaintService) List(ctx context.Context, spec query.Spec, offset, limit int) ([]domain.Complaint, query.Page, error) {
	complaints, err := s.All(ctx)
	if err != nil {
		return nil, query.Page{}, err
	}
	items, page := query.Paginate(query.Apply(complaints, spec, s.vocab.ComplaintSchema()), offset, clampLimit(limit))
	return items, page, nil
}

// Stats counts complaints by status.
func (s *ComplaintService) Stats(ctx context.Context) (query.ComplaintStats, error) {
	complaints, err := s.All(ctx)
	if err != nil {
		return query.ComplaintStats{}, err
	}
	return s.vocab.ComplaintStats(complaints), nil
}

// Get returns a single complaint.
func (s *ComplaintService) Get(ctx context.Context, id string) (*domain.Complaint, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	return s.complaints.GetComplaint(ctx, id)
}

// Resolve marks a complaint resolved, drops the cached list and announces the change.
func (s *ComplaintService) Resolve(ctx context.Context, id string) (*domain.Complaint, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	c, err := s.complaints.ResolveComplaint(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("resolve complaint %s: %w", id, err)
	}
	if c.Status == "" {
		c.Status = s.vocab.ComplaintResolved
	}
	invalidate(ctx, s.cache, complaintsKey)
	if s.publisher != nil {
		_ = s.publisher.PublishComplaintResolved(ctx, c)
	}
	return c, nil
}

// PresignImage exchanges a stored image URL for a short-lived download URL.
func (s *ComplaintService) PresignImage(ctx context.Context, objectURL string) (string, error) {
	if strings.TrimSpace(objectURL) == "" {
		return "", &domain.ValidationError{Field: "S3_url", Message: "must not be empty"}
	}
	return s.complaints.PresignComplaintImage(ctx, objectURL)
}

func requireID(id string) error {
	if strings.TrimSpace(id) == "" {
		return &domain.ValidationError{Field: "id", Message: "must not be empty"}
	}
	return nil
}
