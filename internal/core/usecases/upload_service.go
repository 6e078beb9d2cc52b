package usecases

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/samirrijal/echoadmin/internal/core/domain"
	"github.com/samirrijal/echoadmin/internal/core/ports"
	"github.com/samirrijal/echoadmin/internal/core/upload"
	"github.com/samirrijal/echoadmin/internal/pkg/metrics"
)

// ErrAuditDisabled is returned by History when no audit store is configured.
var ErrAuditDisabled = errors.New("upload audit is disabled")

const publishTimeout = 5 * time.Second

// UploadService hosts bundle upload sessions for the HTTP API.
type UploadService struct {
	registry  *upload.Registry
	bundles   *BundleService
	publisher ports.EventPublisher
	audit     ports.UploadAuditRepository

	mu      sync.Mutex
	started map[string]time.Time
}

// NewUploadService creates a new UploadService. Background runs are bounded by base.
// bundles, publisher and audit may be nil.
func NewUploadService(
	base context.Context,
	coord *upload.Coordinator,
	ttl time.Duration,
	bundles *BundleService,
	publisher ports.EventPublisher,
	audit ports.UploadAuditRepository,
) *UploadService {
	s := &UploadService{
		bundles:   bundles,
		publisher: publisher,
		audit:     audit,
		started:   make(map[string]time.Time),
	}
	s.registry = upload.NewRegistry(base, coord, ttl, s.observe)
	return s
}

// Create registers an idle session.
func (s *UploadService) Create(files []domain.NamedFile, metadata domain.BundleMetadata) domain.UploadSnapshot {
	sess := s.registry.Create(files, metadata)
	metrics.UploadSessionsActive.Set(float64(s.registry.Len()))
	return sess.Snapshot()
}

// Submit creates a session and starts it. With wait set the call returns once the run ends.
// Validation failures return the idle snapshot together with the error.
func (s *UploadService) Submit(ctx context.Context, files []domain.NamedFile, metadata domain.BundleMetadata, wait bool) (domain.UploadSnapshot, error) {
	snap := s.Create(files, metadata)
	if wait {
		return s.Run(ctx, snap.ID)
	}
	return s.Start(snap.ID)
}

// Start runs the session in the background and returns its current state.
func (s *UploadService) Start(id string) (domain.UploadSnapshot, error) {
	sess, err := s.registry.Start(id)
	if sess == nil {
		return domain.UploadSnapshot{}, err
	}
	return sess.Snapshot(), err
}

// Run runs the session on the calling goroutine.
func (s *UploadService) Run(ctx context.Context, id string) (domain.UploadSnapshot, error) {
	sess, err := s.registry.Run(ctx, id)
	if sess == nil {
		return domain.UploadSnapshot{}, err
	}
	return sess.Snapshot(), err
}

// Retry restarts a failed or cancelled session.
func (s *UploadService) Retry(id string) (domain.UploadSnapshot, error) {
	sess, err := s.registry.Retry(id)
	if sess == nil {
		return domain.UploadSnapshot{}, err
	}
	return sess.Snapshot(), err
}

// Get returns the current state of a session.
func (s *UploadService) Get(id string) (domain.UploadSnapshot, error) {
	sess, err := s.registry.Get(id)
	if err != nil {
		return domain.UploadSnapshot{}, err
	}
	return sess.Snapshot(), nil
}

// Wait blocks until the session's current run ends or ctx is done.
func (s *UploadService) Wait(ctx context.Context, id string) (domain.UploadSnapshot, error) {
	sess, err := s.registry.Get(id)
	if err != nil {
		return domain.UploadSnapshot{}, err
	}
	return sess.Wait(ctx)
}

// Cancel aborts a running session. It reports false when nothing was running.
func (s *UploadService) Cancel(id string) (bool, error) {
	return s.registry.Cancel(id)
}

// Remove cancels a session if needed and forgets it.
func (s *UploadService) Remove(id string) error {
	if err := s.registry.Remove(id); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.started, id)
	s.mu.Unlock()
	metrics.UploadSessionsActive.Set(float64(s.registry.Len()))
	return nil
}

// History returns the latest finished sessions from the audit store.
func (s *UploadService) History(ctx context.Context, limit int) ([]domain.UploadSnapshot, error) {
	if s.audit == nil {
		return nil, ErrAuditDisabled
	}
	return s.audit.Recent(ctx, limit)
}

// Janitor drops stale finished sessions every interval until ctx is done.
func (s *UploadService) Janitor(ctx context.Context, interval time.Duration) {
	s.registry.Janitor(ctx, interval, func(removed int) {
		metrics.UploadSessionsActive.Set(float64(s.registry.Len()))
		slog.Info("swept upload sessions", "removed", removed)
	})
}

// observe is attached to every session and runs after each transition.
func (s *UploadService) observe(snap domain.UploadSnapshot) {
	metrics.UploadTransitions.WithLabelValues(string(snap.Phase)).Inc()

	log := slog.With("session_id", snap.ID, "upload_id", snap.UploadID, "phase", string(snap.Phase))
	switch snap.Phase {
	case domain.PhaseRequesting:
		s.mu.Lock()
		s.started[snap.ID] = snap.UpdatedAt
		s.mu.Unlock()
		log.Info("upload started", "attempt", snap.Attempts)
	case domain.PhaseFailed:
		log.Warn("upload failed", "error", snap.Error, "file", snap.FailedOn)
	case domain.PhaseDone:
		log.Info("upload registered", "bundle_id", snap.Result.ID())
	default:
		log.Debug("upload transition")
	}

	if snap.Phase.Terminal() {
		s.finish(snap)
	}

	if s.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := s.publisher.PublishUploadPhase(ctx, snap); err != nil {
		log.Warn("publish upload phase", "error", err)
	}
	if snap.Phase == domain.PhaseDone {
		if err := s.publisher.PublishBundleUploaded(ctx, snap); err != nil {
			log.Warn("publish bundle uploaded", "error", err)
		}
	}
}

func (s *UploadService) finish(snap domain.UploadSnapshot) {
	s.mu.Lock()
	start, ok := s.started[snap.ID]
	delete(s.started, snap.ID)
	s.mu.Unlock()
	if ok {
		metrics.UploadDuration.WithLabelValues(string(snap.Phase)).Observe(snap.UpdatedAt.Sub(start).Seconds())
	}

	if snap.Phase == domain.PhaseDone && s.bundles != nil {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		s.bundles.Invalidate(ctx)
		cancel()
	}
}
