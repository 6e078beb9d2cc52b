// Package upload orchestrates the presigned-URL upload of a file set:
// request URLs, transfer every file directly to storage in parallel, then
// register the set with the backend.
package upload

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/samirrijal/echoadmin/internal/core/domain"
)

// Observer is notified after every phase transition.
type Observer func(domain.UploadSnapshot)

// Form declares which file slots a session needs.
type Form struct {
	// Required slots must be present with a non-empty body.
	Required []domain.FileSlot
	// Reference is sent with the finalize call instead of being transferred.
	// Empty transfers every file.
	Reference domain.FileSlot
}

// BundleForm is the VR bundle form: manifest and bundle are transferred,
// the layout JSON goes with finalize.
var BundleForm = Form{
	Required:  []domain.FileSlot{domain.SlotManifest, domain.SlotBundle, domain.SlotLayout},
	Reference: domain.SlotLayout,
}

// Session is the state of one upload form. It is owned by whoever created it;
// sessions share nothing with each other.
type Session struct {
	mu sync.Mutex

	id       string
	form     Form
	files    []domain.NamedFile
	metadata domain.BundleMetadata

	phase      domain.UploadPhase
	uploadID   string
	err        error
	errMsg     string
	failedFile string
	result     domain.FinalizeResult
	attempts   int
	createdAt  time.Time
	updatedAt  time.Time

	observer Observer
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewSession creates an idle session for the bundle form.
func NewSession(files []domain.NamedFile, metadata domain.BundleMetadata) *Session {
	return NewFormSession(BundleForm, files, metadata)
}

// NewFormSession creates an idle session for an arbitrary form.
func NewFormSession(form Form, files []domain.NamedFile, metadata domain.BundleMetadata) *Session {
	now := time.Now().UTC()
	return &Session{
		id:        uuid.NewString(),
		form:      form,
		files:     slices.Clone(files),
		metadata:  metadata,
		phase:     domain.PhaseIdle,
		createdAt: now,
		updatedAt: now,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Observe sets the transition observer. Pass nil to remove it.
func (s *Session) Observe(fn Observer) {
	s.mu.Lock()
	s.observer = fn
	s.mu.Unlock()
}

// Phase returns the current phase.
func (s *Session) Phase() domain.UploadPhase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Err returns the error of a failed or cancelled session.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Result returns the finalize response of a done session.
func (s *Session) Result() domain.FinalizeResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Snapshot returns a copy of the session state. File bodies are not included.
func (s *Session) Snapshot() domain.UploadSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() domain.UploadSnapshot {
	files := make([]domain.NamedFile, len(s.files))
	for i, f := range s.files {
		files[i] = domain.NamedFile{Slot: f.Slot, Name: f.Name, ContentType: f.ContentType}
	}
	return domain.UploadSnapshot{
		ID:        s.id,
		Phase:     s.phase,
		UploadID:  s.uploadID,
		Files:     files,
		Metadata:  s.metadata,
		Error:     s.errMsg,
		FailedOn:  s.failedFile,
		Result:    s.result,
		Attempts:  s.attempts,
		CreatedAt: s.createdAt,
		UpdatedAt: s.updatedAt,
	}
}

// Reset returns a finished session to idle. Files and metadata are kept.
func (s *Session) Reset() error {
	s.mu.Lock()
	if s.phase.InFlight() {
		s.mu.Unlock()
		return domain.ErrSessionBusy
	}
	s.resetLocked()
	s.transitionLocked(domain.PhaseIdle)
	return nil
}

func (s *Session) resetLocked() {
	s.uploadID = ""
	s.err = nil
	s.errMsg = ""
	s.failedFile = ""
	s.result = nil
}

// Cancel aborts an in-flight submit. It reports whether anything was running.
func (s *Session) Cancel() bool {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel == nil {
		return false
	}
	cancel()
	return true
}

// Done returns a channel closed when the current run ends. It is nil before the first run.
func (s *Session) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Wait blocks until the current run ends or ctx is done.
func (s *Session) Wait(ctx context.Context) (domain.UploadSnapshot, error) {
	done := s.Done()
	if done == nil {
		return s.Snapshot(), nil
	}
	select {
	case <-done:
		return s.Snapshot(), nil
	case <-ctx.Done():
		return s.Snapshot(), ctx.Err()
	}
}

// validateLocked checks the form before any network call.
func (s *Session) validateLocked() error {
	if len(s.files) == 0 {
		return &domain.ValidationError{Field: "files", Message: "at least one file is required"}
	}
	for _, slot := range s.form.Required {
		f, ok := s.fileLocked(slot)
		if !ok || f.Name == "" {
			return &domain.ValidationError{Field: string(slot), Message: "file is required"}
		}
		if len(f.Data) == 0 {
			return &domain.ValidationError{Field: string(slot), Message: "file is empty"}
		}
	}
	if s.metadata.Name == "" {
		return &domain.ValidationError{Field: "name", Message: "is required"}
	}
	if s.metadata.Version == "" {
		return &domain.ValidationError{Field: "version", Message: "is required"}
	}
	return nil
}

func (s *Session) fileLocked(slot domain.FileSlot) (domain.NamedFile, bool) {
	for _, f := range s.files {
		if f.Slot == slot {
			return f, true
		}
	}
	return domain.NamedFile{}, false
}

// split separates the transferred files from the finalize reference.
func (s *Session) split() (transfer []domain.NamedFile, reference *domain.NamedFile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.files {
		if s.form.Reference != "" && f.Slot == s.form.Reference {
			ref := f
			reference = &ref
			continue
		}
		transfer = append(transfer, f)
	}
	return transfer, reference
}

func (s *Session) meta() domain.BundleMetadata {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metadata
}

// transitionLocked moves to phase, releases s.mu and notifies the observer.
func (s *Session) transitionLocked(phase domain.UploadPhase) {
	s.phase = phase
	s.updatedAt = time.Now().UTC()
	snap := s.snapshotLocked()
	obs := s.observer
	s.mu.Unlock()

	if obs != nil {
		obs(snap)
	}
}

func (s *Session) set(phase domain.UploadPhase, mutate func()) {
	s.mu.Lock()
	if mutate != nil {
		mutate()
	}
	s.transitionLocked(phase)
}
