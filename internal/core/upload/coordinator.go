package upload

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/samirrijal/echoadmin/internal/core/domain"
	"github.com/samirrijal/echoadmin/internal/core/ports"
)

// DefaultContentType is used when a file declares no MIME type.
const DefaultContentType = "application/octet-stream"

var defaultMessages = map[domain.UploadPhase]string{
	domain.PhaseRequesting: "failed to request upload URLs",
	domain.PhaseUploading:  "failed to upload files",
	domain.PhaseFinalizing: "failed to register the upload",
}

// Coordinator runs sessions against the upload API and object storage.
// It holds no per-session state and may drive any number of sessions at once.
type Coordinator struct {
	api     ports.UploadAPI
	storage ports.ObjectStorage
}

// NewCoordinator creates a Coordinator.
func NewCoordinator(api ports.UploadAPI, storage ports.ObjectStorage) *Coordinator {
	return &Coordinator{api: api, storage: storage}
}

// Submit validates s and runs it to completion.
func (c *Coordinator) Submit(ctx context.Context, s *Session) (domain.FinalizeResult, error) {
	run, err := c.Start(ctx, s)
	if err != nil {
		return nil, err
	}
	return run()
}

// Start validates s and moves it to requesting. The returned run func performs
// the network sequence and may be called on another goroutine. Cancelling ctx,
// or calling s.Cancel, moves an unfinished run to cancelled.
//
// A failed or cancelled session is restarted from idle with its files and
// metadata intact. Validation errors leave the session idle.
func (c *Coordinator) Start(ctx context.Context, s *Session) (run func() (domain.FinalizeResult, error), err error) {
	s.mu.Lock()
	switch {
	case s.phase.InFlight():
		s.mu.Unlock()
		return nil, domain.ErrSessionBusy
	case s.phase == domain.PhaseDone:
		s.mu.Unlock()
		return nil, domain.ErrSessionCompleted
	}

	if s.phase != domain.PhaseIdle {
		s.resetLocked()
		s.phase = domain.PhaseIdle
	}
	if err := s.validateLocked(); err != nil {
		s.err = err
		s.errMsg = err.Error()
		s.transitionLocked(domain.PhaseIdle)
		return nil, err
	}
	if err := s.validateNamesLocked(); err != nil {
		s.err = err
		s.errMsg = err.Error()
		s.transitionLocked(domain.PhaseIdle)
		return nil, err
	}
	s.err = nil
	s.errMsg = ""

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done
	s.attempts++
	s.transitionLocked(domain.PhaseRequesting)

	// The terminal observer runs before this cleanup, so a retry may already
	// own s.cancel and s.done by the time it executes.
	return func() (domain.FinalizeResult, error) {
		defer func() {
			cancel()
			s.mu.Lock()
			if s.done == done {
				s.cancel = nil
			}
			s.mu.Unlock()
			close(done)
		}()
		return c.run(runCtx, s)
	}, nil
}

func (c *Coordinator) run(ctx context.Context, s *Session) (domain.FinalizeResult, error) {
	files, reference := s.split()

	infos := make([]domain.FileInfo, len(files))
	for i, f := range files {
		infos[i] = domain.FileInfo{FileName: f.Name, FileType: contentType(f)}
	}

	presigned, err := c.api.InitiateUpload(ctx, infos)
	if err != nil {
		return nil, c.fail(ctx, s, domain.PhaseRequesting, err)
	}
	if presigned == nil || presigned.UploadID == "" {
		return nil, c.fail(ctx, s, domain.PhaseRequesting, &domain.TransferError{
			Phase:   domain.PhaseRequesting,
			Message: "server returned no upload id",
		})
	}

	// Every file needs its own URL before anything is transferred.
	urls := make([]string, len(files))
	for i, f := range files {
		u, ok := presigned.URLFor(f.Name)
		if !ok {
			return nil, c.fail(ctx, s, domain.PhaseRequesting, &domain.TransferError{
				Phase:   domain.PhaseRequesting,
				File:    f.Name,
				Message: fmt.Sprintf("no upload URL issued for %s", f.Name),
			})
		}
		urls[i] = u
	}

	s.set(domain.PhaseUploading, func() { s.uploadID = presigned.UploadID })

	if err := c.transfer(ctx, files, urls); err != nil {
		return nil, c.fail(ctx, s, domain.PhaseUploading, err)
	}

	s.set(domain.PhaseFinalizing, nil)

	result, err := c.api.FinalizeUpload(ctx, domain.FinalizeRequest{
		UploadID:  presigned.UploadID,
		Metadata:  s.meta(),
		Reference: reference,
	})
	if err != nil {
		return nil, c.fail(ctx, s, domain.PhaseFinalizing, err)
	}
	if result == nil {
		result = domain.FinalizeResult{}
	}

	s.set(domain.PhaseDone, func() { s.result = result })
	return result, nil
}

// transfer PUTs every file concurrently. The first failure is returned once
// all transfers have returned; the others are discarded.
func (c *Coordinator) transfer(ctx context.Context, files []domain.NamedFile, urls []string) error {
	g, gctx := errgroup.WithContext(ctx)
	for i := range files {
		f, url := files[i], urls[i]
		g.Go(func() error {
			if err := c.storage.Put(gctx, url, contentType(f), f.Data); err != nil {
				return &domain.TransferError{Phase: domain.PhaseUploading, File: f.Name, Err: err}
			}
			return nil
		})
	}
	return g.Wait()
}

// fail records err on s and returns the error handed to the caller.
func (c *Coordinator) fail(ctx context.Context, s *Session, phase domain.UploadPhase, err error) error {
	if ctx.Err() != nil {
		cancelled := fmt.Errorf("%s: %w", phase, domain.ErrUploadCancelled)
		s.set(domain.PhaseCancelled, func() {
			s.err = cancelled
			s.errMsg = domain.ErrUploadCancelled.Error()
		})
		return cancelled
	}

	terr := &domain.TransferError{Phase: phase, Err: err}
	var inner *domain.TransferError
	if errors.As(err, &inner) {
		terr.File = inner.File
		terr.Message = inner.Message
		terr.Err = inner.Err
	}
	if msg, ok := domain.ServerMessage(err); ok {
		terr.Message = msg
	}
	if terr.Message == "" {
		terr.Message = defaultMessages[phase]
		if terr.File != "" && phase == domain.PhaseUploading {
			terr.Message = fmt.Sprintf("failed to upload %s", terr.File)
		}
	}

	s.set(domain.PhaseFailed, func() {
		s.err = terr
		s.errMsg = terr.Message
		s.failedFile = terr.File
	})
	return terr
}

func (s *Session) validateNamesLocked() error {
	seen := make(map[string]bool, len(s.files))
	for _, f := range s.files {
		if s.form.Reference != "" && f.Slot == s.form.Reference {
			continue
		}
		if f.Name == "" {
			return &domain.ValidationError{Field: string(f.Slot), Message: "file name is required"}
		}
		if seen[f.Name] {
			return &domain.ValidationError{Field: string(f.Slot), Message: fmt.Sprintf("duplicate file name %q", f.Name)}
		}
		seen[f.Name] = true
	}
	return nil
}

func contentType(f domain.NamedFile) string {
	if f.ContentType != "" {
		return f.ContentType
	}
	return DefaultContentType
}
