package upload

import (
	"context"
	"sync"
	"time"

	"github.com/samirrijal/echoadmin/internal/core/domain"
)

// Registry hosts sessions for callers that cannot hold them in memory
// themselves, such as HTTP clients polling a session by id.
type Registry struct {
	coord    *Coordinator
	ttl      time.Duration
	observer Observer

	mu       sync.RWMutex
	sessions map[string]*Session
	base     context.Context
}

// NewRegistry creates a Registry. base bounds every asynchronous run; sessions
// in a terminal phase are dropped by Sweep once idle for ttl.
func NewRegistry(base context.Context, coord *Coordinator, ttl time.Duration, observer Observer) *Registry {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Registry{
		coord:    coord,
		ttl:      ttl,
		observer: observer,
		sessions: make(map[string]*Session),
		base:     base,
	}
}

// Create registers a new idle bundle session.
func (r *Registry) Create(files []domain.NamedFile, metadata domain.BundleMetadata) *Session {
	s := NewSession(files, metadata)
	if r.observer != nil {
		s.Observe(r.observer)
	}
	r.mu.Lock()
	r.sessions[s.ID()] = s
	r.mu.Unlock()
	return s
}

// Get returns the session with id.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

// Start validates the session synchronously and runs it in the background.
func (r *Registry) Start(id string) (*Session, error) {
	s, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	run, err := r.coord.Start(r.base, s)
	if err != nil {
		return s, err
	}
	go func() { _, _ = run() }()
	return s, nil
}

// Run validates the session and runs it on the calling goroutine, bounded by ctx.
func (r *Registry) Run(ctx context.Context, id string) (*Session, error) {
	s, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	_, err = r.coord.Submit(ctx, s)
	return s, err
}

// Retry restarts a failed or cancelled session in the background.
func (r *Registry) Retry(id string) (*Session, error) {
	return r.Start(id)
}

// Cancel aborts an in-flight session. It reports false when nothing was running.
func (r *Registry) Cancel(id string) (bool, error) {
	s, err := r.Get(id)
	if err != nil {
		return false, err
	}
	return s.Cancel(), nil
}

// Remove cancels the session if needed and forgets it.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return domain.ErrNotFound
	}
	s.Cancel()
	return nil
}

// Len returns the number of hosted sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep drops sessions that are not in flight and were last updated before now-ttl.
// It returns the number removed.
func (r *Registry) Sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, s := range r.sessions {
		snap := s.Snapshot()
		if snap.Phase.InFlight() {
			continue
		}
		if now.Sub(snap.UpdatedAt) >= r.ttl {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// Janitor runs Sweep every interval until ctx is done.
func (r *Registry) Janitor(ctx context.Context, interval time.Duration, onSweep func(removed int)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := r.Sweep(now); n > 0 && onSweep != nil {
				onSweep(n)
			}
		}
	}
}
