package geo

import (
	"context"
	"sync"

	"github.com/samirrijal/echoadmin/internal/core/domain"
)

// Viewport tracks the fitted image rect for one view of the map.
//
// The image natural size arrives once (ImageLoaded); until then no rect exists.
// Every Resize after that recomputes the rect and notifies listeners. Close
// drops all listeners when the view goes away.
type Viewport struct {
	mu        sync.Mutex
	image     domain.Size
	loaded    bool
	container domain.Size
	sized     bool
	rect      domain.ContainerRect
	hasRect   bool
	ready     chan struct{}
	listeners map[int]func(domain.ContainerRect)
	nextID    int
	closed    bool
}

// NewViewport creates an empty viewport.
func NewViewport() *Viewport {
	return &Viewport{
		ready:     make(chan struct{}),
		listeners: make(map[int]func(domain.ContainerRect)),
	}
}

// ImageLoaded records the image natural size. Only the first call has effect.
func (v *Viewport) ImageLoaded(natural domain.Size) {
	v.mu.Lock()
	if v.loaded || v.closed {
		v.mu.Unlock()
		return
	}
	v.image = natural
	v.loaded = true
	v.recomputeLocked()
}

// Resize records a new container size and recomputes the rect if the image is loaded.
func (v *Viewport) Resize(container domain.Size) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.container = container
	v.sized = true
	v.recomputeLocked()
}

// recomputeLocked must be called with v.mu held; it releases it before calling listeners.
func (v *Viewport) recomputeLocked() {
	if !v.loaded || !v.sized {
		v.mu.Unlock()
		return
	}
	v.rect = ComputeContainerRect(v.container, v.image)
	if !v.hasRect {
		v.hasRect = true
		close(v.ready)
	}
	rect := v.rect
	fns := make([]func(domain.ContainerRect), 0, len(v.listeners))
	for _, fn := range v.listeners {
		fns = append(fns, fn)
	}
	v.mu.Unlock()

	for _, fn := range fns {
		fn(rect)
	}
}

// Rect returns the current rect. ok is false until both sizes are known.
func (v *Viewport) Rect() (domain.ContainerRect, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.rect, v.hasRect
}

// Ready is closed once the first rect has been computed.
func (v *Viewport) Ready() <-chan struct{} {
	return v.ready
}

// WaitReady blocks until the first rect exists or ctx is done.
func (v *Viewport) WaitReady(ctx context.Context) (domain.ContainerRect, error) {
	select {
	case <-v.ready:
		rect, _ := v.Rect()
		return rect, nil
	case <-ctx.Done():
		return domain.ContainerRect{}, ctx.Err()
	}
}

// Subscribe registers fn for every recomputed rect. The returned func removes it.
func (v *Viewport) Subscribe(fn func(domain.ContainerRect)) (unsubscribe func()) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return func() {}
	}
	id := v.nextID
	v.nextID++
	v.listeners[id] = fn
	return func() {
		v.mu.Lock()
		delete(v.listeners, id)
		v.mu.Unlock()
	}
}

// Listeners returns the number of registered listeners.
func (v *Viewport) Listeners() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.listeners)
}

// Close deregisters every listener. Later events are ignored.
func (v *Viewport) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
	clear(v.listeners)
}
