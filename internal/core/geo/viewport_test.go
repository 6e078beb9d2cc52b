package geo_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/echoadmin/internal/core/domain"
	"github.com/samirrijal/echoadmin/internal/core/geo"
)

func TestViewport_NoRectUntilImageLoads(t *testing.T) {
	v := geo.NewViewport()
	v.Resize(domain.Size{Width: 800, Height: 600})

	_, ok := v.Rect()
	assert.False(t, ok)

	select {
	case <-v.Ready():
		t.Fatal("ready before image load")
	default:
	}

	v.ImageLoaded(domain.Size{Width: 400, Height: 400})
	rect, ok := v.Rect()
	require.True(t, ok)
	assert.InDelta(t, 600, rect.Width, 1e-9)
	assert.InDelta(t, 100, rect.X, 1e-9)
}

func TestViewport_ImageLoadIsOneShot(t *testing.T) {
	v := geo.NewViewport()
	v.ImageLoaded(domain.Size{Width: 200, Height: 100})
	v.ImageLoaded(domain.Size{Width: 100, Height: 200})
	v.Resize(domain.Size{Width: 200, Height: 200})

	rect, ok := v.Rect()
	require.True(t, ok)
	assert.InDelta(t, 2.0, rect.Width/rect.Height, 1e-9)
}

func TestViewport_EveryResizeNotifies(t *testing.T) {
	v := geo.NewViewport()
	var (
		mu    sync.Mutex
		rects []domain.ContainerRect
	)
	unsubscribe := v.Subscribe(func(r domain.ContainerRect) {
		mu.Lock()
		rects = append(rects, r)
		mu.Unlock()
	})

	v.ImageLoaded(domain.Size{Width: 100, Height: 100})
	v.Resize(domain.Size{Width: 100, Height: 50})
	v.Resize(domain.Size{Width: 300, Height: 300})
	v.Resize(domain.Size{Width: 300, Height: 300})

	mu.Lock()
	assert.Len(t, rects, 3)
	mu.Unlock()

	unsubscribe()
	v.Resize(domain.Size{Width: 10, Height: 10})

	mu.Lock()
	assert.Len(t, rects, 3)
	mu.Unlock()
}

func TestViewport_CloseDeregistersListeners(t *testing.T) {
	v := geo.NewViewport()
	calls := 0
	v.Subscribe(func(domain.ContainerRect) { calls++ })
	v.Subscribe(func(domain.ContainerRect) { calls++ })
	require.Equal(t, 2, v.Listeners())

	v.Close()
	assert.Equal(t, 0, v.Listeners())

	v.ImageLoaded(domain.Size{Width: 1, Height: 1})
	v.Resize(domain.Size{Width: 1, Height: 1})
	assert.Equal(t, 0, calls)

	v.Subscribe(func(domain.ContainerRect) { calls++ })
	assert.Equal(t, 0, v.Listeners())
}

func TestViewport_WaitReady(t *testing.T) {
	v := geo.NewViewport()
	loader := geo.NewImageLoader(func() (domain.Size, error) {
		time.Sleep(10 * time.Millisecond)
		return domain.Size{Width: 1600, Height: 900}, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	v.Resize(domain.Size{Width: 1600, Height: 1600})
	loader.Bind(ctx, v)

	rect, err := v.WaitReady(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 900, rect.Height, 1e-9)
	assert.InDelta(t, 350, rect.Y, 1e-9)
}

func TestViewport_WaitReadyHonoursContext(t *testing.T) {
	v := geo.NewViewport()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := v.WaitReady(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestImageLoader_RunsOnce(t *testing.T) {
	calls := 0
	loader := geo.NewImageLoader(func() (domain.Size, error) {
		calls++
		return domain.Size{Width: 3, Height: 2}, nil
	})

	for i := 0; i < 3; i++ {
		size, err := loader.Wait(context.Background())
		require.NoError(t, err)
		assert.Equal(t, domain.Size{Width: 3, Height: 2}, size)
	}
	assert.Equal(t, 1, calls)
}
