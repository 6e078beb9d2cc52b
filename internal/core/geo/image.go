package geo

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"sync"

	"github.com/samirrijal/echoadmin/internal/core/domain"
)

// DecodeImageSize reads the natural pixel size of a PNG or JPEG file without decoding pixels.
func DecodeImageSize(path string) (domain.Size, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Size{}, fmt.Errorf("open map image: %w", err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return domain.Size{}, fmt.Errorf("decode map image %s: %w", path, err)
	}
	return domain.Size{Width: float64(cfg.Width), Height: float64(cfg.Height)}, nil
}

// ImageLoader resolves the map image natural size once, in the background.
type ImageLoader struct {
	once sync.Once
	load func() (domain.Size, error)
	done chan struct{}
	size domain.Size
	err  error
}

// NewImageLoader wraps load; it runs at most once, on the first Start or Wait.
func NewImageLoader(load func() (domain.Size, error)) *ImageLoader {
	return &ImageLoader{load: load, done: make(chan struct{})}
}

// StaticImage returns a loader that is already resolved to size.
func StaticImage(size domain.Size) *ImageLoader {
	l := NewImageLoader(func() (domain.Size, error) { return size, nil })
	l.Start()
	return l
}

// Start triggers loading without waiting.
func (l *ImageLoader) Start() {
	l.once.Do(func() {
		go func() {
			l.size, l.err = l.load()
			close(l.done)
		}()
	})
}

// Wait blocks until the size is known or ctx is done.
func (l *ImageLoader) Wait(ctx context.Context) (domain.Size, error) {
	l.Start()
	select {
	case <-l.done:
		return l.size, l.err
	case <-ctx.Done():
		return domain.Size{}, ctx.Err()
	}
}

// Bind feeds the loaded size into v when it becomes available.
func (l *ImageLoader) Bind(ctx context.Context, v *Viewport) {
	go func() {
		size, err := l.Wait(ctx)
		if err == nil {
			v.ImageLoaded(size)
		}
	}()
}
