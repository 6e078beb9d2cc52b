package usecases

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/samirrijal/echoadmin/internal/core/ports"
	"github.com/samirrijal/echoadmin/internal/pkg/metrics"
)

// readThrough returns the cached value for key or calls load and caches its result for ttl seconds.
// Cache failures are never surfaced; the upstream value wins.
func readThrough[T any](ctx context.Context, cache ports.CacheService, key string, ttl int, load func(context.Context) (T, error)) (T, error) {
	op := cacheOperation(key)
	if cache != nil {
		if data, err := cache.Get(ctx, key); err == nil && len(data) > 0 {
			var v T
			if err := json.Unmarshal(data, &v); err == nil {
				metrics.CacheHits.WithLabelValues(op).Inc()
				return v, nil
			}
		}
		metrics.CacheMisses.WithLabelValues(op).Inc()
	}

	v, err := load(ctx)
	if err != nil {
		return v, err
	}

	if cache != nil && ttl > 0 {
		if data, err := json.Marshal(v); err == nil {
			_ = cache.Set(ctx, key, data, ttl)
		}
	}
	return v, nil
}

func invalidate(ctx context.Context, cache ports.CacheService, keys ...string) {
	if cache == nil {
		return
	}
	for _, k := range keys {
		_ = cache.Delete(ctx, k)
	}
}

// cacheOperation labels a key by its first segment so metrics stay low-cardinality.
func cacheOperation(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return key
}
