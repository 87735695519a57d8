package usecases

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/samirrijal/travelplan/internal/core/ports"
	"github.com/samirrijal/travelplan/internal/pkg/metrics"
)

// cached is a read-through helper: it serves key from cache when present and
// otherwise calls load and stores the JSON encoding for ttl seconds.
func cached[T any](ctx context.Context, cache ports.CacheService, key string, ttl int, load func() (T, error)) (T, error) {
	op := cacheOperation(key)
	if cache != nil {
		if data, err := cache.Get(ctx, key); err == nil {
			var v T
			if err := json.Unmarshal(data, &v); err == nil {
				metrics.CacheHits.WithLabelValues(op).Inc()
				return v, nil
			}
		}
		metrics.CacheMisses.WithLabelValues(op).Inc()
	}

	v, err := load()
	if err != nil {
		return v, err
	}

	if cache != nil {
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

// cacheOperation turns "offers:pair:1:2" into "offers:pair".
func cacheOperation(key string) string {
	parts := strings.SplitN(key, ":", 3)
	if len(parts) < 2 {
		return key
	}
	return parts[0] + ":" + parts[1]
}
