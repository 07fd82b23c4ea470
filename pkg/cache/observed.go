package cache

import (
	"context"
	"strings"
	"time"

	"github.com/matzehuels/safetree/pkg/observability"
)

// Observed wraps c so that every lookup and store is reported to the
// registered observability.CacheHooks.
func Observed(c Cache) Cache {
	return observed{c}
}

type observed struct {
	Cache
}

func (o observed) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, hit, err := o.Cache.Get(ctx, key)
	if err == nil {
		if hit {
			observability.Cache().OnCacheHit(ctx, keyType(key))
		} else {
			observability.Cache().OnCacheMiss(ctx, keyType(key))
		}
	}
	return data, hit, err
}

func (o observed) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := o.Cache.Set(ctx, key, data, ttl)
	if err == nil {
		observability.Cache().OnCacheSet(ctx, keyType(key), len(data))
	}
	return err
}

// keyType returns the namespace segment of a key, the one right before the
// hash, so scoped prefixes do not change it.
func keyType(key string) string {
	parts := strings.Split(key, ":")
	if len(parts) < 2 {
		return "unknown"
	}
	return parts[len(parts)-2]
}
