// Package cache puts a small in-memory cache in front of reference
// resolution. Bulk scans hit the same template parts and patterns over and
// over; resolving each once per TTL window keeps the store off the hot path.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/maypok86/otter"

	"github.com/mvp-joe/blockpulse/internal/usage"
)

const (
	defaultCapacity = 1024
	defaultTTL      = time.Minute
)

// resolution caches both hits and misses; a miss is as expensive to recompute
// as a hit.
type resolution struct {
	content string
	ok      bool
}

// Resolver decorates a usage.Resolver with an otter cache. Resolution errors
// are never cached.
type Resolver struct {
	next  usage.Resolver
	cache otter.Cache[string, resolution]
}

// NewResolver wraps next with a cache of the given capacity and TTL.
// Non-positive values fall back to defaults.
func NewResolver(next usage.Resolver, capacity int, ttl time.Duration) (*Resolver, error) {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	c, err := otter.MustBuilder[string, resolution](capacity).
		WithTTL(ttl).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build resolution cache: %w", err)
	}
	return &Resolver{next: next, cache: c}, nil
}

func (r *Resolver) ResolveTemplateFragment(ctx context.Context, theme, slug string) (string, bool, error) {
	key := fmt.Sprintf("t:%s:%s", theme, slug)
	if res, hit := r.cache.Get(key); hit {
		return res.content, res.ok, nil
	}
	content, ok, err := r.next.ResolveTemplateFragment(ctx, theme, slug)
	if err != nil {
		return "", false, err
	}
	r.cache.Set(key, resolution{content: content, ok: ok})
	return content, ok, nil
}

func (r *Resolver) ResolvePattern(ctx context.Context, ref int64) (string, bool, error) {
	key := fmt.Sprintf("p:%d", ref)
	if res, hit := r.cache.Get(key); hit {
		return res.content, res.ok, nil
	}
	content, ok, err := r.next.ResolvePattern(ctx, ref)
	if err != nil {
		return "", false, err
	}
	r.cache.Set(key, resolution{content: content, ok: ok})
	return content, ok, nil
}

// Close releases the cache's background resources.
func (r *Resolver) Close() {
	r.cache.Close()
}
