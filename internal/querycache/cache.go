package querycache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"
)

// Store is the shared query cache. Values are JSON documents; writes other
// than Set happen only through Invalidate after a successful mutation.
type Store interface {
	Get(ctx context.Context, key Key) ([]byte, bool, error)
	Set(ctx context.Context, key Key, value []byte, ttl time.Duration) error
	Invalidate(ctx context.Context, keys ...Key) error

	// Generation returns a counter that every Invalidate covering key bumps.
	Generation(ctx context.Context, key Key) (uint64, error)
	// SetIfGeneration stores value only while key's generation still equals
	// gen, so a read that raced an invalidation cannot write back stale data.
	SetIfGeneration(ctx context.Context, key Key, value []byte, ttl time.Duration, gen uint64) (bool, error)
}

// Loader reads through a Store and collapses concurrent loads of the same key.
type Loader struct {
	Store Store
	TTL   time.Duration

	group singleflight.Group
}

func NewLoader(store Store, ttl time.Duration) *Loader {
	return &Loader{Store: store, TTL: ttl}
}

// Load returns the cached value for key, or calls fetch and caches its result
// for the loader's TTL. Cache failures degrade to a direct fetch.
func Load[T any](ctx context.Context, l *Loader, key Key, fetch func(context.Context) (T, error)) (T, error) {
	return LoadTTL(ctx, l, key, l.TTL, fetch)
}

// LoadTTL is Load with an explicit TTL for key.
//
// The fetch is shared by every caller of the same key, so it runs detached
// from any one caller's cancellation and is bounded by the backend client's
// timeout instead. Each caller still returns as soon as its own ctx ends.
func LoadTTL[T any](ctx context.Context, l *Loader, key Key, ttl time.Duration, fetch func(context.Context) (T, error)) (T, error) {
	var zero T
	if b, ok, err := l.Store.Get(ctx, key); err == nil && ok {
		var v T
		if err := json.Unmarshal(b, &v); err == nil {
			return v, nil
		}
	}

	shared := context.WithoutCancel(ctx)
	ch := l.group.DoChan(string(key), func() (any, error) {
		gen, genErr := l.Store.Generation(shared, key)
		v, err := fetch(shared)
		if err != nil {
			return nil, err
		}
		if genErr == nil {
			if b, err := json.Marshal(v); err == nil {
				_, _ = l.Store.SetIfGeneration(shared, key, b, ttl, gen)
			}
		}
		return v, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		v, ok := res.Val.(T)
		if !ok {
			return zero, fmt.Errorf("querycache: unexpected value type %T for %s", res.Val, key)
		}
		return v, nil
	}
}
