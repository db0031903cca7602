// Package cache holds a Redis-backed cache for rendered plant views. Watering
// status depends on the render date, so entries carry a short TTL in addition
// to explicit invalidation on every mutation.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	collectionKeyFmt = "plantes:view:plants:%s"
	detailKeyFmt     = "plantes:view:plant:%s:%s"
)

// Views caches rendered JSON payloads for the plant collection and detail
// views. All methods are best-effort: cache errors degrade to misses. A nil
// *Views disables caching entirely.
type Views struct {
	client *redis.Client
	ttl    time.Duration
}

// NewViews builds a Redis-backed view cache.
func NewViews(addr, password string, ttl time.Duration) *Views {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Views{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
		ttl: ttl,
	}
}

// GetCollection returns the cached collection view for a user.
func (v *Views) GetCollection(ctx context.Context, userID string) ([]byte, bool) {
	return v.get(ctx, fmt.Sprintf(collectionKeyFmt, userID))
}

// SetCollection stores the rendered collection view.
func (v *Views) SetCollection(ctx context.Context, userID string, payload []byte) {
	v.set(ctx, fmt.Sprintf(collectionKeyFmt, userID), payload)
}

// GetDetail returns the cached detail view for one plant.
func (v *Views) GetDetail(ctx context.Context, userID, plantID string) ([]byte, bool) {
	return v.get(ctx, fmt.Sprintf(detailKeyFmt, userID, plantID))
}

// SetDetail stores the rendered detail view.
func (v *Views) SetDetail(ctx context.Context, userID, plantID string, payload []byte) {
	v.set(ctx, fmt.Sprintf(detailKeyFmt, userID, plantID), payload)
}

// Invalidate drops the user's collection view and, when plantID is set, the
// plant's detail view. Called after every successful mutation.
func (v *Views) Invalidate(ctx context.Context, userID, plantID string) {
	if v == nil {
		return
	}
	keys := []string{fmt.Sprintf(collectionKeyFmt, userID)}
	if plantID != "" {
		keys = append(keys, fmt.Sprintf(detailKeyFmt, userID, plantID))
	}
	_ = v.client.Del(ctx, keys...).Err()
}

func (v *Views) get(ctx context.Context, key string) ([]byte, bool) {
	if v == nil {
		return nil, false
	}
	val, err := v.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return val, true
}

func (v *Views) set(ctx context.Context, key string, payload []byte) {
	if v == nil || len(payload) == 0 {
		return
	}
	_ = v.client.Set(ctx, key, payload, v.ttl).Err()
}
