package cache

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestViewsRoundTripAndInvalidate(t *testing.T) {
	redisSrv := miniredis.RunT(t)
	views := NewViews(redisSrv.Addr(), "", time.Minute)
	ctx := context.Background()

	if _, ok := views.GetCollection(ctx, "user-1"); ok {
		t.Fatal("expected cold cache miss")
	}

	views.SetCollection(ctx, "user-1", []byte(`[{"id":"p1"}]`))
	views.SetDetail(ctx, "user-1", "p1", []byte(`{"id":"p1"}`))

	got, ok := views.GetCollection(ctx, "user-1")
	if !ok || !bytes.Equal(got, []byte(`[{"id":"p1"}]`)) {
		t.Fatalf("collection round trip failed: ok=%v payload=%s", ok, got)
	}
	if _, ok := views.GetDetail(ctx, "user-1", "p1"); !ok {
		t.Fatal("detail round trip failed")
	}

	views.Invalidate(ctx, "user-1", "p1")

	if _, ok := views.GetCollection(ctx, "user-1"); ok {
		t.Fatal("collection should be gone after invalidate")
	}
	if _, ok := views.GetDetail(ctx, "user-1", "p1"); ok {
		t.Fatal("detail should be gone after invalidate")
	}
}

func TestViewsScopedPerUser(t *testing.T) {
	redisSrv := miniredis.RunT(t)
	views := NewViews(redisSrv.Addr(), "", time.Minute)
	ctx := context.Background()

	views.SetCollection(ctx, "user-1", []byte(`[]`))
	views.SetCollection(ctx, "user-2", []byte(`[]`))

	views.Invalidate(ctx, "user-1", "")

	if _, ok := views.GetCollection(ctx, "user-2"); !ok {
		t.Fatal("invalidating one user must not evict another")
	}
}

func TestViewsEntriesExpire(t *testing.T) {
	redisSrv := miniredis.RunT(t)
	views := NewViews(redisSrv.Addr(), "", time.Minute)
	ctx := context.Background()

	views.SetCollection(ctx, "user-1", []byte(`[]`))
	redisSrv.FastForward(2 * time.Minute)

	if _, ok := views.GetCollection(ctx, "user-1"); ok {
		t.Fatal("entries must expire with the TTL")
	}
}

func TestViewsNilSafe(t *testing.T) {
	var views *Views
	ctx := context.Background()

	views.SetCollection(ctx, "user-1", []byte(`[]`))
	views.Invalidate(ctx, "user-1", "p1")
	if _, ok := views.GetCollection(ctx, "user-1"); ok {
		t.Fatal("nil cache must behave as a permanent miss")
	}
}
