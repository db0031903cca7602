package store

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestRedisSessionStoreRoundTrip(t *testing.T) {
	redisSrv := miniredis.RunT(t)
	sessions := NewRedisSessionStore(redisSrv.Addr(), "", time.Hour)

	token, err := sessions.NewSession("user-1")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	uid, ok, err := sessions.GetUserIDByToken(token)
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if !ok || uid != "user-1" {
		t.Fatalf("expected user-1, got %q ok=%v", uid, ok)
	}

	if err := sessions.DeleteSession(token); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	if _, ok, _ := sessions.GetUserIDByToken(token); ok {
		t.Fatal("token should be gone after delete")
	}
}

func TestRedisSessionStoreExpiry(t *testing.T) {
	redisSrv := miniredis.RunT(t)
	sessions := NewRedisSessionStore(redisSrv.Addr(), "", time.Minute)

	token, err := sessions.NewSession("user-1")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	redisSrv.FastForward(2 * time.Minute)

	if _, ok, _ := sessions.GetUserIDByToken(token); ok {
		t.Fatal("token should expire with the redis TTL")
	}
}

func TestJWTSessionStoreRoundTrip(t *testing.T) {
	sessions := NewJWTSessionStore("test-secret", time.Hour)

	token, err := sessions.NewSession("user-7")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	uid, ok, err := sessions.GetUserIDByToken(token)
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if !ok || uid != "user-7" {
		t.Fatalf("expected user-7, got %q ok=%v", uid, ok)
	}
}

func TestJWTSessionStoreRejectsTamperedToken(t *testing.T) {
	sessions := NewJWTSessionStore("test-secret", time.Hour)
	other := NewJWTSessionStore("other-secret", time.Hour)

	token, err := other.NewSession("user-7")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if _, ok, err := sessions.GetUserIDByToken(token); ok || err == nil {
		t.Fatal("token signed with a different secret must be rejected")
	}
}
