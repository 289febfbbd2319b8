package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestTryLockIsExclusive(t *testing.T) {
	_, client := newClient(t)
	ctx := context.Background()

	first := NewDistributedLock(client, "k", "a", time.Minute)
	second := NewDistributedLock(client, "k", "b", time.Minute)

	ok, err := first.TryLock(ctx)
	if err != nil || !ok {
		t.Fatalf("first TryLock ok=%v err=%v", ok, err)
	}
	ok, err = second.TryLock(ctx)
	if err != nil || ok {
		t.Fatalf("second TryLock should fail, ok=%v err=%v", ok, err)
	}
}

func TestUnlockOnlyReleasesOwnLock(t *testing.T) {
	mr, client := newClient(t)
	ctx := context.Background()

	owner := NewDistributedLock(client, "k", "owner", time.Minute)
	other := NewDistributedLock(client, "k", "other", time.Minute)

	if ok, _ := owner.TryLock(ctx); !ok {
		t.Fatal("owner should acquire")
	}
	if err := other.Unlock(ctx); err != nil {
		t.Fatalf("Unlock err=%v", err)
	}
	if got, _ := mr.Get("k"); got != "owner" {
		t.Fatalf("lock value=%q want=owner", got)
	}
	if err := owner.Unlock(ctx); err != nil {
		t.Fatalf("Unlock err=%v", err)
	}
	if mr.Exists("k") {
		t.Fatal("lock should be released")
	}
}

func TestRequestLockExpiresAfterWindow(t *testing.T) {
	mr, client := newClient(t)
	ctx := context.Background()

	l := NewRequestLock(client, "req-1", 10*time.Second)
	if ok, _ := l.TryLock(ctx); !ok {
		t.Fatal("first submission should acquire")
	}
	if !mr.Exists("movement:lock:request:req-1") {
		t.Fatalf("keys=%v", mr.Keys())
	}
	if ok, _ := NewRequestLock(client, "req-1", 10*time.Second).TryLock(ctx); ok {
		t.Fatal("duplicate submission inside window should be rejected")
	}

	mr.FastForward(11 * time.Second)
	if ok, _ := NewRequestLock(client, "req-1", 10*time.Second).TryLock(ctx); !ok {
		t.Fatal("submission after window should acquire")
	}
}
