package searchengine

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewCache(rdb), mr
}

func TestCache_GetMiss(t *testing.T) {
	c, _ := newTestCache(t)
	_, found, err := c.Get(context.Background(), "dandora")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Fatal("expected a cache miss for an unset query")
	}
}

func TestCache_SetThenGet(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	payload := []byte(`{"hits":[]}`)

	if err := c.Set(ctx, "dandora", payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	raw, found, err := c.Get(ctx, "dandora")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found || string(raw) != string(payload) {
		t.Fatalf("got found=%v raw=%q", found, raw)
	}
	if ttl := mr.TTL(key("dandora")); ttl != cacheTTL {
		t.Errorf("expected a %v TTL, got %v", cacheTTL, ttl)
	}
}
