package redis

import (
	"context"
	"testing"

	"github.com/wonny/quorum/pkg/config"
)

func disabledClient(t *testing.T) *Client {
	t.Helper()
	cfg := &config.Config{
		Redis: config.RedisConfig{Enabled: false},
	}
	client, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return client
}

func TestNewClient_Disabled(t *testing.T) {
	client := disabledClient(t)

	if client.Enabled() {
		t.Error("Expected client to be disabled")
	}
}

func TestClient_DisabledOps(t *testing.T) {
	client := disabledClient(t)
	ctx := context.Background()

	// Disabled client must degrade to no-ops, not errors
	if err := client.SetString(ctx, "k", "v"); err != nil {
		t.Errorf("SetString() error = %v", err)
	}

	_, found, err := client.GetString(ctx, "k")
	if err != nil {
		t.Errorf("GetString() error = %v", err)
	}
	if found {
		t.Error("Disabled client must never report a hit")
	}

	seeded, err := client.SetNX(ctx, "k", "v")
	if err != nil {
		t.Errorf("SetNX() error = %v", err)
	}
	if seeded {
		t.Error("Disabled client must not report a seed")
	}
}

func TestRateLimiter_Disabled(t *testing.T) {
	client := disabledClient(t)
	limiter := NewRateLimiter(client, "test")

	// When Redis is disabled, all requests should be allowed
	allowed, remaining, err := limiter.Allow(context.Background(), NaverRateLimit)
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if !allowed {
		t.Error("Expected request to be allowed when Redis disabled")
	}
	if remaining != NaverRateLimit.Limit {
		t.Errorf("Expected remaining = %d, got %d", NaverRateLimit.Limit, remaining)
	}
}

func TestCache_Disabled(t *testing.T) {
	client := disabledClient(t)
	cache := NewCache(client, "test")
	ctx := context.Background()

	var result string
	found, err := cache.Get(ctx, "key", &result)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Error("Expected cache miss when Redis disabled")
	}

	if err := cache.Set(ctx, "key", "value", TTLShort); err != nil {
		t.Errorf("Set() should be a no-op, got error %v", err)
	}
}
