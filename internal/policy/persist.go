package policy

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/wonny/quorum/internal/contracts"
	"github.com/wonny/quorum/pkg/redis"
)

const policyKey = "policy:current"

// RedisPersister stores the policy as JSON in Redis so it survives restarts
// and can be inspected out of band.
type RedisPersister struct {
	client *redis.Client
}

// NewRedisPersister creates a Redis-backed policy persister
func NewRedisPersister(client *redis.Client) *RedisPersister {
	return &RedisPersister{client: client}
}

// Save writes the policy through to Redis
func (p *RedisPersister) Save(ctx context.Context, policy contracts.WeightPolicy) error {
	data, err := json.Marshal(policy)
	if err != nil {
		return fmt.Errorf("marshal policy: %w", err)
	}
	return p.client.SetString(ctx, policyKey, string(data))
}

// Load returns the persisted policy, or nil when none exists
func (p *RedisPersister) Load(ctx context.Context) (*contracts.WeightPolicy, error) {
	raw, found, err := p.client.GetString(ctx, policyKey)
	if err != nil {
		return nil, fmt.Errorf("read policy: %w", err)
	}
	if !found {
		return nil, nil
	}

	var policy contracts.WeightPolicy
	if err := json.Unmarshal([]byte(raw), &policy); err != nil {
		return nil, fmt.Errorf("unmarshal policy: %w", err)
	}

	// A corrupted or hand-edited policy must not poison the store
	if !policy.WeightsValid() {
		return nil, fmt.Errorf("persisted weights sum to %.4f", policy.WeightSum())
	}
	if policy.SellThreshold >= policy.BuyThreshold {
		return nil, fmt.Errorf("persisted thresholds invalid: sell %.2f >= buy %.2f",
			policy.SellThreshold, policy.BuyThreshold)
	}

	return &policy, nil
}
