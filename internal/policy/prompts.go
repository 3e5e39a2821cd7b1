package policy

import (
	"context"
	"fmt"
	"sync"

	"github.com/wonny/quorum/pkg/redis"
)

// PromptStore holds per-agent instruction prompts. Prompts are opaque
// pass-through strings: this core never interprets them, the agents read
// them at their own startup.
type PromptStore struct {
	client *redis.Client

	mu    sync.RWMutex
	local map[string]string // fallback when Redis is disabled
}

// NewPromptStore creates a prompt store
func NewPromptStore(client *redis.Client) *PromptStore {
	return &PromptStore{
		client: client,
		local:  make(map[string]string),
	}
}

func promptKey(agentID string) string {
	return fmt.Sprintf("prompt:%s", agentID)
}

// Get returns the stored prompt for an agent, or ("", false) when none is set
func (s *PromptStore) Get(ctx context.Context, agentID string) (string, bool, error) {
	if s.client.Enabled() {
		return s.client.GetString(ctx, promptKey(agentID))
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	prompt, ok := s.local[agentID]
	return prompt, ok, nil
}

// Set stores a prompt for an agent
func (s *PromptStore) Set(ctx context.Context, agentID, prompt string) error {
	if s.client.Enabled() {
		return s.client.SetString(ctx, promptKey(agentID), prompt)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.local[agentID] = prompt
	return nil
}

// Seed stores a default prompt only when the agent has none yet (SET NX)
func (s *PromptStore) Seed(ctx context.Context, agentID, prompt string) error {
	if s.client.Enabled() {
		_, err := s.client.SetNX(ctx, promptKey(agentID), prompt)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.local[agentID]; !ok {
		s.local[agentID] = prompt
	}
	return nil
}
