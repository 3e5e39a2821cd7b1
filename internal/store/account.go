package store

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/quorum/internal/risk"
)

// AccountSource derives the guardrail account snapshot from persisted
// decisions and positions. The balance is configured, not tracked; order
// execution sits outside this system.
type AccountSource struct {
	repo    *Repository
	balance float64
}

// NewAccountSource creates an account source with the configured balance
func NewAccountSource(repo *Repository, balance float64) *AccountSource {
	return &AccountSource{repo: repo, balance: balance}
}

// Account returns the current account snapshot
func (s *AccountSource) Account(ctx context.Context) (risk.AccountState, error) {
	trades, err := s.repo.TradesToday(ctx, time.Now())
	if err != nil {
		return risk.AccountState{}, fmt.Errorf("failed to load trade count: %w", err)
	}

	positions, err := s.repo.OpenPositions(ctx)
	if err != nil {
		return risk.AccountState{}, fmt.Errorf("failed to load position count: %w", err)
	}

	return risk.AccountState{
		Balance:       s.balance,
		TradesToday:   trades,
		OpenPositions: positions,
	}, nil
}
