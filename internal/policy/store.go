package policy

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/wonny/quorum/internal/contracts"
	"github.com/wonny/quorum/pkg/logger"
)

// ValidationError 검증 실패 (업데이트 거부)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Store holds the live weight/threshold policy.
// ⭐ SSOT: 가중치/임계값 정책은 여기서만 소유
//
// Readers take lock-free snapshots via an atomic pointer; writers are
// serialized behind a mutex and publish a fully validated replacement with a
// single pointer swap. A snapshot taken at request start stays valid for the
// whole request even if an update lands mid-flight.
type Store struct {
	current atomic.Pointer[contracts.WeightPolicy]
	mu      sync.Mutex // serializes writers only
	persist Persister  // optional write-through persistence
	logger  *logger.Logger
}

// Persister saves and restores the policy across restarts
type Persister interface {
	Save(ctx context.Context, p contracts.WeightPolicy) error
	Load(ctx context.Context) (*contracts.WeightPolicy, error)
}

// NewStore creates a store seeded with the default policy. If a persister is
// given and holds a previously saved policy, that policy wins.
func NewStore(log *logger.Logger, persist Persister) *Store {
	s := &Store{
		persist: persist,
		logger:  log.Named("policy"),
	}

	boot := contracts.DefaultWeightPolicy()
	if persist != nil {
		if saved, err := persist.Load(context.Background()); err != nil {
			s.logger.WithError(err).Warn("Failed to load persisted policy, using defaults")
		} else if saved != nil {
			boot = *saved
		} else if err := persist.Save(context.Background(), boot); err != nil {
			// Seed defaults so an operator can inspect/edit them out of band
			s.logger.WithError(err).Warn("Failed to seed default policy")
		}
	}

	s.current.Store(&boot)
	return s
}

// Snapshot returns an immutable copy of the current policy. Non-blocking:
// never contends with writers.
func (s *Store) Snapshot() contracts.WeightPolicy {
	return s.current.Load().Clone()
}

// UpdateWeights validates and atomically replaces the weight map.
// 부분 적용 없음: 검증 실패 시 기존 정책 유지
func (s *Store) UpdateWeights(ctx context.Context, weights map[string]float64) error {
	if err := validateWeights(weights); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current.Load().Clone()
	next.Weights = make(map[string]float64, len(weights))
	for k, v := range weights {
		next.Weights[k] = v
	}
	next.Version++

	s.publish(ctx, next)

	s.logger.WithFields(map[string]interface{}{
		"version": next.Version,
		"weights": next.Weights,
	}).Info("Weight policy updated")

	return nil
}

// UpdateThresholds validates and atomically replaces the buy/sell thresholds
func (s *Store) UpdateThresholds(ctx context.Context, buy, sell float64) error {
	if err := validateThresholds(buy, sell); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current.Load().Clone()
	next.BuyThreshold = buy
	next.SellThreshold = sell
	next.Version++

	s.publish(ctx, next)

	s.logger.WithFields(map[string]interface{}{
		"version": next.Version,
		"buy":     buy,
		"sell":    sell,
	}).Info("Thresholds updated")

	return nil
}

// publish swaps in the new policy and writes it through. Caller holds mu.
func (s *Store) publish(ctx context.Context, next contracts.WeightPolicy) {
	s.current.Store(&next)

	if s.persist != nil {
		if err := s.persist.Save(ctx, next); err != nil {
			// The in-memory policy is authoritative; persistence is best effort
			s.logger.WithError(err).Warn("Failed to persist policy")
		}
	}
}

func validateWeights(weights map[string]float64) error {
	if len(weights) == 0 {
		return ValidationError{"weights", "must not be empty"}
	}

	sum := 0.0
	for agent, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return ValidationError{"weights." + agent, "must be a finite number"}
		}
		if w < 0 {
			return ValidationError{"weights." + agent, "must be >= 0"}
		}
		sum += w
	}

	if math.Abs(sum-1.0) > contracts.WeightTolerance {
		return ValidationError{
			Field:   "weights",
			Message: fmt.Sprintf("must sum to 1.0 (±%.2f), got %.4f", contracts.WeightTolerance, sum),
		}
	}

	return nil
}

func validateThresholds(buy, sell float64) error {
	if math.IsNaN(buy) || math.IsNaN(sell) {
		return ValidationError{"thresholds", "must be finite numbers"}
	}
	if buy < -1 || buy > 1 {
		return ValidationError{"thresholds.buy", "must be in [-1, 1]"}
	}
	if sell < -1 || sell > 1 {
		return ValidationError{"thresholds.sell", "must be in [-1, 1]"}
	}
	if sell >= buy {
		return ValidationError{
			Field:   "thresholds",
			Message: fmt.Sprintf("sell (%.2f) must be below buy (%.2f)", sell, buy),
		}
	}
	return nil
}
