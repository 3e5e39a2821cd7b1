package agents

import (
	"time"

	"github.com/sony/gobreaker"

	"github.com/wonny/quorum/pkg/logger"
)

// BreakerSet holds one circuit breaker per provider. A provider that keeps
// failing is short-circuited so a dead agent costs nothing instead of a full
// call timeout on every analysis.
type BreakerSet struct {
	breakers map[string]*gobreaker.CircuitBreaker
}

// NewBreakerSet creates breakers for the given providers
func NewBreakerSet(providers []Provider, log *logger.Logger) *BreakerSet {
	set := &BreakerSet{
		breakers: make(map[string]*gobreaker.CircuitBreaker, len(providers)),
	}

	for _, p := range providers {
		set.breakers[p.ID] = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        p.ID,
			MaxRequests: 1,                // single probe while half-open
			Interval:    60 * time.Second, // count window while closed
			Timeout:     30 * time.Second, // open → half-open
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.WithFields(map[string]interface{}{
					"agent": name,
					"from":  from.String(),
					"to":    to.String(),
				}).Warn("Agent circuit breaker state changed")
			},
		})
	}

	return set
}

// Execute runs fn through the provider's breaker. Unknown providers run
// without breaker protection.
func (s *BreakerSet) Execute(agentID string, fn func() (interface{}, error)) (interface{}, error) {
	breaker, ok := s.breakers[agentID]
	if !ok {
		return fn()
	}
	return breaker.Execute(fn)
}

// State reports the breaker state for one provider
func (s *BreakerSet) State(agentID string) string {
	breaker, ok := s.breakers[agentID]
	if !ok {
		return gobreaker.StateClosed.String()
	}
	return breaker.State().String()
}
