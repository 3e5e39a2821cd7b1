package orchestrator

import (
	"context"
	"time"

	"github.com/wonny/quorum/internal/agents"
	"github.com/wonny/quorum/internal/contracts"
	"github.com/wonny/quorum/pkg/logger"
)

// Caller sends one bounded analysis call to a provider
type Caller interface {
	Call(ctx context.Context, provider agents.Provider, message string) contracts.AgentResult
}

// Dispatcher fans an analysis request out to every provider concurrently
// and collects the results behind a hard overall deadline.
//
// Invariants:
//   - exactly one result per registered provider, always
//   - a provider that misses the deadline is recorded as a timeout
//   - results arriving after the deadline are discarded, never merged
type Dispatcher struct {
	registry *agents.Registry
	caller   Caller
	overall  time.Duration
	logger   *logger.Logger
}

// NewDispatcher creates a dispatcher with the given overall deadline
func NewDispatcher(registry *agents.Registry, caller Caller, overall time.Duration, log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		caller:   caller,
		overall:  overall,
		logger:   log.Named("dispatcher"),
	}
}

type indexedResult struct {
	idx    int
	result contracts.AgentResult
}

// Dispatch calls every provider at once and returns one result per provider
// in registry order. It never returns early on individual failures; a failed
// agent comes back as a failed result and the rest proceed.
func (d *Dispatcher) Dispatch(ctx context.Context, req contracts.AnalysisRequest) []contracts.AgentResult {
	providers := d.registry.Providers()
	started := time.Now()

	ctx, cancel := context.WithTimeout(ctx, d.overall)
	defer cancel()

	d.logger.WithFields(map[string]interface{}{
		"ticker": req.Ticker,
		"market": string(req.Market),
		"agents": len(providers),
	}).Info("Dispatch started")

	// Buffered so goroutines finishing after the deadline can still send
	// and exit; their results are simply never read.
	resultCh := make(chan indexedResult, len(providers))

	for i, provider := range providers {
		go func(idx int, p agents.Provider) {
			message := d.registry.Message(ctx, p.ID, req)
			resultCh <- indexedResult{idx: idx, result: d.caller.Call(ctx, p, message)}
		}(i, provider)
	}

	results := make([]contracts.AgentResult, len(providers))
	received := make([]bool, len(providers))
	pending := len(providers)

	for pending > 0 {
		select {
		case r := <-resultCh:
			results[r.idx] = r.result
			received[r.idx] = true
			pending--

		case <-ctx.Done():
			// Deadline barrier: whatever has not reported by now is a timeout
			for i := range providers {
				if !received[i] {
					results[i] = contracts.FailedResult(providers[i].ID, contracts.StatusTimeout,
						"overall dispatch deadline exceeded")
					results[i].ElapsedMs = time.Since(started).Milliseconds()
				}
			}
			pending = 0
		}
	}

	succeeded := 0
	for _, r := range results {
		if r.OK() {
			succeeded++
		}
	}

	d.logger.WithFields(map[string]interface{}{
		"ticker":    req.Ticker,
		"succeeded": succeeded,
		"total":     len(providers),
		"elapsed":   time.Since(started),
	}).Info("Dispatch completed")

	return results
}
