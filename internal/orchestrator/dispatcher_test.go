package orchestrator

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/quorum/internal/agents"
	"github.com/wonny/quorum/internal/contracts"
	"github.com/wonny/quorum/pkg/config"
	"github.com/wonny/quorum/pkg/logger"
)

type callerFunc func(ctx context.Context, provider agents.Provider, message string) contracts.AgentResult

func (f callerFunc) Call(ctx context.Context, provider agents.Provider, message string) contracts.AgentResult {
	return f(ctx, provider, message)
}

func testRegistry() *agents.Registry {
	return agents.NewRegistry(config.AgentsConfig{
		NewsURL:        "http://localhost:8001/",
		FundamentalURL: "http://localhost:8002/",
		TechnicalURL:   "http://localhost:8003/",
		ExpertURL:      "http://localhost:8004/",
		RiskURL:        "http://localhost:8005/",
	}, nil)
}

func testRequest() contracts.AnalysisRequest {
	return contracts.NewAnalysisRequest("005930", contracts.MarketKR)
}

func quietLogger() *logger.Logger {
	return logger.NewWriter(io.Discard, "error")
}

func TestDispatchOneResultPerProvider(t *testing.T) {
	caller := callerFunc(func(ctx context.Context, p agents.Provider, msg string) contracts.AgentResult {
		return contracts.AgentResult{AgentID: p.ID, Status: contracts.StatusSuccess, Score: 0.5}
	})
	d := NewDispatcher(testRegistry(), caller, time.Second, quietLogger())

	results := d.Dispatch(context.Background(), testRequest())

	require.Len(t, results, 5)
	seen := make(map[string]int)
	for _, r := range results {
		seen[r.AgentID]++
		assert.Equal(t, contracts.StatusSuccess, r.Status)
	}
	for _, agentID := range contracts.AllAgents {
		assert.Equal(t, 1, seen[agentID], agentID)
	}
}

func TestDispatchPreservesRegistryOrder(t *testing.T) {
	caller := callerFunc(func(ctx context.Context, p agents.Provider, msg string) contracts.AgentResult {
		// Stagger completions in reverse order
		if p.ID == contracts.AgentNews {
			time.Sleep(50 * time.Millisecond)
		}
		return contracts.AgentResult{AgentID: p.ID, Status: contracts.StatusSuccess}
	})
	d := NewDispatcher(testRegistry(), caller, time.Second, quietLogger())

	results := d.Dispatch(context.Background(), testRequest())

	require.Len(t, results, 5)
	assert.Equal(t, contracts.AgentNews, results[0].AgentID)
	assert.Equal(t, contracts.AgentRisk, results[4].AgentID)
}

func TestDispatchSingleFailureDoesNotAbortOthers(t *testing.T) {
	caller := callerFunc(func(ctx context.Context, p agents.Provider, msg string) contracts.AgentResult {
		if p.ID == contracts.AgentNews {
			return contracts.FailedResult(p.ID, contracts.StatusFailure, "connection refused")
		}
		return contracts.AgentResult{AgentID: p.ID, Status: contracts.StatusSuccess, Score: 0.4}
	})
	d := NewDispatcher(testRegistry(), caller, time.Second, quietLogger())

	results := d.Dispatch(context.Background(), testRequest())

	succeeded := 0
	for _, r := range results {
		if r.OK() {
			succeeded++
		}
	}
	assert.Equal(t, 4, succeeded)
	assert.Equal(t, contracts.StatusFailure, results[0].Status)
}

func TestDispatchOverallDeadlineBarrier(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	caller := callerFunc(func(ctx context.Context, p agents.Provider, msg string) contracts.AgentResult {
		if p.ID == contracts.AgentExpert || p.ID == contracts.AgentRisk {
			// Ignore ctx entirely; dispatcher must not wait for these
			<-release
			return contracts.AgentResult{AgentID: p.ID, Status: contracts.StatusSuccess, Score: 1}
		}
		return contracts.AgentResult{AgentID: p.ID, Status: contracts.StatusSuccess, Score: 0.2}
	})
	d := NewDispatcher(testRegistry(), caller, 100*time.Millisecond, quietLogger())

	started := time.Now()
	results := d.Dispatch(context.Background(), testRequest())
	elapsed := time.Since(started)

	assert.Less(t, elapsed, 500*time.Millisecond, "deadline barrier must not wait for stuck agents")

	require.Len(t, results, 5)
	assert.Equal(t, contracts.StatusTimeout, results[3].Status)
	assert.Equal(t, contracts.StatusTimeout, results[4].Status)
	assert.Equal(t, 0.0, results[3].Score, "late result must be discarded, not merged")
	assert.Equal(t, contracts.StatusSuccess, results[0].Status)
}

func TestDispatchCancelledParentContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	caller := callerFunc(func(ctx context.Context, p agents.Provider, msg string) contracts.AgentResult {
		select {
		case <-ctx.Done():
			return contracts.FailedResult(p.ID, contracts.StatusTimeout, ctx.Err().Error())
		case <-time.After(time.Second):
			return contracts.AgentResult{AgentID: p.ID, Status: contracts.StatusSuccess}
		}
	})
	d := NewDispatcher(testRegistry(), caller, time.Second, quietLogger())

	results := d.Dispatch(ctx, testRequest())

	require.Len(t, results, 5)
	for _, r := range results {
		assert.False(t, r.OK())
	}
}
