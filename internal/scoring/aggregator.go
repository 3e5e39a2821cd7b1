package scoring

import (
	"math"
	"sort"

	"github.com/wonny/quorum/internal/contracts"
)

// Aggregator computes the weighted final score from settled agent results
// against a policy snapshot. It is stateless and safe for concurrent use.
type Aggregator struct{}

// NewAggregator creates a score aggregator
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Aggregate computes finalScore = Σ score(agent) × weight(agent) over every
// agent named in the policy.
//
// Failed and timed-out agents contribute score 0 while their weight stays in
// the sum: missing analysis pulls the result toward neutral instead of
// being redistributed to the remaining agents.
// 분석 실패는 보수적 편향으로 반영
func (a *Aggregator) Aggregate(results []contracts.AgentResult, policy contracts.WeightPolicy) (float64, map[string]float64) {
	byAgent := make(map[string]contracts.AgentResult, len(results))
	for _, r := range results {
		byAgent[r.AgentID] = r
	}

	// Fixed summation order: map iteration would reorder the float adds
	// between runs and the same inputs must always produce the same score
	agents := make([]string, 0, len(policy.Weights))
	for agent := range policy.Weights {
		agents = append(agents, agent)
	}
	sort.Strings(agents)

	perAgent := make(map[string]float64, len(policy.Weights))
	final := 0.0

	for _, agent := range agents {
		score := 0.0
		if r, ok := byAgent[agent]; ok && r.OK() {
			score = Clamp(r.Score)
		}
		perAgent[agent] = score
		final += score * policy.Weights[agent]
	}

	return round4(Clamp(final)), perAgent
}

// round4 rounds to 4 decimal places for stable, comparable output
func round4(f float64) float64 {
	return math.Round(f*10000) / 10000
}
