package scoring

import (
	"math"
	"testing"

	"github.com/wonny/quorum/internal/contracts"
)

func successResult(agent string, score float64) contracts.AgentResult {
	return contracts.AgentResult{
		AgentID:    agent,
		Status:     contracts.StatusSuccess,
		Score:      score,
		Confidence: 0.8,
	}
}

func specPolicy() contracts.WeightPolicy {
	return contracts.WeightPolicy{
		Weights: map[string]float64{
			contracts.AgentTechnical:   0.30,
			contracts.AgentFundamental: 0.25,
			contracts.AgentNews:        0.20,
			contracts.AgentExpert:      0.15,
			contracts.AgentRisk:        0.10,
		},
		BuyThreshold:  0.3,
		SellThreshold: -0.3,
		Version:       1,
	}
}

func TestAggregate_WeightedSum(t *testing.T) {
	agg := NewAggregator()

	results := []contracts.AgentResult{
		successResult(contracts.AgentTechnical, 0.8),
		successResult(contracts.AgentFundamental, 0.2),
		successResult(contracts.AgentNews, 0.1),
		successResult(contracts.AgentExpert, 0.3),
		successResult(contracts.AgentRisk, 0),
	}

	final, perAgent := agg.Aggregate(results, specPolicy())

	// 0.8*0.30 + 0.2*0.25 + 0.1*0.20 + 0.3*0.15 + 0*0.10 = 0.355
	if final != 0.355 {
		t.Errorf("final = %f, want 0.355", final)
	}
	if perAgent[contracts.AgentTechnical] != 0.8 {
		t.Errorf("technical score = %f, want 0.8", perAgent[contracts.AgentTechnical])
	}
	if len(perAgent) != 5 {
		t.Errorf("expected a score entry per weighted agent, got %d", len(perAgent))
	}
}

func TestAggregate_FailureContributesZeroWithoutRedistribution(t *testing.T) {
	agg := NewAggregator()

	healthy := []contracts.AgentResult{
		successResult(contracts.AgentTechnical, 0.8),
		successResult(contracts.AgentFundamental, 0.2),
		successResult(contracts.AgentNews, 0.1),
		successResult(contracts.AgentExpert, 0.3),
		successResult(contracts.AgentRisk, 0),
	}

	// Same dispatch, but the news agent timed out
	degraded := make([]contracts.AgentResult, len(healthy))
	copy(degraded, healthy)
	degraded[2] = contracts.FailedResult(contracts.AgentNews, contracts.StatusTimeout, "deadline exceeded")

	finalDegraded, perAgent := agg.Aggregate(degraded, specPolicy())

	// Equal to the healthy sum with the news term forced to 0:
	// 0.8*0.30 + 0.2*0.25 + 0 + 0.3*0.15 + 0 = 0.335
	if finalDegraded != 0.335 {
		t.Errorf("final = %f, want 0.335", finalDegraded)
	}
	if perAgent[contracts.AgentNews] != 0 {
		t.Errorf("failed agent score = %f, want 0", perAgent[contracts.AgentNews])
	}
}

func TestAggregate_MissingResultTreatedAsNeutral(t *testing.T) {
	agg := NewAggregator()

	// Only two of five agents settled with results at all
	results := []contracts.AgentResult{
		successResult(contracts.AgentTechnical, 1.0),
		successResult(contracts.AgentFundamental, 1.0),
	}

	final, perAgent := agg.Aggregate(results, specPolicy())

	if final != 0.55 { // 1.0*0.30 + 1.0*0.25
		t.Errorf("final = %f, want 0.55", final)
	}
	if len(perAgent) != 5 {
		t.Errorf("per-agent map must cover every weighted agent, got %d entries", len(perAgent))
	}
}

func TestAggregate_BoundedForAnyInput(t *testing.T) {
	agg := NewAggregator()

	// Scores at the extremes with a valid weight map: result stays in [-1, 1]
	results := []contracts.AgentResult{
		successResult(contracts.AgentTechnical, 1.0),
		successResult(contracts.AgentFundamental, 1.0),
		successResult(contracts.AgentNews, 1.0),
		successResult(contracts.AgentExpert, 1.0),
		successResult(contracts.AgentRisk, 1.0),
	}

	final, _ := agg.Aggregate(results, specPolicy())
	if final < -1 || final > 1 {
		t.Errorf("final = %f, out of [-1, 1]", final)
	}

	// Out-of-range raw scores are clamped before weighting
	wild := []contracts.AgentResult{
		successResult(contracts.AgentTechnical, 42),
		successResult(contracts.AgentFundamental, -42),
	}
	final, _ = agg.Aggregate(wild, specPolicy())
	if final < -1 || final > 1 {
		t.Errorf("final = %f, out of [-1, 1]", final)
	}
}

func TestAggregate_Deterministic(t *testing.T) {
	agg := NewAggregator()
	// All five agents, scores chosen so the floating-point sum depends on
	// the order of addition
	results := []contracts.AgentResult{
		successResult(contracts.AgentTechnical, 0.123456789),
		successResult(contracts.AgentFundamental, -0.987654321),
		successResult(contracts.AgentNews, 0.333333333),
		successResult(contracts.AgentExpert, -0.111111111),
		successResult(contracts.AgentRisk, 0.555555555),
	}
	policy := specPolicy()

	first, _ := agg.Aggregate(results, policy)
	for i := 0; i < 100; i++ {
		got, _ := agg.Aggregate(results, policy)
		if got != first {
			t.Fatalf("aggregation not deterministic: %f != %f", got, first)
		}
	}

	// Rounded to 4 decimals
	if math.Abs(first*10000-math.Round(first*10000)) > 1e-9 {
		t.Errorf("final %f not rounded to 4 decimals", first)
	}
}
