package contracts

import "math"

// WeightTolerance is the allowed deviation of a weight sum from 1.0
const WeightTolerance = 0.01

// WeightPolicy is an immutable snapshot of the weighting and threshold
// configuration. The policy store hands out copies; holders must not share
// the weight map with writers.
type WeightPolicy struct {
	Weights       map[string]float64 `json:"weights"`
	BuyThreshold  float64            `json:"buy_threshold"`
	SellThreshold float64            `json:"sell_threshold"`
	Version       int64              `json:"version"`
}

// DefaultWeightPolicy returns the bootstrap policy
func DefaultWeightPolicy() WeightPolicy {
	return WeightPolicy{
		Weights: map[string]float64{
			AgentTechnical:   0.30,
			AgentFundamental: 0.25,
			AgentNews:        0.20,
			AgentExpert:      0.15,
			AgentRisk:        0.10,
		},
		BuyThreshold:  0.3,
		SellThreshold: -0.3,
		Version:       1,
	}
}

// WeightSum returns the sum of all weights
func (p WeightPolicy) WeightSum() float64 {
	sum := 0.0
	for _, w := range p.Weights {
		sum += w
	}
	return sum
}

// WeightsValid reports whether the weight sum is within tolerance of 1.0
func (p WeightPolicy) WeightsValid() bool {
	return math.Abs(p.WeightSum()-1.0) <= WeightTolerance
}

// Clone returns a deep copy of the policy
func (p WeightPolicy) Clone() WeightPolicy {
	weights := make(map[string]float64, len(p.Weights))
	for k, v := range p.Weights {
		weights[k] = v
	}
	return WeightPolicy{
		Weights:       weights,
		BuyThreshold:  p.BuyThreshold,
		SellThreshold: p.SellThreshold,
		Version:       p.Version,
	}
}
