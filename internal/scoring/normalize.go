package scoring

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/wonny/quorum/internal/contracts"
)

// signalScores maps the enumerated signal strengths onto the canonical
// [-1, 1] scale used for weighted aggregation.
var signalScores = map[contracts.SignalStrength]float64{
	contracts.SignalStrongBuy:  1.0,
	contracts.SignalBuy:        0.5,
	contracts.SignalHold:       0.0,
	contracts.SignalSell:       -0.5,
	contracts.SignalStrongSell: -1.0,
}

// SignalScore converts a signal strength to its canonical score.
// 알 수 없는 시그널은 중립(0)
func SignalScore(sig contracts.SignalStrength) float64 {
	if score, ok := signalScores[sig]; ok {
		return score
	}
	return 0.0
}

// ValuationScore maps a 0–100 valuation linearly onto [-1, 1], centered at
// 50 (fair value).
func ValuationScore(v float64) float64 {
	return Clamp((v - 50.0) / 50.0)
}

// Clamp bounds a score to the canonical [-1, 1] range
func Clamp(score float64) float64 {
	if math.IsNaN(score) {
		return 0
	}
	return math.Max(-1.0, math.Min(1.0, score))
}

// ClampConfidence bounds a confidence value to [0, 1]
func ClampConfidence(c float64) float64 {
	if math.IsNaN(c) {
		return 0
	}
	return math.Max(0.0, math.Min(1.0, c))
}

// CanonicalScore normalizes one agent's raw JSON payload to the canonical
// scale and extracts its confidence. Each agent type has a fixed mapping:
//
//	news        → sentiment_score, already [-1, 1]
//	fundamental → valuation_score 0–100, linear, centered at 50
//	technical   → technical_signal enum via lookup table
//	expert      → consensus_rating enum via lookup table
//	risk        → always 0; its payload drives position sizing instead
func CanonicalScore(agentID string, payload json.RawMessage) (score, confidence float64, err error) {
	switch agentID {
	case contracts.AgentNews:
		var p contracts.NewsPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return 0, 0, fmt.Errorf("news payload: %w", err)
		}
		return Clamp(p.SentimentScore), ClampConfidence(p.Confidence), nil

	case contracts.AgentFundamental:
		var p contracts.FundamentalPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return 0, 0, fmt.Errorf("fundamental payload: %w", err)
		}
		return ValuationScore(p.ValuationScore), ClampConfidence(p.Confidence), nil

	case contracts.AgentTechnical:
		var p contracts.TechnicalPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return 0, 0, fmt.Errorf("technical payload: %w", err)
		}
		return SignalScore(contracts.NormalizeSignal(string(p.TechnicalSignal))), ClampConfidence(p.Confidence), nil

	case contracts.AgentExpert:
		var p contracts.ExpertPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return 0, 0, fmt.Errorf("expert payload: %w", err)
		}
		return SignalScore(contracts.NormalizeSignal(string(p.ConsensusRating))), ClampConfidence(p.Confidence), nil

	case contracts.AgentRisk:
		var p contracts.RiskPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return 0, 0, fmt.Errorf("risk payload: %w", err)
		}
		// Risk output sizes the position; it carries no directional view
		return 0, ClampConfidence(p.Confidence), nil

	default:
		return 0, 0, fmt.Errorf("unknown agent: %s", agentID)
	}
}
