package scoring

import (
	"encoding/json"
	"testing"

	"github.com/wonny/quorum/internal/contracts"
)

func TestSignalScore(t *testing.T) {
	tests := []struct {
		sig  contracts.SignalStrength
		want float64
	}{
		{contracts.SignalStrongBuy, 1.0},
		{contracts.SignalBuy, 0.5},
		{contracts.SignalHold, 0.0},
		{contracts.SignalSell, -0.5},
		{contracts.SignalStrongSell, -1.0},
		{contracts.SignalStrength("garbage"), 0.0},
	}

	for _, tt := range tests {
		if got := SignalScore(tt.sig); got != tt.want {
			t.Errorf("SignalScore(%s) = %f, want %f", tt.sig, got, tt.want)
		}
	}
}

func TestValuationScore(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{50, 0},
		{100, 1},
		{0, -1},
		{75, 0.5},
		{25, -0.5},
		{150, 1},  // clamped
		{-10, -1}, // clamped
	}

	for _, tt := range tests {
		if got := ValuationScore(tt.in); got != tt.want {
			t.Errorf("ValuationScore(%f) = %f, want %f", tt.in, got, tt.want)
		}
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(1.7); got != 1.0 {
		t.Errorf("Clamp(1.7) = %f, want 1.0", got)
	}
	if got := Clamp(-3); got != -1.0 {
		t.Errorf("Clamp(-3) = %f, want -1.0", got)
	}
	if got := Clamp(0.42); got != 0.42 {
		t.Errorf("Clamp(0.42) = %f, want 0.42", got)
	}
}

func TestCanonicalScore(t *testing.T) {
	tests := []struct {
		name       string
		agentID    string
		payload    string
		wantScore  float64
		wantConf   float64
		wantErr    bool
	}{
		{
			name:      "news sentiment passes through",
			agentID:   contracts.AgentNews,
			payload:   `{"sentiment_score": 0.6, "confidence": 0.8}`,
			wantScore: 0.6,
			wantConf:  0.8,
		},
		{
			name:      "news sentiment clamped",
			agentID:   contracts.AgentNews,
			payload:   `{"sentiment_score": 2.5, "confidence": 0.8}`,
			wantScore: 1.0,
			wantConf:  0.8,
		},
		{
			name:      "fundamental valuation mapped linearly",
			agentID:   contracts.AgentFundamental,
			payload:   `{"valuation_score": 75, "confidence": 0.7}`,
			wantScore: 0.5,
			wantConf:  0.7,
		},
		{
			name:      "technical signal via lookup",
			agentID:   contracts.AgentTechnical,
			payload:   `{"technical_signal": "strong_buy", "confidence": 0.9}`,
			wantScore: 1.0,
			wantConf:  0.9,
		},
		{
			name:      "technical signal case insensitive",
			agentID:   contracts.AgentTechnical,
			payload:   `{"technical_signal": " SELL ", "confidence": 0.9}`,
			wantScore: -0.5,
			wantConf:  0.9,
		},
		{
			name:      "expert consensus via lookup",
			agentID:   contracts.AgentExpert,
			payload:   `{"consensus_rating": "buy", "analyst_count": 12, "confidence": 0.65}`,
			wantScore: 0.5,
			wantConf:  0.65,
		},
		{
			name:      "risk agent is directionally neutral",
			agentID:   contracts.AgentRisk,
			payload:   `{"position_size": 10, "risk_level": "high", "confidence": 0.8}`,
			wantScore: 0,
			wantConf:  0.8,
		},
		{
			name:    "malformed payload",
			agentID: contracts.AgentNews,
			payload: `{"sentiment_score": "very positive"}`,
			wantErr: true,
		},
		{
			name:    "unknown agent",
			agentID: "astrology",
			payload: `{}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, conf, err := CanonicalScore(tt.agentID, json.RawMessage(tt.payload))
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if score != tt.wantScore {
				t.Errorf("score = %f, want %f", score, tt.wantScore)
			}
			if conf != tt.wantConf {
				t.Errorf("confidence = %f, want %f", conf, tt.wantConf)
			}
		})
	}
}
