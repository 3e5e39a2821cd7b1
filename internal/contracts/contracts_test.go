package contracts

import "testing"

func TestParseMarket(t *testing.T) {
	tests := []struct {
		in      string
		want    Market
		wantErr bool
	}{
		{"KR", MarketKR, false},
		{"kr", MarketKR, false},
		{" us ", MarketUS, false},
		{"JP", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseMarket(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMarket(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMarket(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDefaultWeightPolicy(t *testing.T) {
	p := DefaultWeightPolicy()

	if !p.WeightsValid() {
		t.Errorf("default weights sum to %f, want 1.0", p.WeightSum())
	}
	if p.SellThreshold >= p.BuyThreshold {
		t.Errorf("sell threshold %f must be below buy threshold %f", p.SellThreshold, p.BuyThreshold)
	}
	if len(p.Weights) != len(AllAgents) {
		t.Errorf("expected one weight per agent, got %d weights for %d agents", len(p.Weights), len(AllAgents))
	}
	for _, agent := range AllAgents {
		if _, ok := p.Weights[agent]; !ok {
			t.Errorf("missing default weight for agent %s", agent)
		}
	}
}

func TestWeightPolicy_Clone(t *testing.T) {
	p := DefaultWeightPolicy()
	c := p.Clone()

	c.Weights[AgentNews] = 0.99
	if p.Weights[AgentNews] == 0.99 {
		t.Error("Clone() must not share the weight map with the original")
	}
}

func TestFailedResult(t *testing.T) {
	r := FailedResult(AgentNews, StatusTimeout, "deadline exceeded")

	if r.Score != 0 || r.Confidence != 0 {
		t.Errorf("failed result must be neutral, got score=%f confidence=%f", r.Score, r.Confidence)
	}
	if r.Status != StatusTimeout {
		t.Errorf("status = %s, want timeout", r.Status)
	}
	if r.OK() {
		t.Error("failed result must not report OK")
	}
}

func TestDecision_Actionable(t *testing.T) {
	if (Decision{Action: ActionHold}).Actionable() {
		t.Error("HOLD must not be actionable")
	}
	if !(Decision{Action: ActionBuy}).Actionable() {
		t.Error("BUY must be actionable")
	}
	if !(Decision{Action: ActionSell}).Actionable() {
		t.Error("SELL must be actionable")
	}
}
