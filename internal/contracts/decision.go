package contracts

import "time"

// Action is the final trade action
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// Decision is the final output of the analysis pipeline.
// 요청당 하나, 파생 후 불변
type Decision struct {
	Ticker      string             `json:"ticker"`
	Market      Market             `json:"market"`
	Action      Action             `json:"action"`
	FinalScore  float64            `json:"final_score"`
	Quantity    int                `json:"quantity"`
	TargetPrice float64            `json:"target_price"`
	StopLoss    float64            `json:"stop_loss"`
	TakeProfit  float64            `json:"take_profit"`
	Reasoning   string             `json:"reasoning"`
	AgentScores map[string]float64 `json:"agent_scores"`
	PolicyVer   int64              `json:"policy_version"`
	ProducedAt  time.Time          `json:"produced_at"`
}

// Actionable reports whether the decision calls for an order
func (d Decision) Actionable() bool {
	return d.Action == ActionBuy || d.Action == ActionSell
}
