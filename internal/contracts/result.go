package contracts

import (
	"encoding/json"
	"strings"
)

// AgentStatus classifies the outcome of a single agent call
type AgentStatus string

const (
	StatusSuccess AgentStatus = "success"
	StatusFailure AgentStatus = "failure"
	StatusTimeout AgentStatus = "timeout"
)

// Agent identifiers. The weight policy is keyed by these.
const (
	AgentNews        = "news"
	AgentFundamental = "fundamental"
	AgentTechnical   = "technical"
	AgentExpert      = "expert"
	AgentRisk        = "risk"
)

// AllAgents lists every configured analysis agent
var AllAgents = []string{
	AgentNews,
	AgentFundamental,
	AgentTechnical,
	AgentExpert,
	AgentRisk,
}

// SignalStrength is the enumerated signal emitted by the technical and
// expert agents
type SignalStrength string

const (
	SignalStrongBuy  SignalStrength = "strong_buy"
	SignalBuy        SignalStrength = "buy"
	SignalHold       SignalStrength = "hold"
	SignalSell       SignalStrength = "sell"
	SignalStrongSell SignalStrength = "strong_sell"
)

// NormalizeSignal lowercases and trims a raw signal string
func NormalizeSignal(s string) SignalStrength {
	return SignalStrength(strings.ToLower(strings.TrimSpace(s)))
}

// RiskLevel classifies the risk agent's volatility assessment
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// AgentResult is the settled outcome of one agent call.
// 생성 후 불변, dispatcher가 값으로 전달한다.
type AgentResult struct {
	AgentID    string          `json:"agent_id"`
	Status     AgentStatus     `json:"status"`
	Score      float64         `json:"score"`      // canonical [-1, 1]
	Confidence float64         `json:"confidence"` // [0, 1]
	Err        string          `json:"error,omitempty"`
	RawPayload json.RawMessage `json:"raw_payload,omitempty"`
	ElapsedMs  int64           `json:"elapsed_ms"`
}

// OK reports whether the agent answered successfully
func (r AgentResult) OK() bool {
	return r.Status == StatusSuccess
}

// FailedResult builds the neutral result recorded for a failed or timed-out
// agent: score 0, confidence 0, status as given
func FailedResult(agentID string, status AgentStatus, errMsg string) AgentResult {
	return AgentResult{
		AgentID:    agentID,
		Status:     status,
		Score:      0,
		Confidence: 0,
		Err:        errMsg,
	}
}

// ── Typed agent payloads ──

// NewsPayload is the news agent's analysis output
type NewsPayload struct {
	SentimentScore float64  `json:"sentiment_score"` // [-1, 1]
	MarketRegime   string   `json:"market_regime"`   // bull | bear | sideways
	KeyEvents      []string `json:"key_events"`
	NewsCount      int      `json:"news_count"`
	Confidence     float64  `json:"confidence"`
}

// FundamentalPayload is the fundamental agent's analysis output
type FundamentalPayload struct {
	ValuationScore  float64 `json:"valuation_score"` // [0, 100], 50 = fair value
	FinancialHealth string  `json:"financial_health"`
	GrowthMomentum  float64 `json:"growth_momentum"`
	PER             float64 `json:"per,omitempty"`
	PBR             float64 `json:"pbr,omitempty"`
	ROE             float64 `json:"roe,omitempty"`
	Confidence      float64 `json:"confidence"`
}

// TechnicalPayload is the technical agent's analysis output
type TechnicalPayload struct {
	TechnicalSignal SignalStrength `json:"technical_signal"`
	TrendDirection  string         `json:"trend_direction"` // up | down | neutral
	RSI             float64        `json:"rsi,omitempty"`
	MACDHistogram   float64        `json:"macd_histogram,omitempty"`
	Patterns        []string       `json:"patterns,omitempty"`
	Confidence      float64        `json:"confidence"`
}

// ExpertPayload is the expert consensus agent's analysis output
type ExpertPayload struct {
	ConsensusRating   SignalStrength `json:"consensus_rating"`
	TargetPriceAvg    float64        `json:"target_price_avg,omitempty"`
	InstitutionalFlow float64        `json:"institutional_flow"`
	AnalystCount      int            `json:"analyst_count"`
	Confidence        float64        `json:"confidence"`
}

// RiskPayload is the risk agent's position sizing output. It never enters
// the weighted sum; the risk adjuster consumes it directly.
type RiskPayload struct {
	PositionSize    int       `json:"position_size"`
	CurrentPrice    float64   `json:"current_price"`
	StopLossPrice   float64   `json:"stop_loss_price"`
	TakeProfitPrice float64   `json:"take_profit_price"`
	RiskLevel       RiskLevel `json:"risk_level"`
	MaxLossAmount   float64   `json:"max_loss_amount"`
	RiskRewardRatio float64   `json:"risk_reward_ratio"`
	Confidence      float64   `json:"confidence"`
}
