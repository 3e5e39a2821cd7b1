package risk

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/wonny/quorum/internal/contracts"
	"github.com/wonny/quorum/pkg/config"
	"github.com/wonny/quorum/pkg/logger"
)

// AccountState is the account snapshot the guardrails are evaluated against
type AccountState struct {
	Balance       float64 `json:"balance"`
	OpenPositions int     `json:"open_positions"`
	TradesToday   int     `json:"trades_today"`
}

// Violation records one breached guardrail
type Violation struct {
	Rule    string  `json:"rule"`
	Limit   float64 `json:"limit"`
	Actual  float64 `json:"actual"`
	Message string  `json:"message"`
}

// Guardrail rule identifiers
const (
	RuleSingleStockCap = "SINGLE_STOCK_CAP"
	RuleTradeRiskCap   = "TRADE_RISK_CAP"
	RuleRewardRisk     = "REWARD_RISK_MIN"
	RuleDailyTrades    = "DAILY_TRADE_CAP"
	RuleOpenPositions  = "OPEN_POSITION_CAP"
)

// Adjustment is the sized, guardrail-checked outcome for one decision
type Adjustment struct {
	Action     contracts.Action
	Quantity   int
	Price      float64
	StopLoss   float64
	TakeProfit float64
	Violations []Violation
	Note       string // appended to the decision reasoning
}

// Adjuster applies risk-agent sizing and the hard trading guardrails.
// ⭐ SSOT: 주문 전 리스크 체크는 여기서만
//
// Guardrails are gates, never knobs: a violation downgrades the action to
// HOLD with quantity 0, never a silently smaller trade.
type Adjuster struct {
	limits config.LimitsConfig
	logger *logger.Logger
}

// NewAdjuster creates a risk adjuster
func NewAdjuster(limits config.LimitsConfig, log *logger.Logger) *Adjuster {
	return &Adjuster{
		limits: limits,
		logger: log.Named("risk"),
	}
}

// Adjust applies sizing and guardrails in order:
//
//  1. HOLD → quantity 0, no guardrails evaluated
//  2. quantity = risk agent position size; halved (floor 1) on high risk
//  3. guardrails; any violation downgrades to HOLD / quantity 0
func (a *Adjuster) Adjust(action contracts.Action, riskResult contracts.AgentResult, account AccountState) Adjustment {
	if action == contracts.ActionHold {
		return Adjustment{Action: contracts.ActionHold, Quantity: 0}
	}

	payload, ok := a.riskPayload(riskResult)
	if !ok {
		// No sizing information: keep the signal but order nothing
		return Adjustment{
			Action:   action,
			Quantity: 0,
			Note:     "risk sizing unavailable, quantity set to 0",
		}
	}

	quantity := payload.PositionSize
	if quantity < 0 {
		quantity = 0
	}
	if payload.RiskLevel == contracts.RiskHigh && quantity > 0 {
		// 고위험: 수량 절반 (최소 1주)
		quantity = max(1, quantity/2)
	}

	adj := Adjustment{
		Action:     action,
		Quantity:   quantity,
		Price:      payload.CurrentPrice,
		StopLoss:   payload.StopLossPrice,
		TakeProfit: payload.TakeProfitPrice,
	}

	if quantity > 0 {
		adj.Violations = a.checkGuardrails(action, quantity, payload, account)
	}

	if len(adj.Violations) > 0 {
		adj.appendNote(a.blockMessage(adj.Violations))
		a.logger.WithFields(map[string]interface{}{
			"action":     string(action),
			"quantity":   quantity,
			"violations": len(adj.Violations),
		}).Warn("Guardrail violation, downgrading to HOLD")

		adj.Action = contracts.ActionHold
		adj.Quantity = 0
	}

	return adj
}

func (adj *Adjustment) appendNote(note string) {
	if adj.Note == "" {
		adj.Note = note
		return
	}
	adj.Note += "; " + note
}

// riskPayload extracts the risk agent's sizing payload when usable
func (a *Adjuster) riskPayload(result contracts.AgentResult) (contracts.RiskPayload, bool) {
	var payload contracts.RiskPayload

	if !result.OK() || len(result.RawPayload) == 0 {
		return payload, false
	}
	if err := json.Unmarshal(result.RawPayload, &payload); err != nil {
		a.logger.WithError(err).Warn("Unparseable risk payload")
		return payload, false
	}
	return payload, true
}

// checkGuardrails evaluates every hard gate after sizing
func (a *Adjuster) checkGuardrails(action contracts.Action, quantity int, payload contracts.RiskPayload, account AccountState) []Violation {
	var violations []Violation

	balance := account.Balance
	if balance <= 0 {
		balance = a.limits.AccountBalance
	}

	// 1. Single-position value ≤ cap of account balance
	positionValue := float64(quantity) * payload.CurrentPrice
	maxValue := a.limits.MaxSingleStockPct * balance
	if positionValue > maxValue {
		violations = append(violations, Violation{
			Rule:   RuleSingleStockCap,
			Limit:  maxValue,
			Actual: positionValue,
			Message: fmt.Sprintf("position value %.0f exceeds %.0f%% of balance (%.0f)",
				positionValue, a.limits.MaxSingleStockPct*100, maxValue),
		})
	}

	// 2. Per-trade risk ≤ cap of account balance. An unset stop means the
	// risk is unbounded, which fails the gate.
	riskPerShare := stopDistance(payload)
	maxRisk := a.limits.MaxRiskPerTradePct * balance
	if riskPerShare <= 0 {
		violations = append(violations, Violation{
			Rule:    RuleTradeRiskCap,
			Limit:   maxRisk,
			Message: "stop loss not set, trade risk unbounded",
		})
	} else if tradeRisk := float64(quantity) * riskPerShare; tradeRisk > maxRisk {
		violations = append(violations, Violation{
			Rule:   RuleTradeRiskCap,
			Limit:  maxRisk,
			Actual: tradeRisk,
			Message: fmt.Sprintf("trade risk %.0f exceeds %.1f%% of balance (%.0f)",
				tradeRisk, a.limits.MaxRiskPerTradePct*100, maxRisk),
		})
	}

	// 3. Reward:risk ratio ≥ minimum
	if ratio := rewardRisk(payload); ratio < a.limits.MinRewardRisk {
		violations = append(violations, Violation{
			Rule:   RuleRewardRisk,
			Limit:  a.limits.MinRewardRisk,
			Actual: ratio,
			Message: fmt.Sprintf("reward:risk %.2f below minimum %.1f",
				ratio, a.limits.MinRewardRisk),
		})
	}

	// 4. Daily trade count
	if account.TradesToday >= a.limits.MaxDailyTrades {
		violations = append(violations, Violation{
			Rule:   RuleDailyTrades,
			Limit:  float64(a.limits.MaxDailyTrades),
			Actual: float64(account.TradesToday),
			Message: fmt.Sprintf("daily trade cap reached (%d/%d)",
				account.TradesToday, a.limits.MaxDailyTrades),
		})
	}

	// 5. Concurrent open positions, gating new exposure only
	if action == contracts.ActionBuy && account.OpenPositions >= a.limits.MaxOpenPositions {
		violations = append(violations, Violation{
			Rule:   RuleOpenPositions,
			Limit:  float64(a.limits.MaxOpenPositions),
			Actual: float64(account.OpenPositions),
			Message: fmt.Sprintf("open position cap reached (%d/%d)",
				account.OpenPositions, a.limits.MaxOpenPositions),
		})
	}

	return violations
}

// stopDistance is the per-share loss if the stop triggers. The risk agent
// quotes the stop as ATR distance from the current price and does not know
// the final trade direction, so only the magnitude matters.
func stopDistance(payload contracts.RiskPayload) float64 {
	if payload.CurrentPrice <= 0 || payload.StopLossPrice <= 0 {
		return 0
	}
	return math.Abs(payload.CurrentPrice - payload.StopLossPrice)
}

// rewardRisk computes the reward:risk ratio, preferring the agent's own
// figure when it supplied one
func rewardRisk(payload contracts.RiskPayload) float64 {
	if payload.RiskRewardRatio > 0 {
		return payload.RiskRewardRatio
	}

	risk := stopDistance(payload)
	if risk <= 0 {
		return 0
	}

	if payload.TakeProfitPrice <= 0 {
		return 0
	}
	reward := math.Abs(payload.TakeProfitPrice - payload.CurrentPrice)
	if reward <= 0 {
		return 0
	}

	return reward / risk
}

// blockMessage summarizes violations for the decision reasoning
func (a *Adjuster) blockMessage(violations []Violation) string {
	msgs := make([]string, 0, len(violations))
	for _, v := range violations {
		msgs = append(msgs, v.Message)
	}
	return fmt.Sprintf("guardrail violation, downgraded to HOLD: %s", strings.Join(msgs, "; "))
}
