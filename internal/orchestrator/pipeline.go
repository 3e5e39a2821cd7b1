package orchestrator

import (
	"context"
	"time"

	"github.com/wonny/quorum/internal/contracts"
	"github.com/wonny/quorum/internal/decision"
	"github.com/wonny/quorum/internal/policy"
	"github.com/wonny/quorum/internal/risk"
	"github.com/wonny/quorum/internal/scoring"
	"github.com/wonny/quorum/pkg/logger"
)

// AccountSource supplies the account snapshot for guardrail checks
type AccountSource interface {
	Account(ctx context.Context) (risk.AccountState, error)
}

// DecisionSaver persists produced decisions
type DecisionSaver interface {
	Save(ctx context.Context, d *contracts.Decision) error
}

// Pipeline runs a full analysis: dispatch to all agents, aggregate under the
// current policy snapshot, decide, then risk-adjust.
// ⭐ SSOT: 매매 판단 플로우는 여기서만 조립
type Pipeline struct {
	dispatcher *Dispatcher
	policies   *policy.Store
	aggregator *scoring.Aggregator
	adjuster   *risk.Adjuster
	accounts   AccountSource
	decisions  DecisionSaver
	logger     *logger.Logger
}

// NewPipeline wires the analysis stages. accounts and decisions may be nil;
// the pipeline then runs with an empty account snapshot and skips persistence.
func NewPipeline(
	dispatcher *Dispatcher,
	policies *policy.Store,
	aggregator *scoring.Aggregator,
	adjuster *risk.Adjuster,
	accounts AccountSource,
	decisions DecisionSaver,
	log *logger.Logger,
) *Pipeline {
	return &Pipeline{
		dispatcher: dispatcher,
		policies:   policies,
		aggregator: aggregator,
		adjuster:   adjuster,
		accounts:   accounts,
		decisions:  decisions,
		logger:     log.Named("pipeline"),
	}
}

// Analyze produces one decision for one request. The policy is snapshotted
// once up front so a concurrent policy update cannot mix weights and
// thresholds from different versions within a single run.
func (p *Pipeline) Analyze(ctx context.Context, req contracts.AnalysisRequest) (*contracts.Decision, error) {
	snapshot := p.policies.Snapshot()

	results := p.dispatcher.Dispatch(ctx, req)

	finalScore, agentScores := p.aggregator.Aggregate(results, snapshot)
	action := decision.Decide(finalScore, snapshot)

	adj := p.adjuster.Adjust(action, riskResult(results), p.account(ctx))

	reasoning := decision.Reasoning(finalScore, adj.Action, agentScores)
	if adj.Note != "" {
		reasoning += ". " + adj.Note
	}

	d := &contracts.Decision{
		Ticker:      req.Ticker,
		Market:      req.Market,
		Action:      adj.Action,
		FinalScore:  finalScore,
		Quantity:    adj.Quantity,
		TargetPrice: adj.Price,
		StopLoss:    adj.StopLoss,
		TakeProfit:  adj.TakeProfit,
		Reasoning:   reasoning,
		AgentScores: agentScores,
		PolicyVer:   snapshot.Version,
		ProducedAt:  time.Now(),
	}

	p.logger.WithFields(map[string]interface{}{
		"ticker":      d.Ticker,
		"action":      string(d.Action),
		"final_score": d.FinalScore,
		"quantity":    d.Quantity,
		"policy_ver":  d.PolicyVer,
	}).Info("Decision produced")

	if p.decisions != nil {
		// Persistence is best-effort; the caller still gets the decision
		if err := p.decisions.Save(ctx, d); err != nil {
			p.logger.WithError(err).Error("Failed to persist decision")
		}
	}

	return d, nil
}

func (p *Pipeline) account(ctx context.Context) risk.AccountState {
	if p.accounts == nil {
		return risk.AccountState{}
	}

	account, err := p.accounts.Account(ctx)
	if err != nil {
		// Unknown account state is treated as empty; balance falls back to
		// the configured default inside the adjuster
		p.logger.WithError(err).Warn("Failed to load account state")
		return risk.AccountState{}
	}
	return account
}

// riskResult picks the risk agent's result out of a dispatch batch
func riskResult(results []contracts.AgentResult) contracts.AgentResult {
	for _, r := range results {
		if r.AgentID == contracts.AgentRisk {
			return r
		}
	}
	return contracts.FailedResult(contracts.AgentRisk, contracts.StatusFailure, "risk agent not dispatched")
}
