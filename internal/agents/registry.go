package agents

import (
	"context"
	"strings"

	"github.com/wonny/quorum/internal/contracts"
	"github.com/wonny/quorum/internal/policy"
	"github.com/wonny/quorum/pkg/config"
)

// Provider is one analysis agent endpoint
type Provider struct {
	ID  string
	URL string
}

// Default per-agent request templates. {ticker} and {market} are replaced
// before dispatch; the prompt store can override any of these at runtime.
var defaultTemplates = map[string]string{
	contracts.AgentNews:        "다음 종목의 뉴스와 시황을 분석해주세요: {ticker} ({market})",
	contracts.AgentFundamental: "다음 종목의 재무제표를 분석해주세요: {ticker} ({market})",
	contracts.AgentTechnical:   "다음 종목의 기술적 분석을 해주세요: {ticker} ({market})",
	contracts.AgentExpert:      "다음 종목의 전문가 신호를 수집해주세요: {ticker} ({market})",
	contracts.AgentRisk:        "현재 계좌 상태를 고려하여 리스크를 평가해주세요: {ticker} ({market})",
}

// Registry maps agent IDs to endpoints and builds their request messages
type Registry struct {
	providers []Provider
	prompts   *policy.PromptStore
}

// NewRegistry wires the five analysis agents from config. prompts may be nil,
// in which case the built-in templates are always used.
func NewRegistry(cfg config.AgentsConfig, prompts *policy.PromptStore) *Registry {
	return &Registry{
		providers: []Provider{
			{ID: contracts.AgentNews, URL: cfg.NewsURL},
			{ID: contracts.AgentFundamental, URL: cfg.FundamentalURL},
			{ID: contracts.AgentTechnical, URL: cfg.TechnicalURL},
			{ID: contracts.AgentExpert, URL: cfg.ExpertURL},
			{ID: contracts.AgentRisk, URL: cfg.RiskURL},
		},
		prompts: prompts,
	}
}

// Providers returns the registered agents in dispatch order
func (r *Registry) Providers() []Provider {
	return r.providers
}

// SeedPrompts writes the default templates into the prompt store for any
// agent that has no stored prompt yet
func (r *Registry) SeedPrompts(ctx context.Context) error {
	if r.prompts == nil {
		return nil
	}
	for agentID, template := range defaultTemplates {
		if err := r.prompts.Seed(ctx, agentID, template); err != nil {
			return err
		}
	}
	return nil
}

// Message renders the request text for one agent and request
func (r *Registry) Message(ctx context.Context, agentID string, req contracts.AnalysisRequest) string {
	template := defaultTemplates[agentID]

	if r.prompts != nil {
		if stored, ok, err := r.prompts.Get(ctx, agentID); err == nil && ok && stored != "" {
			template = stored
		}
	}

	return strings.NewReplacer(
		"{ticker}", req.Ticker,
		"{market}", string(req.Market),
		"{company}", req.CompanyName,
	).Replace(template)
}
