package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wonny/quorum/internal/contracts"
	"github.com/wonny/quorum/internal/orchestrator"
	"github.com/wonny/quorum/internal/resolver"
	"github.com/wonny/quorum/pkg/logger"
)

// BreakerReporter exposes per-agent circuit state
type BreakerReporter interface {
	BreakerState(agentID string) string
}

// AnalysisHandler handles analysis API endpoints
// ⭐ SSOT: 분석 API 핸들러는 이 구조체에서만
type AnalysisHandler struct {
	pipeline *orchestrator.Pipeline
	resolver *resolver.Resolver
	breakers BreakerReporter
	logger   *logger.Logger
}

// NewAnalysisHandler creates an analysis handler
func NewAnalysisHandler(
	pipeline *orchestrator.Pipeline,
	res *resolver.Resolver,
	breakers BreakerReporter,
	log *logger.Logger,
) *AnalysisHandler {
	return &AnalysisHandler{
		pipeline: pipeline,
		resolver: res,
		breakers: breakers,
		logger:   log,
	}
}

// AnalyzeRequest is a free-form analysis request
type AnalyzeRequest struct {
	Query  string `json:"query"`            // "삼성전자", "TSLA", "005930", ...
	Ticker string `json:"ticker,omitempty"` // explicit ticker, skips resolution
	Market string `json:"market,omitempty"` // required with Ticker
}

// Analyze runs the full analysis pipeline for one stock.
// POST /api/analyze
//
// This is a synchronous call; it holds the connection for up to the overall
// dispatch deadline.
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	analysisReq, err := h.toAnalysisRequest(ctx, req)
	if err != nil {
		var resErr *resolver.ResolutionError
		if errors.As(err, &resErr) {
			respondError(w, http.StatusNotFound, resErr.Error())
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	decision, err := h.pipeline.Analyze(ctx, analysisReq)
	if err != nil {
		h.logger.WithError(err).Error("Analysis failed")
		respondError(w, http.StatusInternalServerError, "Analysis failed")
		return
	}

	respondJSON(w, http.StatusOK, decision)
}

// Resolve maps a query to a ticker without running analysis.
// POST /api/resolve
func (h *AnalysisHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	resolved, err := h.resolver.Resolve(r.Context(), req.Query)
	if err != nil {
		var resErr *resolver.ResolutionError
		if errors.As(err, &resErr) {
			respondError(w, http.StatusNotFound, resErr.Error())
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"ticker":       resolved.Ticker,
		"market":       resolved.Market,
		"company_name": resolved.CompanyName,
	})
}

// Agents reports the configured agents and their circuit breaker states.
// GET /api/agents
func (h *AnalysisHandler) Agents(w http.ResponseWriter, r *http.Request) {
	agents := make([]map[string]string, 0, len(contracts.AllAgents))
	for _, agentID := range contracts.AllAgents {
		state := "unknown"
		if h.breakers != nil {
			state = h.breakers.BreakerState(agentID)
		}
		agents = append(agents, map[string]string{
			"agent":   agentID,
			"breaker": state,
		})
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"agents": agents})
}

func (h *AnalysisHandler) decodeRequest(w http.ResponseWriter, r *http.Request) (AnalyzeRequest, bool) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return req, false
	}
	if req.Query == "" && req.Ticker == "" {
		respondError(w, http.StatusBadRequest, "query or ticker is required")
		return req, false
	}
	return req, true
}

func (h *AnalysisHandler) toAnalysisRequest(ctx context.Context, req AnalyzeRequest) (contracts.AnalysisRequest, error) {
	if req.Ticker != "" {
		market, err := contracts.ParseMarket(req.Market)
		if err != nil {
			return contracts.AnalysisRequest{}, err
		}
		return contracts.NewAnalysisRequest(req.Ticker, market), nil
	}
	return h.resolver.Resolve(ctx, req.Query)
}
