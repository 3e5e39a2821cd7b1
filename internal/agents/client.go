package agents

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/wonny/quorum/internal/contracts"
	"github.com/wonny/quorum/internal/scoring"
	"github.com/wonny/quorum/pkg/config"
	"github.com/wonny/quorum/pkg/httputil"
	"github.com/wonny/quorum/pkg/logger"
)

// Client calls one analysis agent per invocation over A2A JSON-RPC.
//
// A call is a single attempt: no retries, one bounded deadline. Retrying a
// 90-second LLM call would blow the overall dispatch budget, so a failed
// provider is reported as failed and scored neutral downstream.
type Client struct {
	http     *httputil.Client
	breakers *BreakerSet
	limiters map[string]*rate.Limiter
	timeout  time.Duration
	logger   *logger.Logger
}

// NewClient creates an agent client for the given providers
func NewClient(cfg config.AgentsConfig, providers []Provider, log *logger.Logger) *Client {
	log = log.Named("agents")

	perSecond := cfg.CallsPerSecond
	if perSecond <= 0 {
		perSecond = 1
	}

	limiters := make(map[string]*rate.Limiter, len(providers))
	for _, p := range providers {
		limiters[p.ID] = rate.NewLimiter(rate.Limit(perSecond), perSecond)
	}

	return &Client{
		http:     httputil.NewWithTimeout(log, cfg.CallTimeout).DisableRetry(),
		breakers: NewBreakerSet(providers, log),
		limiters: limiters,
		timeout:  cfg.CallTimeout,
		logger:   log,
	}
}

// BreakerState reports the circuit state for one provider
func (c *Client) BreakerState(agentID string) string {
	return c.breakers.State(agentID)
}

// Call sends one analysis request to a provider and classifies the outcome.
// It always returns a result; failures come back as a failed AgentResult
// with a neutral score, never as a Go error.
func (c *Client) Call(ctx context.Context, provider Provider, message string) contracts.AgentResult {
	started := time.Now()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.logger.WithFields(map[string]interface{}{
		"agent": provider.ID,
		"url":   provider.URL,
	}).Debug("Agent call started")

	if limiter := c.limiters[provider.ID]; limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return c.failed(provider.ID, started, classifyStatus(err), fmt.Sprintf("rate limit wait: %v", err))
		}
	}

	raw, err := c.breakers.Execute(provider.ID, func() (interface{}, error) {
		return c.post(ctx, provider, message)
	})
	if err != nil {
		return c.failed(provider.ID, started, classifyStatus(err), err.Error())
	}

	payload := raw.(rawPayload)
	score, confidence, err := scoring.CanonicalScore(provider.ID, payload.body)
	if err != nil {
		return c.failed(provider.ID, started, contracts.StatusFailure, fmt.Sprintf("payload scoring: %v", err))
	}

	elapsed := time.Since(started)
	c.logger.WithFields(map[string]interface{}{
		"agent":      provider.ID,
		"score":      score,
		"confidence": confidence,
		"elapsed":    elapsed,
	}).Info("Agent call succeeded")

	return contracts.AgentResult{
		AgentID:    provider.ID,
		Status:     contracts.StatusSuccess,
		Score:      score,
		Confidence: confidence,
		RawPayload: payload.body,
		ElapsedMs:  elapsed.Milliseconds(),
	}
}

type rawPayload struct {
	body []byte
}

// post performs the JSON-RPC exchange and extracts the structured payload
func (c *Client) post(ctx context.Context, provider Provider, message string) (rawPayload, error) {
	resp, err := c.http.PostJSON(ctx, provider.URL, newEnvelope(message))
	if err != nil {
		return rawPayload{}, err
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return rawPayload{}, fmt.Errorf("agent returned HTTP %d", resp.StatusCode)
	}

	var rpcResp rpcResponse
	if err := httputil.ReadJSON(resp, &rpcResp); err != nil {
		return rawPayload{}, err
	}

	if rpcResp.Error != nil {
		return rawPayload{}, fmt.Errorf("agent rpc error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message)
	}

	text := responseText(rpcResp.Result)
	if text == "" {
		return rawPayload{}, errors.New("empty agent response")
	}

	body, ok := extractPayload(text)
	if !ok {
		return rawPayload{}, errors.New("no JSON payload in agent response")
	}

	return rawPayload{body: body}, nil
}

func (c *Client) failed(agentID string, started time.Time, status contracts.AgentStatus, errMsg string) contracts.AgentResult {
	elapsed := time.Since(started)

	c.logger.WithFields(map[string]interface{}{
		"agent":   agentID,
		"status":  string(status),
		"error":   errMsg,
		"elapsed": elapsed,
	}).Warn("Agent call failed")

	result := contracts.FailedResult(agentID, status, errMsg)
	result.ElapsedMs = elapsed.Milliseconds()
	return result
}

// classifyStatus maps a transport error onto the result status. Deadline
// expiry is reported distinctly so callers can tell a slow agent from a
// broken one.
func classifyStatus(err error) contracts.AgentStatus {
	if errors.Is(err, context.DeadlineExceeded) {
		return contracts.StatusTimeout
	}
	return contracts.StatusFailure
}
