package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/quorum/internal/contracts"
	"github.com/wonny/quorum/internal/policy"
	"github.com/wonny/quorum/pkg/config"
	"github.com/wonny/quorum/pkg/logger"
	"github.com/wonny/quorum/pkg/redis"
)

func testLogger() *logger.Logger {
	return logger.NewWriter(io.Discard, "error")
}

func agentsConfig(url string, timeout time.Duration) config.AgentsConfig {
	return config.AgentsConfig{
		TechnicalURL:   url,
		CallTimeout:    timeout,
		OverallTimeout: 2 * timeout,
		CallsPerSecond: 100,
	}
}

// rpcReply wraps an agent payload in the artifacts path of an A2A response
func rpcReply(t *testing.T, w http.ResponseWriter, text string) {
	t.Helper()
	resp := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      "test",
		"result": map[string]interface{}{
			"artifacts": []map[string]interface{}{
				{"parts": []map[string]string{{"kind": "text", "text": text}}},
			},
		},
	}
	require.NoError(t, json.NewEncoder(w).Encode(resp))
}

func newTestClient(url string, timeout time.Duration) (*Client, Provider) {
	provider := Provider{ID: contracts.AgentTechnical, URL: url}
	client := NewClient(agentsConfig(url, timeout), []Provider{provider}, testLogger())
	return client, provider
}

func TestCallSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "2.0", req.JSONRPC)
		assert.Equal(t, "message/send", req.Method)
		assert.Equal(t, "user", req.Params.Message.Role)
		require.Len(t, req.Params.Message.Parts, 1)
		assert.Contains(t, req.Params.Message.Parts[0].Text, "005930")

		rpcReply(t, w, `{"technical_signal": "strong_buy", "rsi": 28.5, "confidence": 0.9}`)
	}))
	defer server.Close()

	client, provider := newTestClient(server.URL, 5*time.Second)

	result := client.Call(context.Background(), provider, "다음 종목의 기술적 분석을 해주세요: 005930 (KR)")

	assert.Equal(t, contracts.StatusSuccess, result.Status)
	assert.True(t, result.OK())
	assert.Equal(t, 1.0, result.Score)
	assert.Equal(t, 0.9, result.Confidence)
	assert.NotEmpty(t, result.RawPayload)
	assert.GreaterOrEqual(t, result.ElapsedMs, int64(0))
}

func TestCallFencedPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rpcReply(t, w, "Here is my analysis:\n```json\n{\"technical_signal\": \"sell\", \"confidence\": 0.7}\n```")
	}))
	defer server.Close()

	client, provider := newTestClient(server.URL, 5*time.Second)

	result := client.Call(context.Background(), provider, "analyze")

	assert.Equal(t, contracts.StatusSuccess, result.Status)
	assert.Equal(t, -0.5, result.Score)
}

func TestCallStatusMessagePath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      "test",
			"result": map[string]interface{}{
				"status": map[string]interface{}{
					"state": "completed",
					"message": map[string]interface{}{
						"parts": []map[string]string{
							{"kind": "text", "text": `{"technical_signal": "buy", "confidence": 0.8}`},
						},
					},
				},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	client, provider := newTestClient(server.URL, 5*time.Second)

	result := client.Call(context.Background(), provider, "analyze")

	assert.Equal(t, contracts.StatusSuccess, result.Status)
	assert.Equal(t, 0.5, result.Score)
}

func TestCallRPCError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      "test",
			"error":   map[string]interface{}{"code": -32000, "message": "model overloaded"},
		})
	}))
	defer server.Close()

	client, provider := newTestClient(server.URL, 5*time.Second)

	result := client.Call(context.Background(), provider, "analyze")

	assert.Equal(t, contracts.StatusFailure, result.Status)
	assert.False(t, result.OK())
	assert.Equal(t, 0.0, result.Score)
	assert.Contains(t, result.Err, "model overloaded")
}

func TestCallTimeoutClassified(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer server.Close()

	client, provider := newTestClient(server.URL, 30*time.Millisecond)

	result := client.Call(context.Background(), provider, "analyze")

	assert.Equal(t, contracts.StatusTimeout, result.Status)
	assert.Equal(t, 0.0, result.Score)
}

func TestCallConnectionRefused(t *testing.T) {
	client, provider := newTestClient("http://127.0.0.1:1/", time.Second)

	result := client.Call(context.Background(), provider, "analyze")

	assert.Equal(t, contracts.StatusFailure, result.Status)
	assert.NotEmpty(t, result.Err)
}

func TestCallEmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      "test",
			"result":  map[string]interface{}{},
		})
	}))
	defer server.Close()

	client, provider := newTestClient(server.URL, time.Second)

	result := client.Call(context.Background(), provider, "analyze")

	assert.Equal(t, contracts.StatusFailure, result.Status)
	assert.Contains(t, result.Err, "empty agent response")
}

func TestCallNonJSONReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rpcReply(t, w, "I could not find any data for this ticker.")
	}))
	defer server.Close()

	client, provider := newTestClient(server.URL, time.Second)

	result := client.Call(context.Background(), provider, "analyze")

	assert.Equal(t, contracts.StatusFailure, result.Status)
	assert.Contains(t, result.Err, "no JSON payload")
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client, provider := newTestClient(server.URL, time.Second)

	for i := 0; i < 3; i++ {
		result := client.Call(context.Background(), provider, "analyze")
		assert.Equal(t, contracts.StatusFailure, result.Status)
	}
	assert.Equal(t, "open", client.BreakerState(provider.ID))

	// Open circuit short-circuits without touching the network
	before := calls.Load()
	result := client.Call(context.Background(), provider, "analyze")
	assert.Equal(t, contracts.StatusFailure, result.Status)
	assert.Equal(t, before, calls.Load())
}

func TestExtractPayload(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
		ok   bool
	}{
		{"bare object", `{"a": 1}`, `{"a": 1}`, true},
		{"fenced json", "```json\n{\"a\": 1}\n```", `{"a": 1}`, true},
		{"fenced no language", "```\n{\"a\": 1}\n```", `{"a": 1}`, true},
		{"surrounded by prose", "analysis follows {\"a\": 1} end", `{"a": 1}`, true},
		{"nested object", `{"a": {"b": 2}}`, `{"a": {"b": 2}}`, true},
		{"no object", "no data available", "", false},
		{"invalid json", "{not json}", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, ok := extractPayload(tt.text)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.JSONEq(t, tt.want, string(raw))
			}
		})
	}
}

func TestNewEnvelope(t *testing.T) {
	env := newEnvelope("analyze AAPL")

	assert.Equal(t, "2.0", env.JSONRPC)
	assert.Equal(t, "message/send", env.Method)
	assert.NotEmpty(t, env.ID)
	assert.Equal(t, "m-"+env.ID, env.Params.Message.MessageID)
	require.Len(t, env.Params.Message.Parts, 1)
	assert.Equal(t, "text", env.Params.Message.Parts[0].Kind)
	assert.Equal(t, "analyze AAPL", env.Params.Message.Parts[0].Text)

	// IDs must differ between envelopes
	assert.NotEqual(t, env.ID, newEnvelope("again").ID)
}

func TestRegistryProvidersAndMessages(t *testing.T) {
	cfg := config.AgentsConfig{
		NewsURL:        "http://localhost:8001/",
		FundamentalURL: "http://localhost:8002/",
		TechnicalURL:   "http://localhost:8003/",
		ExpertURL:      "http://localhost:8004/",
		RiskURL:        "http://localhost:8005/",
	}
	registry := NewRegistry(cfg, nil)

	providers := registry.Providers()
	require.Len(t, providers, 5)
	assert.Equal(t, contracts.AgentNews, providers[0].ID)
	assert.Equal(t, "http://localhost:8001/", providers[0].URL)
	assert.Equal(t, contracts.AgentRisk, providers[4].ID)

	req := contracts.NewAnalysisRequest("005930", contracts.MarketKR)
	req.CompanyName = "삼성전자"
	for _, p := range providers {
		msg := registry.Message(context.Background(), p.ID, req)
		assert.Contains(t, msg, "005930", fmt.Sprintf("agent %s", p.ID))
		assert.Contains(t, msg, "KR")
	}
}

func TestRegistryPromptOverride(t *testing.T) {
	ctx := context.Background()

	rdb, err := redis.New(&config.Config{})
	require.NoError(t, err)
	prompts := policy.NewPromptStore(rdb)

	registry := NewRegistry(config.AgentsConfig{NewsURL: "http://localhost:8001/"}, prompts)
	require.NoError(t, registry.SeedPrompts(ctx))

	req := contracts.NewAnalysisRequest("AAPL", contracts.MarketUS)

	// Seeded default
	msg := registry.Message(ctx, contracts.AgentNews, req)
	assert.Contains(t, msg, "AAPL (US)")

	// Operator override wins; seeding again must not clobber it
	require.NoError(t, prompts.Set(ctx, contracts.AgentNews, "Summarize headlines for {ticker} in {market}"))
	require.NoError(t, registry.SeedPrompts(ctx))

	msg = registry.Message(ctx, contracts.AgentNews, req)
	assert.Equal(t, "Summarize headlines for AAPL in US", msg)
}
