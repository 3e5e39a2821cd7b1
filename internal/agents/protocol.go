package agents

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

// A2A JSON-RPC 2.0 envelope. Every provider speaks this shape on its root
// endpoint; the analysis payload travels as a text part.

type rpcRequest struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      string    `json:"id"`
	Method  string    `json:"method"`
	Params  rpcParams `json:"params"`
}

type rpcParams struct {
	Message rpcMessage `json:"message"`
}

type rpcMessage struct {
	MessageID string    `json:"messageId"`
	Role      string    `json:"role"`
	Parts     []rpcPart `json:"parts"`
}

type rpcPart struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  *rpcResult      `json:"result"`
	Error   *rpcError       `json:"error"`
}

type rpcResult struct {
	Artifacts []rpcArtifact `json:"artifacts"`
	Status    rpcStatus     `json:"status"`
}

type rpcArtifact struct {
	Parts []rpcPart `json:"parts"`
}

type rpcStatus struct {
	State   string      `json:"state"`
	Message *rpcMessage `json:"message"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// newEnvelope builds a message/send request carrying the given text
func newEnvelope(text string) rpcRequest {
	reqID := uuid.NewString()[:8]
	return rpcRequest{
		JSONRPC: "2.0",
		ID:      reqID,
		Method:  "message/send",
		Params: rpcParams{
			Message: rpcMessage{
				MessageID: "m-" + reqID,
				Role:      "user",
				Parts:     []rpcPart{{Kind: "text", Text: text}},
			},
		},
	}
}

// responseText extracts the agent's reply text. Providers answer either with
// artifacts or with a terminal status message, so both paths are checked.
func responseText(result *rpcResult) string {
	if result == nil {
		return ""
	}

	if len(result.Artifacts) > 0 && len(result.Artifacts[0].Parts) > 0 {
		if text := result.Artifacts[0].Parts[0].Text; text != "" {
			return text
		}
	}

	if result.Status.Message != nil && len(result.Status.Message.Parts) > 0 {
		return result.Status.Message.Parts[0].Text
	}

	return ""
}

// extractPayload pulls the JSON object out of a reply text. LLM-backed agents
// often wrap the object in a markdown code fence or surround it with prose.
func extractPayload(text string) (json.RawMessage, bool) {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, false
	}

	raw := json.RawMessage(text[start : end+1])
	if !json.Valid(raw) {
		return nil, false
	}
	return raw, true
}
