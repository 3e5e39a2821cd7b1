package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/quorum/internal/policy"
	"github.com/wonny/quorum/pkg/logger"
)

// PolicyHandler handles weight policy and prompt API endpoints
type PolicyHandler struct {
	store   *policy.Store
	prompts *policy.PromptStore
	logger  *logger.Logger
}

// NewPolicyHandler creates a policy handler
func NewPolicyHandler(store *policy.Store, prompts *policy.PromptStore, log *logger.Logger) *PolicyHandler {
	return &PolicyHandler{
		store:   store,
		prompts: prompts,
		logger:  log,
	}
}

// Get returns the current policy snapshot.
// GET /api/policy
func (h *PolicyHandler) Get(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.store.Snapshot())
}

// GetWeights returns the current weight map and version.
// GET /api/policy/weights
func (h *PolicyHandler) GetWeights(w http.ResponseWriter, r *http.Request) {
	snap := h.store.Snapshot()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"weights": snap.Weights,
		"version": snap.Version,
	})
}

// GetThresholds returns the current decision thresholds and version.
// GET /api/policy/thresholds
func (h *PolicyHandler) GetThresholds(w http.ResponseWriter, r *http.Request) {
	snap := h.store.Snapshot()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"buy":     snap.BuyThreshold,
		"sell":    snap.SellThreshold,
		"version": snap.Version,
	})
}

// WeightsRequest carries a full replacement weight map
type WeightsRequest struct {
	Weights map[string]float64 `json:"weights"`
}

// PutWeights replaces the weight map. Validation failures return 422 and
// leave the active policy untouched.
// PUT /api/policy/weights
func (h *PolicyHandler) PutWeights(w http.ResponseWriter, r *http.Request) {
	var req WeightsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.store.UpdateWeights(r.Context(), req.Weights); err != nil {
		respondValidation(w, err)
		return
	}

	respondJSON(w, http.StatusOK, h.store.Snapshot())
}

// ThresholdsRequest carries replacement decision thresholds
type ThresholdsRequest struct {
	Buy  float64 `json:"buy"`
	Sell float64 `json:"sell"`
}

// PutThresholds replaces the buy/sell thresholds.
// PUT /api/policy/thresholds
func (h *PolicyHandler) PutThresholds(w http.ResponseWriter, r *http.Request) {
	var req ThresholdsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.store.UpdateThresholds(r.Context(), req.Buy, req.Sell); err != nil {
		respondValidation(w, err)
		return
	}

	respondJSON(w, http.StatusOK, h.store.Snapshot())
}

// GetPrompt returns the stored prompt for one agent.
// GET /api/prompts/{agent}
func (h *PolicyHandler) GetPrompt(w http.ResponseWriter, r *http.Request) {
	agentID := mux.Vars(r)["agent"]

	prompt, ok, err := h.prompts.Get(r.Context(), agentID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load prompt")
		respondError(w, http.StatusInternalServerError, "Failed to load prompt")
		return
	}
	if !ok {
		respondError(w, http.StatusNotFound, "No prompt stored for agent "+agentID)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"agent":  agentID,
		"prompt": prompt,
	})
}

// PromptRequest carries one agent prompt
type PromptRequest struct {
	Prompt string `json:"prompt"`
}

// PutPrompt stores a prompt for one agent. Prompts are pass-through text;
// the agent reads them on its side.
// PUT /api/prompts/{agent}
func (h *PolicyHandler) PutPrompt(w http.ResponseWriter, r *http.Request) {
	agentID := mux.Vars(r)["agent"]

	var req PromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Prompt == "" {
		respondError(w, http.StatusUnprocessableEntity, "prompt must not be empty")
		return
	}

	if err := h.prompts.Set(r.Context(), agentID, req.Prompt); err != nil {
		h.logger.WithError(err).Error("Failed to store prompt")
		respondError(w, http.StatusInternalServerError, "Failed to store prompt")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"agent":  agentID,
		"prompt": req.Prompt,
	})
}

// respondValidation maps policy validation failures to 422
func respondValidation(w http.ResponseWriter, err error) {
	var valErr policy.ValidationError
	if errors.As(err, &valErr) {
		respondJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error": valErr.Message,
			"field": valErr.Field,
		})
		return
	}
	respondError(w, http.StatusInternalServerError, err.Error())
}
