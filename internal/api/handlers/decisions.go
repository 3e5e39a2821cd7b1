package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/wonny/quorum/internal/contracts"
	"github.com/wonny/quorum/internal/resolver"
	"github.com/wonny/quorum/internal/store"
	"github.com/wonny/quorum/pkg/logger"
)

// DecisionHandler handles decision history and watchlist endpoints
type DecisionHandler struct {
	repo     *store.Repository // nil when the database is not configured
	resolver *resolver.Resolver
	logger   *logger.Logger
}

// NewDecisionHandler creates a decision handler
func NewDecisionHandler(repo *store.Repository, res *resolver.Resolver, log *logger.Logger) *DecisionHandler {
	return &DecisionHandler{
		repo:     repo,
		resolver: res,
		logger:   log,
	}
}

func (h *DecisionHandler) requireRepo(w http.ResponseWriter) bool {
	if h.repo == nil {
		respondError(w, http.StatusServiceUnavailable, "Database is not configured")
		return false
	}
	return true
}

// List returns recent decisions, optionally filtered by ticker.
// GET /api/decisions?ticker=005930&limit=10
func (h *DecisionHandler) List(w http.ResponseWriter, r *http.Request) {
	if !h.requireRepo(w) {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	var (
		decisions []contracts.Decision
		err       error
	)
	if ticker := r.URL.Query().Get("ticker"); ticker != "" {
		decisions, err = h.repo.ForTicker(r.Context(), ticker, limit)
	} else {
		decisions, err = h.repo.Recent(r.Context(), limit)
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to load decisions")
		respondError(w, http.StatusInternalServerError, "Failed to load decisions")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"decisions": decisions,
		"count":     len(decisions),
	})
}

// Watchlist returns the scheduled analysis watchlist.
// GET /api/watchlist
func (h *DecisionHandler) Watchlist(w http.ResponseWriter, r *http.Request) {
	if !h.requireRepo(w) {
		return
	}

	market := contracts.Market(r.URL.Query().Get("market"))
	items, err := h.repo.Watchlist(r.Context(), market)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load watchlist")
		respondError(w, http.StatusInternalServerError, "Failed to load watchlist")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"watchlist": items,
		"count":     len(items),
	})
}

// WatchRequest adds one stock to the watchlist
type WatchRequest struct {
	Query string `json:"query"`
}

// AddWatch resolves a query and adds the stock to the watchlist.
// POST /api/watchlist
func (h *DecisionHandler) AddWatch(w http.ResponseWriter, r *http.Request) {
	if !h.requireRepo(w) {
		return
	}

	var req WatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Query == "" {
		respondError(w, http.StatusBadRequest, "query is required")
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

	item := store.WatchItem{
		Ticker:      resolved.Ticker,
		Market:      resolved.Market,
		CompanyName: resolved.CompanyName,
	}
	if err := h.repo.AddToWatchlist(r.Context(), item); err != nil {
		h.logger.WithError(err).Error("Failed to add watch item")
		respondError(w, http.StatusInternalServerError, "Failed to add watch item")
		return
	}

	respondJSON(w, http.StatusCreated, item)
}

// RemoveWatch drops a ticker from the watchlist.
// DELETE /api/watchlist/{ticker}
func (h *DecisionHandler) RemoveWatch(w http.ResponseWriter, r *http.Request) {
	if !h.requireRepo(w) {
		return
	}

	ticker := mux.Vars(r)["ticker"]
	if err := h.repo.RemoveFromWatchlist(r.Context(), ticker); err != nil {
		h.logger.WithError(err).Error("Failed to remove watch item")
		respondError(w, http.StatusInternalServerError, "Failed to remove watch item")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"removed": ticker})
}
