package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/quorum/internal/api/handlers"
	"github.com/wonny/quorum/pkg/logger"
)

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(
	analysis *handlers.AnalysisHandler,
	policy *handlers.PolicyHandler,
	decisions *handlers.DecisionHandler,
	log *logger.Logger,
) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Analysis
	api.HandleFunc("/analyze", analysis.Analyze).Methods("POST")
	api.HandleFunc("/resolve", analysis.Resolve).Methods("POST")
	api.HandleFunc("/agents", analysis.Agents).Methods("GET")

	// Policy
	api.HandleFunc("/policy", policy.Get).Methods("GET")
	api.HandleFunc("/policy/weights", policy.GetWeights).Methods("GET")
	api.HandleFunc("/policy/weights", policy.PutWeights).Methods("PUT")
	api.HandleFunc("/policy/thresholds", policy.GetThresholds).Methods("GET")
	api.HandleFunc("/policy/thresholds", policy.PutThresholds).Methods("PUT")
	api.HandleFunc("/prompts/{agent}", policy.GetPrompt).Methods("GET")
	api.HandleFunc("/prompts/{agent}", policy.PutPrompt).Methods("PUT")

	// Decisions and watchlist
	api.HandleFunc("/decisions", decisions.List).Methods("GET")
	api.HandleFunc("/watchlist", decisions.Watchlist).Methods("GET")
	api.HandleFunc("/watchlist", decisions.AddWatch).Methods("POST")
	api.HandleFunc("/watchlist/{ticker}", decisions.RemoveWatch).Methods("DELETE")

	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "quorum-api",
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
