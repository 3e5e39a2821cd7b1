package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/quorum/internal/api"
	"github.com/wonny/quorum/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

이 명령어는:
- HTTP API 서버 시작
- 분석/해석/정책 엔드포인트 제공

Endpoints:
  GET  /health                  - Health check
  POST /api/analyze             - 종목 분석 실행
  POST /api/resolve             - 티커 해석
  GET  /api/agents              - 에이전트 상태 조회
  GET  /api/policy              - 현재 정책 조회
  PUT  /api/policy/weights      - 가중치 교체
  PUT  /api/policy/thresholds   - 임계값 교체
  GET  /api/decisions           - 판단 이력 조회
  GET  /api/watchlist           - 워치리스트 조회

Example:
  go run ./cmd/quorum api
  go run ./cmd/quorum api --port 8080`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (기본값: PORT env)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Quorum API Server ===")

	ctx := context.Background()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	a.log.WithFields(map[string]interface{}{
		"port": a.cfg.Port,
		"env":  a.cfg.Env,
	}).Info("Initializing API server")

	analysisHandler := handlers.NewAnalysisHandler(a.pipeline, a.resolver, a.client, a.log)
	policyHandler := handlers.NewPolicyHandler(a.policies, a.prompts, a.log)
	decisionHandler := handlers.NewDecisionHandler(a.repo, a.resolver, a.log)

	router := api.NewRouter(analysisHandler, policyHandler, decisionHandler, a.log)
	server := api.New(a.cfg, a.log, router)

	go func() {
		if err := server.Start(); err != nil {
			a.log.WithError(err).Fatal("Failed to start server")
		}
	}()

	a.log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	a.log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	a.log.Info("Server stopped")
	return nil
}
