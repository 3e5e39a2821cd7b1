package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/quorum/internal/contracts"
	"github.com/wonny/quorum/internal/notify"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [query]",
	Short: "종목 분석 실행 (1회성)",
	Long: `다섯 에이전트에 질의를 전파하고 최종 매매 판단을 출력합니다.

질의는 종목명, 티커, 자연어 모두 가능합니다:
  go run ./cmd/quorum analyze "삼성전자"
  go run ./cmd/quorum analyze TSLA
  go run ./cmd/quorum analyze 005930 --market KR
  go run ./cmd/quorum analyze "테슬라 분석해줘" --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

var (
	analyzeMarket string
	analyzeJSON   bool
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeMarket, "market", "", "시장 지정 (KR|US), 티커 직접 입력 시")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "JSON으로 출력")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	query := strings.Join(args, " ")

	var req contracts.AnalysisRequest
	if analyzeMarket != "" {
		market, err := contracts.ParseMarket(analyzeMarket)
		if err != nil {
			return err
		}
		req = contracts.NewAnalysisRequest(query, market)
	} else {
		req, err = a.resolver.Resolve(ctx, query)
		if err != nil {
			return fmt.Errorf("resolve %q: %w", query, err)
		}
	}

	fmt.Printf("분석 대상: %s (%s)\n\n", req.Ticker, req.Market)

	decision, err := a.pipeline.Analyze(ctx, req)
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	if analyzeJSON {
		out, err := json.MarshalIndent(decision, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	fmt.Println(notify.FormatDecision(decision))
	fmt.Println()
	fmt.Println("에이전트별 점수:")
	for _, agentID := range contracts.AllAgents {
		fmt.Printf("  %-12s %+.3f\n", agentID, decision.AgentScores[agentID])
	}

	return nil
}
