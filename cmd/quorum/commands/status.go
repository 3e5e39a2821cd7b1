package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/quorum/internal/contracts"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "시스템 상태 조회",
	Long: `연결 상태와 현재 정책을 출력합니다.

표시 정보:
- 에이전트 엔드포인트와 서킷 브레이커 상태
- 현재 가중치 정책과 임계값
- 데이터베이스/Redis 연결 여부

Example:
  go run ./cmd/quorum status`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Quorum Status ===")

	ctx := context.Background()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Println("🔌 Connections")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	dbStatus := "not configured"
	if a.db != nil {
		dbStatus = "connected"
		if err := a.db.Ping(ctx); err != nil {
			dbStatus = "unreachable: " + err.Error()
		}
	}
	fmt.Printf("%-12s %s\n", "Database:", dbStatus)

	redisStatus := "disabled"
	if a.rdb.Enabled() {
		redisStatus = "connected"
	}
	fmt.Printf("%-12s %s\n", "Redis:", redisStatus)
	fmt.Println()

	fmt.Println("🤖 Agents")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	for _, provider := range a.registry.Providers() {
		fmt.Printf("%-12s %-8s %s\n", provider.ID+":", a.client.BreakerState(provider.ID), provider.URL)
	}
	fmt.Println()

	policy := a.policies.Snapshot()
	fmt.Println("⚖️  Policy")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("%-12s v%d\n", "Version:", policy.Version)
	for _, agentID := range contracts.AllAgents {
		fmt.Printf("%-12s %.2f\n", agentID+":", policy.Weights[agentID])
	}
	fmt.Printf("%-12s buy > %.2f, sell < %.2f\n", "Thresholds:", policy.BuyThreshold, policy.SellThreshold)

	return nil
}
