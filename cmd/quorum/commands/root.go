package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "quorum",
	Short: "Quorum - 멀티 에이전트 트레이딩 의사결정 오케스트레이터",
	Long: `Quorum Unified CLI

다섯 개의 분석 에이전트(뉴스/펀더멘털/기술/전문가/리스크)에 질의를
동시 전파하고, 가중 합산으로 최종 매매 판단을 내립니다.

Usage:
  go run ./cmd/quorum [command]

Examples:
  go run ./cmd/quorum api
  go run ./cmd/quorum analyze "삼성전자"
  go run ./cmd/quorum scheduler start
  go run ./cmd/quorum status`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
