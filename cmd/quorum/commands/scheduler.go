package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/quorum/internal/contracts"
	"github.com/wonny/quorum/internal/scheduler"
	"github.com/wonny/quorum/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `워치리스트 분석 스케줄러를 시작하거나 작업을 관리합니다.

등록되는 작업:
- watchlist_analysis_KR: 평일 9시/14시 (한국장)
- watchlist_analysis_US: 평일 23시 30분 (미국장)
- daily_report: 평일 17시 (일일 요약)

Subcommands:
  start   - 스케줄러 시작
  run     - 특정 작업 즉시 실행

Example:
  go run ./cmd/quorum scheduler start
  go run ./cmd/quorum scheduler run watchlist_analysis_KR`,
}

var schedulerStartCmd = &cobra.Command{
	Use:   "start",
	Short: "스케줄러 시작",
	RunE:  runScheduler,
}

var schedulerRunCmd = &cobra.Command{
	Use:   "run [job_name]",
	Short: "특정 작업 즉시 실행",
	Args:  cobra.ExactArgs(1),
	RunE:  runSchedulerJob,
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

func initScheduler(ctx context.Context) (*scheduler.Scheduler, *app, error) {
	a, err := newApp(ctx)
	if err != nil {
		return nil, nil, err
	}

	if a.repo == nil {
		a.Close()
		return nil, nil, fmt.Errorf("scheduler requires a database (set DATABASE_URL)")
	}

	// Per-item budget: overall dispatch deadline plus slack
	perItem := a.cfg.Agents.OverallTimeout + 30*time.Second

	sched := scheduler.New(a.log)
	jobList := []scheduler.Job{
		jobs.NewWatchlistAnalysisJob(a.repo, a.pipeline, a.alerts, contracts.MarketKR, perItem, a.log),
		jobs.NewWatchlistAnalysisJob(a.repo, a.pipeline, a.alerts, contracts.MarketUS, perItem, a.log),
		jobs.NewDailyReportJob(a.repo, a.alerts, a.log),
	}

	for _, job := range jobList {
		if err := sched.AddJob(job); err != nil {
			a.Close()
			return nil, nil, fmt.Errorf("add job: %w", err)
		}
	}

	return sched, a, nil
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Quorum Scheduler ===")

	sched, a, err := initScheduler(context.Background())
	if err != nil {
		return err
	}
	defer a.Close()

	sched.Start()

	fmt.Println("\n✅ Scheduler started successfully")
	fmt.Println("\nRegistered jobs:")
	for _, jobName := range sched.Jobs() {
		fmt.Printf("  - %s\n", jobName)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}

func runSchedulerJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	sched, a, err := initScheduler(context.Background())
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Printf("Running job %s...\n", jobName)
	if err := sched.RunJob(jobName); err != nil {
		return err
	}

	// RunJob is async; poll until the run lands in history
	for i := 0; i < 600; i++ {
		stats := sched.Stats()
		if st, ok := stats[jobName]; ok && st.TotalRuns > 0 {
			if st.LastError != "" {
				return fmt.Errorf("job failed: %s", st.LastError)
			}
			fmt.Println("✅ Job completed")
			return nil
		}
		time.Sleep(time.Second)
	}

	return fmt.Errorf("timed out waiting for job %s", jobName)
}
