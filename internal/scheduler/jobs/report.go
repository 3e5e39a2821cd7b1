package jobs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wonny/quorum/internal/contracts"
	"github.com/wonny/quorum/internal/notify"
	"github.com/wonny/quorum/internal/store"
	"github.com/wonny/quorum/pkg/logger"
)

// DailyReportJob sends an end-of-day summary of produced decisions
type DailyReportJob struct {
	repo   *store.Repository
	alerts *notify.Fanout
	logger *logger.Logger
}

// NewDailyReportJob creates the daily report job
func NewDailyReportJob(repo *store.Repository, alerts *notify.Fanout, log *logger.Logger) *DailyReportJob {
	return &DailyReportJob{
		repo:   repo,
		alerts: alerts,
		logger: log,
	}
}

// Name returns the job name
func (j *DailyReportJob) Name() string {
	return "daily_report"
}

// Schedule returns the cron schedule (5 PM KST, weekdays)
func (j *DailyReportJob) Schedule() string {
	return "0 0 17 * * MON-FRI"
}

// Run builds and sends today's decision summary
func (j *DailyReportJob) Run(ctx context.Context) error {
	decisions, err := j.repo.Recent(ctx, 50)
	if err != nil {
		return fmt.Errorf("load recent decisions: %w", err)
	}

	today := filterToday(decisions, time.Now())
	if len(today) == 0 {
		j.logger.Info("No decisions produced today, skipping report")
		return nil
	}

	if j.alerts != nil && j.alerts.Enabled() {
		j.alerts.Send(ctx, buildReport(today))
	}

	j.logger.WithField("count", len(today)).Info("Daily report sent")
	return nil
}

func filterToday(decisions []contracts.Decision, now time.Time) []contracts.Decision {
	year, month, day := now.Date()
	midnight := time.Date(year, month, day, 0, 0, 0, 0, now.Location())

	today := make([]contracts.Decision, 0, len(decisions))
	for _, d := range decisions {
		if !d.ProducedAt.Before(midnight) {
			today = append(today, d)
		}
	}
	return today
}

func buildReport(decisions []contracts.Decision) string {
	var b strings.Builder

	buys, sells, holds := 0, 0, 0
	for _, d := range decisions {
		switch d.Action {
		case contracts.ActionBuy:
			buys++
		case contracts.ActionSell:
			sells++
		default:
			holds++
		}
	}

	fmt.Fprintf(&b, "📊 오늘의 분석 요약 (%d건)\n", len(decisions))
	fmt.Fprintf(&b, "BUY %d / SELL %d / HOLD %d\n", buys, sells, holds)

	for _, d := range decisions {
		if d.Actionable() {
			fmt.Fprintf(&b, "- %s %s (%.3f)\n", d.Action, d.Ticker, d.FinalScore)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}
