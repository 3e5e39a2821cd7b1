package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/quorum/internal/contracts"
	"github.com/wonny/quorum/internal/notify"
	"github.com/wonny/quorum/internal/orchestrator"
	"github.com/wonny/quorum/internal/store"
	"github.com/wonny/quorum/pkg/logger"
)

// Schedules are in KST (cron with seconds field).
// 한국장: 장 시작 직후와 오후 세션, 미국장: 23:30 개장 직후
const (
	scheduleKR = "0 0 9,14 * * MON-FRI"
	scheduleUS = "0 30 23 * * MON-FRI"
)

// WatchlistAnalysisJob runs the full analysis pipeline for every watched
// ticker in one market and sends alerts for actionable decisions.
// ⭐ SSOT: 워치리스트 분석 스케줄은 이 Job에서만
type WatchlistAnalysisJob struct {
	repo     *store.Repository
	pipeline *orchestrator.Pipeline
	alerts   *notify.Fanout
	market   contracts.Market
	schedule string
	perItem  time.Duration
	logger   *logger.Logger
}

// NewWatchlistAnalysisJob creates a watchlist job for one market. The
// per-item timeout should exceed the pipeline's overall dispatch deadline.
func NewWatchlistAnalysisJob(
	repo *store.Repository,
	pipeline *orchestrator.Pipeline,
	alerts *notify.Fanout,
	market contracts.Market,
	perItem time.Duration,
	log *logger.Logger,
) *WatchlistAnalysisJob {
	schedule := scheduleKR
	if market == contracts.MarketUS {
		schedule = scheduleUS
	}

	return &WatchlistAnalysisJob{
		repo:     repo,
		pipeline: pipeline,
		alerts:   alerts,
		market:   market,
		schedule: schedule,
		perItem:  perItem,
		logger:   log,
	}
}

// Name returns the job name
func (j *WatchlistAnalysisJob) Name() string {
	return fmt.Sprintf("watchlist_analysis_%s", j.market)
}

// Schedule returns the cron schedule expression
func (j *WatchlistAnalysisJob) Schedule() string {
	return j.schedule
}

// Run analyzes every watched ticker for this market
func (j *WatchlistAnalysisJob) Run(ctx context.Context) error {
	items, err := j.repo.Watchlist(ctx, j.market)
	if err != nil {
		return fmt.Errorf("load watchlist: %w", err)
	}

	if len(items) == 0 {
		j.logger.WithField("market", string(j.market)).Info("Watchlist empty, nothing to analyze")
		return nil
	}

	j.logger.WithFields(map[string]interface{}{
		"market": string(j.market),
		"count":  len(items),
	}).Info("Starting watchlist analysis")

	failed := 0
	for _, item := range items {
		if err := j.analyzeOne(ctx, item); err != nil {
			failed++
			j.logger.WithFields(map[string]interface{}{
				"ticker": item.Ticker,
				"error":  err.Error(),
			}).Warn("Watchlist analysis failed for ticker")
		}
	}

	if failed == len(items) {
		return fmt.Errorf("all %d watchlist analyses failed", failed)
	}

	j.logger.WithFields(map[string]interface{}{
		"market": string(j.market),
		"ok":     len(items) - failed,
		"failed": failed,
	}).Info("Watchlist analysis completed")

	return nil
}

func (j *WatchlistAnalysisJob) analyzeOne(ctx context.Context, item store.WatchItem) error {
	itemCtx, cancel := context.WithTimeout(ctx, j.perItem)
	defer cancel()

	req := contracts.NewAnalysisRequest(item.Ticker, item.Market)
	req.CompanyName = item.CompanyName

	decision, err := j.pipeline.Analyze(itemCtx, req)
	if err != nil {
		return err
	}

	if decision.Actionable() && j.alerts != nil {
		j.alerts.NotifyDecision(ctx, decision)
	}

	return nil
}
