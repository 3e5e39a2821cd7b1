package jobs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wonny/quorum/internal/contracts"
)

func TestFilterToday(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.Local)

	decisions := []contracts.Decision{
		{Ticker: "A", ProducedAt: now.Add(-1 * time.Hour)},
		{Ticker: "B", ProducedAt: now.Add(-14 * time.Hour)},
		{Ticker: "C", ProducedAt: now.Add(-20 * time.Hour)}, // yesterday
	}

	today := filterToday(decisions, now)

	assert.Len(t, today, 2)
	assert.Equal(t, "A", today[0].Ticker)
	assert.Equal(t, "B", today[1].Ticker)
}

func TestBuildReport(t *testing.T) {
	decisions := []contracts.Decision{
		{Ticker: "005930", Action: contracts.ActionBuy, FinalScore: 0.47},
		{Ticker: "AAPL", Action: contracts.ActionHold, FinalScore: 0.1},
		{Ticker: "TSLA", Action: contracts.ActionSell, FinalScore: -0.51},
	}

	report := buildReport(decisions)

	assert.Contains(t, report, "3건")
	assert.Contains(t, report, "BUY 1 / SELL 1 / HOLD 1")
	assert.Contains(t, report, "- BUY 005930 (0.470)")
	assert.Contains(t, report, "- SELL TSLA (-0.510)")
	assert.NotContains(t, report, "AAPL")
}

func TestWatchlistJobNamesAndSchedules(t *testing.T) {
	kr := NewWatchlistAnalysisJob(nil, nil, nil, contracts.MarketKR, time.Minute, nil)
	us := NewWatchlistAnalysisJob(nil, nil, nil, contracts.MarketUS, time.Minute, nil)

	assert.Equal(t, "watchlist_analysis_KR", kr.Name())
	assert.Equal(t, "0 0 9,14 * * MON-FRI", kr.Schedule())
	assert.Equal(t, "watchlist_analysis_US", us.Name())
	assert.Equal(t, "0 30 23 * * MON-FRI", us.Schedule())
}
