package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/quorum/internal/contracts"
)

// Repository handles decision and position persistence
// ⭐ SSOT: 매매 판단 저장/조회는 여기서만
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a decision repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// EnsureSchema creates the tables this repository needs
func (r *Repository) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS decisions (
			id BIGSERIAL PRIMARY KEY,
			ticker TEXT NOT NULL,
			market TEXT NOT NULL,
			action TEXT NOT NULL,
			final_score DOUBLE PRECISION NOT NULL,
			quantity INTEGER NOT NULL,
			target_price DOUBLE PRECISION NOT NULL DEFAULT 0,
			stop_loss DOUBLE PRECISION NOT NULL DEFAULT 0,
			take_profit DOUBLE PRECISION NOT NULL DEFAULT 0,
			reasoning TEXT NOT NULL DEFAULT '',
			agent_scores JSONB NOT NULL DEFAULT '{}',
			policy_version BIGINT NOT NULL,
			produced_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_decisions_ticker ON decisions (ticker, produced_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_decisions_produced_at ON decisions (produced_at DESC)`,
		`CREATE TABLE IF NOT EXISTS positions (
			ticker TEXT PRIMARY KEY,
			market TEXT NOT NULL,
			quantity INTEGER NOT NULL,
			entry_price DOUBLE PRECISION NOT NULL,
			opened_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS watchlist (
			ticker TEXT PRIMARY KEY,
			market TEXT NOT NULL,
			company_name TEXT NOT NULL DEFAULT '',
			added_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}

	for _, stmt := range stmts {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}

// Save persists a produced decision
func (r *Repository) Save(ctx context.Context, d *contracts.Decision) error {
	scoresJSON, err := json.Marshal(d.AgentScores)
	if err != nil {
		return fmt.Errorf("failed to marshal agent scores: %w", err)
	}

	query := `
		INSERT INTO decisions (
			ticker, market, action, final_score, quantity,
			target_price, stop_loss, take_profit, reasoning,
			agent_scores, policy_version, produced_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err = r.pool.Exec(ctx, query,
		d.Ticker, string(d.Market), string(d.Action), d.FinalScore, d.Quantity,
		d.TargetPrice, d.StopLoss, d.TakeProfit, d.Reasoning,
		scoresJSON, d.PolicyVer, d.ProducedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save decision: %w", err)
	}

	return nil
}

// Recent returns the most recent decisions, newest first
func (r *Repository) Recent(ctx context.Context, limit int) ([]contracts.Decision, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT ticker, market, action, final_score, quantity,
			target_price, stop_loss, take_profit, reasoning,
			agent_scores, policy_version, produced_at
		FROM decisions
		ORDER BY produced_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query decisions: %w", err)
	}
	defer rows.Close()

	return scanDecisions(rows)
}

// ForTicker returns a ticker's decision history, newest first
func (r *Repository) ForTicker(ctx context.Context, ticker string, limit int) ([]contracts.Decision, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT ticker, market, action, final_score, quantity,
			target_price, stop_loss, take_profit, reasoning,
			agent_scores, policy_version, produced_at
		FROM decisions
		WHERE ticker = $1
		ORDER BY produced_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, ticker, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query decisions: %w", err)
	}
	defer rows.Close()

	return scanDecisions(rows)
}

func scanDecisions(rows pgx.Rows) ([]contracts.Decision, error) {
	decisions := make([]contracts.Decision, 0)

	for rows.Next() {
		var d contracts.Decision
		var market, action string
		var scoresJSON []byte

		err := rows.Scan(
			&d.Ticker, &market, &action, &d.FinalScore, &d.Quantity,
			&d.TargetPrice, &d.StopLoss, &d.TakeProfit, &d.Reasoning,
			&scoresJSON, &d.PolicyVer, &d.ProducedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan decision: %w", err)
		}

		d.Market = contracts.Market(market)
		d.Action = contracts.Action(action)
		if err := json.Unmarshal(scoresJSON, &d.AgentScores); err != nil {
			return nil, fmt.Errorf("failed to unmarshal agent scores: %w", err)
		}

		decisions = append(decisions, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return decisions, nil
}

// TradesToday counts actionable decisions produced since local midnight
func (r *Repository) TradesToday(ctx context.Context, now time.Time) (int, error) {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	query := `
		SELECT COUNT(*)
		FROM decisions
		WHERE action IN ('BUY', 'SELL') AND produced_at >= $1
	`

	var count int
	if err := r.pool.QueryRow(ctx, query, midnight).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count trades: %w", err)
	}
	return count, nil
}

// OpenPositions counts currently held positions
func (r *Repository) OpenPositions(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM positions WHERE quantity > 0`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count positions: %w", err)
	}
	return count, nil
}
