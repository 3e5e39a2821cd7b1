package store

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/quorum/internal/contracts"
)

// WatchItem is one ticker under scheduled analysis
type WatchItem struct {
	Ticker      string           `json:"ticker"`
	Market      contracts.Market `json:"market"`
	CompanyName string           `json:"company_name,omitempty"`
	AddedAt     time.Time        `json:"added_at"`
}

// Watchlist returns every watched ticker, optionally filtered by market
func (r *Repository) Watchlist(ctx context.Context, market contracts.Market) ([]WatchItem, error) {
	query := `
		SELECT ticker, market, company_name, added_at
		FROM watchlist
		WHERE $1 = '' OR market = $1
		ORDER BY added_at ASC
	`

	rows, err := r.pool.Query(ctx, query, string(market))
	if err != nil {
		return nil, fmt.Errorf("failed to query watchlist: %w", err)
	}
	defer rows.Close()

	items := make([]WatchItem, 0)
	for rows.Next() {
		var item WatchItem
		var m string
		if err := rows.Scan(&item.Ticker, &m, &item.CompanyName, &item.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan watch item: %w", err)
		}
		item.Market = contracts.Market(m)
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return items, nil
}

// AddToWatchlist registers a ticker for scheduled analysis. Adding an
// existing ticker is a no-op.
func (r *Repository) AddToWatchlist(ctx context.Context, item WatchItem) error {
	query := `
		INSERT INTO watchlist (ticker, market, company_name)
		VALUES ($1, $2, $3)
		ON CONFLICT (ticker) DO NOTHING
	`

	if _, err := r.pool.Exec(ctx, query, item.Ticker, string(item.Market), item.CompanyName); err != nil {
		return fmt.Errorf("failed to add watch item: %w", err)
	}
	return nil
}

// RemoveFromWatchlist drops a ticker from scheduled analysis
func (r *Repository) RemoveFromWatchlist(ctx context.Context, ticker string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM watchlist WHERE ticker = $1`, ticker); err != nil {
		return fmt.Errorf("failed to remove watch item: %w", err)
	}
	return nil
}
