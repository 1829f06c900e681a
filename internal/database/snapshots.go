package database

import (
	"fmt"

	"github.com/trogers1052/pnl-service/internal/models"
)

// SaveSnapshots persists one batch of per-symbol PnL rows in a single
// transaction. Rows are append-only history; nothing in the service
// reads them back.
func (db *DB) SaveSnapshots(snapshots []models.PnLSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO pnl_snapshots (
			account_id, symbol, qty, avg_cost, last_price,
			realized_pnl, unrealized_pnl, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	for _, s := range snapshots {
		_, err := tx.Exec(query,
			s.AccountID, s.Symbol, s.Qty, s.AvgCost, s.LastPrice,
			s.RealizedPnL, s.UnrealizedPnL, s.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert snapshot for %s: %w", s.Symbol, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
