package postgres

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/rmagtibay/clinic-api/internal/model"
)

// isUniqueViolation reports whether err is a unique constraint violation.
// The natural keys the pipeline relies on (email, booking_id, slot) are
// enforced at the storage layer, so this is how duplicates surface.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// withTx executes fn inside a transaction, rolling back on error or panic.
func withTx(ctx context.Context, db *sqlx.DB, fn func(*sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

// insertOutboxEvent appends a lifecycle event in the same transaction as the
// state change it describes.
func insertOutboxEvent(ctx context.Context, tx *sqlx.Tx, eventType string, payload interface{}) error {
	event, err := model.NewOutboxEvent(eventType, payload)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO outbox_events (id, event_type, payload, status, retry_count, created_at)
		VALUES ($1, $2, $3, $4, 0, $5)
	`
	_, err = tx.ExecContext(ctx, query,
		event.ID,
		event.EventType,
		event.Payload,
		event.Status,
		event.CreatedAt,
	)
	return err
}

// insertStockTransaction appends the audit row paired with a stock mutation.
func insertStockTransaction(ctx context.Context, tx *sqlx.Tx, txn *model.StockTransaction) error {
	query := `
		INSERT INTO stock_transactions (id, item_id, transaction_type, quantity, performed_by, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := tx.ExecContext(ctx, query,
		txn.ID,
		txn.ItemID,
		txn.Type,
		txn.Quantity,
		txn.PerformedBy,
		txn.Notes,
		txn.CreatedAt,
	)
	return err
}
