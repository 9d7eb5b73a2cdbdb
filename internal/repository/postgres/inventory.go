package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/rmagtibay/clinic-api/internal/model"
)

const inventoryColumns = `
	id, name, description, category, price, expiry_date, quantity,
	threshold, status, created_at, updated_at
`

func (r *inventoryRepository) Create(ctx context.Context, item *model.InventoryItem) error {
	item.ID = uuid.New()
	item.CreatedAt = time.Now()
	item.UpdatedAt = time.Now()
	item.DeriveStatus()

	query := `
		INSERT INTO inventory_items (
			id, name, description, category, price, expiry_date, quantity,
			threshold, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.ExecContext(ctx, query,
		item.ID,
		item.Name,
		item.Description,
		item.Category,
		item.Price,
		item.ExpiryDate,
		item.Quantity,
		item.Threshold,
		item.Status,
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create inventory item: %w", err)
	}
	return nil
}

func (r *inventoryRepository) Get(ctx context.Context, id uuid.UUID) (*model.InventoryItem, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventory_items WHERE id = $1`

	var item model.InventoryItem
	err := r.db.GetContext(ctx, &item, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory item: %w", err)
	}
	return &item, nil
}

// Update persists the author-settable fields. Status is re-derived from
// quantity and threshold, overriding whatever the caller set.
func (r *inventoryRepository) Update(ctx context.Context, item *model.InventoryItem) error {
	item.UpdatedAt = time.Now()
	item.DeriveStatus()

	query := `
		UPDATE inventory_items
		SET name = $1, description = $2, category = $3, price = $4,
			expiry_date = $5, quantity = $6, threshold = $7, status = $8,
			updated_at = $9
		WHERE id = $10
	`
	result, err := r.db.ExecContext(ctx, query,
		item.Name,
		item.Description,
		item.Category,
		item.Price,
		item.ExpiryDate,
		item.Quantity,
		item.Threshold,
		item.Status,
		item.UpdatedAt,
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update inventory item: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *inventoryRepository) List(ctx context.Context, filters *model.InventoryFilters) ([]*model.InventoryItem, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventory_items WHERE 1=1`
	args := []interface{}{}
	argCount := 1

	if filters != nil {
		if filters.Category != "" {
			query += fmt.Sprintf(" AND category = $%d", argCount)
			args = append(args, filters.Category)
			argCount++
		}
		if filters.Status != "" {
			query += fmt.Sprintf(" AND status = $%d", argCount)
			args = append(args, filters.Status)
			argCount++
		}
		if filters.SearchTerm != "" {
			query += fmt.Sprintf(" AND name ILIKE $%d", argCount)
			args = append(args, "%"+filters.SearchTerm+"%")
			argCount++
		}
	}

	query += " ORDER BY name ASC"

	var items []*model.InventoryItem
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list inventory items: %w", err)
	}
	return items, nil
}

func (r *inventoryRepository) Deduct(ctx context.Context, itemID uuid.UUID, qty int, actor *uuid.UUID, notes string) (*model.InventoryItem, error) {
	var item *model.InventoryItem

	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		deducted, err := deductStock(ctx, tx, itemID, qty, actor, notes)
		if err != nil {
			return err
		}
		item = deducted
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *inventoryRepository) Return(ctx context.Context, itemID uuid.UUID, qty int, actor *uuid.UUID, notes string) (*model.InventoryItem, error) {
	var item *model.InventoryItem

	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		returned, err := returnStock(ctx, tx, itemID, qty, actor, notes)
		if err != nil {
			return err
		}
		item = returned
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *inventoryRepository) ListTransactions(ctx context.Context, itemID uuid.UUID) ([]*model.StockTransaction, error) {
	query := `
		SELECT id, item_id, transaction_type, quantity, performed_by, notes, created_at
		FROM stock_transactions
		WHERE item_id = $1
		ORDER BY created_at DESC
	`
	var txns []*model.StockTransaction
	if err := r.db.SelectContext(ctx, &txns, query, itemID); err != nil {
		return nil, fmt.Errorf("failed to list stock transactions: %w", err)
	}
	return txns, nil
}

// deductStock subtracts qty under a row lock and appends the paired Stock
// Out audit row. A quantity short of qty fails the whole transaction with
// ErrInsufficientStock; there is no partial deduction.
func deductStock(ctx context.Context, tx *sqlx.Tx, itemID uuid.UUID, qty int, actor *uuid.UUID, notes string) (*model.InventoryItem, error) {
	update := `
		UPDATE inventory_items
		SET quantity = quantity - $2,
			status = CASE
				WHEN quantity - $2 <= 0 THEN 'Out of Stock'
				WHEN quantity - $2 <= threshold THEN 'Low Stock'
				ELSE 'In Stock'
			END,
			updated_at = NOW()
		WHERE id = $1 AND quantity >= $2
		RETURNING ` + inventoryColumns

	var item model.InventoryItem
	err := tx.GetContext(ctx, &item, update, itemID, qty)
	if errors.Is(err, sql.ErrNoRows) {
		// Either the item is missing or the stock is short.
		var exists bool
		if err := tx.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM inventory_items WHERE id = $1)`, itemID); err != nil {
			return nil, fmt.Errorf("failed to check inventory item: %w", err)
		}
		if !exists {
			return nil, model.ErrNotFound
		}
		return nil, model.ErrInsufficientStock
	}
	if err != nil {
		return nil, fmt.Errorf("failed to deduct stock: %w", err)
	}

	if err := insertStockTransaction(ctx, tx, &model.StockTransaction{
		ID:          uuid.New(),
		ItemID:      itemID,
		Type:        model.StockOut,
		Quantity:    qty,
		PerformedBy: actor,
		Notes:       notes,
		CreatedAt:   time.Now(),
	}); err != nil {
		return nil, fmt.Errorf("failed to record stock transaction: %w", err)
	}

	if err := insertOutboxEvent(ctx, tx, model.EventStockDeducted, &item); err != nil {
		return nil, fmt.Errorf("failed to append outbox event: %w", err)
	}
	return &item, nil
}

// returnStock adds qty back unconditionally and appends the paired Stock In
// audit row. There is no upper bound.
func returnStock(ctx context.Context, tx *sqlx.Tx, itemID uuid.UUID, qty int, actor *uuid.UUID, notes string) (*model.InventoryItem, error) {
	update := `
		UPDATE inventory_items
		SET quantity = quantity + $2,
			status = CASE
				WHEN quantity + $2 <= 0 THEN 'Out of Stock'
				WHEN quantity + $2 <= threshold THEN 'Low Stock'
				ELSE 'In Stock'
			END,
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + inventoryColumns

	var item model.InventoryItem
	err := tx.GetContext(ctx, &item, update, itemID, qty)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to return stock: %w", err)
	}

	if err := insertStockTransaction(ctx, tx, &model.StockTransaction{
		ID:          uuid.New(),
		ItemID:      itemID,
		Type:        model.StockIn,
		Quantity:    qty,
		PerformedBy: actor,
		Notes:       notes,
		CreatedAt:   time.Now(),
	}); err != nil {
		return nil, fmt.Errorf("failed to record stock transaction: %w", err)
	}
	return &item, nil
}
