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

const saleColumns = `
	id, receipt_number, sale_type, patient_id, customer_name, subtotal,
	discount_percent, discount_amount, tax_percent, tax_amount, total_amount,
	payment_method, amount_received, change_amount, reference_number, status,
	notes, created_by, created_at, updated_at
`

const saleItemColumns = `
	id, sale_id, item_id, quantity, unit_price, line_total, notes,
	created_at, updated_at
`

func (r *posRepository) CreateSale(ctx context.Context, sale *model.POSSale) error {
	now := time.Now()
	sale.ID = uuid.New()
	sale.Status = model.SaleStatusPending
	sale.CreatedAt = now
	sale.UpdatedAt = now
	sale.EnsureReceiptNumber(now)
	sale.RecomputeTotals()

	query := `
		INSERT INTO pos_sales (
			id, receipt_number, sale_type, patient_id, customer_name, subtotal,
			discount_percent, discount_amount, tax_percent, tax_amount,
			total_amount, payment_method, amount_received, change_amount,
			reference_number, status, notes, created_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`
	_, err := r.db.ExecContext(ctx, query,
		sale.ID,
		sale.ReceiptNumber,
		sale.SaleType,
		sale.PatientID,
		sale.CustomerName,
		sale.Subtotal,
		sale.DiscountPercent,
		sale.DiscountAmount,
		sale.TaxPercent,
		sale.TaxAmount,
		sale.TotalAmount,
		sale.PaymentMethod,
		sale.AmountReceived,
		sale.ChangeAmount,
		sale.ReferenceNumber,
		sale.Status,
		sale.Notes,
		sale.CreatedBy,
		sale.CreatedAt,
		sale.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create sale: %w", err)
	}
	return nil
}

func (r *posRepository) GetSale(ctx context.Context, id uuid.UUID) (*model.POSSale, error) {
	query := `SELECT ` + saleColumns + ` FROM pos_sales WHERE id = $1`

	var sale model.POSSale
	err := r.db.GetContext(ctx, &sale, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sale: %w", err)
	}
	return &sale, nil
}

func (r *posRepository) ListSales(ctx context.Context, filters *model.SaleFilters) ([]*model.POSSale, error) {
	query := `SELECT ` + saleColumns + ` FROM pos_sales WHERE 1=1`
	args := []interface{}{}
	argCount := 1

	if filters != nil {
		if filters.Status != "" {
			query += fmt.Sprintf(" AND status = $%d", argCount)
			args = append(args, filters.Status)
			argCount++
		}
		if !filters.StartDate.IsZero() {
			query += fmt.Sprintf(" AND created_at >= $%d", argCount)
			args = append(args, filters.StartDate)
			argCount++
		}
		if !filters.EndDate.IsZero() {
			query += fmt.Sprintf(" AND created_at <= $%d", argCount)
			args = append(args, filters.EndDate)
			argCount++
		}
	}

	query += " ORDER BY created_at DESC"

	var sales []*model.POSSale
	if err := r.db.SelectContext(ctx, &sales, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	return sales, nil
}

func (r *posRepository) ListItems(ctx context.Context, saleID uuid.UUID) ([]*model.POSSaleItem, error) {
	query := `SELECT ` + saleItemColumns + ` FROM pos_sale_items WHERE sale_id = $1 ORDER BY created_at ASC`

	var items []*model.POSSaleItem
	if err := r.db.SelectContext(ctx, &items, query, saleID); err != nil {
		return nil, fmt.Errorf("failed to list sale items: %w", err)
	}
	return items, nil
}

// AddItem inserts a line item and recomputes the parent totals. Inventory is
// touched only when the parent sale is already completed at the time of the
// mutation.
func (r *posRepository) AddItem(ctx context.Context, item *model.POSSaleItem, priceProvided bool) (*model.POSSale, error) {
	var sale *model.POSSale

	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		locked, err := lockSale(ctx, tx, item.SaleID)
		if err != nil {
			return err
		}
		if locked.Finalized() {
			return model.ErrSaleFinalized
		}

		now := time.Now()
		item.ID = uuid.New()
		item.CreatedAt = now
		item.UpdatedAt = now

		// Snapshot the current inventory price when the caller did not
		// supply one. An explicit zero stays zero (free item).
		if !priceProvided {
			if err := tx.GetContext(ctx, &item.UnitPrice, `SELECT price FROM inventory_items WHERE id = $1`, item.ItemID); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return model.ErrNotFound
				}
				return fmt.Errorf("failed to get item price: %w", err)
			}
		}
		item.RecomputeLineTotal()

		insert := `
			INSERT INTO pos_sale_items (
				id, sale_id, item_id, quantity, unit_price, line_total, notes,
				created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`
		if _, err := tx.ExecContext(ctx, insert,
			item.ID,
			item.SaleID,
			item.ItemID,
			item.Quantity,
			item.UnitPrice,
			item.LineTotal,
			item.Notes,
			item.CreatedAt,
			item.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to create sale item: %w", err)
		}

		if locked.Status == model.SaleStatusCompleted {
			notes := fmt.Sprintf("POS Sale - Receipt #%s", locked.ReceiptNumber)
			if _, err := deductStock(ctx, tx, item.ItemID, item.Quantity, locked.CreatedBy, notes); err != nil {
				return err
			}
		}

		updated, err := recomputeSaleTotals(ctx, tx, item.SaleID)
		if err != nil {
			return err
		}
		sale = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// UpdateItemQuantity adjusts a line item's quantity. On a completed sale the
// stock delta is deducted or returned accordingly.
func (r *posRepository) UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, qty int) (*model.POSSale, error) {
	var sale *model.POSSale

	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		item, locked, err := lockSaleItem(ctx, tx, itemID)
		if err != nil {
			return err
		}
		if locked.Finalized() {
			return model.ErrSaleFinalized
		}

		oldQty := item.Quantity
		item.Quantity = qty
		item.RecomputeLineTotal()

		update := `
			UPDATE pos_sale_items
			SET quantity = $1, line_total = $2, updated_at = $3
			WHERE id = $4
		`
		if _, err := tx.ExecContext(ctx, update, item.Quantity, item.LineTotal, time.Now(), item.ID); err != nil {
			return fmt.Errorf("failed to update sale item: %w", err)
		}

		if locked.Status == model.SaleStatusCompleted && qty != oldQty {
			notes := fmt.Sprintf("POS Sale - Receipt #%s", locked.ReceiptNumber)
			if delta := qty - oldQty; delta > 0 {
				if _, err := deductStock(ctx, tx, item.ItemID, delta, locked.CreatedBy, notes); err != nil {
					return err
				}
			} else {
				notes = fmt.Sprintf("POS Return - Receipt #%s", locked.ReceiptNumber)
				if _, err := returnStock(ctx, tx, item.ItemID, -delta, locked.CreatedBy, notes); err != nil {
					return err
				}
			}
		}

		updated, err := recomputeSaleTotals(ctx, tx, item.SaleID)
		if err != nil {
			return err
		}
		sale = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// RemoveItem deletes a line item, returning its quantity to stock when the
// parent sale had already been completed.
func (r *posRepository) RemoveItem(ctx context.Context, itemID uuid.UUID) (*model.POSSale, error) {
	var sale *model.POSSale

	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		item, locked, err := lockSaleItem(ctx, tx, itemID)
		if err != nil {
			return err
		}
		if locked.Finalized() {
			return model.ErrSaleFinalized
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM pos_sale_items WHERE id = $1`, item.ID); err != nil {
			return fmt.Errorf("failed to delete sale item: %w", err)
		}

		if locked.Status == model.SaleStatusCompleted {
			notes := fmt.Sprintf("POS Return - Receipt #%s", locked.ReceiptNumber)
			if _, err := returnStock(ctx, tx, item.ItemID, item.Quantity, locked.CreatedBy, notes); err != nil {
				return err
			}
		}

		updated, err := recomputeSaleTotals(ctx, tx, item.SaleID)
		if err != nil {
			return err
		}
		sale = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// CompleteSale deducts stock for every line item and moves the sale to
// Completed. Any line short of stock aborts the whole transaction.
func (r *posRepository) CompleteSale(ctx context.Context, id uuid.UUID) (*model.POSSale, error) {
	var sale *model.POSSale

	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		locked, err := lockSale(ctx, tx, id)
		if err != nil {
			return err
		}

		switch locked.Status {
		case model.SaleStatusCompleted:
			return model.ErrAlreadyTransitioned
		case model.SaleStatusPending:
		default:
			return fmt.Errorf("%w: cannot complete a %s sale", model.ErrInvalidTransition, locked.Status)
		}

		items, err := listSaleItemsTx(ctx, tx, id)
		if err != nil {
			return err
		}

		notes := fmt.Sprintf("POS Sale - Receipt #%s", locked.ReceiptNumber)
		for _, item := range items {
			if _, err := deductStock(ctx, tx, item.ItemID, item.Quantity, locked.CreatedBy, notes); err != nil {
				return err
			}
		}

		if err := setSaleStatus(ctx, tx, id, model.SaleStatusCompleted); err != nil {
			return err
		}

		updated, err := recomputeSaleTotals(ctx, tx, id)
		if err != nil {
			return err
		}

		if err := insertOutboxEvent(ctx, tx, model.EventSaleCompleted, updated); err != nil {
			return fmt.Errorf("failed to append outbox event: %w", err)
		}

		sale = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// ReturnSale moves the sale to Cancelled or Refunded. Stock is returned for
// every line item only when the sale had been completed; cancelling a
// pending sale has no inventory effect. Re-entering Completed is not
// supported.
func (r *posRepository) ReturnSale(ctx context.Context, id uuid.UUID, status model.SaleStatus) (*model.POSSale, error) {
	if status != model.SaleStatusCancelled && status != model.SaleStatusRefunded {
		return nil, fmt.Errorf("%w: %s is not a return status", model.ErrInvalidTransition, status)
	}

	var sale *model.POSSale

	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		locked, err := lockSale(ctx, tx, id)
		if err != nil {
			return err
		}

		if locked.Status == status {
			return model.ErrAlreadyTransitioned
		}
		if locked.Finalized() {
			return fmt.Errorf("%w: sale already %s", model.ErrInvalidTransition, locked.Status)
		}
		if status == model.SaleStatusRefunded && locked.Status != model.SaleStatusCompleted {
			return fmt.Errorf("%w: only completed sales can be refunded", model.ErrInvalidTransition)
		}

		if locked.Status == model.SaleStatusCompleted {
			items, err := listSaleItemsTx(ctx, tx, id)
			if err != nil {
				return err
			}
			notes := fmt.Sprintf("POS Return - Receipt #%s", locked.ReceiptNumber)
			for _, item := range items {
				if _, err := returnStock(ctx, tx, item.ItemID, item.Quantity, locked.CreatedBy, notes); err != nil {
					return err
				}
			}
		}

		if err := setSaleStatus(ctx, tx, id, status); err != nil {
			return err
		}

		updated, err := recomputeSaleTotals(ctx, tx, id)
		if err != nil {
			return err
		}

		if err := insertOutboxEvent(ctx, tx, model.EventSaleReturned, updated); err != nil {
			return fmt.Errorf("failed to append outbox event: %w", err)
		}

		sale = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

func lockSale(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*model.POSSale, error) {
	query := `SELECT ` + saleColumns + ` FROM pos_sales WHERE id = $1 FOR UPDATE`

	var sale model.POSSale
	err := tx.GetContext(ctx, &sale, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock sale: %w", err)
	}
	return &sale, nil
}

func lockSaleItem(ctx context.Context, tx *sqlx.Tx, itemID uuid.UUID) (*model.POSSaleItem, *model.POSSale, error) {
	query := `SELECT ` + saleItemColumns + ` FROM pos_sale_items WHERE id = $1`

	var item model.POSSaleItem
	err := tx.GetContext(ctx, &item, query, itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, model.ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get sale item: %w", err)
	}

	sale, err := lockSale(ctx, tx, item.SaleID)
	if err != nil {
		return nil, nil, err
	}
	return &item, sale, nil
}

func listSaleItemsTx(ctx context.Context, tx *sqlx.Tx, saleID uuid.UUID) ([]*model.POSSaleItem, error) {
	query := `SELECT ` + saleItemColumns + ` FROM pos_sale_items WHERE sale_id = $1 ORDER BY created_at ASC`

	var items []*model.POSSaleItem
	if err := tx.SelectContext(ctx, &items, query, saleID); err != nil {
		return nil, fmt.Errorf("failed to list sale items: %w", err)
	}
	return items, nil
}

func setSaleStatus(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, status model.SaleStatus) error {
	if _, err := tx.ExecContext(ctx, `UPDATE pos_sales SET status = $1, updated_at = $2 WHERE id = $3`, status, time.Now(), id); err != nil {
		return fmt.Errorf("failed to set sale status: %w", err)
	}
	return nil
}

// recomputeSaleTotals re-derives every computed money field from the line
// items and the author-settable percent fields in one direct update.
func recomputeSaleTotals(ctx context.Context, tx *sqlx.Tx, saleID uuid.UUID) (*model.POSSale, error) {
	query := `
		WITH sums AS (
			SELECT COALESCE(SUM(line_total), 0) AS sub
			FROM pos_sale_items
			WHERE sale_id = $1
		), calc AS (
			SELECT sub,
				   sub * s.discount_percent / 100 AS disc,
				   (sub - sub * s.discount_percent / 100) * s.tax_percent / 100 AS tax
			FROM sums, pos_sales s
			WHERE s.id = $1
		)
		UPDATE pos_sales s
		SET subtotal = calc.sub,
			discount_amount = calc.disc,
			tax_amount = calc.tax,
			total_amount = calc.sub - calc.disc + calc.tax,
			change_amount = GREATEST(0, s.amount_received - (calc.sub - calc.disc + calc.tax)),
			updated_at = NOW()
		FROM calc
		WHERE s.id = $1
		RETURNING s.id, s.receipt_number, s.sale_type, s.patient_id, s.customer_name,
				  s.subtotal, s.discount_percent, s.discount_amount, s.tax_percent,
				  s.tax_amount, s.total_amount, s.payment_method, s.amount_received,
				  s.change_amount, s.reference_number, s.status, s.notes,
				  s.created_by, s.created_at, s.updated_at
	`
	var sale model.POSSale
	if err := tx.GetContext(ctx, &sale, query, saleID); err != nil {
		return nil, fmt.Errorf("failed to recompute sale totals: %w", err)
	}
	return &sale, nil
}
