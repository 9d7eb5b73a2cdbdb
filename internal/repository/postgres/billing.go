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

const billingColumns = `
	id, booking_id, service_fee, medicine_fee, additional_fee, discount,
	total_amount, amount_paid, balance, is_paid, notes, created_at, updated_at
`

func (r *billingRepository) Get(ctx context.Context, id uuid.UUID) (*model.Billing, error) {
	query := `SELECT ` + billingColumns + ` FROM billings WHERE id = $1`

	var billing model.Billing
	err := r.db.GetContext(ctx, &billing, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get billing: %w", err)
	}
	return &billing, nil
}

func (r *billingRepository) GetByBooking(ctx context.Context, bookingID uuid.UUID) (*model.Billing, error) {
	query := `SELECT ` + billingColumns + ` FROM billings WHERE booking_id = $1`

	var billing model.Billing
	err := r.db.GetContext(ctx, &billing, query, bookingID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get billing: %w", err)
	}
	return &billing, nil
}

func (r *billingRepository) List(ctx context.Context, unpaidOnly bool) ([]*model.Billing, error) {
	query := `SELECT ` + billingColumns + ` FROM billings`
	if unpaidOnly {
		query += ` WHERE is_paid = FALSE`
	}
	query += ` ORDER BY created_at DESC`

	var billings []*model.Billing
	if err := r.db.SelectContext(ctx, &billings, query); err != nil {
		return nil, fmt.Errorf("failed to list billings: %w", err)
	}
	return billings, nil
}

func (r *billingRepository) ListPayments(ctx context.Context, billingID uuid.UUID) ([]*model.Payment, error) {
	query := `
		SELECT id, billing_id, amount_paid, payment_method, reference_number,
			   notes, payment_date, recorded_by, created_at, updated_at
		FROM payments
		WHERE billing_id = $1
		ORDER BY payment_date DESC
	`
	var payments []*model.Payment
	if err := r.db.SelectContext(ctx, &payments, query, billingID); err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

// RecordPayment inserts the payment and reconciles the parent billing's
// derived fields from the payment sum, all in one transaction.
func (r *billingRepository) RecordPayment(ctx context.Context, payment *model.Payment) (*model.Billing, error) {
	var billing *model.Billing

	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := lockBilling(ctx, tx, payment.BillingID); err != nil {
			return err
		}

		now := time.Now()
		payment.ID = uuid.New()
		payment.PaymentDate = now
		payment.CreatedAt = now
		payment.UpdatedAt = now

		insert := `
			INSERT INTO payments (
				id, billing_id, amount_paid, payment_method, reference_number,
				notes, payment_date, recorded_by, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`
		if _, err := tx.ExecContext(ctx, insert,
			payment.ID,
			payment.BillingID,
			payment.AmountPaid,
			payment.Method,
			payment.ReferenceNumber,
			payment.Notes,
			payment.PaymentDate,
			payment.RecordedBy,
			payment.CreatedAt,
			payment.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to create payment: %w", err)
		}

		updated, err := reconcileBilling(ctx, tx, payment.BillingID)
		if err != nil {
			return err
		}

		if err := insertOutboxEvent(ctx, tx, model.EventPaymentRecorded, payment); err != nil {
			return fmt.Errorf("failed to append outbox event: %w", err)
		}

		billing = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return billing, nil
}

// UpdateFees applies the author-settable fee fields, recomputes the total
// and reconciles the payment-derived fields in the same transaction.
func (r *billingRepository) UpdateFees(ctx context.Context, id uuid.UUID, fees *model.UpdateFeesRequest) (*model.Billing, error) {
	var billing *model.Billing

	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := lockBilling(ctx, tx, id); err != nil {
			return err
		}

		query := `
			UPDATE billings
			SET service_fee = COALESCE($1, service_fee),
				additional_fee = COALESCE($2, additional_fee),
				discount = COALESCE($3, discount),
				notes = COALESCE($4, notes),
				updated_at = $5
			WHERE id = $6
		`
		if _, err := tx.ExecContext(ctx, query,
			fees.ServiceFee,
			fees.AdditionalFee,
			fees.Discount,
			fees.Notes,
			time.Now(),
			id,
		); err != nil {
			return fmt.Errorf("failed to update fees: %w", err)
		}

		updated, err := reconcileBilling(ctx, tx, id)
		if err != nil {
			return err
		}

		billing = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return billing, nil
}

func lockBilling(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	var exists uuid.UUID
	err := tx.GetContext(ctx, &exists, `SELECT id FROM billings WHERE id = $1 FOR UPDATE`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to lock billing: %w", err)
	}
	return nil
}

// reconcileBilling recomputes every derived billing field in one direct
// update: total from the fee fields, then amount_paid/balance/is_paid from
// the payment sum. Plain column writes cannot re-trigger reconciliation, so
// there is no recursion to guard against.
func reconcileBilling(ctx context.Context, tx *sqlx.Tx, billingID uuid.UUID) (*model.Billing, error) {
	query := `
		UPDATE billings b
		SET total_amount = b.service_fee + b.medicine_fee + b.additional_fee - b.discount,
			amount_paid = p.total,
			balance = (b.service_fee + b.medicine_fee + b.additional_fee - b.discount) - p.total,
			is_paid = (b.service_fee + b.medicine_fee + b.additional_fee - b.discount) - p.total <= 0,
			updated_at = NOW()
		FROM (
			SELECT COALESCE(SUM(amount_paid), 0) AS total
			FROM payments
			WHERE billing_id = $1
		) p
		WHERE b.id = $1
		RETURNING ` + billingColumns

	var billing model.Billing
	if err := tx.GetContext(ctx, &billing, query, billingID); err != nil {
		return nil, fmt.Errorf("failed to reconcile billing: %w", err)
	}
	return &billing, nil
}
