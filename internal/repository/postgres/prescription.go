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

const prescriptionColumns = `
	id, medical_record_id, medicine_id, custom_medicine_name, quantity,
	dosage, duration, instructions, unit_price, total_price, prescribed_at,
	prescribed_by, created_at, updated_at
`

// Create inserts the prescription, deducts inventory-backed stock and rolls
// the visit's medicine fee up onto the matching billing, in one transaction.
// An insufficient stock level fails the whole operation; no prescription row
// is left behind.
func (r *prescriptionRepository) Create(ctx context.Context, prescription *model.Prescription) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		patientName, err := recordPatientName(ctx, tx, prescription.MedicalRecordID)
		if err != nil {
			return err
		}

		now := time.Now()
		prescription.ID = uuid.New()
		prescription.PrescribedAt = now
		prescription.CreatedAt = now
		prescription.UpdatedAt = now
		prescription.RecomputeTotal()

		insert := `
			INSERT INTO prescriptions (
				id, medical_record_id, medicine_id, custom_medicine_name,
				quantity, dosage, duration, instructions, unit_price,
				total_price, prescribed_at, prescribed_by, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		`
		if _, err := tx.ExecContext(ctx, insert,
			prescription.ID,
			prescription.MedicalRecordID,
			prescription.MedicineID,
			prescription.CustomMedicineName,
			prescription.Quantity,
			prescription.Dosage,
			prescription.Duration,
			prescription.Instructions,
			prescription.UnitPrice,
			prescription.TotalPrice,
			prescription.PrescribedAt,
			prescription.PrescribedBy,
			prescription.CreatedAt,
			prescription.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to create prescription: %w", err)
		}

		if prescription.MedicineID != nil {
			notes := fmt.Sprintf("Prescribed to %s", patientName)
			if _, err := deductStock(ctx, tx, *prescription.MedicineID, prescription.Quantity, prescription.PrescribedBy, notes); err != nil {
				return err
			}
		}

		return rollupMedicineFee(ctx, tx, prescription.MedicalRecordID)
	})
}

func (r *prescriptionRepository) Get(ctx context.Context, id uuid.UUID) (*model.Prescription, error) {
	query := `SELECT ` + prescriptionColumns + ` FROM prescriptions WHERE id = $1`

	var prescription model.Prescription
	err := r.db.GetContext(ctx, &prescription, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prescription: %w", err)
	}
	return &prescription, nil
}

func (r *prescriptionRepository) ListByRecord(ctx context.Context, recordID uuid.UUID) ([]*model.Prescription, error) {
	query := `SELECT ` + prescriptionColumns + ` FROM prescriptions WHERE medical_record_id = $1 ORDER BY prescribed_at DESC`

	var prescriptions []*model.Prescription
	if err := r.db.SelectContext(ctx, &prescriptions, query, recordID); err != nil {
		return nil, fmt.Errorf("failed to list prescriptions: %w", err)
	}
	return prescriptions, nil
}

// Delete removes the prescription and reverses the medicine fee rollup.
// Dispensed stock is not returned; that is an explicit inventory adjustment.
func (r *prescriptionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var recordID uuid.UUID
		err := tx.GetContext(ctx, &recordID, `SELECT medical_record_id FROM prescriptions WHERE id = $1`, id)
		if errors.Is(err, sql.ErrNoRows) {
			return model.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get prescription: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM prescriptions WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete prescription: %w", err)
		}

		return rollupMedicineFee(ctx, tx, recordID)
	})
}

func recordPatientName(ctx context.Context, tx *sqlx.Tx, recordID uuid.UUID) (string, error) {
	query := `
		SELECT TRIM(u.first_name || ' ' || u.last_name)
		FROM medical_records mr
		JOIN patients p ON p.id = mr.patient_id
		JOIN users u ON u.id = p.user_id
		WHERE mr.id = $1
	`
	var name string
	err := tx.GetContext(ctx, &name, query, recordID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", model.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve medical record: %w", err)
	}
	return name, nil
}

// rollupMedicineFee sets the medicine fee of the patient's most recent
// confirmed or completed booking's billing to the sum of the visit's
// prescription totals, then reconciles. A patient without such a booking or
// billing is left untouched.
func rollupMedicineFee(ctx context.Context, tx *sqlx.Tx, recordID uuid.UUID) error {
	bookingQuery := `
		SELECT b.id
		FROM bookings b
		JOIN users u ON u.email = b.patient_email
		JOIN patients p ON p.user_id = u.id
		JOIN medical_records mr ON mr.patient_id = p.id
		WHERE mr.id = $1 AND b.status IN ('Confirmed', 'Completed')
		ORDER BY b.date DESC, b.time DESC
		LIMIT 1
	`
	var bookingID uuid.UUID
	err := tx.GetContext(ctx, &bookingID, bookingQuery, recordID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to find booking for fee rollup: %w", err)
	}

	var billingID uuid.UUID
	err = tx.GetContext(ctx, &billingID, `SELECT id FROM billings WHERE booking_id = $1 FOR UPDATE`, bookingID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to find billing for fee rollup: %w", err)
	}

	update := `
		UPDATE billings
		SET medicine_fee = (
			SELECT COALESCE(SUM(total_price), 0)
			FROM prescriptions
			WHERE medical_record_id = $2
		), updated_at = NOW()
		WHERE id = $1
	`
	if _, err := tx.ExecContext(ctx, update, billingID, recordID); err != nil {
		return fmt.Errorf("failed to roll up medicine fee: %w", err)
	}

	_, err = reconcileBilling(ctx, tx, billingID)
	return err
}
