package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rmagtibay/clinic-api/internal/model"
)

const medicalRecordColumns = `
	id, patient_id, visit_date, chief_complaint, symptoms, diagnosis,
	treatment_plan, temperature, bp_systolic, bp_diastolic, heart_rate,
	weight, height, follow_up_date, additional_notes, created_by,
	created_at, updated_at
`

func (r *medicalRecordRepository) Get(ctx context.Context, id uuid.UUID) (*model.MedicalRecord, error) {
	query := `SELECT ` + medicalRecordColumns + ` FROM medical_records WHERE id = $1`

	var record model.MedicalRecord
	err := r.db.GetContext(ctx, &record, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get medical record: %w", err)
	}
	return &record, nil
}

func (r *medicalRecordRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.MedicalRecord, error) {
	query := `SELECT ` + medicalRecordColumns + ` FROM medical_records WHERE patient_id = $1 ORDER BY visit_date DESC`

	var records []*model.MedicalRecord
	if err := r.db.SelectContext(ctx, &records, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list medical records: %w", err)
	}
	return records, nil
}

func (r *medicalRecordRepository) Update(ctx context.Context, record *model.MedicalRecord) error {
	query := `
		UPDATE medical_records
		SET chief_complaint = $1, symptoms = $2, diagnosis = $3,
			treatment_plan = $4, temperature = $5, bp_systolic = $6,
			bp_diastolic = $7, heart_rate = $8, weight = $9, height = $10,
			follow_up_date = $11, additional_notes = $12, updated_at = $13
		WHERE id = $14
	`
	record.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		record.ChiefComplaint,
		record.Symptoms,
		record.Diagnosis,
		record.TreatmentPlan,
		record.Temperature,
		record.BPSystolic,
		record.BPDiastolic,
		record.HeartRate,
		record.Weight,
		record.Height,
		record.FollowUpDate,
		record.Notes,
		record.UpdatedAt,
		record.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update medical record: %w", err)
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
