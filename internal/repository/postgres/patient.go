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

const patientColumns = `
	id, user_id, date_of_birth, gender, phone, address,
	emergency_contact_name, emergency_contact_phone, blood_type, allergies,
	current_medications, medical_history, created_by, created_at, updated_at
`

// Create registers a patient together with their account, used by staff for
// direct registration (the provisioning pipeline has its own path).
func (r *patientRepository) Create(ctx context.Context, patient *model.Patient, user *model.User) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		now := time.Now()
		user.ID = uuid.New()
		user.CreatedAt = now
		user.UpdatedAt = now

		userQuery := `
			INSERT INTO users (
				id, username, email, password_hash, first_name, last_name,
				is_staff, is_active, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`
		_, err := tx.ExecContext(ctx, userQuery,
			user.ID,
			user.Username,
			user.Email,
			user.PasswordHash,
			user.FirstName,
			user.LastName,
			user.IsStaff,
			user.IsActive,
			user.CreatedAt,
			user.UpdatedAt,
		)
		if isUniqueViolation(err) {
			return fmt.Errorf("account already exists for %s: %w", user.Email, err)
		}
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		patient.ID = uuid.New()
		patient.UserID = user.ID
		patient.CreatedAt = now
		patient.UpdatedAt = now

		patientQuery := `
			INSERT INTO patients (
				id, user_id, date_of_birth, gender, phone, address,
				emergency_contact_name, emergency_contact_phone, blood_type,
				allergies, current_medications, medical_history, created_by,
				created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		`
		if _, err := tx.ExecContext(ctx, patientQuery,
			patient.ID,
			patient.UserID,
			patient.DateOfBirth,
			patient.Gender,
			patient.Phone,
			patient.Address,
			patient.EmergencyContactName,
			patient.EmergencyContactPhone,
			patient.BloodType,
			patient.Allergies,
			patient.CurrentMedications,
			patient.MedicalHistory,
			patient.CreatedBy,
			patient.CreatedAt,
			patient.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to create patient: %w", err)
		}
		return nil
	})
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE id = $1`

	var patient model.Patient
	err := r.db.GetContext(ctx, &patient, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) GetByUser(ctx context.Context, userID uuid.UUID) (*model.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE user_id = $1`

	var patient model.Patient
	err := r.db.GetContext(ctx, &patient, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	query := `
		UPDATE patients
		SET date_of_birth = $1, gender = $2, phone = $3, address = $4,
			emergency_contact_name = $5, emergency_contact_phone = $6,
			blood_type = $7, allergies = $8, current_medications = $9,
			medical_history = $10, updated_at = $11
		WHERE id = $12
	`
	patient.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		patient.DateOfBirth,
		patient.Gender,
		patient.Phone,
		patient.Address,
		patient.EmergencyContactName,
		patient.EmergencyContactPhone,
		patient.BloodType,
		patient.Allergies,
		patient.CurrentMedications,
		patient.MedicalHistory,
		patient.UpdatedAt,
		patient.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
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

func (r *patientRepository) List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error) {
	query := `
		SELECT p.id, p.user_id, p.date_of_birth, p.gender, p.phone, p.address,
			   p.emergency_contact_name, p.emergency_contact_phone, p.blood_type,
			   p.allergies, p.current_medications, p.medical_history,
			   p.created_by, p.created_at, p.updated_at
		FROM patients p
		JOIN users u ON u.id = p.user_id
		WHERE 1=1
	`
	args := []interface{}{}
	argCount := 1

	if filters != nil {
		if filters.SearchTerm != "" {
			query += fmt.Sprintf(" AND (u.first_name ILIKE $%d OR u.last_name ILIKE $%d OR u.email ILIKE $%d)", argCount, argCount, argCount)
			args = append(args, "%"+filters.SearchTerm+"%")
			argCount++
		}
		if filters.BloodType != "" {
			query += fmt.Sprintf(" AND p.blood_type = $%d", argCount)
			args = append(args, filters.BloodType)
			argCount++
		}
	}

	query += " ORDER BY u.last_name, u.first_name"

	var patients []*model.Patient
	if err := r.db.SelectContext(ctx, &patients, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}
