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

const bookingColumns = `
	id, patient_name, patient_email, patient_phone, date, time, service_id,
	status, consultation_status, notes, created_by, created_at, updated_at
`

func (r *bookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	query := `
		INSERT INTO bookings (
			id, patient_name, patient_email, patient_phone, date, time,
			service_id, status, consultation_status, notes, created_by,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	booking.ID = uuid.New()
	booking.Status = model.BookingStatusPending
	booking.Consultation = model.ConsultationNotYet
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		booking.ID,
		booking.PatientName,
		booking.PatientEmail,
		booking.PatientPhone,
		booking.Date,
		booking.Time,
		booking.ServiceID,
		booking.Status,
		booking.Consultation,
		booking.Notes,
		booking.CreatedBy,
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return model.ErrSlotTaken
	}
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (r *bookingRepository) Get(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	var booking model.Booking
	err := r.db.GetContext(ctx, &booking, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

func (r *bookingRepository) List(ctx context.Context, filters *model.BookingFilters) ([]*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE 1=1`
	args := []interface{}{}
	argCount := 1

	if filters != nil {
		if filters.Status != "" {
			query += fmt.Sprintf(" AND status = $%d", argCount)
			args = append(args, filters.Status)
			argCount++
		}
		if filters.Consultation != "" {
			query += fmt.Sprintf(" AND consultation_status = $%d", argCount)
			args = append(args, filters.Consultation)
			argCount++
		}
		if filters.PatientEmail != "" {
			query += fmt.Sprintf(" AND patient_email = $%d", argCount)
			args = append(args, filters.PatientEmail)
			argCount++
		}
		if !filters.StartDate.IsZero() {
			query += fmt.Sprintf(" AND date >= $%d", argCount)
			args = append(args, filters.StartDate)
			argCount++
		}
		if !filters.EndDate.IsZero() {
			query += fmt.Sprintf(" AND date <= $%d", argCount)
			args = append(args, filters.EndDate)
			argCount++
		}
	}

	query += " ORDER BY date DESC, time DESC"

	var bookings []*model.Booking
	if err := r.db.SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

func (r *bookingRepository) SlotTaken(ctx context.Context, date time.Time, timeSlot string, excludeID *uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE date = $1 AND time = $2 AND status != 'Cancelled'
	`
	args := []interface{}{date, timeSlot}

	if excludeID != nil {
		query += " AND id != $3"
		args = append(args, *excludeID)
	}

	query += ")"

	var taken bool
	if err := r.db.GetContext(ctx, &taken, query, args...); err != nil {
		return false, fmt.Errorf("failed to check slot: %w", err)
	}
	return taken, nil
}

// lockBooking re-reads the authoritative row state under a row lock. All
// transition decisions are made against this copy, never an in-memory one.
func lockBooking(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 FOR UPDATE`

	var booking model.Booking
	err := tx.GetContext(ctx, &booking, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock booking: %w", err)
	}
	return &booking, nil
}

func setBookingStatus(ctx context.Context, tx *sqlx.Tx, booking *model.Booking) error {
	query := `
		UPDATE bookings
		SET status = $1, consultation_status = $2, updated_at = $3
		WHERE id = $4
	`
	booking.UpdatedAt = time.Now()
	_, err := tx.ExecContext(ctx, query, booking.Status, booking.Consultation, booking.UpdatedAt, booking.ID)
	return err
}

func (r *bookingRepository) Confirm(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	var confirmed *model.Booking

	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		booking, err := lockBooking(ctx, tx, id)
		if err != nil {
			return err
		}

		switch booking.Status {
		case model.BookingStatusConfirmed:
			return model.ErrAlreadyTransitioned
		case model.BookingStatusPending:
		default:
			return fmt.Errorf("%w: cannot confirm a %s booking", model.ErrInvalidTransition, booking.Status)
		}

		booking.Status = model.BookingStatusConfirmed
		if err := setBookingStatus(ctx, tx, booking); err != nil {
			return fmt.Errorf("failed to confirm booking: %w", err)
		}

		// Idempotent by the (name, email, date, time) natural key: a retried
		// confirmation cannot duplicate the legacy appointment row.
		appointmentQuery := `
			INSERT INTO appointments (
				id, name, email, phone, date, time, message, status,
				consultation_status, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, 'Confirmed', 'Not Yet', $8, $8)
			ON CONFLICT (name, email, date, time) DO NOTHING
		`
		if _, err := tx.ExecContext(ctx, appointmentQuery,
			uuid.New(),
			booking.PatientName,
			booking.PatientEmail,
			booking.PatientPhone,
			booking.Date,
			booking.Time,
			booking.Notes,
			time.Now(),
		); err != nil {
			return fmt.Errorf("failed to upsert appointment: %w", err)
		}

		if err := insertOutboxEvent(ctx, tx, model.EventBookingConfirmed, booking); err != nil {
			return fmt.Errorf("failed to append outbox event: %w", err)
		}

		confirmed = booking
		return nil
	})
	if err != nil {
		return nil, err
	}
	return confirmed, nil
}

func (r *bookingRepository) StartConsultation(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	var updated *model.Booking

	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		booking, err := lockBooking(ctx, tx, id)
		if err != nil {
			return err
		}

		if booking.Status != model.BookingStatusConfirmed {
			return fmt.Errorf("%w: consultation requires a confirmed booking", model.ErrInvalidTransition)
		}
		switch booking.Consultation {
		case model.ConsultationOngoing:
			return model.ErrAlreadyTransitioned
		case model.ConsultationNotYet:
		default:
			return fmt.Errorf("%w: consultation already done", model.ErrInvalidTransition)
		}

		booking.Consultation = model.ConsultationOngoing
		if err := setBookingStatus(ctx, tx, booking); err != nil {
			return fmt.Errorf("failed to start consultation: %w", err)
		}

		updated = booking
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *bookingRepository) Cancel(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	var cancelled *model.Booking

	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		booking, err := lockBooking(ctx, tx, id)
		if err != nil {
			return err
		}

		if booking.Status == model.BookingStatusCancelled {
			return model.ErrAlreadyTransitioned
		}
		if !booking.CanCancel() {
			return fmt.Errorf("%w: cannot cancel a %s booking", model.ErrInvalidTransition, booking.Status)
		}

		booking.Status = model.BookingStatusCancelled
		if err := setBookingStatus(ctx, tx, booking); err != nil {
			return fmt.Errorf("failed to cancel booking: %w", err)
		}

		if err := insertOutboxEvent(ctx, tx, model.EventBookingCancelled, booking); err != nil {
			return fmt.Errorf("failed to append outbox event: %w", err)
		}

		cancelled = booking
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}

// CompleteConsultation runs the whole provisioning pipeline in one
// transaction: account, patient profile, medical record and billing, then
// the booking's own move to Completed. Any failure rolls the entire graph
// back, including the status change itself.
func (r *bookingRepository) CompleteConsultation(ctx context.Context, id uuid.UUID, params *model.ProvisioningParams) (*model.ProvisioningResult, error) {
	var result model.ProvisioningResult

	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		booking, err := lockBooking(ctx, tx, id)
		if err != nil {
			return err
		}

		if booking.Consultation == model.ConsultationDone {
			return model.ErrAlreadyTransitioned
		}
		if booking.Status != model.BookingStatusConfirmed {
			return fmt.Errorf("%w: consultation requires a confirmed booking", model.ErrInvalidTransition)
		}

		userID, userCreated, err := upsertUser(ctx, tx, booking, params)
		if err != nil {
			return err
		}
		result.UserID = userID
		result.UserCreated = userCreated

		if userCreated {
			result.ResetToken = params.ResetToken
			if err := storeResetToken(ctx, tx, userID, params); err != nil {
				return err
			}
		}

		patientID, patientCreated, err := upsertPatient(ctx, tx, userID, booking, params)
		if err != nil {
			return err
		}
		result.PatientID = patientID
		result.PatientCreated = patientCreated

		recordID, err := insertMedicalRecord(ctx, tx, patientID, booking, params)
		if err != nil {
			return err
		}
		result.MedicalRecordID = recordID

		billingID, billingCreated, err := upsertBilling(ctx, tx, booking.ID, params)
		if err != nil {
			return err
		}
		result.BillingID = billingID
		result.BillingCreated = billingCreated

		booking.Status = model.BookingStatusCompleted
		booking.Consultation = model.ConsultationDone
		if err := setBookingStatus(ctx, tx, booking); err != nil {
			return fmt.Errorf("failed to complete booking: %w", err)
		}

		payload := struct {
			BookingID uuid.UUID `json:"booking_id"`
			model.ProvisioningResult
		}{booking.ID, result}
		if err := insertOutboxEvent(ctx, tx, model.EventConsultationCompleted, payload); err != nil {
			return fmt.Errorf("failed to append outbox event: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// upsertUser creates the account keyed by the booking email, or fetches the
// existing one. The unique index on email makes this safe without
// application-level locking.
func upsertUser(ctx context.Context, tx *sqlx.Tx, booking *model.Booking, params *model.ProvisioningParams) (uuid.UUID, bool, error) {
	username, err := availableUsername(ctx, tx, params.UsernameBase)
	if err != nil {
		return uuid.Nil, false, err
	}

	insert := `
		INSERT INTO users (
			id, username, email, password_hash, first_name, last_name,
			is_staff, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, FALSE, FALSE, $7, $7)
		ON CONFLICT (email) DO NOTHING
	`
	res, err := tx.ExecContext(ctx, insert,
		uuid.New(),
		username,
		booking.PatientEmail,
		params.PasswordHash,
		params.FirstName,
		params.LastName,
		time.Now(),
	)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("failed to upsert user: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	var userID uuid.UUID
	if err := tx.GetContext(ctx, &userID, `SELECT id FROM users WHERE email = $1`, booking.PatientEmail); err != nil {
		return uuid.Nil, false, fmt.Errorf("failed to fetch user: %w", err)
	}
	return userID, rows > 0, nil
}

// availableUsername resolves username collisions with a numeric suffix,
// checking inside the provisioning transaction.
func availableUsername(ctx context.Context, tx *sqlx.Tx, base string) (string, error) {
	username := base
	for counter := 1; ; counter++ {
		var exists bool
		if err := tx.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username); err != nil {
			return "", fmt.Errorf("failed to check username: %w", err)
		}
		if !exists {
			return username, nil
		}
		username = fmt.Sprintf("%s%d", base, counter)
	}
}

func storeResetToken(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, params *model.ProvisioningParams) error {
	query := `
		INSERT INTO password_reset_tokens (id, user_id, token, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := tx.ExecContext(ctx, query, uuid.New(), userID, params.ResetToken, params.ResetTokenExpiry, time.Now()); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}
	return nil
}

func upsertPatient(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, booking *model.Booking, params *model.ProvisioningParams) (uuid.UUID, bool, error) {
	insert := `
		INSERT INTO patients (
			id, user_id, date_of_birth, gender, phone, blood_type,
			created_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, 'UK', $6, $7, $7)
		ON CONFLICT (user_id) DO NOTHING
	`
	res, err := tx.ExecContext(ctx, insert,
		uuid.New(),
		userID,
		params.DateOfBirth,
		params.Gender,
		booking.PatientPhone,
		booking.CreatedBy,
		time.Now(),
	)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("failed to upsert patient: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	var patientID uuid.UUID
	if err := tx.GetContext(ctx, &patientID, `SELECT id FROM patients WHERE user_id = $1`, userID); err != nil {
		return uuid.Nil, false, fmt.Errorf("failed to fetch patient: %w", err)
	}
	return patientID, rows > 0, nil
}

func insertMedicalRecord(ctx context.Context, tx *sqlx.Tx, patientID uuid.UUID, booking *model.Booking, params *model.ProvisioningParams) (uuid.UUID, error) {
	query := `
		INSERT INTO medical_records (
			id, patient_id, visit_date, chief_complaint, symptoms, diagnosis,
			treatment_plan, created_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
	`
	recordID := uuid.New()
	if _, err := tx.ExecContext(ctx, query,
		recordID,
		patientID,
		params.VisitDate,
		params.ChiefComplaint,
		params.Symptoms,
		params.Diagnosis,
		params.TreatmentPlan,
		booking.CreatedBy,
		time.Now(),
	); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create medical record: %w", err)
	}
	return recordID, nil
}

func upsertBilling(ctx context.Context, tx *sqlx.Tx, bookingID uuid.UUID, params *model.ProvisioningParams) (uuid.UUID, bool, error) {
	// A new billing has no payments: balance seeds to the total.
	insert := `
		INSERT INTO billings (
			id, booking_id, service_fee, medicine_fee, additional_fee, discount,
			total_amount, amount_paid, balance, is_paid, notes, created_at, updated_at
		) VALUES ($1, $2, $3, 0, 0, 0, $3, 0, $3, FALSE, $4, $5, $5)
		ON CONFLICT (booking_id) DO NOTHING
	`
	res, err := tx.ExecContext(ctx, insert,
		uuid.New(),
		bookingID,
		params.ServiceFee,
		params.BillingNotes,
		time.Now(),
	)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("failed to upsert billing: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	var billingID uuid.UUID
	if err := tx.GetContext(ctx, &billingID, `SELECT id FROM billings WHERE booking_id = $1`, bookingID); err != nil {
		return uuid.Nil, false, fmt.Errorf("failed to fetch billing: %w", err)
	}
	return billingID, rows > 0, nil
}
