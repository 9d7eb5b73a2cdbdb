package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/rmagtibay/clinic-api/internal/model"
)

func (r *appointmentRepository) List(ctx context.Context, startDate, endDate time.Time) ([]*model.Appointment, error) {
	query := `
		SELECT id, name, email, phone, date, time, message, status,
			   consultation_status, created_at, updated_at
		FROM appointments
		WHERE 1=1
	`
	args := []interface{}{}
	argCount := 1

	if !startDate.IsZero() {
		query += fmt.Sprintf(" AND date >= $%d", argCount)
		args = append(args, startDate)
		argCount++
	}
	if !endDate.IsZero() {
		query += fmt.Sprintf(" AND date <= $%d", argCount)
		args = append(args, endDate)
		argCount++
	}

	query += " ORDER BY date ASC, time ASC"

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}
