package model

import "time"

// Appointment is the legacy appointment list entry, kept for the staff
// calendar views. One row is upserted per confirmed booking, keyed on
// (name, email, date, time) so re-running the confirmation is idempotent.
type Appointment struct {
	Base
	Name         string             `db:"name" json:"name"`
	Email        string             `db:"email" json:"email"`
	Phone        string             `db:"phone" json:"phone"`
	Date         time.Time          `db:"date" json:"date"`
	Time         string             `db:"time" json:"time"`
	Message      string             `db:"message" json:"message,omitempty"`
	Status       BookingStatus      `db:"status" json:"status"`
	Consultation ConsultationStatus `db:"consultation_status" json:"consultation_status"`
}
