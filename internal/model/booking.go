package model

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "Pending"
	BookingStatusConfirmed BookingStatus = "Confirmed"
	BookingStatusCompleted BookingStatus = "Completed"
	BookingStatusCancelled BookingStatus = "Cancelled"
)

type ConsultationStatus string

const (
	ConsultationNotYet  ConsultationStatus = "Not Yet"
	ConsultationOngoing ConsultationStatus = "Ongoing"
	ConsultationDone    ConsultationStatus = "Done"
)

// Booking is a requested appointment and the root trigger of the
// provisioning pipeline. Patient contact details are plain fields, not a
// foreign key: the Patient record may not exist until the consultation
// completes.
type Booking struct {
	Base
	PatientName  string             `db:"patient_name" json:"patient_name"`
	PatientEmail string             `db:"patient_email" json:"patient_email"`
	PatientPhone string             `db:"patient_phone" json:"patient_phone"`
	Date         time.Time          `db:"date" json:"date"`
	Time         string             `db:"time" json:"time"`
	ServiceID    uuid.UUID          `db:"service_id" json:"service_id"`
	Status       BookingStatus      `db:"status" json:"status"`
	Consultation ConsultationStatus `db:"consultation_status" json:"consultation_status"`
	Notes        string             `db:"notes" json:"notes,omitempty"`
	CreatedBy    *uuid.UUID         `db:"created_by" json:"created_by,omitempty"`
}

// CanCancel reports whether the booking may still be cancelled. Completed
// bookings are immutable.
func (b *Booking) CanCancel() bool {
	return b.Status == BookingStatusPending || b.Status == BookingStatusConfirmed
}

type CreateBookingRequest struct {
	PatientName  string `json:"patient_name" binding:"required,max=100"`
	PatientEmail string `json:"patient_email" binding:"required,email"`
	PatientPhone string `json:"patient_phone" binding:"required,max=15"`
	Date         string `json:"date" binding:"required"`
	Time         string `json:"time" binding:"required"`
	ServiceID    string `json:"service_id" binding:"required,uuid"`
	Notes        string `json:"notes" binding:"max=2000"`
}

type BookingFilters struct {
	Status       BookingStatus
	Consultation ConsultationStatus
	PatientEmail string
	StartDate    time.Time
	EndDate      time.Time
}

// ProvisioningResult reports what the consultation-done transition created.
// Existing records found by their natural keys are returned with the created
// flags unset.
type ProvisioningResult struct {
	UserID          uuid.UUID `json:"user_id"`
	UserCreated     bool      `json:"user_created"`
	PatientID       uuid.UUID `json:"patient_id"`
	PatientCreated  bool      `json:"patient_created"`
	MedicalRecordID uuid.UUID `json:"medical_record_id"`
	BillingID       uuid.UUID `json:"billing_id"`
	BillingCreated  bool      `json:"billing_created"`
	// ResetToken is set only when a new account was provisioned; the caller
	// mails it to the patient.
	ResetToken string `json:"-"`
}
