package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProvisioningParams carries everything the consultation-done transition
// needs to create the downstream records. Built by the booking service
// outside the transaction; the repository applies it atomically against the
// row-locked booking.
type ProvisioningParams struct {
	// Account fields for the upserted user, keyed by the booking email.
	UsernameBase string
	FirstName    string
	LastName     string
	PasswordHash string
	// ResetToken is stored for the provisioned account so the emailed
	// password-reset link can be validated later.
	ResetToken       string
	ResetTokenExpiry time.Time

	// Patient placeholder defaults for first-time provisioning.
	DateOfBirth time.Time
	Gender      Gender

	// Medical record seed values.
	VisitDate      time.Time
	ChiefComplaint string
	Symptoms       string
	Diagnosis      string
	TreatmentPlan  string

	// ServiceFee is the resolved fee for the billing: the booked service's
	// price when positive, otherwise the configured default consultation fee.
	ServiceFee   decimal.Decimal
	BillingNotes string
}
