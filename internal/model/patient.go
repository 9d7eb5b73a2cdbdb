package model

import (
	"time"

	"github.com/google/uuid"
)

type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
	GenderOther  Gender = "O"
)

// Patient extends a user account with demographic and medical fields.
// Exactly one patient per account; auto-provisioned patients carry
// placeholder DOB/gender until staff update them.
type Patient struct {
	Base
	UserID                uuid.UUID  `db:"user_id" json:"user_id"`
	DateOfBirth           time.Time  `db:"date_of_birth" json:"date_of_birth"`
	Gender                Gender     `db:"gender" json:"gender"`
	Phone                 string     `db:"phone" json:"phone,omitempty"`
	Address               string     `db:"address" json:"address,omitempty"`
	EmergencyContactName  string     `db:"emergency_contact_name" json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone string     `db:"emergency_contact_phone" json:"emergency_contact_phone,omitempty"`
	BloodType             string     `db:"blood_type" json:"blood_type"`
	Allergies             string     `db:"allergies" json:"allergies,omitempty"`
	CurrentMedications    string     `db:"current_medications" json:"current_medications,omitempty"`
	MedicalHistory        string     `db:"medical_history" json:"medical_history,omitempty"`
	CreatedBy             *uuid.UUID `db:"created_by" json:"created_by,omitempty"`
}

type CreatePatientRequest struct {
	Email                 string `json:"email" binding:"required,email"`
	FirstName             string `json:"first_name" binding:"required,max=100"`
	LastName              string `json:"last_name" binding:"max=100"`
	DateOfBirth           string `json:"date_of_birth" binding:"required"`
	Gender                string `json:"gender" binding:"required,oneof=M F O"`
	Phone                 string `json:"phone" binding:"max=17"`
	Address               string `json:"address"`
	EmergencyContactName  string `json:"emergency_contact_name" binding:"max=100"`
	EmergencyContactPhone string `json:"emergency_contact_phone" binding:"max=17"`
	BloodType             string `json:"blood_type"`
	Allergies             string `json:"allergies"`
}

type PatientFilters struct {
	SearchTerm string
	BloodType  string
}
