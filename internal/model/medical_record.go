package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/shopspring/decimal"
)

// MedicalRecord is one clinical visit entry owned by a patient. Created once
// per consultation-done transition; afterwards mutated only through explicit
// staff edits.
type MedicalRecord struct {
	Base
	PatientID      uuid.UUID  `db:"patient_id" json:"patient_id"`
	VisitDate      time.Time  `db:"visit_date" json:"visit_date"`
	ChiefComplaint string     `db:"chief_complaint" json:"chief_complaint"`
	Symptoms       string     `db:"symptoms" json:"symptoms,omitempty"`
	Diagnosis      string     `db:"diagnosis" json:"diagnosis,omitempty"`
	TreatmentPlan  string     `db:"treatment_plan" json:"treatment_plan,omitempty"`
	Vitals
	FollowUpDate *time.Time `db:"follow_up_date" json:"follow_up_date,omitempty"`
	Notes        string     `db:"additional_notes" json:"additional_notes,omitempty"`
	CreatedBy    *uuid.UUID `db:"created_by" json:"created_by,omitempty"`
}

// Vitals are the optional vital signs captured during a visit.
type Vitals struct {
	Temperature *decimal.Decimal `db:"temperature" json:"temperature,omitempty"`
	BPSystolic  *int             `db:"bp_systolic" json:"bp_systolic,omitempty"`
	BPDiastolic *int             `db:"bp_diastolic" json:"bp_diastolic,omitempty"`
	HeartRate   *int             `db:"heart_rate" json:"heart_rate,omitempty"`
	Weight      *decimal.Decimal `db:"weight" json:"weight,omitempty"`
	Height      *decimal.Decimal `db:"height" json:"height,omitempty"`
}

type UpdateMedicalRecordRequest struct {
	ChiefComplaint *string `json:"chief_complaint"`
	Symptoms       *string `json:"symptoms"`
	Diagnosis      *string `json:"diagnosis"`
	TreatmentPlan  *string `json:"treatment_plan"`
	FollowUpDate   *string `json:"follow_up_date"`
	Notes          *string `json:"additional_notes"`
}
