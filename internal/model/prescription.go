package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/shopspring/decimal"
)

// Prescription is a medicine prescribed during a visit. Inventory-backed
// prescriptions deduct stock on creation; custom (free-text) medicines do
// not touch inventory.
type Prescription struct {
	Base
	MedicalRecordID uuid.UUID `db:"medical_record_id" json:"medical_record_id"`
	// MedicineID references an inventory item; nil for custom medicines.
	MedicineID         *uuid.UUID      `db:"medicine_id" json:"medicine_id,omitempty"`
	CustomMedicineName string          `db:"custom_medicine_name" json:"custom_medicine_name,omitempty"`
	Quantity           int             `db:"quantity" json:"quantity"`
	Dosage             string          `db:"dosage" json:"dosage"`
	Duration           string          `db:"duration" json:"duration,omitempty"`
	Instructions       string          `db:"instructions" json:"instructions,omitempty"`
	UnitPrice          decimal.Decimal `db:"unit_price" json:"unit_price"`
	TotalPrice         decimal.Decimal `db:"total_price" json:"total_price"`
	PrescribedAt       time.Time       `db:"prescribed_at" json:"prescribed_at"`
	PrescribedBy       *uuid.UUID      `db:"prescribed_by" json:"prescribed_by,omitempty"`
}

// RecomputeTotal derives the total price from unit price and quantity.
func (p *Prescription) RecomputeTotal() {
	p.TotalPrice = p.UnitPrice.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

type PrescribeRequest struct {
	MedicineID         string          `json:"medicine_id" binding:"omitempty,uuid"`
	CustomMedicineName string          `json:"custom_medicine_name" binding:"max=255"`
	Quantity           int             `json:"quantity" binding:"required,min=1"`
	Dosage             string          `json:"dosage" binding:"required,max=100"`
	Duration           string          `json:"duration" binding:"max=100"`
	Instructions       string          `json:"instructions"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
}
