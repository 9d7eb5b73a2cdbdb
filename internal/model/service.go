package model

import "github.com/shopspring/decimal"

// Service is a clinic service offering. Its price seeds the service fee of
// billings created by the provisioning pipeline.
type Service struct {
	Base
	Name            string          `db:"name" json:"name"`
	Description     string          `db:"description" json:"description,omitempty"`
	Price           decimal.Decimal `db:"price" json:"price"`
	DurationMinutes int             `db:"duration_minutes" json:"duration_minutes"`
	IsActive        bool            `db:"is_active" json:"is_active"`
}
