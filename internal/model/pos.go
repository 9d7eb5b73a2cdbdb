package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/shopspring/decimal"
)

type SaleStatus string

const (
	SaleStatusPending   SaleStatus = "Pending"
	SaleStatusCompleted SaleStatus = "Completed"
	SaleStatusCancelled SaleStatus = "Cancelled"
	SaleStatusRefunded  SaleStatus = "Refunded"
)

type SaleType string

const (
	SaleTypeWalkIn  SaleType = "Walk-in"
	SaleTypePatient SaleType = "Patient"
)

var hundred = decimal.NewFromInt(100)

// POSSale is a point-of-sale transaction. Subtotal is the sum of the child
// line items; the remaining money fields derive from it on every recompute.
type POSSale struct {
	Base
	ReceiptNumber   string          `db:"receipt_number" json:"receipt_number"`
	SaleType        SaleType        `db:"sale_type" json:"sale_type"`
	PatientID       *uuid.UUID      `db:"patient_id" json:"patient_id,omitempty"`
	CustomerName    string          `db:"customer_name" json:"customer_name"`
	Subtotal        decimal.Decimal `db:"subtotal" json:"subtotal"`
	DiscountPercent decimal.Decimal `db:"discount_percent" json:"discount_percent"`
	DiscountAmount  decimal.Decimal `db:"discount_amount" json:"discount_amount"`
	TaxPercent      decimal.Decimal `db:"tax_percent" json:"tax_percent"`
	TaxAmount       decimal.Decimal `db:"tax_amount" json:"tax_amount"`
	TotalAmount     decimal.Decimal `db:"total_amount" json:"total_amount"`
	PaymentMethod   PaymentMethod   `db:"payment_method" json:"payment_method"`
	AmountReceived  decimal.Decimal `db:"amount_received" json:"amount_received"`
	ChangeAmount    decimal.Decimal `db:"change_amount" json:"change_amount"`
	ReferenceNumber string          `db:"reference_number" json:"reference_number,omitempty"`
	Status          SaleStatus      `db:"status" json:"status"`
	Notes           string          `db:"notes" json:"notes,omitempty"`
	CreatedBy       *uuid.UUID      `db:"created_by" json:"created_by,omitempty"`
}

// RecomputeTotals derives discount, tax, total and change from the subtotal
// and the author-settable percent fields.
func (s *POSSale) RecomputeTotals() {
	s.DiscountAmount = s.Subtotal.Mul(s.DiscountPercent).Div(hundred)
	afterDiscount := s.Subtotal.Sub(s.DiscountAmount)
	s.TaxAmount = afterDiscount.Mul(s.TaxPercent).Div(hundred)
	s.TotalAmount = afterDiscount.Add(s.TaxAmount)

	change := s.AmountReceived.Sub(s.TotalAmount)
	if change.IsNegative() {
		change = decimal.Zero
	}
	s.ChangeAmount = change
}

// EnsureReceiptNumber assigns the timestamp-derived receipt number on first
// save. Never regenerated afterwards.
func (s *POSSale) EnsureReceiptNumber(now time.Time) {
	if s.ReceiptNumber == "" {
		s.ReceiptNumber = "REC-" + now.Format("20060102150405")
	}
}

// Finalized reports whether the sale has left the Pending/Completed flow.
// Cancelled and refunded sales reject further line item edits.
func (s *POSSale) Finalized() bool {
	return s.Status == SaleStatusCancelled || s.Status == SaleStatusRefunded
}

// POSSaleItem is a line item of a sale. Its inventory effects are gated by
// the parent sale's status at the time of the mutation.
type POSSaleItem struct {
	Base
	SaleID    uuid.UUID       `db:"sale_id" json:"sale_id"`
	ItemID    uuid.UUID       `db:"item_id" json:"item_id"`
	Quantity  int             `db:"quantity" json:"quantity"`
	UnitPrice decimal.Decimal `db:"unit_price" json:"unit_price"`
	LineTotal decimal.Decimal `db:"line_total" json:"line_total"`
	Notes     string          `db:"notes" json:"notes,omitempty"`
}

// RecomputeLineTotal derives the line total from quantity and unit price.
func (i *POSSaleItem) RecomputeLineTotal() {
	i.LineTotal = i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type CreateSaleRequest struct {
	SaleType        string          `json:"sale_type" binding:"required,oneof=Walk-in Patient"`
	PatientID       string          `json:"patient_id" binding:"omitempty,uuid"`
	CustomerName    string          `json:"customer_name" binding:"required,max=100"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	TaxPercent      decimal.Decimal `json:"tax_percent"`
	PaymentMethod   string          `json:"payment_method" binding:"required,payment_method"`
	AmountReceived  decimal.Decimal `json:"amount_received"`
	ReferenceNumber string          `json:"reference_number" binding:"max=100"`
	Notes           string          `json:"notes"`
}

type AddSaleItemRequest struct {
	ItemID    string           `json:"item_id" binding:"required,uuid"`
	Quantity  int              `json:"quantity" binding:"required,min=1"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
	Notes     string           `json:"notes" binding:"max=255"`
}

type SaleFilters struct {
	Status    SaleStatus
	StartDate time.Time
	EndDate   time.Time
}
