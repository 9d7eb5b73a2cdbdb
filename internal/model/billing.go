package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "Cash"
	PaymentMethodGCash        PaymentMethod = "GCash"
	PaymentMethodBankTransfer PaymentMethod = "Bank Transfer"
	PaymentMethodCard         PaymentMethod = "Card"
	PaymentMethodOther        PaymentMethod = "Other"
)

// Billing is the one-to-one financial record for a booking. The fee fields
// are author-settable; TotalAmount, AmountPaid, Balance and IsPaid are
// derived and must only change through RecomputeTotal/Reconcile.
type Billing struct {
	Base
	BookingID     uuid.UUID       `db:"booking_id" json:"booking_id"`
	ServiceFee    decimal.Decimal `db:"service_fee" json:"service_fee"`
	MedicineFee   decimal.Decimal `db:"medicine_fee" json:"medicine_fee"`
	AdditionalFee decimal.Decimal `db:"additional_fee" json:"additional_fee"`
	Discount      decimal.Decimal `db:"discount" json:"discount"`
	TotalAmount   decimal.Decimal `db:"total_amount" json:"total_amount"`
	AmountPaid    decimal.Decimal `db:"amount_paid" json:"amount_paid"`
	Balance       decimal.Decimal `db:"balance" json:"balance"`
	IsPaid        bool            `db:"is_paid" json:"is_paid"`
	Notes         string          `db:"notes" json:"notes,omitempty"`
}

// RecomputeTotal derives the total from the fee fields. Runs before every
// persist; on a new billing the balance seeds to the total (no payments yet).
func (b *Billing) RecomputeTotal() {
	b.TotalAmount = b.ServiceFee.Add(b.MedicineFee).Add(b.AdditionalFee).Sub(b.Discount)
}

// Reconcile derives the payment fields from the sum of all payments under
// this billing. Overpayment yields a negative balance and still counts as
// paid.
func (b *Billing) Reconcile(paymentTotal decimal.Decimal) {
	b.AmountPaid = paymentTotal
	b.Balance = b.TotalAmount.Sub(paymentTotal)
	b.IsPaid = b.Balance.LessThanOrEqual(decimal.Zero)
}

// StatusText returns the human-readable payment status.
func (b *Billing) StatusText() string {
	switch {
	case b.IsPaid:
		return "Fully Paid"
	case b.AmountPaid.GreaterThan(decimal.Zero):
		return "Partially Paid"
	default:
		return "Unpaid"
	}
}

// Payment is an immutable financial event under a billing. Creating one
// triggers reconciliation of the parent, never the reverse.
type Payment struct {
	Base
	BillingID       uuid.UUID       `db:"billing_id" json:"billing_id"`
	AmountPaid      decimal.Decimal `db:"amount_paid" json:"amount_paid"`
	Method          PaymentMethod   `db:"payment_method" json:"payment_method"`
	ReferenceNumber string          `db:"reference_number" json:"reference_number,omitempty"`
	Notes           string          `db:"notes" json:"notes,omitempty"`
	PaymentDate     time.Time       `db:"payment_date" json:"payment_date"`
	RecordedBy      *uuid.UUID      `db:"recorded_by" json:"recorded_by,omitempty"`
}

type RecordPaymentRequest struct {
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	Method          string          `json:"payment_method" binding:"required,payment_method"`
	ReferenceNumber string          `json:"reference_number" binding:"max=100"`
	Notes           string          `json:"notes"`
}

type UpdateFeesRequest struct {
	ServiceFee    *decimal.Decimal `json:"service_fee"`
	AdditionalFee *decimal.Decimal `json:"additional_fee"`
	Discount      *decimal.Decimal `json:"discount"`
	Notes         *string          `json:"notes"`
}
