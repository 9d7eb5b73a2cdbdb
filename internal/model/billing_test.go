package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func TestBillingRecomputeTotal(t *testing.T) {
	b := &Billing{
		ServiceFee:    dec("500"),
		MedicineFee:   dec("120.50"),
		AdditionalFee: dec("30"),
		Discount:      dec("50"),
	}
	b.RecomputeTotal()
	assert.True(t, dec("600.50").Equal(b.TotalAmount), "got %s", b.TotalAmount)
}

func TestBillingReconcile(t *testing.T) {
	b := &Billing{ServiceFee: dec("500")}
	b.RecomputeTotal()

	b.Reconcile(dec("200"))
	assert.True(t, dec("200").Equal(b.AmountPaid))
	assert.True(t, dec("300").Equal(b.Balance))
	assert.False(t, b.IsPaid)
	assert.Equal(t, "Partially Paid", b.StatusText())

	b.Reconcile(dec("500"))
	assert.True(t, b.Balance.IsZero())
	assert.True(t, b.IsPaid)
	assert.Equal(t, "Fully Paid", b.StatusText())
}

func TestBillingReconcileOverpayment(t *testing.T) {
	b := &Billing{ServiceFee: dec("500")}
	b.RecomputeTotal()

	b.Reconcile(dec("600"))
	assert.True(t, dec("-100").Equal(b.Balance), "overpayment keeps a negative balance, got %s", b.Balance)
	assert.True(t, b.IsPaid)
}

func TestBillingStatusTextUnpaid(t *testing.T) {
	b := &Billing{ServiceFee: dec("500")}
	b.RecomputeTotal()
	b.Reconcile(decimal.Zero)
	assert.Equal(t, "Unpaid", b.StatusText())
}
