package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPOSSaleRecomputeTotals(t *testing.T) {
	s := &POSSale{
		Subtotal:        dec("200"),
		DiscountPercent: dec("10"),
		TaxPercent:      dec("12"),
		AmountReceived:  dec("250"),
	}
	s.RecomputeTotals()

	assert.True(t, dec("20").Equal(s.DiscountAmount), "got %s", s.DiscountAmount)
	assert.True(t, dec("21.6").Equal(s.TaxAmount), "got %s", s.TaxAmount)
	assert.True(t, dec("201.6").Equal(s.TotalAmount), "got %s", s.TotalAmount)
	assert.True(t, dec("48.4").Equal(s.ChangeAmount), "got %s", s.ChangeAmount)
}

func TestPOSSaleRecomputeTotalsNoChangeWhenShort(t *testing.T) {
	s := &POSSale{
		Subtotal:       dec("100"),
		AmountReceived: dec("50"),
	}
	s.RecomputeTotals()

	assert.True(t, dec("100").Equal(s.TotalAmount))
	assert.True(t, s.ChangeAmount.IsZero(), "change never goes negative, got %s", s.ChangeAmount)
}

func TestPOSSaleEnsureReceiptNumber(t *testing.T) {
	now := time.Date(2026, 3, 15, 9, 30, 45, 0, time.UTC)

	s := &POSSale{}
	s.EnsureReceiptNumber(now)
	assert.Equal(t, "REC-20260315093045", s.ReceiptNumber)

	s.EnsureReceiptNumber(now.Add(time.Hour))
	assert.Equal(t, "REC-20260315093045", s.ReceiptNumber, "receipt number never regenerates")
}

func TestPOSSaleFinalized(t *testing.T) {
	assert.False(t, (&POSSale{Status: SaleStatusPending}).Finalized())
	assert.False(t, (&POSSale{Status: SaleStatusCompleted}).Finalized())
	assert.True(t, (&POSSale{Status: SaleStatusCancelled}).Finalized())
	assert.True(t, (&POSSale{Status: SaleStatusRefunded}).Finalized())
}

func TestPOSSaleItemRecomputeLineTotal(t *testing.T) {
	item := &POSSaleItem{Quantity: 3, UnitPrice: dec("15.25")}
	item.RecomputeLineTotal()
	assert.True(t, dec("45.75").Equal(item.LineTotal), "got %s", item.LineTotal)
}

func TestPrescriptionRecomputeTotal(t *testing.T) {
	p := &Prescription{Quantity: 4, UnitPrice: dec("12.50")}
	p.RecomputeTotal()
	assert.True(t, dec("50").Equal(p.TotalPrice), "got %s", p.TotalPrice)
}
