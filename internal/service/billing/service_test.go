package billing

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmagtibay/clinic-api/internal/model"
	"github.com/rmagtibay/clinic-api/pkg/logger"
	"github.com/rmagtibay/clinic-api/pkg/metrics"
)

var (
	testLogger  = logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, TimeFormat: time.RFC3339, Output: io.Discard})
	testMetrics = metrics.NewMetrics("clinic", "billing_test")
)

// fakeBillingRepo reconciles in memory the way the real repository does in
// the payment transaction.
type fakeBillingRepo struct {
	billing  *model.Billing
	payments []*model.Payment
}

func (f *fakeBillingRepo) Get(_ context.Context, id uuid.UUID) (*model.Billing, error) {
	if f.billing == nil || f.billing.ID != id {
		return nil, model.ErrNotFound
	}
	return f.billing, nil
}

func (f *fakeBillingRepo) GetByBooking(context.Context, uuid.UUID) (*model.Billing, error) {
	return f.billing, nil
}

func (f *fakeBillingRepo) List(context.Context, bool) ([]*model.Billing, error) {
	return nil, nil
}

func (f *fakeBillingRepo) ListPayments(context.Context, uuid.UUID) ([]*model.Payment, error) {
	return f.payments, nil
}

func (f *fakeBillingRepo) RecordPayment(_ context.Context, payment *model.Payment) (*model.Billing, error) {
	if f.billing == nil || f.billing.ID != payment.BillingID {
		return nil, model.ErrNotFound
	}
	f.payments = append(f.payments, payment)

	total := decimal.Zero
	for _, p := range f.payments {
		total = total.Add(p.AmountPaid)
	}
	f.billing.Reconcile(total)
	return f.billing, nil
}

func (f *fakeBillingRepo) UpdateFees(_ context.Context, id uuid.UUID, fees *model.UpdateFeesRequest) (*model.Billing, error) {
	if f.billing == nil || f.billing.ID != id {
		return nil, model.ErrNotFound
	}
	if fees.ServiceFee != nil {
		f.billing.ServiceFee = *fees.ServiceFee
	}
	if fees.AdditionalFee != nil {
		f.billing.AdditionalFee = *fees.AdditionalFee
	}
	if fees.Discount != nil {
		f.billing.Discount = *fees.Discount
	}
	f.billing.RecomputeTotal()
	return f.billing, nil
}

func newBilling(serviceFee int64) *model.Billing {
	b := &model.Billing{
		BookingID:  uuid.New(),
		ServiceFee: decimal.NewFromInt(serviceFee),
	}
	b.ID = uuid.New()
	b.RecomputeTotal()
	b.Reconcile(decimal.Zero)
	return b
}

func TestRecordPaymentRejectsNonPositiveAmount(t *testing.T) {
	repo := &fakeBillingRepo{billing: newBilling(500)}
	s := NewService(repo, testLogger, testMetrics)

	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-50)} {
		_, err := s.RecordPayment(context.Background(), repo.billing.ID, &model.RecordPaymentRequest{
			Amount: amount,
			Method: "Cash",
		}, nil)
		assert.ErrorIs(t, err, model.ErrInvalidAmount)
	}
	assert.Empty(t, repo.payments, "rejected payments must not persist")
}

func TestRecordPaymentReconciles(t *testing.T) {
	repo := &fakeBillingRepo{billing: newBilling(500)}
	s := NewService(repo, testLogger, testMetrics)
	staffID := uuid.New()

	billing, err := s.RecordPayment(context.Background(), repo.billing.ID, &model.RecordPaymentRequest{
		Amount: decimal.NewFromInt(200),
		Method: "Cash",
	}, &staffID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(300).Equal(billing.Balance), "got %s", billing.Balance)
	assert.False(t, billing.IsPaid)

	billing, err = s.RecordPayment(context.Background(), repo.billing.ID, &model.RecordPaymentRequest{
		Amount: decimal.NewFromInt(300),
		Method: "GCash",
	}, &staffID)
	require.NoError(t, err)
	assert.True(t, billing.Balance.IsZero())
	assert.True(t, billing.IsPaid)

	require.Len(t, repo.payments, 2)
	assert.Equal(t, model.PaymentMethodGCash, repo.payments[1].Method)
	assert.Equal(t, &staffID, repo.payments[1].RecordedBy)
}

func TestRecordPaymentAcceptsOverpayment(t *testing.T) {
	repo := &fakeBillingRepo{billing: newBilling(500)}
	s := NewService(repo, testLogger, testMetrics)

	billing, err := s.RecordPayment(context.Background(), repo.billing.ID, &model.RecordPaymentRequest{
		Amount: decimal.NewFromInt(600),
		Method: "Cash",
	}, nil)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(-100).Equal(billing.Balance), "got %s", billing.Balance)
	assert.True(t, billing.IsPaid)
}

func TestUpdateFeesRejectsNegativeValues(t *testing.T) {
	repo := &fakeBillingRepo{billing: newBilling(500)}
	s := NewService(repo, testLogger, testMetrics)

	neg := decimal.NewFromInt(-1)
	_, err := s.UpdateFees(context.Background(), repo.billing.ID, &model.UpdateFeesRequest{ServiceFee: &neg})
	assert.ErrorIs(t, err, model.ErrInvalidAmount)

	_, err = s.UpdateFees(context.Background(), repo.billing.ID, &model.UpdateFeesRequest{AdditionalFee: &neg})
	assert.ErrorIs(t, err, model.ErrInvalidAmount)

	_, err = s.UpdateFees(context.Background(), repo.billing.ID, &model.UpdateFeesRequest{Discount: &neg})
	assert.ErrorIs(t, err, model.ErrInvalidAmount)
}

func TestUpdateFees(t *testing.T) {
	repo := &fakeBillingRepo{billing: newBilling(500)}
	s := NewService(repo, testLogger, testMetrics)

	additional := decimal.NewFromInt(150)
	discount := decimal.NewFromInt(50)
	billing, err := s.UpdateFees(context.Background(), repo.billing.ID, &model.UpdateFeesRequest{
		AdditionalFee: &additional,
		Discount:      &discount,
	})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(600).Equal(billing.TotalAmount), "got %s", billing.TotalAmount)
}
