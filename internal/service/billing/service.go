package billing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rmagtibay/clinic-api/internal/model"
	"github.com/rmagtibay/clinic-api/internal/repository"
	"github.com/rmagtibay/clinic-api/pkg/logger"
	"github.com/rmagtibay/clinic-api/pkg/metrics"
)

type Servicer interface {
	GetBilling(ctx context.Context, id uuid.UUID) (*model.Billing, error)
	GetBillingByBooking(ctx context.Context, bookingID uuid.UUID) (*model.Billing, error)
	ListBillings(ctx context.Context, unpaidOnly bool) ([]*model.Billing, error)
	ListPayments(ctx context.Context, billingID uuid.UUID) ([]*model.Payment, error)
	RecordPayment(ctx context.Context, billingID uuid.UUID, req *model.RecordPaymentRequest, recordedBy *uuid.UUID) (*model.Billing, error)
	UpdateFees(ctx context.Context, id uuid.UUID, req *model.UpdateFeesRequest) (*model.Billing, error)
}

type Service struct {
	repo    repository.BillingRepository
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewService(repo repository.BillingRepository, logger *logger.Logger, metrics *metrics.Metrics) *Service {
	return &Service{
		repo:    repo,
		logger:  logger,
		metrics: metrics,
	}
}

func (s *Service) GetBilling(ctx context.Context, id uuid.UUID) (*model.Billing, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) GetBillingByBooking(ctx context.Context, bookingID uuid.UUID) (*model.Billing, error) {
	return s.repo.GetByBooking(ctx, bookingID)
}

func (s *Service) ListBillings(ctx context.Context, unpaidOnly bool) ([]*model.Billing, error) {
	return s.repo.List(ctx, unpaidOnly)
}

func (s *Service) ListPayments(ctx context.Context, billingID uuid.UUID) ([]*model.Payment, error) {
	return s.repo.ListPayments(ctx, billingID)
}

// RecordPayment validates and persists a payment, returning the reconciled
// billing. Overpayment is accepted; the balance goes negative and the billing
// still counts as paid.
func (s *Service) RecordPayment(ctx context.Context, billingID uuid.UUID, req *model.RecordPaymentRequest, recordedBy *uuid.UUID) (*model.Billing, error) {
	if !req.Amount.GreaterThan(decimal.Zero) {
		return nil, model.ErrInvalidAmount
	}

	payment := &model.Payment{
		BillingID:       billingID,
		AmountPaid:      req.Amount,
		Method:          model.PaymentMethod(req.Method),
		ReferenceNumber: req.ReferenceNumber,
		Notes:           req.Notes,
		RecordedBy:      recordedBy,
	}

	billing, err := s.repo.RecordPayment(ctx, payment)
	if err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	s.metrics.PaymentsRecorded.Inc()
	s.logger.Info("payment recorded",
		"billing_id", billingID.String(),
		"amount", req.Amount.String(),
		"is_paid", billing.IsPaid)
	return billing, nil
}

func (s *Service) UpdateFees(ctx context.Context, id uuid.UUID, req *model.UpdateFeesRequest) (*model.Billing, error) {
	if req.ServiceFee != nil && req.ServiceFee.IsNegative() {
		return nil, model.ErrInvalidAmount
	}
	if req.AdditionalFee != nil && req.AdditionalFee.IsNegative() {
		return nil, model.ErrInvalidAmount
	}
	if req.Discount != nil && req.Discount.IsNegative() {
		return nil, model.ErrInvalidAmount
	}

	return s.repo.UpdateFees(ctx, id, req)
}
