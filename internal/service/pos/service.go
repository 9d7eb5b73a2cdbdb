package pos

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/rmagtibay/clinic-api/internal/email"
	"github.com/rmagtibay/clinic-api/internal/model"
	"github.com/rmagtibay/clinic-api/internal/repository"
	apperrors "github.com/rmagtibay/clinic-api/pkg/errors"
	"github.com/rmagtibay/clinic-api/pkg/logger"
	"github.com/rmagtibay/clinic-api/pkg/metrics"
)

type Servicer interface {
	CreateSale(ctx context.Context, req *model.CreateSaleRequest, createdBy *uuid.UUID) (*model.POSSale, error)
	GetSale(ctx context.Context, id uuid.UUID) (*model.POSSale, error)
	ListSales(ctx context.Context, filters *model.SaleFilters) ([]*model.POSSale, error)
	ListItems(ctx context.Context, saleID uuid.UUID) ([]*model.POSSaleItem, error)

	AddItem(ctx context.Context, saleID uuid.UUID, req *model.AddSaleItemRequest) (*model.POSSale, error)
	UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, qty int) (*model.POSSale, error)
	RemoveItem(ctx context.Context, itemID uuid.UUID) (*model.POSSale, error)

	CompleteSale(ctx context.Context, id uuid.UUID) (*model.POSSale, error)
	CancelSale(ctx context.Context, id uuid.UUID) (*model.POSSale, error)
	RefundSale(ctx context.Context, id uuid.UUID) (*model.POSSale, error)
}

type Service struct {
	repo        repository.POSRepository
	patientRepo repository.PatientRepository
	userRepo    repository.UserRepository
	emailSvc    email.Service
	logger      *logger.Logger
	metrics     *metrics.Metrics
}

func NewService(
	repo repository.POSRepository,
	patientRepo repository.PatientRepository,
	userRepo repository.UserRepository,
	emailSvc email.Service,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *Service {
	return &Service{
		repo:        repo,
		patientRepo: patientRepo,
		userRepo:    userRepo,
		emailSvc:    emailSvc,
		logger:      logger,
		metrics:     metrics,
	}
}

func (s *Service) CreateSale(ctx context.Context, req *model.CreateSaleRequest, createdBy *uuid.UUID) (*model.POSSale, error) {
	sale := &model.POSSale{
		SaleType:        model.SaleType(req.SaleType),
		CustomerName:    req.CustomerName,
		DiscountPercent: req.DiscountPercent,
		TaxPercent:      req.TaxPercent,
		PaymentMethod:   model.PaymentMethod(req.PaymentMethod),
		AmountReceived:  req.AmountReceived,
		ReferenceNumber: req.ReferenceNumber,
		Notes:           req.Notes,
		CreatedBy:       createdBy,
	}

	if req.PatientID != "" {
		patientID, err := uuid.Parse(req.PatientID)
		if err != nil {
			return nil, apperrors.BadRequest("invalid patient ID", err)
		}
		sale.PatientID = &patientID
	}

	if err := s.repo.CreateSale(ctx, sale); err != nil {
		return nil, err
	}

	s.logger.Info("sale created",
		"sale_id", sale.ID.String(),
		"receipt_number", sale.ReceiptNumber)
	return sale, nil
}

func (s *Service) GetSale(ctx context.Context, id uuid.UUID) (*model.POSSale, error) {
	return s.repo.GetSale(ctx, id)
}

func (s *Service) ListSales(ctx context.Context, filters *model.SaleFilters) ([]*model.POSSale, error) {
	return s.repo.ListSales(ctx, filters)
}

func (s *Service) ListItems(ctx context.Context, saleID uuid.UUID) ([]*model.POSSaleItem, error) {
	return s.repo.ListItems(ctx, saleID)
}

func (s *Service) AddItem(ctx context.Context, saleID uuid.UUID, req *model.AddSaleItemRequest) (*model.POSSale, error) {
	itemID, err := uuid.Parse(req.ItemID)
	if err != nil {
		return nil, apperrors.BadRequest("invalid item ID", err)
	}

	item := &model.POSSaleItem{
		SaleID:   saleID,
		ItemID:   itemID,
		Quantity: req.Quantity,
		Notes:    req.Notes,
	}
	if req.UnitPrice != nil {
		item.UnitPrice = *req.UnitPrice
	}

	return s.repo.AddItem(ctx, item, req.UnitPrice != nil)
}

func (s *Service) UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, qty int) (*model.POSSale, error) {
	if qty <= 0 {
		return nil, model.ErrInvalidAmount
	}
	return s.repo.UpdateItemQuantity(ctx, itemID, qty)
}

func (s *Service) RemoveItem(ctx context.Context, itemID uuid.UUID) (*model.POSSale, error) {
	return s.repo.RemoveItem(ctx, itemID)
}

// CompleteSale deducts stock for every line item and finalizes the totals.
// A single line short of stock aborts the whole sale.
func (s *Service) CompleteSale(ctx context.Context, id uuid.UUID) (*model.POSSale, error) {
	sale, err := s.repo.CompleteSale(ctx, id)
	if err != nil {
		return nil, err
	}

	s.metrics.SalesCompleted.Inc()
	s.metrics.StockDeductions.WithLabelValues("pos").Inc()
	if err := s.mailReceipt(ctx, sale); err != nil {
		s.logger.Error(err, "failed to send receipt mail",
			"sale_id", id.String(),
			"receipt_number", sale.ReceiptNumber)
	}
	s.logger.Info("sale completed",
		"sale_id", id.String(),
		"receipt_number", sale.ReceiptNumber,
		"total", sale.TotalAmount.String())
	return sale, nil
}

// mailReceipt delivers the receipt to patient-linked sales. Walk-ins have no
// address on file.
func (s *Service) mailReceipt(ctx context.Context, sale *model.POSSale) error {
	if sale.PatientID == nil {
		return nil
	}

	patient, err := s.patientRepo.Get(ctx, *sale.PatientID)
	if err != nil {
		return err
	}
	user, err := s.userRepo.Get(ctx, patient.UserID)
	if err != nil {
		return err
	}

	body := fmt.Sprintf(
		"<p>Receipt %s</p><p>Total: %s, paid via %s. Thank you!</p>",
		sale.ReceiptNumber, sale.TotalAmount.StringFixed(2), sale.PaymentMethod,
	)
	return s.emailSvc.SendReceipt(ctx, user.Email, sale.ReceiptNumber, body)
}

func (s *Service) CancelSale(ctx context.Context, id uuid.UUID) (*model.POSSale, error) {
	return s.repo.ReturnSale(ctx, id, model.SaleStatusCancelled)
}

func (s *Service) RefundSale(ctx context.Context, id uuid.UUID) (*model.POSSale, error) {
	return s.repo.ReturnSale(ctx, id, model.SaleStatusRefunded)
}
