package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rmagtibay/clinic-api/internal/model"
	"github.com/rmagtibay/clinic-api/internal/repository"
	"github.com/rmagtibay/clinic-api/pkg/logger"
	"github.com/rmagtibay/clinic-api/pkg/metrics"
)

type Servicer interface {
	CreateItem(ctx context.Context, req *model.CreateInventoryItemRequest) (*model.InventoryItem, error)
	GetItem(ctx context.Context, id uuid.UUID) (*model.InventoryItem, error)
	UpdateItem(ctx context.Context, item *model.InventoryItem) error
	ListItems(ctx context.Context, filters *model.InventoryFilters) ([]*model.InventoryItem, error)
	DeductStock(ctx context.Context, itemID uuid.UUID, req *model.AdjustStockRequest, actor *uuid.UUID) (*model.InventoryItem, error)
	ReturnStock(ctx context.Context, itemID uuid.UUID, req *model.AdjustStockRequest, actor *uuid.UUID) (*model.InventoryItem, error)
	ListTransactions(ctx context.Context, itemID uuid.UUID) ([]*model.StockTransaction, error)
}

type Service struct {
	repo    repository.InventoryRepository
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewService(repo repository.InventoryRepository, logger *logger.Logger, metrics *metrics.Metrics) *Service {
	return &Service{
		repo:    repo,
		logger:  logger,
		metrics: metrics,
	}
}

func (s *Service) CreateItem(ctx context.Context, req *model.CreateInventoryItemRequest) (*model.InventoryItem, error) {
	item := &model.InventoryItem{
		Name:        req.Name,
		Description: req.Description,
		Category:    model.InventoryCategory(req.Category),
		Price:       req.Price,
		Quantity:    req.Quantity,
		Threshold:   req.Threshold,
	}

	if req.ExpiryDate != "" {
		expiry, err := time.Parse("2006-01-02", req.ExpiryDate)
		if err != nil {
			return nil, fmt.Errorf("invalid expiry date: %w", err)
		}
		item.ExpiryDate = &expiry
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) GetItem(ctx context.Context, id uuid.UUID) (*model.InventoryItem, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) UpdateItem(ctx context.Context, item *model.InventoryItem) error {
	return s.repo.Update(ctx, item)
}

func (s *Service) ListItems(ctx context.Context, filters *model.InventoryFilters) ([]*model.InventoryItem, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) DeductStock(ctx context.Context, itemID uuid.UUID, req *model.AdjustStockRequest, actor *uuid.UUID) (*model.InventoryItem, error) {
	if req.Quantity <= 0 {
		return nil, model.ErrInvalidAmount
	}

	item, err := s.repo.Deduct(ctx, itemID, req.Quantity, actor, req.Notes)
	if err != nil {
		return nil, err
	}

	s.metrics.StockDeductions.WithLabelValues("manual").Inc()
	if item.Status != model.StockStatusIn {
		s.logger.Warn("stock level below threshold",
			"item_id", itemID.String(),
			"quantity", item.Quantity,
			"status", string(item.Status))
	}
	return item, nil
}

func (s *Service) ReturnStock(ctx context.Context, itemID uuid.UUID, req *model.AdjustStockRequest, actor *uuid.UUID) (*model.InventoryItem, error) {
	if req.Quantity <= 0 {
		return nil, model.ErrInvalidAmount
	}
	return s.repo.Return(ctx, itemID, req.Quantity, actor, req.Notes)
}

func (s *Service) ListTransactions(ctx context.Context, itemID uuid.UUID) ([]*model.StockTransaction, error) {
	return s.repo.ListTransactions(ctx, itemID)
}
