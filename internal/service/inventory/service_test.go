package inventory

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmagtibay/clinic-api/internal/model"
	"github.com/rmagtibay/clinic-api/pkg/logger"
	"github.com/rmagtibay/clinic-api/pkg/metrics"
)

var (
	testLogger  = logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, TimeFormat: time.RFC3339, Output: io.Discard})
	testMetrics = metrics.NewMetrics("clinic", "inventory_test")
)

type fakeInventoryRepo struct {
	item *model.InventoryItem

	deducted int
	returned int
	notes    string
}

func (f *fakeInventoryRepo) Create(_ context.Context, item *model.InventoryItem) error {
	item.DeriveStatus()
	f.item = item
	return nil
}

func (f *fakeInventoryRepo) Get(_ context.Context, id uuid.UUID) (*model.InventoryItem, error) {
	if f.item == nil || f.item.ID != id {
		return nil, model.ErrNotFound
	}
	return f.item, nil
}

func (f *fakeInventoryRepo) Update(context.Context, *model.InventoryItem) error { return nil }

func (f *fakeInventoryRepo) List(context.Context, *model.InventoryFilters) ([]*model.InventoryItem, error) {
	return nil, nil
}

func (f *fakeInventoryRepo) Deduct(_ context.Context, itemID uuid.UUID, qty int, _ *uuid.UUID, notes string) (*model.InventoryItem, error) {
	if f.item == nil || f.item.ID != itemID {
		return nil, model.ErrNotFound
	}
	if f.item.Quantity < qty {
		return nil, model.ErrInsufficientStock
	}
	f.item.Quantity -= qty
	f.item.DeriveStatus()
	f.deducted += qty
	f.notes = notes
	return f.item, nil
}

func (f *fakeInventoryRepo) Return(_ context.Context, itemID uuid.UUID, qty int, _ *uuid.UUID, notes string) (*model.InventoryItem, error) {
	if f.item == nil || f.item.ID != itemID {
		return nil, model.ErrNotFound
	}
	f.item.Quantity += qty
	f.item.DeriveStatus()
	f.returned += qty
	f.notes = notes
	return f.item, nil
}

func (f *fakeInventoryRepo) ListTransactions(context.Context, uuid.UUID) ([]*model.StockTransaction, error) {
	return nil, nil
}

func stockedItem(quantity int) *model.InventoryItem {
	item := &model.InventoryItem{Name: "Paracetamol 500mg", Quantity: quantity, Threshold: 10}
	item.ID = uuid.New()
	item.DeriveStatus()
	return item
}

func TestCreateItemParsesExpiry(t *testing.T) {
	repo := &fakeInventoryRepo{}
	s := NewService(repo, testLogger, testMetrics)

	item, err := s.CreateItem(context.Background(), &model.CreateInventoryItemRequest{
		Name:       "Amoxicillin 250mg",
		Category:   "Medicine",
		Quantity:   100,
		Threshold:  20,
		ExpiryDate: "2027-06-30",
	})
	require.NoError(t, err)
	require.NotNil(t, item.ExpiryDate)
	assert.Equal(t, time.Date(2027, 6, 30, 0, 0, 0, 0, time.UTC), *item.ExpiryDate)

	_, err = s.CreateItem(context.Background(), &model.CreateInventoryItemRequest{
		Name:       "Bad Expiry",
		Category:   "Medicine",
		ExpiryDate: "30/06/2027",
	})
	assert.Error(t, err)
}

func TestDeductStockValidatesQuantity(t *testing.T) {
	repo := &fakeInventoryRepo{item: stockedItem(50)}
	s := NewService(repo, testLogger, testMetrics)

	for _, qty := range []int{0, -5} {
		_, err := s.DeductStock(context.Background(), repo.item.ID, &model.AdjustStockRequest{Quantity: qty}, nil)
		assert.ErrorIs(t, err, model.ErrInvalidAmount)
	}
	assert.Zero(t, repo.deducted)

	item, err := s.DeductStock(context.Background(), repo.item.ID, &model.AdjustStockRequest{Quantity: 20, Notes: "ward use"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 30, item.Quantity)
	assert.Equal(t, "ward use", repo.notes)
}

func TestDeductStockSurfacesInsufficientStock(t *testing.T) {
	repo := &fakeInventoryRepo{item: stockedItem(5)}
	s := NewService(repo, testLogger, testMetrics)

	_, err := s.DeductStock(context.Background(), repo.item.ID, &model.AdjustStockRequest{Quantity: 10}, nil)
	assert.ErrorIs(t, err, model.ErrInsufficientStock)
	assert.Equal(t, 5, repo.item.Quantity, "no partial deduction")
}

func TestReturnStockValidatesQuantity(t *testing.T) {
	repo := &fakeInventoryRepo{item: stockedItem(5)}
	s := NewService(repo, testLogger, testMetrics)

	_, err := s.ReturnStock(context.Background(), repo.item.ID, &model.AdjustStockRequest{Quantity: -1}, nil)
	assert.ErrorIs(t, err, model.ErrInvalidAmount)

	item, err := s.ReturnStock(context.Background(), repo.item.ID, &model.AdjustStockRequest{Quantity: 10}, nil)
	require.NoError(t, err)
	assert.Equal(t, 15, item.Quantity)
	assert.Equal(t, model.StockStatusIn, item.Status)
}
