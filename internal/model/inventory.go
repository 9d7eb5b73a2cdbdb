package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/shopspring/decimal"
)

type StockStatus string

const (
	StockStatusIn  StockStatus = "In Stock"
	StockStatusLow StockStatus = "Low Stock"
	StockStatusOut StockStatus = "Out of Stock"
)

type InventoryCategory string

const (
	CategoryMedicine  InventoryCategory = "Medicine"
	CategoryEquipment InventoryCategory = "Equipment"
	CategoryMisc      InventoryCategory = "Miscellaneous"
)

type StockTransactionType string

const (
	StockIn  StockTransactionType = "Stock In"
	StockOut StockTransactionType = "Stock Out"
)

// InventoryItem is a stock item. Status is a pure function of quantity vs
// the minimum threshold and is re-derived on every save, overriding any
// caller-supplied value.
type InventoryItem struct {
	Base
	Name        string            `db:"name" json:"name"`
	Description string            `db:"description" json:"description"`
	Category    InventoryCategory `db:"category" json:"category"`
	Price       decimal.Decimal   `db:"price" json:"price"`
	ExpiryDate  *time.Time        `db:"expiry_date" json:"expiry_date,omitempty"`
	// Quantity is the current stock on hand; Threshold is the minimum level
	// below which the item counts as low stock.
	Quantity  int         `db:"quantity" json:"quantity"`
	Threshold int         `db:"threshold" json:"threshold"`
	Status    StockStatus `db:"status" json:"status"`
}

// DeriveStatus recomputes the stock status from quantity and threshold.
func (i *InventoryItem) DeriveStatus() {
	switch {
	case i.Quantity <= 0:
		i.Status = StockStatusOut
	case i.Quantity <= i.Threshold:
		i.Status = StockStatusLow
	default:
		i.Status = StockStatusIn
	}
}

// StockTransaction is an append-only audit entry paired with every stock
// mutation. Never updated after creation.
type StockTransaction struct {
	ID          uuid.UUID            `db:"id" json:"id"`
	ItemID      uuid.UUID            `db:"item_id" json:"item_id"`
	Type        StockTransactionType `db:"transaction_type" json:"transaction_type"`
	Quantity    int                  `db:"quantity" json:"quantity"`
	PerformedBy *uuid.UUID           `db:"performed_by" json:"performed_by,omitempty"`
	Notes       string               `db:"notes" json:"notes,omitempty"`
	CreatedAt   time.Time            `db:"created_at" json:"created_at"`
}

type CreateInventoryItemRequest struct {
	Name        string          `json:"name" binding:"required,max=255"`
	Description string          `json:"description"`
	Category    string          `json:"category" binding:"required,oneof=Medicine Equipment Miscellaneous"`
	Price       decimal.Decimal `json:"price"`
	ExpiryDate  string          `json:"expiry_date"`
	Quantity    int             `json:"quantity" binding:"min=0"`
	Threshold   int             `json:"threshold" binding:"min=0"`
}

type AdjustStockRequest struct {
	Quantity int    `json:"quantity" binding:"required"`
	Notes    string `json:"notes"`
}

type InventoryFilters struct {
	Category   InventoryCategory
	Status     StockStatus
	SearchTerm string
}
