package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInventoryItemDeriveStatus(t *testing.T) {
	tests := []struct {
		name      string
		quantity  int
		threshold int
		want      StockStatus
	}{
		{"above threshold", 50, 10, StockStatusIn},
		{"at threshold", 10, 10, StockStatusLow},
		{"below threshold", 5, 10, StockStatusLow},
		{"zero", 0, 10, StockStatusOut},
		{"negative", -1, 10, StockStatusOut},
		{"zero threshold out", 0, 0, StockStatusOut},
		{"zero threshold in", 1, 0, StockStatusIn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := &InventoryItem{Quantity: tt.quantity, Threshold: tt.threshold}
			item.DeriveStatus()
			assert.Equal(t, tt.want, item.Status)
		})
	}
}

func TestInventoryItemDeriveStatusOverridesCallerValue(t *testing.T) {
	item := &InventoryItem{Quantity: 50, Threshold: 10, Status: StockStatusOut}
	item.DeriveStatus()
	assert.Equal(t, StockStatusIn, item.Status)
}
