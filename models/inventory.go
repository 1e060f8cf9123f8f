package models

import "time"

type StockType string

const (
	StockBase   StockType = "base"
	StockSauce  StockType = "sauce"
	StockCheese StockType = "cheese"
	StockVeggie StockType = "veggie"
	StockMeat   StockType = "meat"
)

// ValidStockType reports whether t is one of the enumerated ingredient types.
func ValidStockType(t StockType) bool {
	switch t {
	case StockBase, StockSauce, StockCheese, StockVeggie, StockMeat:
		return true
	}
	return false
}

// StockItem is an inventory row tracking one named ingredient of one type.
// Unique on (ItemType, Name). Quantity at or below Threshold is the low-stock
// condition; it triggers a notification, never an error.
type StockItem struct {
	ID            string    `json:"id" db:"id"`
	ItemType      StockType `json:"item_type" db:"item_type"`
	Name          string    `json:"name" db:"name"`
	Quantity      float64   `json:"quantity" db:"quantity"`
	Threshold     float64   `json:"threshold" db:"threshold"`
	Unit          string    `json:"unit" db:"unit"`
	LastRestocked time.Time `json:"last_restocked" db:"last_restocked"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// IsLow reports the low-stock condition.
func (s *StockItem) IsLow() bool {
	return s.Quantity <= s.Threshold
}
