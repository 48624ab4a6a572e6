package models

import (
	"time"

	"github.com/google/uuid"
)

// InventoryItem tracks the purchasable unit count per car.
type InventoryItem struct {
	CarID        uuid.UUID `gorm:"column:car_id;type:uuid;primaryKey"`
	AvailableQty int       `gorm:"column:available_qty;not null;default:0"`
	Location     *string   `gorm:"column:location"`
	ReorderLevel int       `gorm:"column:reorder_level;not null;default:5"`
	Notes        *string   `gorm:"column:notes"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
