package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/hasanmehediii/cardealer-backend/pkg/enums"
)

// InventoryLog records every stock movement for audit.
type InventoryLog struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CarID         uuid.UUID           `gorm:"column:car_id;type:uuid;not null;index"`
	Movement      enums.StockMovement `gorm:"column:movement;not null"`
	QuantityDelta int                 `gorm:"column:quantity_delta;not null"`
	QuantityAfter int                 `gorm:"column:quantity_after;not null"`
	Reference     *string             `gorm:"column:reference"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
}
