package models

import (
	"time"

	"github.com/google/uuid"
)

// PurchaseItem snapshots one cart line at the moment the purchase was accepted.
type PurchaseItem struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PurchaseID     uuid.UUID `gorm:"column:purchase_id;type:uuid;not null;index"`
	CarID          uuid.UUID `gorm:"column:car_id;type:uuid;not null"`
	CarName        string    `gorm:"column:car_name;not null"`
	Quantity       int       `gorm:"column:quantity;not null"`
	UnitPriceCents int64     `gorm:"column:unit_price_cents;not null"`
	LineTotalCents int64     `gorm:"column:line_total_cents;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}
