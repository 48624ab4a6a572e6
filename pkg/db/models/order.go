package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/hasanmehediii/cardealer-backend/pkg/enums"
)

// Order tracks fulfillment/shipping for a purchase.
type Order struct {
	ID               uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PurchaseID       uuid.UUID         `gorm:"column:purchase_id;type:uuid;not null;uniqueIndex"`
	Status           enums.OrderStatus `gorm:"column:status;not null;default:'processing'"`
	ShippingAddress  *string           `gorm:"column:shipping_address"`
	TrackingNumber   *string           `gorm:"column:tracking_number"`
	ExpectedDelivery *time.Time        `gorm:"column:expected_delivery;type:date"`
	CreatedAt        time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
