package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/hasanmehediii/cardealer-backend/pkg/enums"
)

// Purchase is the buyer-facing record created when a checkout is accepted.
type Purchase struct {
	ID            uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID        uuid.UUID            `gorm:"column:user_id;type:uuid;not null;index"`
	Status        enums.PurchaseStatus `gorm:"column:status;not null;default:'pending'"`
	PaymentMethod enums.PaymentMethod  `gorm:"column:payment_method;not null"`
	AmountCents   int64                `gorm:"column:amount_cents;not null"`
	InvoiceNumber string               `gorm:"column:invoice_number;not null;uniqueIndex"`
	Notes         *string              `gorm:"column:notes"`
	Items         []PurchaseItem       `gorm:"foreignKey:PurchaseID;constraint:OnDelete:CASCADE"`
	Order         *Order               `gorm:"foreignKey:PurchaseID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
