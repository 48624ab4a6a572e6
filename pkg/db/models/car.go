package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Car represents a listed vehicle.
type Car struct {
	ID              uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CategoryID      uuid.UUID      `gorm:"column:category_id;type:uuid;not null"`
	ModelNumber     string         `gorm:"column:model_number;not null;uniqueIndex"`
	Manufacturer    string         `gorm:"column:manufacturer;not null"`
	ModelName       string         `gorm:"column:model_name;not null"`
	Year            int            `gorm:"column:year"`
	EngineType      *string        `gorm:"column:engine_type"`
	Transmission    *string        `gorm:"column:transmission"`
	Color           *string        `gorm:"column:color"`
	Mileage         *int           `gorm:"column:mileage"`
	FuelCapacity    *float64       `gorm:"column:fuel_capacity;type:numeric(5,2)"`
	SeatingCapacity *int           `gorm:"column:seating_capacity"`
	PriceCents      int64          `gorm:"column:price_cents;not null"`
	Features        pq.StringArray `gorm:"column:features;type:text[];not null;default:ARRAY[]::text[]"`
	ImageURL        *string        `gorm:"column:image_url"`
	IsAvailable     bool           `gorm:"column:is_available;not null;default:true"`
	Category        *Category      `gorm:"foreignKey:CategoryID"`
	Inventory       *InventoryItem `gorm:"foreignKey:CarID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
