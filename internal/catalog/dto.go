package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/hasanmehediii/cardealer-backend/pkg/db/models"
	"github.com/hasanmehediii/cardealer-backend/pkg/types"
)

// CarSummaryDTO is the storefront list representation of a car.
type CarSummaryDTO struct {
	ID           uuid.UUID `json:"id"`
	ModelNumber  string    `json:"model_number"`
	Manufacturer string    `json:"manufacturer"`
	ModelName    string    `json:"model_name"`
	Year         int       `json:"year"`
	Price        string    `json:"price"`
	ImageURL     *string   `json:"image_url,omitempty"`
	IsAvailable  bool      `json:"is_available"`
	InStock      int       `json:"in_stock"`
}

// CarDetailDTO adds the fields shown on a car's detail page.
type CarDetailDTO struct {
	CarSummaryDTO
	CategoryID      uuid.UUID `json:"category_id"`
	CategoryName    string    `json:"category_name,omitempty"`
	EngineType      *string   `json:"engine_type,omitempty"`
	Transmission    *string   `json:"transmission,omitempty"`
	Color           *string   `json:"color,omitempty"`
	Mileage         *int      `json:"mileage,omitempty"`
	FuelCapacity    *float64  `json:"fuel_capacity,omitempty"`
	SeatingCapacity *int      `json:"seating_capacity,omitempty"`
	Features        []string  `json:"features"`
	CreatedAt       time.Time `json:"created_at"`
}

// CategoryDTO is a browse category.
type CategoryDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
}

// ReviewDTO is one customer review on a car.
type ReviewDTO struct {
	ID        uuid.UUID `json:"id"`
	CarID     uuid.UUID `json:"car_id"`
	UserID    uuid.UUID `json:"user_id"`
	Rating    int       `json:"rating"`
	Comment   *string   `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CarListResult is a cursor page of car summaries.
type CarListResult struct {
	Cars       []CarSummaryDTO `json:"cars"`
	NextCursor string          `json:"next_cursor,omitempty"`
}

// CartSummary is the add-to-cart input assembled for the cart store: a display
// snapshot plus the current stock ceiling.
type CartSummary struct {
	CarID          uuid.UUID
	Name           string
	UnitPriceCents int64
	ImageRef       string
	MaxQuantity    int
	IsAvailable    bool
}

func toCarSummary(car *models.Car) CarSummaryDTO {
	inStock := 0
	if car.Inventory != nil {
		inStock = car.Inventory.AvailableQty
	}
	return CarSummaryDTO{
		ID:           car.ID,
		ModelNumber:  car.ModelNumber,
		Manufacturer: car.Manufacturer,
		ModelName:    car.ModelName,
		Year:         car.Year,
		Price:        types.AmountString(car.PriceCents),
		ImageURL:     car.ImageURL,
		IsAvailable:  car.IsAvailable,
		InStock:      inStock,
	}
}

func toCarDetail(car *models.Car) *CarDetailDTO {
	detail := &CarDetailDTO{
		CarSummaryDTO:   toCarSummary(car),
		CategoryID:      car.CategoryID,
		EngineType:      car.EngineType,
		Transmission:    car.Transmission,
		Color:           car.Color,
		Mileage:         car.Mileage,
		FuelCapacity:    car.FuelCapacity,
		SeatingCapacity: car.SeatingCapacity,
		Features:        append([]string{}, car.Features...),
		CreatedAt:       car.CreatedAt,
	}
	if car.Category != nil {
		detail.CategoryName = car.Category.Name
	}
	return detail
}

func toReviewDTO(review *models.Review) ReviewDTO {
	return ReviewDTO{
		ID:        review.ID,
		CarID:     review.CarID,
		UserID:    review.UserID,
		Rating:    review.Rating,
		Comment:   review.Comment,
		CreatedAt: review.CreatedAt,
	}
}
