package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hasanmehediii/cardealer-backend/pkg/db/models"
	"github.com/hasanmehediii/cardealer-backend/pkg/enums"
	pkgerrors "github.com/hasanmehediii/cardealer-backend/pkg/errors"
	"github.com/hasanmehediii/cardealer-backend/pkg/pagination"
)

// Service exposes catalog reads for the storefront plus admin mutations.
type Service interface {
	ListCars(ctx context.Context, input ListCarsInput) (*CarListResult, error)
	GetCar(ctx context.Context, carID uuid.UUID) (*CarDetailDTO, error)
	ListCategories(ctx context.Context) ([]CategoryDTO, error)
	ListReviews(ctx context.Context, carID uuid.UUID) ([]ReviewDTO, error)
	AddReview(ctx context.Context, userID, carID uuid.UUID, rating int, comment *string) (*ReviewDTO, error)

	CartSummaryFor(ctx context.Context, carID uuid.UUID) (*CartSummary, error)
	StockFor(ctx context.Context, carID uuid.UUID) (int, error)

	CreateCar(ctx context.Context, input CreateCarInput) (*CarDetailDTO, error)
	UpdateCar(ctx context.Context, carID uuid.UUID, input UpdateCarInput) (*CarDetailDTO, error)
	DeleteCar(ctx context.Context, carID uuid.UUID) error
	SetInventory(ctx context.Context, carID uuid.UUID, input SetInventoryInput) error
	CreateCategory(ctx context.Context, name string, description *string) (*CategoryDTO, error)
}

// ListCarsInput carries storefront listing filters before cursor decoding.
type ListCarsInput struct {
	CategoryID    *uuid.UUID
	Manufacturer  string
	OnlyAvailable bool
	Limit         int
	Cursor        string
}

// CreateCarInput holds the validated payload to list a new car.
type CreateCarInput struct {
	CategoryID      uuid.UUID
	ModelNumber     string
	Manufacturer    string
	ModelName       string
	Year            int
	EngineType      *string
	Transmission    *string
	Color           *string
	Mileage         *int
	FuelCapacity    *float64
	SeatingCapacity *int
	PriceCents      int64
	Features        []string
	ImageURL        *string
	IsAvailable     bool
	InitialStock    int
	Location        *string
}

// UpdateCarInput holds optional mutation values for a car.
type UpdateCarInput struct {
	CategoryID      *uuid.UUID
	Manufacturer    *string
	ModelName       *string
	Year            *int
	EngineType      *string
	Transmission    *string
	Color           *string
	Mileage         *int
	FuelCapacity    *float64
	SeatingCapacity *int
	PriceCents      *int64
	Features        *[]string
	ImageURL        *string
	IsAvailable     *bool
}

// SetInventoryInput replaces a car's stock level.
type SetInventoryInput struct {
	AvailableQty int
	Location     *string
	ReorderLevel *int
	Movement     enums.StockMovement
	Reference    *string
}

type repository interface {
	ListCars(ctx context.Context, filter ListCarsFilter) ([]models.Car, error)
	FindCarByID(ctx context.Context, id uuid.UUID) (*models.Car, error)
	StockQuantity(ctx context.Context, carID uuid.UUID) (int, error)
	CreateCar(ctx context.Context, car *models.Car) (*models.Car, error)
	UpdateCar(ctx context.Context, car *models.Car) (*models.Car, error)
	DeleteCar(ctx context.Context, id uuid.UUID) error
	UpsertInventory(ctx context.Context, item *models.InventoryItem, log *models.InventoryLog) error
	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, category *models.Category) (*models.Category, error)
	ListReviews(ctx context.Context, carID uuid.UUID) ([]models.Review, error)
	CreateReview(ctx context.Context, review *models.Review) (*models.Review, error)
}

type service struct {
	repo repository
}

func NewService(repo repository) Service {
	return &service{repo: repo}
}

func (s *service) ListCars(ctx context.Context, input ListCarsInput) (*CarListResult, error) {
	cursor, err := pagination.ParseCursor(input.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(input.Limit)
	cars, err := s.repo.ListCars(ctx, ListCarsFilter{
		CategoryID:    input.CategoryID,
		Manufacturer:  input.Manufacturer,
		OnlyAvailable: input.OnlyAvailable,
		Limit:         limit,
		Cursor:        cursor,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing cars")
	}

	result := &CarListResult{Cars: make([]CarSummaryDTO, 0, len(cars))}
	hasMore := len(cars) > limit
	if hasMore {
		cars = cars[:limit]
	}
	for i := range cars {
		result.Cars = append(result.Cars, toCarSummary(&cars[i]))
	}
	if hasMore {
		last := cars[len(cars)-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return result, nil
}

func (s *service) GetCar(ctx context.Context, carID uuid.UUID) (*CarDetailDTO, error) {
	car, err := s.findCar(ctx, carID)
	if err != nil {
		return nil, err
	}
	return toCarDetail(car), nil
}

func (s *service) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing categories")
	}
	out := make([]CategoryDTO, 0, len(categories))
	for _, c := range categories {
		out = append(out, CategoryDTO{ID: c.ID, Name: c.Name, Description: c.Description})
	}
	return out, nil
}

func (s *service) ListReviews(ctx context.Context, carID uuid.UUID) ([]ReviewDTO, error) {
	if _, err := s.findCar(ctx, carID); err != nil {
		return nil, err
	}
	reviews, err := s.repo.ListReviews(ctx, carID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing reviews")
	}
	out := make([]ReviewDTO, 0, len(reviews))
	for i := range reviews {
		out = append(out, toReviewDTO(&reviews[i]))
	}
	return out, nil
}

func (s *service) AddReview(ctx context.Context, userID, carID uuid.UUID, rating int, comment *string) (*ReviewDTO, error) {
	if rating < 1 || rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}
	if _, err := s.findCar(ctx, carID); err != nil {
		return nil, err
	}

	review, err := s.repo.CreateReview(ctx, &models.Review{
		CarID:   carID,
		UserID:  userID,
		Rating:  rating,
		Comment: comment,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "creating review")
	}
	dto := toReviewDTO(review)
	return &dto, nil
}

// CartSummaryFor assembles the add-to-cart snapshot: display fields plus the
// current stock ceiling.
func (s *service) CartSummaryFor(ctx context.Context, carID uuid.UUID) (*CartSummary, error) {
	car, err := s.findCar(ctx, carID)
	if err != nil {
		return nil, err
	}

	stock := 0
	if car.Inventory != nil {
		stock = car.Inventory.AvailableQty
	}
	imageRef := ""
	if car.ImageURL != nil {
		imageRef = *car.ImageURL
	}
	return &CartSummary{
		CarID:          car.ID,
		Name:           car.Manufacturer + " " + car.ModelName,
		UnitPriceCents: car.PriceCents,
		ImageRef:       imageRef,
		MaxQuantity:    stock,
		IsAvailable:    car.IsAvailable,
	}, nil
}

// StockFor reads the authoritative quantity for checkout verification.
func (s *service) StockFor(ctx context.Context, carID uuid.UUID) (int, error) {
	qty, err := s.repo.StockQuantity(ctx, carID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetching stock")
	}
	return qty, nil
}

func (s *service) CreateCar(ctx context.Context, input CreateCarInput) (*CarDetailDTO, error) {
	if input.PriceCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if input.InitialStock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "initial stock cannot be negative")
	}

	car := &models.Car{
		CategoryID:      input.CategoryID,
		ModelNumber:     input.ModelNumber,
		Manufacturer:    input.Manufacturer,
		ModelName:       input.ModelName,
		Year:            input.Year,
		EngineType:      input.EngineType,
		Transmission:    input.Transmission,
		Color:           input.Color,
		Mileage:         input.Mileage,
		FuelCapacity:    input.FuelCapacity,
		SeatingCapacity: input.SeatingCapacity,
		PriceCents:      input.PriceCents,
		Features:        input.Features,
		ImageURL:        input.ImageURL,
		IsAvailable:     input.IsAvailable,
	}
	car, err := s.repo.CreateCar(ctx, car)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "creating car")
	}

	if input.InitialStock > 0 {
		item := &models.InventoryItem{CarID: car.ID, AvailableQty: input.InitialStock, Location: input.Location}
		log := &models.InventoryLog{
			CarID:         car.ID,
			Movement:      enums.StockMovementRestock,
			QuantityDelta: input.InitialStock,
			QuantityAfter: input.InitialStock,
		}
		if err := s.repo.UpsertInventory(ctx, item, log); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "setting initial stock")
		}
		car.Inventory = item
	}
	return toCarDetail(car), nil
}

func (s *service) UpdateCar(ctx context.Context, carID uuid.UUID, input UpdateCarInput) (*CarDetailDTO, error) {
	car, err := s.findCar(ctx, carID)
	if err != nil {
		return nil, err
	}

	if input.CategoryID != nil {
		car.CategoryID = *input.CategoryID
	}
	if input.Manufacturer != nil {
		car.Manufacturer = *input.Manufacturer
	}
	if input.ModelName != nil {
		car.ModelName = *input.ModelName
	}
	if input.Year != nil {
		car.Year = *input.Year
	}
	if input.EngineType != nil {
		car.EngineType = input.EngineType
	}
	if input.Transmission != nil {
		car.Transmission = input.Transmission
	}
	if input.Color != nil {
		car.Color = input.Color
	}
	if input.Mileage != nil {
		car.Mileage = input.Mileage
	}
	if input.FuelCapacity != nil {
		car.FuelCapacity = input.FuelCapacity
	}
	if input.SeatingCapacity != nil {
		car.SeatingCapacity = input.SeatingCapacity
	}
	if input.PriceCents != nil {
		if *input.PriceCents < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
		}
		car.PriceCents = *input.PriceCents
	}
	if input.Features != nil {
		car.Features = *input.Features
	}
	if input.ImageURL != nil {
		car.ImageURL = input.ImageURL
	}
	if input.IsAvailable != nil {
		car.IsAvailable = *input.IsAvailable
	}

	car, err = s.repo.UpdateCar(ctx, car)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating car")
	}
	return toCarDetail(car), nil
}

func (s *service) DeleteCar(ctx context.Context, carID uuid.UUID) error {
	if _, err := s.findCar(ctx, carID); err != nil {
		return err
	}
	if err := s.repo.DeleteCar(ctx, carID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting car")
	}
	return nil
}

func (s *service) SetInventory(ctx context.Context, carID uuid.UUID, input SetInventoryInput) error {
	if input.AvailableQty < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}
	if !input.Movement.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown stock movement")
	}

	car, err := s.findCar(ctx, carID)
	if err != nil {
		return err
	}

	previous := 0
	if car.Inventory != nil {
		previous = car.Inventory.AvailableQty
	}
	item := &models.InventoryItem{CarID: carID, AvailableQty: input.AvailableQty, Location: input.Location}
	if input.ReorderLevel != nil {
		item.ReorderLevel = *input.ReorderLevel
	} else if car.Inventory != nil {
		item.ReorderLevel = car.Inventory.ReorderLevel
	}

	log := &models.InventoryLog{
		CarID:         carID,
		Movement:      input.Movement,
		QuantityDelta: input.AvailableQty - previous,
		QuantityAfter: input.AvailableQty,
		Reference:     input.Reference,
	}
	if err := s.repo.UpsertInventory(ctx, item, log); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "setting inventory")
	}
	return nil
}

func (s *service) CreateCategory(ctx context.Context, name string, description *string) (*CategoryDTO, error) {
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
	}
	category, err := s.repo.CreateCategory(ctx, &models.Category{Name: name, Description: description})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "creating category")
	}
	return &CategoryDTO{ID: category.ID, Name: category.Name, Description: category.Description}, nil
}

func (s *service) findCar(ctx context.Context, carID uuid.UUID) (*models.Car, error) {
	if carID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "car id is required")
	}
	car, err := s.repo.FindCarByID(ctx, carID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "car not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading car")
	}
	return car, nil
}
