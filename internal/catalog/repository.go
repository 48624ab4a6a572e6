package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hasanmehediii/cardealer-backend/pkg/db/models"
	"github.com/hasanmehediii/cardealer-backend/pkg/pagination"
)

// ListCarsFilter narrows the storefront car listing.
type ListCarsFilter struct {
	CategoryID    *uuid.UUID
	Manufacturer  string
	OnlyAvailable bool
	Limit         int
	Cursor        *pagination.Cursor
}

// Repository wires catalog persistence against GORM.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListCars returns a cursor page ordered by newest first.
func (r *Repository) ListCars(ctx context.Context, filter ListCarsFilter) ([]models.Car, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Car{}).
		Preload("Inventory").
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(filter.Limit))

	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.Manufacturer != "" {
		query = query.Where("manufacturer = ?", filter.Manufacturer)
	}
	if filter.OnlyAvailable {
		query = query.Where("is_available = TRUE")
	}
	if filter.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", filter.Cursor.CreatedAt, filter.Cursor.ID)
	}

	var cars []models.Car
	if err := query.Find(&cars).Error; err != nil {
		return nil, err
	}
	return cars, nil
}

// FindCarByID loads a car with its category and inventory.
func (r *Repository) FindCarByID(ctx context.Context, id uuid.UUID) (*models.Car, error) {
	var car models.Car
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Inventory").
		First(&car, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &car, nil
}

// StockQuantity reads the current available quantity for a car. Cars without
// an inventory row report zero stock.
func (r *Repository) StockQuantity(ctx context.Context, carID uuid.UUID) (int, error) {
	var item models.InventoryItem
	err := r.db.WithContext(ctx).First(&item, "car_id = ?", carID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return item.AvailableQty, nil
}

func (r *Repository) CreateCar(ctx context.Context, car *models.Car) (*models.Car, error) {
	if err := r.db.WithContext(ctx).Create(car).Error; err != nil {
		return nil, err
	}
	return car, nil
}

func (r *Repository) UpdateCar(ctx context.Context, car *models.Car) (*models.Car, error) {
	if err := r.db.WithContext(ctx).Save(car).Error; err != nil {
		return nil, err
	}
	return car, nil
}

func (r *Repository) DeleteCar(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Car{}, "id = ?", id).Error
}

// UpsertInventory sets the stock row for a car and appends an audit log entry.
func (r *Repository) UpsertInventory(ctx context.Context, item *models.InventoryItem, log *models.InventoryLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(item).Error; err != nil {
			return err
		}
		if log != nil {
			if err := tx.Create(log).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *Repository) CreateCategory(ctx context.Context, category *models.Category) (*models.Category, error) {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

func (r *Repository) ListReviews(ctx context.Context, carID uuid.UUID) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.WithContext(ctx).
		Where("car_id = ?", carID).
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *Repository) CreateReview(ctx context.Context, review *models.Review) (*models.Review, error) {
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		return nil, err
	}
	return review, nil
}
