package purchases

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hasanmehediii/cardealer-backend/pkg/db/models"
	"github.com/hasanmehediii/cardealer-backend/pkg/enums"
	"github.com/hasanmehediii/cardealer-backend/pkg/pagination"
)

// ErrInsufficientStock is returned when a decrement would take stock negative.
var ErrInsufficientStock = errors.New("insufficient stock")

// Repository persists purchases, their items, the fulfillment order and the
// inventory decrement in one transaction.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreatePurchase writes the purchase atomically. Inventory rows are locked
// for the duration of the transaction on Postgres; the quantity guard on the
// update protects every dialect.
func (r *Repository) CreatePurchase(ctx context.Context, purchase *models.Purchase, order *models.Order) (*models.Purchase, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range purchase.Items {
			if err := r.decrementStock(tx, item.CarID, item.Quantity); err != nil {
				return err
			}
		}

		if err := tx.Create(purchase).Error; err != nil {
			return fmt.Errorf("creating purchase: %w", err)
		}

		if order != nil {
			order.PurchaseID = purchase.ID
			if err := tx.Create(order).Error; err != nil {
				return fmt.Errorf("creating order: %w", err)
			}
			purchase.Order = order
		}

		for _, item := range purchase.Items {
			log := models.InventoryLog{
				ID:            uuid.New(),
				CarID:         item.CarID,
				Movement:      enums.StockMovementSale,
				QuantityDelta: -item.Quantity,
				QuantityAfter: 0,
				Reference:     &purchase.InvoiceNumber,
			}
			var remaining models.InventoryItem
			if err := tx.Select("available_qty").
				Where("car_id = ?", item.CarID).
				Take(&remaining).Error; err == nil {
				log.QuantityAfter = remaining.AvailableQty
			}
			if err := tx.Create(&log).Error; err != nil {
				return fmt.Errorf("logging stock movement: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return purchase, nil
}

func (r *Repository) decrementStock(tx *gorm.DB, carID uuid.UUID, quantity int) error {
	query := tx.Model(&models.InventoryItem{})
	if tx.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	result := query.
		Where("car_id = ? AND available_qty >= ?", carID, quantity).
		Update("available_qty", gorm.Expr("available_qty - ?", quantity))
	if result.Error != nil {
		return fmt.Errorf("decrementing stock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("car %s: %w", carID, ErrInsufficientStock)
	}
	return nil
}

// FindByID loads a purchase with its items and order.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Purchase, error) {
	var purchase models.Purchase
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Order").
		First(&purchase, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

// ListByUser returns a cursor page of the user's purchases, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.Purchase, error) {
	query := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Order").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(limit))
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var purchases []models.Purchase
	if err := query.Find(&purchases).Error; err != nil {
		return nil, err
	}
	return purchases, nil
}

// ListAll returns a cursor page across all users for the admin console.
func (r *Repository) ListAll(ctx context.Context, limit int, cursor *pagination.Cursor) ([]models.Purchase, error) {
	query := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Order").
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(limit))
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var purchases []models.Purchase
	if err := query.Find(&purchases).Error; err != nil {
		return nil, err
	}
	return purchases, nil
}

// UpdateOrder saves fulfillment changes for a purchase's order.
func (r *Repository) UpdateOrder(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Save(order).Error
}

// FindOrderByPurchaseID loads the fulfillment order for a purchase.
func (r *Repository) FindOrderByPurchaseID(ctx context.Context, purchaseID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, "purchase_id = ?", purchaseID).Error; err != nil {
		return nil, err
	}
	return &order, nil
}
