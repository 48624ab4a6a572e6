package purchases

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hasanmehediii/cardealer-backend/pkg/db/models"
	"github.com/hasanmehediii/cardealer-backend/pkg/enums"
)

func setupPurchasesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS inventory_items (
  car_id TEXT PRIMARY KEY,
  available_qty INTEGER NOT NULL DEFAULT 0,
  location TEXT,
  reorder_level INTEGER NOT NULL DEFAULT 5,
  notes TEXT,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS inventory_logs (
  id TEXT PRIMARY KEY,
  car_id TEXT NOT NULL,
  movement TEXT NOT NULL,
  quantity_delta INTEGER NOT NULL,
  quantity_after INTEGER NOT NULL,
  reference TEXT,
  created_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS purchases (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  status TEXT NOT NULL,
  payment_method TEXT NOT NULL,
  amount_cents INTEGER NOT NULL,
  invoice_number TEXT NOT NULL UNIQUE,
  notes TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS purchase_items (
  id TEXT PRIMARY KEY,
  purchase_id TEXT NOT NULL,
  car_id TEXT NOT NULL,
  car_name TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unit_price_cents INTEGER NOT NULL,
  line_total_cents INTEGER NOT NULL,
  created_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  purchase_id TEXT NOT NULL UNIQUE,
  status TEXT NOT NULL,
  shipping_address TEXT,
  tracking_number TEXT,
  expected_delivery DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func seedStock(t *testing.T, db *gorm.DB, carID uuid.UUID, qty int) {
	t.Helper()
	require.NoError(t, db.Create(&models.InventoryItem{CarID: carID, AvailableQty: qty}).Error)
}

func buildPurchase(userID uuid.UUID, items ...models.PurchaseItem) *models.Purchase {
	var total int64
	for i := range items {
		items[i].ID = uuid.New()
		total += items[i].LineTotalCents
	}
	return &models.Purchase{
		ID:            uuid.New(),
		UserID:        userID,
		Status:        enums.PurchaseStatusConfirmed,
		PaymentMethod: enums.PaymentMethodCard,
		AmountCents:   total,
		InvoiceNumber: newInvoiceNumber(),
		Items:         items,
	}
}

func TestCreatePurchaseDecrementsStock(t *testing.T) {
	db := setupPurchasesTestDB(t)
	repo := NewRepository(db)

	carID := uuid.New()
	seedStock(t, db, carID, 5)

	purchase := buildPurchase(uuid.New(), models.PurchaseItem{
		CarID:          carID,
		CarName:        "Toyota Corolla",
		Quantity:       2,
		UnitPriceCents: 2000000,
		LineTotalCents: 4000000,
	})
	order := &models.Order{ID: uuid.New(), Status: enums.OrderStatusProcessing}

	created, err := repo.CreatePurchase(context.Background(), purchase, order)
	require.NoError(t, err)
	require.NotNil(t, created.Order)

	var item models.InventoryItem
	require.NoError(t, db.First(&item, "car_id = ?", carID).Error)
	require.Equal(t, 3, item.AvailableQty)

	var logs []models.InventoryLog
	require.NoError(t, db.Find(&logs, "car_id = ?", carID).Error)
	require.Len(t, logs, 1)
	require.Equal(t, enums.StockMovementSale, logs[0].Movement)
	require.Equal(t, -2, logs[0].QuantityDelta)
	require.Equal(t, 3, logs[0].QuantityAfter)

	loaded, err := repo.FindByID(context.Background(), purchase.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 1)
	require.NotNil(t, loaded.Order)
}

func TestCreatePurchaseInsufficientStockRollsBack(t *testing.T) {
	db := setupPurchasesTestDB(t)
	repo := NewRepository(db)

	carID := uuid.New()
	seedStock(t, db, carID, 1)

	purchase := buildPurchase(uuid.New(), models.PurchaseItem{
		CarID:          carID,
		CarName:        "Honda Civic",
		Quantity:       2,
		UnitPriceCents: 100,
		LineTotalCents: 200,
	})

	_, err := repo.CreatePurchase(context.Background(), purchase, nil)
	require.ErrorIs(t, err, ErrInsufficientStock)

	var item models.InventoryItem
	require.NoError(t, db.First(&item, "car_id = ?", carID).Error)
	require.Equal(t, 1, item.AvailableQty, "failed purchase must not touch stock")

	var count int64
	require.NoError(t, db.Model(&models.Purchase{}).Count(&count).Error)
	require.Equal(t, int64(0), count)
}

func TestCreatePurchaseFailsMidwayLeavesNothing(t *testing.T) {
	db := setupPurchasesTestDB(t)
	repo := NewRepository(db)

	okCar := uuid.New()
	shortCar := uuid.New()
	seedStock(t, db, okCar, 5)
	seedStock(t, db, shortCar, 0)

	purchase := buildPurchase(uuid.New(),
		models.PurchaseItem{CarID: okCar, CarName: "A", Quantity: 1, UnitPriceCents: 100, LineTotalCents: 100},
		models.PurchaseItem{CarID: shortCar, CarName: "B", Quantity: 1, UnitPriceCents: 100, LineTotalCents: 100},
	)

	_, err := repo.CreatePurchase(context.Background(), purchase, nil)
	require.ErrorIs(t, err, ErrInsufficientStock)

	var item models.InventoryItem
	require.NoError(t, db.First(&item, "car_id = ?", okCar).Error)
	require.Equal(t, 5, item.AvailableQty, "first decrement must roll back with the rest")
}

func TestUpdateOrderPersistsFulfillment(t *testing.T) {
	db := setupPurchasesTestDB(t)
	repo := NewRepository(db)

	carID := uuid.New()
	seedStock(t, db, carID, 2)

	purchase := buildPurchase(uuid.New(), models.PurchaseItem{
		CarID: carID, CarName: "A", Quantity: 1, UnitPriceCents: 100, LineTotalCents: 100,
	})
	order := &models.Order{ID: uuid.New(), Status: enums.OrderStatusProcessing}
	_, err := repo.CreatePurchase(context.Background(), purchase, order)
	require.NoError(t, err)

	tracking := "TRK-42"
	order.Status = enums.OrderStatusShipped
	order.TrackingNumber = &tracking
	require.NoError(t, repo.UpdateOrder(context.Background(), order))

	loaded, err := repo.FindOrderByPurchaseID(context.Background(), purchase.ID)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusShipped, loaded.Status)
	require.Equal(t, "TRK-42", *loaded.TrackingNumber)
}
