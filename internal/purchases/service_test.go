package purchases

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/hasanmehediii/cardealer-backend/internal/cart"
	"github.com/hasanmehediii/cardealer-backend/pkg/db/models"
	"github.com/hasanmehediii/cardealer-backend/pkg/enums"
	pkgerrors "github.com/hasanmehediii/cardealer-backend/pkg/errors"
	"github.com/hasanmehediii/cardealer-backend/pkg/pagination"
)

type fakePurchaseRepo struct {
	purchases map[uuid.UUID]*models.Purchase
	orders    map[uuid.UUID]*models.Order
	createErr error
}

func newFakePurchaseRepo() *fakePurchaseRepo {
	return &fakePurchaseRepo{
		purchases: make(map[uuid.UUID]*models.Purchase),
		orders:    make(map[uuid.UUID]*models.Order),
	}
}

func (f *fakePurchaseRepo) CreatePurchase(ctx context.Context, purchase *models.Purchase, order *models.Order) (*models.Purchase, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	purchase.ID = uuid.New()
	purchase.CreatedAt = time.Now().UTC()
	if order != nil {
		order.ID = uuid.New()
		order.PurchaseID = purchase.ID
		purchase.Order = order
		f.orders[purchase.ID] = order
	}
	f.purchases[purchase.ID] = purchase
	return purchase, nil
}

func (f *fakePurchaseRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Purchase, error) {
	purchase, ok := f.purchases[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return purchase, nil
}

func (f *fakePurchaseRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.Purchase, error) {
	out := []models.Purchase{}
	for _, purchase := range f.purchases {
		if purchase.UserID == userID {
			out = append(out, *purchase)
		}
	}
	return out, nil
}

func (f *fakePurchaseRepo) ListAll(ctx context.Context, limit int, cursor *pagination.Cursor) ([]models.Purchase, error) {
	out := []models.Purchase{}
	for _, purchase := range f.purchases {
		out = append(out, *purchase)
	}
	return out, nil
}

func (f *fakePurchaseRepo) UpdateOrder(ctx context.Context, order *models.Order) error {
	f.orders[order.PurchaseID] = order
	return nil
}

func (f *fakePurchaseRepo) FindOrderByPurchaseID(ctx context.Context, purchaseID uuid.UUID) (*models.Order, error) {
	order, ok := f.orders[purchaseID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return order, nil
}

type fakeAddresses struct {
	address *string
}

func (f *fakeAddresses) ShippingAddressFor(ctx context.Context, userID uuid.UUID) (*string, error) {
	return f.address, nil
}

func testLines() []cart.Line {
	return []cart.Line{
		{CarID: uuid.New(), Name: "Toyota Corolla", UnitPriceCents: 2000000, Quantity: 2, MaxQuantity: 5},
		{CarID: uuid.New(), Name: "Honda Civic", UnitPriceCents: 5000000, Quantity: 1, MaxQuantity: 5},
	}
}

func TestCreatePurchaseSnapshotsLinesAndTotals(t *testing.T) {
	t.Parallel()

	repo := newFakePurchaseRepo()
	address := "12 Main St"
	svc := NewService(repo, &fakeAddresses{address: &address})

	userID := uuid.New()
	purchaseID, err := svc.CreatePurchase(context.Background(), userID, testLines(), enums.PaymentMethodCard)
	require.NoError(t, err)

	stored := repo.purchases[purchaseID]
	require.NotNil(t, stored)
	require.Equal(t, enums.PurchaseStatusConfirmed, stored.Status)
	require.Equal(t, int64(2*2000000+5000000), stored.AmountCents)
	require.Len(t, stored.Items, 2)
	require.Equal(t, "Toyota Corolla", stored.Items[0].CarName)
	require.Equal(t, int64(4000000), stored.Items[0].LineTotalCents)
	require.Contains(t, stored.InvoiceNumber, "INV-")
	require.NotNil(t, stored.Order)
	require.Equal(t, "12 Main St", *stored.Order.ShippingAddress)
}

func TestCreatePurchaseGuards(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakePurchaseRepo(), nil)

	_, err := svc.CreatePurchase(context.Background(), uuid.Nil, testLines(), enums.PaymentMethodCard)
	require.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())

	_, err = svc.CreatePurchase(context.Background(), uuid.New(), nil, enums.PaymentMethodCard)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = svc.CreatePurchase(context.Background(), uuid.New(), testLines(), enums.PaymentMethod("crypto"))
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestCreatePurchaseMapsStockConflict(t *testing.T) {
	t.Parallel()

	repo := newFakePurchaseRepo()
	repo.createErr = ErrInsufficientStock
	svc := NewService(repo, nil)

	_, err := svc.CreatePurchase(context.Background(), uuid.New(), testLines(), enums.PaymentMethodCash)
	require.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}

func TestGetPurchaseEnforcesOwnership(t *testing.T) {
	t.Parallel()

	repo := newFakePurchaseRepo()
	svc := NewService(repo, nil)

	owner := uuid.New()
	purchaseID, err := svc.CreatePurchase(context.Background(), owner, testLines(), enums.PaymentMethodCard)
	require.NoError(t, err)

	_, err = svc.GetPurchase(context.Background(), uuid.New(), purchaseID, false)
	require.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())

	dto, err := svc.GetPurchase(context.Background(), uuid.New(), purchaseID, true)
	require.NoError(t, err)
	require.Equal(t, purchaseID, dto.ID)

	dto, err = svc.GetPurchase(context.Background(), owner, purchaseID, false)
	require.NoError(t, err)
	require.Len(t, dto.Items, 2)
}

func TestUpdateOrderStatusEnforcesTransitions(t *testing.T) {
	t.Parallel()

	repo := newFakePurchaseRepo()
	svc := NewService(repo, nil)

	purchaseID, err := svc.CreatePurchase(context.Background(), uuid.New(), testLines(), enums.PaymentMethodCard)
	require.NoError(t, err)

	delivered := enums.OrderStatusDelivered
	_, err = svc.UpdateOrderStatus(context.Background(), purchaseID, UpdateOrderInput{Status: &delivered})
	require.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code(), "processing cannot jump to delivered")

	shipped := enums.OrderStatusShipped
	dto, err := svc.UpdateOrderStatus(context.Background(), purchaseID, UpdateOrderInput{Status: &shipped})
	require.NoError(t, err)
	require.Equal(t, "shipped", dto.Status)

	dto, err = svc.UpdateOrderStatus(context.Background(), purchaseID, UpdateOrderInput{Status: &delivered})
	require.NoError(t, err)
	require.Equal(t, "delivered", dto.Status)
}
