package purchases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hasanmehediii/cardealer-backend/internal/cart"
	"github.com/hasanmehediii/cardealer-backend/pkg/db/models"
	"github.com/hasanmehediii/cardealer-backend/pkg/enums"
	pkgerrors "github.com/hasanmehediii/cardealer-backend/pkg/errors"
	"github.com/hasanmehediii/cardealer-backend/pkg/pagination"
)

// Service exposes purchase creation and history reads.
type Service interface {
	CreatePurchase(ctx context.Context, userID uuid.UUID, lines []cart.Line, method enums.PaymentMethod) (uuid.UUID, error)
	GetPurchase(ctx context.Context, userID, purchaseID uuid.UUID, isAdmin bool) (*PurchaseDTO, error)
	History(ctx context.Context, userID uuid.UUID, limit int, cursor string) (*PurchaseListResult, error)
	ListAll(ctx context.Context, limit int, cursor string) (*PurchaseListResult, error)
	UpdateOrderStatus(ctx context.Context, purchaseID uuid.UUID, input UpdateOrderInput) (*OrderDTO, error)
}

// UpdateOrderInput mutates a purchase's fulfillment order.
type UpdateOrderInput struct {
	Status           *enums.OrderStatus
	ShippingAddress  *string
	TrackingNumber   *string
	ExpectedDelivery *time.Time
}

type repository interface {
	CreatePurchase(ctx context.Context, purchase *models.Purchase, order *models.Order) (*models.Purchase, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Purchase, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.Purchase, error)
	ListAll(ctx context.Context, limit int, cursor *pagination.Cursor) ([]models.Purchase, error)
	UpdateOrder(ctx context.Context, order *models.Order) error
	FindOrderByPurchaseID(ctx context.Context, purchaseID uuid.UUID) (*models.Order, error)
}

type addressReader interface {
	ShippingAddressFor(ctx context.Context, userID uuid.UUID) (*string, error)
}

type service struct {
	repo      repository
	addresses addressReader
}

func NewService(repo repository, addresses addressReader) Service {
	return &service{repo: repo, addresses: addresses}
}

// CreatePurchase turns a verified line snapshot into a confirmed purchase with
// its fulfillment order. The inventory decrement happens in the same
// transaction; any line without enough stock fails the whole purchase.
func (s *service) CreatePurchase(ctx context.Context, userID uuid.UUID, lines []cart.Line, method enums.PaymentMethod) (uuid.UUID, error) {
	if userID == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "buyer identity is required")
	}
	if len(lines) == 0 {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "a purchase needs at least one line")
	}
	if !method.IsValid() {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}

	purchase := &models.Purchase{
		UserID:        userID,
		Status:        enums.PurchaseStatusConfirmed,
		PaymentMethod: method,
		InvoiceNumber: newInvoiceNumber(),
		Items:         make([]models.PurchaseItem, 0, len(lines)),
	}
	for _, line := range lines {
		if line.Quantity < 1 {
			return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "line quantity must be positive")
		}
		lineTotal := line.UnitPriceCents * int64(line.Quantity)
		purchase.AmountCents += lineTotal
		purchase.Items = append(purchase.Items, models.PurchaseItem{
			CarID:          line.CarID,
			CarName:        line.Name,
			Quantity:       line.Quantity,
			UnitPriceCents: line.UnitPriceCents,
			LineTotalCents: lineTotal,
		})
	}

	order := &models.Order{Status: enums.OrderStatusProcessing}
	if s.addresses != nil {
		if address, err := s.addresses.ShippingAddressFor(ctx, userID); err == nil {
			order.ShippingAddress = address
		}
	}

	created, err := s.repo.CreatePurchase(ctx, purchase, order)
	if err != nil {
		if errors.Is(err, ErrInsufficientStock) {
			return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "stock changed before submission")
		}
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persisting purchase")
	}
	return created.ID, nil
}

func (s *service) GetPurchase(ctx context.Context, userID, purchaseID uuid.UUID, isAdmin bool) (*PurchaseDTO, error) {
	purchase, err := s.findPurchase(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && purchase.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "purchase belongs to another user")
	}
	dto := toPurchaseDTO(purchase)
	return &dto, nil
}

func (s *service) History(ctx context.Context, userID uuid.UUID, limit int, cursor string) (*PurchaseListResult, error) {
	parsed, err := pagination.ParseCursor(cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	normalized := pagination.NormalizeLimit(limit)
	purchases, err := s.repo.ListByUser(ctx, userID, normalized, parsed)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing purchases")
	}
	return buildListResult(purchases, normalized), nil
}

func (s *service) ListAll(ctx context.Context, limit int, cursor string) (*PurchaseListResult, error) {
	parsed, err := pagination.ParseCursor(cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	normalized := pagination.NormalizeLimit(limit)
	purchases, err := s.repo.ListAll(ctx, normalized, parsed)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing purchases")
	}
	return buildListResult(purchases, normalized), nil
}

func (s *service) UpdateOrderStatus(ctx context.Context, purchaseID uuid.UUID, input UpdateOrderInput) (*OrderDTO, error) {
	order, err := s.repo.FindOrderByPurchaseID(ctx, purchaseID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}

	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status")
		}
		if !order.Status.CanTransitionTo(*input.Status) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot move order from %s to %s", order.Status, *input.Status))
		}
		order.Status = *input.Status
	}
	if input.ShippingAddress != nil {
		order.ShippingAddress = input.ShippingAddress
	}
	if input.TrackingNumber != nil {
		order.TrackingNumber = input.TrackingNumber
	}
	if input.ExpectedDelivery != nil {
		order.ExpectedDelivery = input.ExpectedDelivery
	}

	if err := s.repo.UpdateOrder(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating order")
	}
	return &OrderDTO{
		ID:               order.ID,
		Status:           order.Status.String(),
		ShippingAddress:  order.ShippingAddress,
		TrackingNumber:   order.TrackingNumber,
		ExpectedDelivery: order.ExpectedDelivery,
	}, nil
}

func (s *service) findPurchase(ctx context.Context, purchaseID uuid.UUID) (*models.Purchase, error) {
	purchase, err := s.repo.FindByID(ctx, purchaseID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "purchase not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading purchase")
	}
	return purchase, nil
}

func buildListResult(purchases []models.Purchase, limit int) *PurchaseListResult {
	result := &PurchaseListResult{Purchases: make([]PurchaseDTO, 0, len(purchases))}
	hasMore := len(purchases) > limit
	if hasMore {
		purchases = purchases[:limit]
	}
	for i := range purchases {
		result.Purchases = append(result.Purchases, toPurchaseDTO(&purchases[i]))
	}
	if hasMore {
		last := purchases[len(purchases)-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return result
}

func newInvoiceNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
	return fmt.Sprintf("INV-%s-%s", time.Now().UTC().Format("20060102"), suffix)
}
