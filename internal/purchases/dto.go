package purchases

import (
	"time"

	"github.com/google/uuid"

	"github.com/hasanmehediii/cardealer-backend/pkg/db/models"
	"github.com/hasanmehediii/cardealer-backend/pkg/types"
)

// PurchaseDTO is the buyer-facing purchase record.
type PurchaseDTO struct {
	ID            uuid.UUID         `json:"id"`
	Status        string            `json:"status"`
	PaymentMethod string            `json:"payment_method"`
	Amount        string            `json:"amount"`
	InvoiceNumber string            `json:"invoice_number"`
	Items         []PurchaseItemDTO `json:"items"`
	Order         *OrderDTO         `json:"order,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}

// PurchaseItemDTO is one snapshotted line of a purchase.
type PurchaseItemDTO struct {
	CarID     uuid.UUID `json:"car_id"`
	CarName   string    `json:"car_name"`
	Quantity  int       `json:"quantity"`
	UnitPrice string    `json:"unit_price"`
	LineTotal string    `json:"line_total"`
}

// OrderDTO tracks fulfillment for a purchase.
type OrderDTO struct {
	ID               uuid.UUID  `json:"id"`
	Status           string     `json:"status"`
	ShippingAddress  *string    `json:"shipping_address,omitempty"`
	TrackingNumber   *string    `json:"tracking_number,omitempty"`
	ExpectedDelivery *time.Time `json:"expected_delivery,omitempty"`
}

// PurchaseListResult is a cursor page of purchases.
type PurchaseListResult struct {
	Purchases  []PurchaseDTO `json:"purchases"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

func toPurchaseDTO(purchase *models.Purchase) PurchaseDTO {
	dto := PurchaseDTO{
		ID:            purchase.ID,
		Status:        purchase.Status.String(),
		PaymentMethod: purchase.PaymentMethod.String(),
		Amount:        types.AmountString(purchase.AmountCents),
		InvoiceNumber: purchase.InvoiceNumber,
		Items:         make([]PurchaseItemDTO, 0, len(purchase.Items)),
		CreatedAt:     purchase.CreatedAt,
	}
	for _, item := range purchase.Items {
		dto.Items = append(dto.Items, PurchaseItemDTO{
			CarID:     item.CarID,
			CarName:   item.CarName,
			Quantity:  item.Quantity,
			UnitPrice: types.AmountString(item.UnitPriceCents),
			LineTotal: types.AmountString(item.LineTotalCents),
		})
	}
	if purchase.Order != nil {
		dto.Order = &OrderDTO{
			ID:               purchase.Order.ID,
			Status:           purchase.Order.Status.String(),
			ShippingAddress:  purchase.Order.ShippingAddress,
			TrackingNumber:   purchase.Order.TrackingNumber,
			ExpectedDelivery: purchase.Order.ExpectedDelivery,
		}
	}
	return dto
}
