package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/hasanmehediii/cardealer-backend/api/middleware"
	"github.com/hasanmehediii/cardealer-backend/api/responses"
	"github.com/hasanmehediii/cardealer-backend/api/validators"
	"github.com/hasanmehediii/cardealer-backend/internal/checkout"
	"github.com/hasanmehediii/cardealer-backend/pkg/enums"
	"github.com/hasanmehediii/cardealer-backend/pkg/logger"
	"github.com/hasanmehediii/cardealer-backend/pkg/types"
)

type checkoutLineResponse struct {
	CarID     uuid.UUID `json:"car_id"`
	Name      string    `json:"name"`
	UnitPrice string    `json:"unit_price"`
	Quantity  int       `json:"quantity"`
}

type adjustmentResponse struct {
	CarID             uuid.UUID `json:"car_id"`
	Name              string    `json:"name"`
	RequestedQuantity int       `json:"requested_quantity"`
	AvailableQuantity int       `json:"available_quantity"`
	Removed           bool      `json:"removed"`
}

type intentResponse struct {
	ID           uuid.UUID              `json:"id"`
	State        string                 `json:"state"`
	Lines        []checkoutLineResponse `json:"lines"`
	Adjustments  []adjustmentResponse   `json:"adjustments,omitempty"`
	RejectReason string                 `json:"reject_reason,omitempty"`
	PurchaseID   *uuid.UUID             `json:"purchase_id,omitempty"`
	Total        string                 `json:"total"`
	CreatedAt    time.Time              `json:"created_at"`
	VerifiedAt   *time.Time             `json:"verified_at,omitempty"`
}

func newIntentResponse(intent *checkout.Intent) intentResponse {
	out := intentResponse{
		ID:           intent.ID,
		State:        string(intent.State),
		Lines:        make([]checkoutLineResponse, 0, len(intent.Lines)),
		RejectReason: intent.RejectReason,
		CreatedAt:    intent.CreatedAt,
		VerifiedAt:   intent.VerifiedAt,
	}

	var total int64
	for _, line := range intent.Lines {
		total += line.UnitPriceCents * int64(line.Quantity)
		out.Lines = append(out.Lines, checkoutLineResponse{
			CarID:     line.CarID,
			Name:      line.Name,
			UnitPrice: types.AmountString(line.UnitPriceCents),
			Quantity:  line.Quantity,
		})
	}
	out.Total = types.AmountString(total)

	for _, adj := range intent.Adjustments {
		out.Adjustments = append(out.Adjustments, adjustmentResponse{
			CarID:             adj.CarID,
			Name:              adj.Name,
			RequestedQuantity: adj.RequestedQuantity,
			AvailableQuantity: adj.AvailableQuantity,
			Removed:           adj.Removed,
		})
	}

	if intent.PurchaseID != uuid.Nil {
		id := intent.PurchaseID
		out.PurchaseID = &id
	}
	return out
}

type beginCheckoutRequest struct {
	PaymentMethod string `json:"payment_method" validate:"required,oneof=card bank_transfer cash"`
}

// BeginCheckout snapshots the cart and runs stock verification.
func BeginCheckout(coord *checkout.Coordinator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload beginCheckoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		method := enums.PaymentMethod(payload.PaymentMethod)

		intent, err := coord.Begin(r.Context(), middleware.UserIDFromContext(r.Context()), method)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newIntentResponse(intent))
	}
}

// ConfirmCheckout accepts the adjusted quantities and submits the purchase.
func ConfirmCheckout(coord *checkout.Coordinator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		intent, err := coord.Confirm(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newIntentResponse(intent))
	}
}

// CancelCheckout abandons the in-flight checkout.
func CancelCheckout(coord *checkout.Coordinator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := coord.Cancel(middleware.UserIDFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "cancelled"})
	}
}

// CheckoutStatus returns the current or most recent intent.
func CheckoutStatus(coord *checkout.Coordinator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		intent, err := coord.Status(middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newIntentResponse(intent))
	}
}
