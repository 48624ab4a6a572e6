package cart

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hasanmehediii/cardealer-backend/api/middleware"
	"github.com/hasanmehediii/cardealer-backend/api/responses"
	"github.com/hasanmehediii/cardealer-backend/api/validators"
	cartstore "github.com/hasanmehediii/cardealer-backend/internal/cart"
	"github.com/hasanmehediii/cardealer-backend/internal/catalog"
	pkgerrors "github.com/hasanmehediii/cardealer-backend/pkg/errors"
	"github.com/hasanmehediii/cardealer-backend/pkg/logger"
	"github.com/hasanmehediii/cardealer-backend/pkg/types"
)

type lineResponse struct {
	CarID       uuid.UUID `json:"car_id"`
	Name        string    `json:"name"`
	UnitPrice   string    `json:"unit_price"`
	ImageRef    string    `json:"image_ref,omitempty"`
	Quantity    int       `json:"quantity"`
	MaxQuantity int       `json:"max_quantity"`
	LineTotal   string    `json:"line_total"`
}

type cartResponse struct {
	Lines []lineResponse `json:"lines"`
	Total string         `json:"total"`
}

func newCartResponse(store *cartstore.Store) cartResponse {
	lines := store.Lines()
	out := cartResponse{
		Lines: make([]lineResponse, 0, len(lines)),
		Total: types.AmountString(store.Total()),
	}
	for _, line := range lines {
		out.Lines = append(out.Lines, newLineResponse(line))
	}
	return out
}

func newLineResponse(line cartstore.Line) lineResponse {
	return lineResponse{
		CarID:       line.CarID,
		Name:        line.Name,
		UnitPrice:   types.AmountString(line.UnitPriceCents),
		ImageRef:    line.ImageRef,
		Quantity:    line.Quantity,
		MaxQuantity: line.MaxQuantity,
		LineTotal:   types.AmountString(line.UnitPriceCents * int64(line.Quantity)),
	}
}

// Get serves the authenticated user's cart.
func Get(carts *cartstore.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store := carts.StoreFor(middleware.UserIDFromContext(r.Context()))
		responses.WriteSuccess(w, newCartResponse(store))
	}
}

type addItemRequest struct {
	CarID    uuid.UUID `json:"car_id" validate:"required"`
	Quantity int       `json:"quantity" validate:"omitempty,min=1"`
}

// AddItem adds a car to the cart, fetching the display snapshot and stock
// ceiling from the catalog.
func AddItem(carts *cartstore.Manager, catalogSvc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if payload.Quantity == 0 {
			payload.Quantity = 1
		}

		summary, err := catalogSvc.CartSummaryFor(r.Context(), payload.CarID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !summary.IsAvailable {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeConflict, "car is not available for purchase"))
			return
		}

		store := carts.StoreFor(middleware.UserIDFromContext(r.Context()))
		line, clamped, err := store.Add(cartstore.AddInput{
			CarID:          summary.CarID,
			Name:           summary.Name,
			UnitPriceCents: summary.UnitPriceCents,
			ImageRef:       summary.ImageRef,
			Quantity:       payload.Quantity,
			MaxQuantity:    summary.MaxQuantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"line":    newLineResponse(line),
			"clamped": clamped,
			"cart":    newCartResponse(store),
		})
	}
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateItem sets the quantity for a line. Zero removes the line.
func UpdateItem(carts *cartstore.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		carID, err := validators.ParsePathUUID(chi.URLParam(r, "carID"), "carID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store := carts.StoreFor(middleware.UserIDFromContext(r.Context()))
		line, clamped, err := store.UpdateQuantity(carID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		body := map[string]any{"cart": newCartResponse(store), "clamped": clamped}
		if payload.Quantity > 0 {
			body["line"] = newLineResponse(line)
		}
		responses.WriteSuccess(w, body)
	}
}

// RemoveItem deletes a line. Removing an absent line succeeds.
func RemoveItem(carts *cartstore.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		carID, err := validators.ParsePathUUID(chi.URLParam(r, "carID"), "carID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store := carts.StoreFor(middleware.UserIDFromContext(r.Context()))
		store.Remove(carID)
		responses.WriteSuccess(w, newCartResponse(store))
	}
}

// Clear empties the cart.
func Clear(carts *cartstore.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store := carts.StoreFor(middleware.UserIDFromContext(r.Context()))
		store.Clear()
		responses.WriteSuccess(w, newCartResponse(store))
	}
}
