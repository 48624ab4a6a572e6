package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hasanmehediii/cardealer-backend/api/responses"
	"github.com/hasanmehediii/cardealer-backend/api/validators"
	"github.com/hasanmehediii/cardealer-backend/internal/catalog"
	"github.com/hasanmehediii/cardealer-backend/internal/purchases"
	"github.com/hasanmehediii/cardealer-backend/pkg/enums"
	pkgerrors "github.com/hasanmehediii/cardealer-backend/pkg/errors"
	"github.com/hasanmehediii/cardealer-backend/pkg/logger"
	"github.com/hasanmehediii/cardealer-backend/pkg/pagination"
	"github.com/hasanmehediii/cardealer-backend/pkg/types"
)

type createCarRequest struct {
	CategoryID      uuid.UUID `json:"category_id" validate:"required"`
	ModelNumber     string    `json:"model_number" validate:"required,max=80"`
	Manufacturer    string    `json:"manufacturer" validate:"required,max=120"`
	ModelName       string    `json:"model_name" validate:"required,max=120"`
	Year            int       `json:"year" validate:"required,min=1950"`
	EngineType      *string   `json:"engine_type"`
	Transmission    *string   `json:"transmission"`
	Color           *string   `json:"color"`
	Mileage         *int      `json:"mileage"`
	FuelCapacity    *float64  `json:"fuel_capacity"`
	SeatingCapacity *int      `json:"seating_capacity"`
	Price           string    `json:"price" validate:"required"`
	Features        []string  `json:"features"`
	ImageURL        *string   `json:"image_url"`
	IsAvailable     *bool     `json:"is_available"`
	InitialStock    int       `json:"initial_stock" validate:"min=0"`
	Location        *string   `json:"location"`
}

// CreateCar lists a new car with its opening stock.
func CreateCar(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createCarRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		priceCents, err := types.ParseAmount(payload.Price)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "price"))
			return
		}

		available := true
		if payload.IsAvailable != nil {
			available = *payload.IsAvailable
		}

		car, err := svc.CreateCar(r.Context(), catalog.CreateCarInput{
			CategoryID:      payload.CategoryID,
			ModelNumber:     payload.ModelNumber,
			Manufacturer:    payload.Manufacturer,
			ModelName:       payload.ModelName,
			Year:            payload.Year,
			EngineType:      payload.EngineType,
			Transmission:    payload.Transmission,
			Color:           payload.Color,
			Mileage:         payload.Mileage,
			FuelCapacity:    payload.FuelCapacity,
			SeatingCapacity: payload.SeatingCapacity,
			PriceCents:      priceCents,
			Features:        payload.Features,
			ImageURL:        payload.ImageURL,
			IsAvailable:     available,
			InitialStock:    payload.InitialStock,
			Location:        payload.Location,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, car)
	}
}

type updateCarRequest struct {
	CategoryID      *uuid.UUID `json:"category_id"`
	Manufacturer    *string    `json:"manufacturer"`
	ModelName       *string    `json:"model_name"`
	Year            *int       `json:"year"`
	EngineType      *string    `json:"engine_type"`
	Transmission    *string    `json:"transmission"`
	Color           *string    `json:"color"`
	Mileage         *int       `json:"mileage"`
	FuelCapacity    *float64   `json:"fuel_capacity"`
	SeatingCapacity *int       `json:"seating_capacity"`
	Price           *string    `json:"price"`
	Features        *[]string  `json:"features"`
	ImageURL        *string    `json:"image_url"`
	IsAvailable     *bool      `json:"is_available"`
}

// UpdateCar applies a partial update to a listed car.
func UpdateCar(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		carID, err := validators.ParsePathUUID(chi.URLParam(r, "carID"), "carID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateCarRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := catalog.UpdateCarInput{
			CategoryID:      payload.CategoryID,
			Manufacturer:    payload.Manufacturer,
			ModelName:       payload.ModelName,
			Year:            payload.Year,
			EngineType:      payload.EngineType,
			Transmission:    payload.Transmission,
			Color:           payload.Color,
			Mileage:         payload.Mileage,
			FuelCapacity:    payload.FuelCapacity,
			SeatingCapacity: payload.SeatingCapacity,
			Features:        payload.Features,
			ImageURL:        payload.ImageURL,
			IsAvailable:     payload.IsAvailable,
		}
		if payload.Price != nil {
			priceCents, err := types.ParseAmount(*payload.Price)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeValidation, err, "price"))
				return
			}
			input.PriceCents = &priceCents
		}

		car, err := svc.UpdateCar(r.Context(), carID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, car)
	}
}

// DeleteCar removes a car from the catalog.
func DeleteCar(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		carID, err := validators.ParsePathUUID(chi.URLParam(r, "carID"), "carID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteCar(r.Context(), carID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type setInventoryRequest struct {
	AvailableQty int     `json:"available_qty" validate:"min=0"`
	Location     *string `json:"location"`
	ReorderLevel *int    `json:"reorder_level"`
	Movement     string  `json:"movement" validate:"omitempty,oneof=restock adjustment"`
	Reference    *string `json:"reference"`
}

// SetInventory replaces a car's stock level and records the movement.
func SetInventory(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		carID, err := validators.ParsePathUUID(chi.URLParam(r, "carID"), "carID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload setInventoryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		movement := enums.StockMovementAdjustment
		if payload.Movement != "" {
			movement = enums.StockMovement(payload.Movement)
		}

		if err := svc.SetInventory(r.Context(), carID, catalog.SetInventoryInput{
			AvailableQty: payload.AvailableQty,
			Location:     payload.Location,
			ReorderLevel: payload.ReorderLevel,
			Movement:     movement,
			Reference:    payload.Reference,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"car_id": carID, "available_qty": payload.AvailableQty})
	}
}

type createCategoryRequest struct {
	Name        string  `json:"name" validate:"required,max=80"`
	Description *string `json:"description"`
}

// CreateCategory adds a browse category.
func CreateCategory(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createCategoryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category, err := svc.CreateCategory(r.Context(), payload.Name, payload.Description)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, category)
	}
}

// ListAllPurchases serves every purchase for back-office review.
func ListAllPurchases(svc purchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListAll(r.Context(), limit, r.URL.Query().Get("cursor"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type updateOrderRequest struct {
	Status           *string `json:"status" validate:"omitempty,oneof=processing shipped delivered cancelled"`
	ShippingAddress  *string `json:"shipping_address"`
	TrackingNumber   *string `json:"tracking_number"`
	ExpectedDelivery *string `json:"expected_delivery"`
}

// UpdateOrder advances a purchase's fulfillment order.
func UpdateOrder(svc purchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		purchaseID, err := validators.ParsePathUUID(chi.URLParam(r, "purchaseID"), "purchaseID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := purchases.UpdateOrderInput{
			ShippingAddress: payload.ShippingAddress,
			TrackingNumber:  payload.TrackingNumber,
		}
		if payload.Status != nil {
			status := enums.OrderStatus(*payload.Status)
			input.Status = &status
		}
		if payload.ExpectedDelivery != nil {
			when, err := time.Parse("2006-01-02", *payload.ExpectedDelivery)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "expected_delivery must be YYYY-MM-DD"))
				return
			}
			input.ExpectedDelivery = &when
		}

		order, err := svc.UpdateOrderStatus(r.Context(), purchaseID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
