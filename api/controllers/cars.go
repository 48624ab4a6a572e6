package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hasanmehediii/cardealer-backend/api/middleware"
	"github.com/hasanmehediii/cardealer-backend/api/responses"
	"github.com/hasanmehediii/cardealer-backend/api/validators"
	"github.com/hasanmehediii/cardealer-backend/internal/catalog"
	"github.com/hasanmehediii/cardealer-backend/pkg/logger"
	"github.com/hasanmehediii/cardealer-backend/pkg/pagination"
)

// ListCars serves the storefront car listing with filters and cursor paging.
func ListCars(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		categoryID, err := validators.ParseQueryUUID(r, "category_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListCars(r.Context(), catalog.ListCarsInput{
			CategoryID:    categoryID,
			Manufacturer:  strings.TrimSpace(r.URL.Query().Get("manufacturer")),
			OnlyAvailable: r.URL.Query().Get("available") == "true",
			Limit:         limit,
			Cursor:        r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// GetCar serves a single car's detail page payload.
func GetCar(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		carID, err := validators.ParsePathUUID(chi.URLParam(r, "carID"), "carID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.GetCar(r.Context(), carID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// ListCategories serves the browse categories.
func ListCategories(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := svc.ListCategories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, categories)
	}
}

// ListReviews serves the reviews for one car.
func ListReviews(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		carID, err := validators.ParsePathUUID(chi.URLParam(r, "carID"), "carID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reviews, err := svc.ListReviews(r.Context(), carID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, reviews)
	}
}

type addReviewRequest struct {
	Rating  int     `json:"rating" validate:"required,min=1,max=5"`
	Comment *string `json:"comment"`
}

// AddReview creates a review by the authenticated user.
func AddReview(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		carID, err := validators.ParsePathUUID(chi.URLParam(r, "carID"), "carID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addReviewRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		review, err := svc.AddReview(r.Context(), middleware.UserIDFromContext(r.Context()), carID, payload.Rating, payload.Comment)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, review)
	}
}
