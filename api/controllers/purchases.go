package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hasanmehediii/cardealer-backend/api/middleware"
	"github.com/hasanmehediii/cardealer-backend/api/responses"
	"github.com/hasanmehediii/cardealer-backend/api/validators"
	"github.com/hasanmehediii/cardealer-backend/internal/purchases"
	"github.com/hasanmehediii/cardealer-backend/pkg/enums"
	"github.com/hasanmehediii/cardealer-backend/pkg/logger"
	"github.com/hasanmehediii/cardealer-backend/pkg/pagination"
)

// PurchaseHistory serves the caller's purchases, newest first.
func PurchaseHistory(svc purchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.History(r.Context(), middleware.UserIDFromContext(r.Context()), limit, r.URL.Query().Get("cursor"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// GetPurchase serves one purchase. Admins may read any purchase, customers
// only their own.
func GetPurchase(svc purchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		purchaseID, err := validators.ParsePathUUID(chi.URLParam(r, "purchaseID"), "purchaseID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		isAdmin := middleware.RoleFromContext(r.Context()) == enums.UserRoleAdmin.String()
		purchase, err := svc.GetPurchase(r.Context(), middleware.UserIDFromContext(r.Context()), purchaseID, isAdmin)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, purchase)
	}
}
