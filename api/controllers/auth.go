package controllers

import (
	"net/http"
	"time"

	"github.com/hasanmehediii/cardealer-backend/api/middleware"
	"github.com/hasanmehediii/cardealer-backend/api/responses"
	"github.com/hasanmehediii/cardealer-backend/api/validators"
	authsvc "github.com/hasanmehediii/cardealer-backend/internal/auth"
	pkgerrors "github.com/hasanmehediii/cardealer-backend/pkg/errors"
	"github.com/hasanmehediii/cardealer-backend/pkg/logger"
)

type registerRequest struct {
	Email       string  `json:"email" validate:"required,email"`
	Username    string  `json:"username" validate:"required,min=3,max=40"`
	Password    string  `json:"password" validate:"required,min=8"`
	Address     *string `json:"address"`
	Phone       *string `json:"phone"`
	DateOfBirth *string `json:"date_of_birth"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Register creates a customer account.
func Register(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload registerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := authsvc.RegisterInput{
			Email:    payload.Email,
			Username: payload.Username,
			Password: payload.Password,
			Address:  payload.Address,
			Phone:    payload.Phone,
		}
		if payload.DateOfBirth != nil {
			dob, err := time.Parse("2006-01-02", *payload.DateOfBirth)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "date_of_birth must be YYYY-MM-DD"))
				return
			}
			input.DateOfBirth = &dob
		}

		user, err := svc.Register(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, user)
	}
}

// Login verifies credentials and issues a token pair.
func Login(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload loginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, pair, err := svc.Login(r.Context(), payload.Email, payload.Password)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"user": user, "tokens": pair})
	}
}

// Logout revokes the current session and discards the user's cart.
func Logout(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		accessID := middleware.AccessIDFromContext(r.Context())

		if err := svc.Logout(r.Context(), userID, accessID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}

// Refresh rotates the refresh token and mints a new access token.
func Refresh(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload refreshRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		pair, err := svc.Refresh(r.Context(), payload.AccessToken, payload.RefreshToken)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pair)
	}
}

// Profile returns the authenticated user's account.
func Profile(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := svc.Profile(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}
