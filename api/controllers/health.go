package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/hasanmehediii/cardealer-backend/api/responses"
	pkgerrors "github.com/hasanmehediii/cardealer-backend/pkg/errors"
	"github.com/hasanmehediii/cardealer-backend/pkg/logger"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// Ping returns a bare liveness probe.
func Ping() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}

// Health checks the database and Redis connections.
func Health(db, cache pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status := map[string]string{"db": "ok", "redis": "ok"}
		healthy := true

		if db == nil {
			status["db"] = "unconfigured"
			healthy = false
		} else if err := db.Ping(ctx); err != nil {
			status["db"] = "down"
			healthy = false
		}

		if cache == nil {
			status["redis"] = "unconfigured"
			healthy = false
		} else if err := cache.Ping(ctx); err != nil {
			status["redis"] = "down"
			healthy = false
		}

		if !healthy {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeDependency, "dependency unavailable").WithDetails(status))
			return
		}
		responses.WriteSuccess(w, status)
	}
}
