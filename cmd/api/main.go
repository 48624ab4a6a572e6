package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/hasanmehediii/cardealer-backend/api/routes"
	authsvc "github.com/hasanmehediii/cardealer-backend/internal/auth"
	"github.com/hasanmehediii/cardealer-backend/internal/cart"
	"github.com/hasanmehediii/cardealer-backend/internal/catalog"
	"github.com/hasanmehediii/cardealer-backend/internal/checkout"
	"github.com/hasanmehediii/cardealer-backend/internal/purchases"
	"github.com/hasanmehediii/cardealer-backend/pkg/auth/session"
	"github.com/hasanmehediii/cardealer-backend/pkg/config"
	"github.com/hasanmehediii/cardealer-backend/pkg/db"
	"github.com/hasanmehediii/cardealer-backend/pkg/logger"
	"github.com/hasanmehediii/cardealer-backend/pkg/metrics"
	"github.com/hasanmehediii/cardealer-backend/pkg/migrate"
	"github.com/hasanmehediii/cardealer-backend/pkg/redis"
)

const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return multierr.Append(err, dbClient.Close())
	}

	closeClients := func() error {
		return multierr.Combine(dbClient.Close(), redisClient.Close())
	}

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return multierr.Append(err, closeClients())
	}

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return multierr.Append(err, closeClients())
	}

	carts := cart.NewManager()
	catalogService := catalog.NewService(catalog.NewRepository(dbClient.DB()))
	authService := authsvc.NewService(authsvc.NewRepository(dbClient.DB()), sessionManager, carts, cfg.JWT, cfg.Password)
	purchaseService := purchases.NewService(purchases.NewRepository(dbClient.DB()), authService)

	checkoutMetrics := metrics.NewCheckoutMetrics(prometheus.DefaultRegisterer)
	coordinator := checkout.NewCoordinator(carts, catalogService, purchaseService, cfg.Checkout, checkoutMetrics, logg)
	go coordinator.RunJanitor(ctx, time.Minute)

	addr := ":" + cfg.App.Port
	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:      cfg,
			Logger:      logg,
			DB:          dbClient,
			Redis:       redisClient,
			Sessions:    sessionManager,
			AuthService: authService,
			Catalog:     catalogService,
			Purchases:   purchaseService,
			Carts:       carts,
			Checkout:    coordinator,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	startCtx := logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "addr": addr})
	logg.Info(startCtx, "starting api server")

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		return multierr.Append(err, closeClients())
	case <-ctx.Done():
	}

	logg.Info(startCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	err = server.Shutdown(shutdownCtx)
	return multierr.Combine(err, closeClients())
}
