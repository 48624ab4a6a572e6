package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hasanmehediii/cardealer-backend/api/controllers"
	cartcontrollers "github.com/hasanmehediii/cardealer-backend/api/controllers/cart"
	"github.com/hasanmehediii/cardealer-backend/api/middleware"
	authsvc "github.com/hasanmehediii/cardealer-backend/internal/auth"
	"github.com/hasanmehediii/cardealer-backend/internal/cart"
	"github.com/hasanmehediii/cardealer-backend/internal/catalog"
	"github.com/hasanmehediii/cardealer-backend/internal/checkout"
	"github.com/hasanmehediii/cardealer-backend/internal/purchases"
	"github.com/hasanmehediii/cardealer-backend/pkg/auth/session"
	"github.com/hasanmehediii/cardealer-backend/pkg/config"
	"github.com/hasanmehediii/cardealer-backend/pkg/db"
	"github.com/hasanmehediii/cardealer-backend/pkg/logger"
	"github.com/hasanmehediii/cardealer-backend/pkg/redis"
)

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          *db.Client
	Redis       *redis.Client
	Sessions    session.AccessSessionChecker
	AuthService authsvc.Service
	Catalog     catalog.Service
	Purchases   purchases.Service
	Carts       *cart.Manager
	Checkout    *checkout.Coordinator
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.Ping())
		r.Get("/ready", controllers.Health(deps.DB, deps.Redis, logg))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	authed := middleware.Auth(cfg.JWT, deps.Sessions, logg)

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).
			Post("/register", controllers.Register(deps.AuthService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).
			Post("/login", controllers.Login(deps.AuthService, logg))
		r.Post("/refresh", controllers.Refresh(deps.AuthService, logg))
		r.With(authed).Post("/logout", controllers.Logout(deps.AuthService, logg))
	})

	r.Route("/api/v1/cars", func(r chi.Router) {
		r.Get("/", controllers.ListCars(deps.Catalog, logg))
		r.Get("/{carID}", controllers.GetCar(deps.Catalog, logg))
		r.Get("/{carID}/reviews", controllers.ListReviews(deps.Catalog, logg))
		r.With(authed).Post("/{carID}/reviews", controllers.AddReview(deps.Catalog, logg))
	})
	r.Get("/api/v1/categories", controllers.ListCategories(deps.Catalog, logg))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(authed)

		r.Get("/me", controllers.Profile(deps.AuthService, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartcontrollers.Get(deps.Carts, logg))
			r.Delete("/", cartcontrollers.Clear(deps.Carts, logg))
			r.Post("/items", cartcontrollers.AddItem(deps.Carts, deps.Catalog, logg))
			r.Patch("/items/{carID}", cartcontrollers.UpdateItem(deps.Carts, logg))
			r.Delete("/items/{carID}", cartcontrollers.RemoveItem(deps.Carts, logg))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", controllers.BeginCheckout(deps.Checkout, logg))
			r.Post("/confirm", controllers.ConfirmCheckout(deps.Checkout, logg))
			r.Post("/cancel", controllers.CancelCheckout(deps.Checkout, logg))
			r.Get("/", controllers.CheckoutStatus(deps.Checkout, logg))
		})

		r.Route("/purchases", func(r chi.Router) {
			r.Get("/", controllers.PurchaseHistory(deps.Purchases, logg))
			r.Get("/{purchaseID}", controllers.GetPurchase(deps.Purchases, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(authed)
		r.Use(middleware.RequireAdmin(logg))

		r.Route("/cars", func(r chi.Router) {
			r.Post("/", controllers.CreateCar(deps.Catalog, logg))
			r.Patch("/{carID}", controllers.UpdateCar(deps.Catalog, logg))
			r.Delete("/{carID}", controllers.DeleteCar(deps.Catalog, logg))
			r.Put("/{carID}/inventory", controllers.SetInventory(deps.Catalog, logg))
		})
		r.Post("/categories", controllers.CreateCategory(deps.Catalog, logg))
		r.Route("/purchases", func(r chi.Router) {
			r.Get("/", controllers.ListAllPurchases(deps.Purchases, logg))
			r.Patch("/{purchaseID}/order", controllers.UpdateOrder(deps.Purchases, logg))
		})
	})

	return r
}
