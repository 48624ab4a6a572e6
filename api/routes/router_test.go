package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	authsvc "github.com/hasanmehediii/cardealer-backend/internal/auth"
	"github.com/hasanmehediii/cardealer-backend/internal/cart"
	"github.com/hasanmehediii/cardealer-backend/internal/catalog"
	"github.com/hasanmehediii/cardealer-backend/internal/checkout"
	"github.com/hasanmehediii/cardealer-backend/internal/purchases"
	pkgauth "github.com/hasanmehediii/cardealer-backend/pkg/auth"
	"github.com/hasanmehediii/cardealer-backend/pkg/config"
	"github.com/hasanmehediii/cardealer-backend/pkg/enums"
	"github.com/hasanmehediii/cardealer-backend/pkg/logger"
	"github.com/hasanmehediii/cardealer-backend/pkg/metrics"
)

type stubSessionChecker struct{}

func (stubSessionChecker) HasSession(context.Context, string) (bool, error) {
	return true, nil
}

type stubCatalogService struct{}

func (stubCatalogService) ListCars(context.Context, catalog.ListCarsInput) (*catalog.CarListResult, error) {
	return &catalog.CarListResult{Cars: []catalog.CarSummaryDTO{}}, nil
}

func (stubCatalogService) GetCar(context.Context, uuid.UUID) (*catalog.CarDetailDTO, error) {
	panic("unimplemented")
}

func (stubCatalogService) ListCategories(context.Context) ([]catalog.CategoryDTO, error) {
	panic("unimplemented")
}

func (stubCatalogService) ListReviews(context.Context, uuid.UUID) ([]catalog.ReviewDTO, error) {
	panic("unimplemented")
}

func (stubCatalogService) AddReview(context.Context, uuid.UUID, uuid.UUID, int, *string) (*catalog.ReviewDTO, error) {
	panic("unimplemented")
}

func (stubCatalogService) CartSummaryFor(context.Context, uuid.UUID) (*catalog.CartSummary, error) {
	panic("unimplemented")
}

func (stubCatalogService) StockFor(context.Context, uuid.UUID) (int, error) {
	return 0, nil
}

func (stubCatalogService) CreateCar(context.Context, catalog.CreateCarInput) (*catalog.CarDetailDTO, error) {
	panic("unimplemented")
}

func (stubCatalogService) UpdateCar(context.Context, uuid.UUID, catalog.UpdateCarInput) (*catalog.CarDetailDTO, error) {
	panic("unimplemented")
}

func (stubCatalogService) DeleteCar(context.Context, uuid.UUID) error {
	panic("unimplemented")
}

func (stubCatalogService) SetInventory(context.Context, uuid.UUID, catalog.SetInventoryInput) error {
	panic("unimplemented")
}

func (stubCatalogService) CreateCategory(context.Context, string, *string) (*catalog.CategoryDTO, error) {
	panic("unimplemented")
}

type stubAuthService struct{}

func (stubAuthService) Register(context.Context, authsvc.RegisterInput) (*authsvc.UserDTO, error) {
	panic("unimplemented")
}

func (stubAuthService) Login(context.Context, string, string) (*authsvc.UserDTO, *authsvc.TokenPair, error) {
	panic("unimplemented")
}

func (stubAuthService) Logout(context.Context, uuid.UUID, string) error {
	panic("unimplemented")
}

func (stubAuthService) Refresh(context.Context, string, string) (*authsvc.TokenPair, error) {
	panic("unimplemented")
}

func (stubAuthService) Profile(context.Context, uuid.UUID) (*authsvc.UserDTO, error) {
	panic("unimplemented")
}

func (stubAuthService) ShippingAddressFor(context.Context, uuid.UUID) (*string, error) {
	return nil, nil
}

type stubPurchasesService struct{}

func (stubPurchasesService) CreatePurchase(context.Context, uuid.UUID, []cart.Line, enums.PaymentMethod) (uuid.UUID, error) {
	panic("unimplemented")
}

func (stubPurchasesService) GetPurchase(context.Context, uuid.UUID, uuid.UUID, bool) (*purchases.PurchaseDTO, error) {
	panic("unimplemented")
}

func (stubPurchasesService) History(context.Context, uuid.UUID, int, string) (*purchases.PurchaseListResult, error) {
	return &purchases.PurchaseListResult{Purchases: []purchases.PurchaseDTO{}}, nil
}

func (stubPurchasesService) ListAll(context.Context, int, string) (*purchases.PurchaseListResult, error) {
	return &purchases.PurchaseListResult{Purchases: []purchases.PurchaseDTO{}}, nil
}

func (stubPurchasesService) UpdateOrderStatus(context.Context, uuid.UUID, purchases.UpdateOrderInput) (*purchases.OrderDTO, error) {
	panic("unimplemented")
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "router-test-secret",
		Issuer:            "cardealer-test",
		ExpirationMinutes: 5,
	}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	cfg := &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: testJWTConfig(),
	}
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled})
	carts := cart.NewManager()
	catalogService := stubCatalogService{}
	purchaseService := stubPurchasesService{}
	coordinator := checkout.NewCoordinator(
		carts,
		catalogService,
		purchaseService,
		cfg.Checkout,
		metrics.NewCheckoutMetrics(nil),
		logg,
	)

	return NewRouter(Deps{
		Config:      cfg,
		Logger:      logg,
		Sessions:    stubSessionChecker{},
		AuthService: stubAuthService{},
		Catalog:     catalogService,
		Purchases:   purchaseService,
		Carts:       carts,
		Checkout:    coordinator,
	})
}

func mintToken(t *testing.T, role enums.UserRole) string {
	t.Helper()

	token, err := pkgauth.MintAccessToken(testJWTConfig(), time.Now(), pkgauth.AccessTokenPayload{
		UserID:   uuid.New(),
		Username: "router-test",
		Role:     role,
		JTI:      uuid.NewString(),
	})
	require.NoError(t, err)
	return token
}

func TestRouterPublicEndpoints(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cars", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterRequiresAuth(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, enums.UserRoleCustomer))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterAdminGate(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/purchases", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, enums.UserRoleCustomer))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/admin/v1/purchases", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, enums.UserRoleAdmin))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}
