package checkout

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/hasanmehediii/cardealer-backend/internal/cart"
	"github.com/hasanmehediii/cardealer-backend/pkg/config"
	"github.com/hasanmehediii/cardealer-backend/pkg/enums"
	pkgerrors "github.com/hasanmehediii/cardealer-backend/pkg/errors"
	"github.com/hasanmehediii/cardealer-backend/pkg/logger"
	"github.com/hasanmehediii/cardealer-backend/pkg/metrics"
)

type stubStock struct {
	fn func(ctx context.Context, carID uuid.UUID) (int, error)
}

func (s *stubStock) StockFor(ctx context.Context, carID uuid.UUID) (int, error) {
	return s.fn(ctx, carID)
}

type stubPurchases struct {
	mu    sync.Mutex
	lines []cart.Line
	err   error
	id    uuid.UUID
}

func (s *stubPurchases) CreatePurchase(ctx context.Context, userID uuid.UUID, lines []cart.Line, method enums.PaymentMethod) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return uuid.Nil, s.err
	}
	s.lines = append([]cart.Line(nil), lines...)
	if s.id == uuid.Nil {
		s.id = uuid.New()
	}
	return s.id, nil
}

func (s *stubPurchases) submitted() []cart.Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lines
}

func fixedStock(levels map[uuid.UUID]int) *stubStock {
	return &stubStock{fn: func(ctx context.Context, carID uuid.UUID) (int, error) {
		return levels[carID], nil
	}}
}

func testCoordinator(t *testing.T, carts *cart.Manager, stock StockFetcher, purchases PurchaseCreator) *Coordinator {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
	cfg := config.CheckoutConfig{VerifyTimeout: time.Second}
	return NewCoordinator(carts, stock, purchases, cfg, metrics.NewCheckoutMetrics(nil), logg)
}

func addLine(t *testing.T, store *cart.Store, carID uuid.UUID, priceCents int64, qty, max int) {
	t.Helper()
	_, _, err := store.Add(cart.AddInput{
		CarID:          carID,
		Name:           "Car " + carID.String()[:8],
		UnitPriceCents: priceCents,
		Quantity:       qty,
		MaxQuantity:    max,
	})
	require.NoError(t, err)
}

func TestBeginRequiresIdentityAndLines(t *testing.T) {
	t.Parallel()

	carts := cart.NewManager()
	coord := testCoordinator(t, carts, fixedStock(nil), &stubPurchases{})

	_, err := coord.Begin(context.Background(), uuid.Nil, enums.PaymentMethodCard)
	require.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())

	_, err = coord.Begin(context.Background(), uuid.New(), enums.PaymentMethodCard)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestBeginSubmitsWhenAllStockFits(t *testing.T) {
	t.Parallel()

	carts := cart.NewManager()
	userID := uuid.New()
	c1 := uuid.New()
	c2 := uuid.New()
	store := carts.StoreFor(userID)
	addLine(t, store, c1, 2000000, 2, 5)
	addLine(t, store, c2, 5000000, 1, 5)

	purchases := &stubPurchases{}
	coord := testCoordinator(t, carts, fixedStock(map[uuid.UUID]int{c1: 5, c2: 5}), purchases)

	intent, err := coord.Begin(context.Background(), userID, enums.PaymentMethodCard)
	require.NoError(t, err)
	require.Equal(t, StateConfirmed, intent.State)
	require.NotEqual(t, uuid.Nil, intent.PurchaseID)
	require.Empty(t, intent.Adjustments)
	require.Len(t, purchases.submitted(), 2)
	require.Equal(t, 0, store.Len(), "confirmed checkout clears the cart")
}

func TestBeginAdjustsWithoutAutoSubmit(t *testing.T) {
	t.Parallel()

	carts := cart.NewManager()
	userID := uuid.New()
	carID := uuid.New()
	store := carts.StoreFor(userID)
	addLine(t, store, carID, 2000000, 3, 3)

	purchases := &stubPurchases{}
	coord := testCoordinator(t, carts, fixedStock(map[uuid.UUID]int{carID: 1}), purchases)

	intent, err := coord.Begin(context.Background(), userID, enums.PaymentMethodCard)
	require.NoError(t, err)
	require.Equal(t, StateAdjusted, intent.State)
	require.Len(t, intent.Adjustments, 1)
	require.Equal(t, 3, intent.Adjustments[0].RequestedQuantity)
	require.Equal(t, 1, intent.Adjustments[0].AvailableQuantity)
	require.Empty(t, purchases.submitted(), "adjusted intents must not auto-submit")

	// live cart keeps the original quantity until the user re-confirms
	require.Equal(t, 3, store.Lines()[0].Quantity)

	confirmed, err := coord.Confirm(context.Background(), userID)
	require.NoError(t, err)
	require.Equal(t, StateConfirmed, confirmed.State)
	require.Len(t, purchases.submitted(), 1)
	require.Equal(t, 1, purchases.submitted()[0].Quantity, "submitted quantity is the clamped one")
	require.Equal(t, 0, store.Len())
}

func TestBeginRejectsWhenEverythingOutOfStock(t *testing.T) {
	t.Parallel()

	carts := cart.NewManager()
	userID := uuid.New()
	carID := uuid.New()
	addLine(t, carts.StoreFor(userID), carID, 100, 2, 3)

	coord := testCoordinator(t, carts, fixedStock(map[uuid.UUID]int{carID: 0}), &stubPurchases{})

	intent, err := coord.Begin(context.Background(), userID, enums.PaymentMethodCard)
	require.NoError(t, err)
	require.Equal(t, StateRejected, intent.State)
	require.Equal(t, ReasonOutOfStock, intent.RejectReason)
	require.Equal(t, 1, carts.StoreFor(userID).Len(), "rejected checkout leaves the cart alone")
}

func TestConfirmDropsZeroStockLines(t *testing.T) {
	t.Parallel()

	carts := cart.NewManager()
	userID := uuid.New()
	gone := uuid.New()
	left := uuid.New()
	store := carts.StoreFor(userID)
	addLine(t, store, gone, 100, 2, 3)
	addLine(t, store, left, 200, 2, 3)

	purchases := &stubPurchases{}
	coord := testCoordinator(t, carts, fixedStock(map[uuid.UUID]int{gone: 0, left: 2}), purchases)

	intent, err := coord.Begin(context.Background(), userID, enums.PaymentMethodCard)
	require.NoError(t, err)
	require.Equal(t, StateAdjusted, intent.State)

	confirmed, err := coord.Confirm(context.Background(), userID)
	require.NoError(t, err)
	require.Equal(t, StateConfirmed, confirmed.State)

	submitted := purchases.submitted()
	require.Len(t, submitted, 1)
	require.Equal(t, left, submitted[0].CarID)
}

func TestIntentSnapshotIsolation(t *testing.T) {
	t.Parallel()

	carts := cart.NewManager()
	userID := uuid.New()
	carID := uuid.New()
	store := carts.StoreFor(userID)
	addLine(t, store, carID, 100, 2, 5)

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	stock := &stubStock{fn: func(ctx context.Context, id uuid.UUID) (int, error) {
		once.Do(func() { close(entered) })
		<-release
		return 5, nil
	}}

	purchases := &stubPurchases{}
	coord := testCoordinator(t, carts, stock, purchases)

	done := make(chan *Intent, 1)
	go func() {
		intent, err := coord.Begin(context.Background(), userID, enums.PaymentMethodCard)
		if err != nil {
			done <- nil
			return
		}
		done <- intent
	}()

	<-entered
	// mutate the live cart while verification is in flight
	_, _, err := store.UpdateQuantity(carID, 5)
	require.NoError(t, err)
	close(release)

	intent := <-done
	require.NotNil(t, intent)
	require.Equal(t, StateConfirmed, intent.State)
	require.Equal(t, 2, intent.Lines[0].Quantity, "intent keeps the snapshot quantity")
	require.Equal(t, 2, purchases.submitted()[0].Quantity)
}

func TestCancelDuringVerification(t *testing.T) {
	t.Parallel()

	carts := cart.NewManager()
	userID := uuid.New()
	carID := uuid.New()
	store := carts.StoreFor(userID)
	addLine(t, store, carID, 100, 1, 3)

	entered := make(chan struct{})
	stock := &stubStock{fn: func(ctx context.Context, id uuid.UUID) (int, error) {
		close(entered)
		<-ctx.Done()
		return 0, ctx.Err()
	}}

	coord := testCoordinator(t, carts, stock, &stubPurchases{})

	errCh := make(chan error, 1)
	go func() {
		_, err := coord.Begin(context.Background(), userID, enums.PaymentMethodCard)
		errCh <- err
	}()

	<-entered
	require.NoError(t, coord.Cancel(userID))

	err := <-errCh
	require.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
	require.Equal(t, 1, store.Len(), "cancel leaves the cart untouched")

	_, err = coord.Status(userID)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestVerifyTimeoutRejects(t *testing.T) {
	t.Parallel()

	carts := cart.NewManager()
	userID := uuid.New()
	addLine(t, carts.StoreFor(userID), uuid.New(), 100, 1, 3)

	stock := &stubStock{fn: func(ctx context.Context, id uuid.UUID) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	}}

	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
	coord := NewCoordinator(carts, stock, &stubPurchases{},
		config.CheckoutConfig{VerifyTimeout: 10 * time.Millisecond},
		metrics.NewCheckoutMetrics(nil), logg)

	intent, err := coord.Begin(context.Background(), userID, enums.PaymentMethodCard)
	require.NoError(t, err)
	require.Equal(t, StateRejected, intent.State)
	require.Equal(t, ReasonTimeout, intent.RejectReason)
}

func TestSubmitGatewayFailurePreservesCart(t *testing.T) {
	t.Parallel()

	carts := cart.NewManager()
	userID := uuid.New()
	carID := uuid.New()
	store := carts.StoreFor(userID)
	addLine(t, store, carID, 100, 1, 3)

	purchases := &stubPurchases{err: fmt.Errorf("insert failed")}
	coord := testCoordinator(t, carts, fixedStock(map[uuid.UUID]int{carID: 3}), purchases)

	intent, err := coord.Begin(context.Background(), userID, enums.PaymentMethodCard)
	require.NoError(t, err)
	require.Equal(t, StateRejected, intent.State)
	require.Equal(t, ReasonGateway, intent.RejectReason)
	require.Equal(t, 1, store.Len())
}

func TestBeginRefusesSecondInFlightCheckout(t *testing.T) {
	t.Parallel()

	carts := cart.NewManager()
	userID := uuid.New()
	carID := uuid.New()
	addLine(t, carts.StoreFor(userID), carID, 100, 3, 3)

	coord := testCoordinator(t, carts, fixedStock(map[uuid.UUID]int{carID: 1}), &stubPurchases{})

	intent, err := coord.Begin(context.Background(), userID, enums.PaymentMethodCard)
	require.NoError(t, err)
	require.Equal(t, StateAdjusted, intent.State)

	_, err = coord.Begin(context.Background(), userID, enums.PaymentMethodCard)
	require.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestConfirmWithoutAdjustedIntentFails(t *testing.T) {
	t.Parallel()

	carts := cart.NewManager()
	coord := testCoordinator(t, carts, fixedStock(nil), &stubPurchases{})

	_, err := coord.Confirm(context.Background(), uuid.New())
	require.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestSweepTerminalDropsOnlyExpiredFinishedIntents(t *testing.T) {
	t.Parallel()

	carts := cart.NewManager()
	carID := uuid.New()
	purchases := &stubPurchases{id: uuid.New()}
	coord := testCoordinator(t, carts, fixedStock(map[uuid.UUID]int{carID: 5}), purchases)

	confirmedUser := uuid.New()
	addLine(t, carts.StoreFor(confirmedUser), carID, 100, 1, 5)
	intent, err := coord.Begin(context.Background(), confirmedUser, enums.PaymentMethodCard)
	require.NoError(t, err)
	require.Equal(t, StateConfirmed, intent.State)

	// not yet past the TTL
	require.Zero(t, coord.SweepTerminal(time.Now().UTC()))
	_, err = coord.Status(confirmedUser)
	require.NoError(t, err)

	require.Equal(t, 1, coord.SweepTerminal(time.Now().UTC().Add(time.Hour)))
	_, err = coord.Status(confirmedUser)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}
