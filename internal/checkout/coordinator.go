package checkout

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/hasanmehediii/cardealer-backend/internal/cart"
	"github.com/hasanmehediii/cardealer-backend/pkg/config"
	"github.com/hasanmehediii/cardealer-backend/pkg/enums"
	pkgerrors "github.com/hasanmehediii/cardealer-backend/pkg/errors"
	"github.com/hasanmehediii/cardealer-backend/pkg/logger"
	"github.com/hasanmehediii/cardealer-backend/pkg/metrics"
)

// StockFetcher reads the authoritative available quantity for a car.
type StockFetcher interface {
	StockFor(ctx context.Context, carID uuid.UUID) (int, error)
}

// PurchaseCreator turns a verified line snapshot into a persisted purchase.
// It is the final authority on acceptance; the coordinator never decrements
// stock itself.
type PurchaseCreator interface {
	CreatePurchase(ctx context.Context, userID uuid.UUID, lines []cart.Line, method enums.PaymentMethod) (uuid.UUID, error)
}

type activeIntent struct {
	intent *Intent
	method enums.PaymentMethod
	cancel context.CancelFunc
}

// Coordinator drives carts through stock verification and purchase submission.
// One intent per user at a time; terminal intents stay readable until the next
// Begin replaces them.
type Coordinator struct {
	mu      sync.Mutex
	intents map[uuid.UUID]*activeIntent

	carts     *cart.Manager
	stock     StockFetcher
	purchases PurchaseCreator
	cfg       config.CheckoutConfig
	metrics   *metrics.CheckoutMetrics
	logg      *logger.Logger
}

func NewCoordinator(
	carts *cart.Manager,
	stock StockFetcher,
	purchases PurchaseCreator,
	cfg config.CheckoutConfig,
	checkoutMetrics *metrics.CheckoutMetrics,
	logg *logger.Logger,
) *Coordinator {
	return &Coordinator{
		intents:   make(map[uuid.UUID]*activeIntent),
		carts:     carts,
		stock:     stock,
		purchases: purchases,
		cfg:       cfg,
		metrics:   checkoutMetrics,
		logg:      logg,
	}
}

// Begin snapshots the user's cart and verifies every line's stock. When all
// lines fit it submits immediately; when any line exceeds fresh stock the
// intent lands in the adjusted state and waits for an explicit Confirm.
func (c *Coordinator) Begin(ctx context.Context, userID uuid.UUID, method enums.PaymentMethod) (*Intent, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to check out")
	}
	if !method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}

	store := c.carts.StoreFor(userID)
	lines := store.Lines()
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	verifyCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	intent := &Intent{
		ID:        uuid.New(),
		UserID:    userID,
		Lines:     lines,
		State:     StateVerifying,
		CreatedAt: time.Now().UTC(),
	}

	c.mu.Lock()
	if existing, ok := c.intents[userID]; ok && !existing.intent.terminal() {
		c.mu.Unlock()
		cancel()
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "a checkout is already in progress")
	}
	c.intents[userID] = &activeIntent{intent: intent, method: method, cancel: cancel}
	c.mu.Unlock()

	c.metrics.IncBegun()
	logCtx := c.logg.WithFields(ctx, map[string]any{"intent_id": intent.ID, "lines": len(lines)})
	c.logg.Info(logCtx, "checkout started")

	stocks, err := c.verifyStock(verifyCtx, intent)
	if err != nil {
		return c.finishVerifyFailure(logCtx, userID, intent, err)
	}

	now := time.Now().UTC()
	adjustments := computeAdjustments(intent.Lines, stocks)

	c.mu.Lock()
	active, ok := c.intents[userID]
	if !ok || active.intent != intent {
		c.mu.Unlock()
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "checkout was cancelled")
	}
	intent.VerifiedAt = &now

	if len(adjustments) > 0 {
		if len(applyAdjustments(intent.Lines, adjustments)) == 0 {
			intent.State = StateRejected
			intent.RejectReason = ReasonOutOfStock
			intent.Adjustments = adjustments
			c.mu.Unlock()
			c.metrics.IncRejected(ReasonOutOfStock)
			c.logg.Warn(logCtx, "checkout rejected, nothing left in stock")
			return intent.clone(), nil
		}
		intent.State = StateAdjusted
		intent.Adjustments = adjustments
		c.mu.Unlock()
		c.metrics.IncAdjusted()
		c.logg.Info(logCtx, "checkout adjusted, awaiting re-confirmation")
		return intent.clone(), nil
	}

	intent.State = StateSubmitting
	c.mu.Unlock()

	return c.submit(logCtx, userID, intent, intent.Lines, active.method)
}

// Confirm re-enters from the adjusted state with the clamped quantities.
// All-or-nothing: the whole adjusted snapshot is submitted, with zero-stock
// lines dropped.
func (c *Coordinator) Confirm(ctx context.Context, userID uuid.UUID) (*Intent, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to check out")
	}

	c.mu.Lock()
	active, ok := c.intents[userID]
	if !ok || active.intent.State != StateAdjusted {
		c.mu.Unlock()
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "no adjusted checkout awaiting confirmation")
	}
	intent := active.intent
	intent.State = StateSubmitting
	method := active.method
	c.mu.Unlock()

	submitLines := applyAdjustments(intent.Lines, intent.Adjustments)
	if len(submitLines) == 0 {
		c.mu.Lock()
		intent.State = StateRejected
		intent.RejectReason = ReasonOutOfStock
		c.mu.Unlock()
		c.metrics.IncRejected(ReasonOutOfStock)
		return intent.clone(), nil
	}

	logCtx := c.logg.WithField(ctx, "intent_id", intent.ID)
	return c.submit(logCtx, userID, intent, submitLines, method)
}

// Cancel abandons an in-flight checkout. Outstanding stock fetches are
// discarded and the cart is left untouched.
func (c *Coordinator) Cancel(userID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	active, ok := c.intents[userID]
	if !ok || active.intent.terminal() {
		return pkgerrors.New(pkgerrors.CodeNotFound, "no checkout in progress")
	}
	if active.intent.State == StateSubmitting {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "purchase submission cannot be cancelled")
	}

	active.cancel()
	delete(c.intents, userID)
	return nil
}

// Status returns a copy of the user's current or most recent intent.
func (c *Coordinator) Status(userID uuid.UUID) (*Intent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	active, ok := c.intents[userID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no checkout found")
	}
	return active.intent.clone(), nil
}

// SweepTerminal drops terminal intents older than the configured TTL so the
// map does not grow with every finished checkout. Returns the number removed.
func (c *Coordinator) SweepTerminal(now time.Time) int {
	ttl := c.cfg.IntentTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for userID, active := range c.intents {
		if active.intent.terminal() && now.Sub(active.intent.CreatedAt) > ttl {
			delete(c.intents, userID)
			removed++
		}
	}
	return removed
}

// RunJanitor sweeps expired terminal intents until ctx is done.
func (c *Coordinator) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if removed := c.SweepTerminal(now.UTC()); removed > 0 {
				c.logg.Info(c.logg.WithField(ctx, "removed", removed), "swept finished checkouts")
			}
		}
	}
}

// verifyStock fetches fresh stock for every distinct car concurrently and
// waits for all fetches before acting. Bounded by the configured timeout.
func (c *Coordinator) verifyStock(ctx context.Context, intent *Intent) (map[uuid.UUID]int, error) {
	timeout := c.cfg.VerifyTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	started := time.Now()
	defer func() {
		c.metrics.ObserveVerifyDuration(time.Since(started))
	}()

	var mu sync.Mutex
	stocks := make(map[uuid.UUID]int, len(intent.Lines))

	g, ctx := errgroup.WithContext(ctx)
	for _, line := range intent.Lines {
		carID := line.CarID
		g.Go(func() error {
			qty, err := c.stock.StockFor(ctx, carID)
			if err != nil {
				return err
			}
			mu.Lock()
			stocks[carID] = qty
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stocks, nil
}

func (c *Coordinator) finishVerifyFailure(ctx context.Context, userID uuid.UUID, intent *Intent, cause error) (*Intent, error) {
	c.mu.Lock()
	active, ok := c.intents[userID]
	if !ok || active.intent != intent {
		// cancelled from another request; results are discarded
		c.mu.Unlock()
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "checkout was cancelled")
	}

	reason := ReasonGateway
	if errors.Is(cause, context.DeadlineExceeded) {
		reason = ReasonTimeout
	}
	intent.State = StateRejected
	intent.RejectReason = reason
	c.mu.Unlock()

	c.metrics.IncRejected(reason)
	c.logg.Error(ctx, "stock verification failed", cause)
	return intent.clone(), nil
}

func (c *Coordinator) submit(ctx context.Context, userID uuid.UUID, intent *Intent, lines []cart.Line, method enums.PaymentMethod) (*Intent, error) {
	purchaseID, err := c.purchases.CreatePurchase(ctx, userID, lines, method)

	c.mu.Lock()
	if err != nil {
		intent.State = StateRejected
		intent.RejectReason = ReasonGateway
		c.mu.Unlock()
		c.metrics.IncRejected(ReasonGateway)
		c.logg.Error(ctx, "purchase submission failed", err)
		// cart left untouched so the user can retry
		return intent.clone(), nil
	}
	intent.State = StateConfirmed
	intent.PurchaseID = purchaseID
	c.mu.Unlock()

	c.carts.StoreFor(userID).Clear()
	c.metrics.IncConfirmed()
	c.logg.Info(c.logg.WithField(ctx, "purchase_id", purchaseID), "checkout confirmed")
	return intent.clone(), nil
}

func computeAdjustments(lines []cart.Line, stocks map[uuid.UUID]int) []Adjustment {
	var out []Adjustment
	for _, line := range lines {
		available, ok := stocks[line.CarID]
		if !ok {
			available = 0
		}
		if available >= line.Quantity {
			continue
		}
		out = append(out, Adjustment{
			CarID:             line.CarID,
			Name:              line.Name,
			RequestedQuantity: line.Quantity,
			AvailableQuantity: available,
			Removed:           available == 0,
		})
	}
	return out
}

// applyAdjustments clamps the snapshot down to verified stock and drops lines
// whose stock hit zero.
func applyAdjustments(lines []cart.Line, adjustments []Adjustment) []cart.Line {
	byCar := make(map[uuid.UUID]Adjustment, len(adjustments))
	for _, adj := range adjustments {
		byCar[adj.CarID] = adj
	}

	out := make([]cart.Line, 0, len(lines))
	for _, line := range lines {
		adj, ok := byCar[line.CarID]
		if !ok {
			out = append(out, line)
			continue
		}
		if adj.Removed {
			continue
		}
		line.Quantity = adj.AvailableQuantity
		out = append(out, line)
	}
	return out
}
