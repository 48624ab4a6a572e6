package checkout

import (
	"time"

	"github.com/google/uuid"

	"github.com/hasanmehediii/cardealer-backend/internal/cart"
)

// State is the checkout state machine position for an intent.
type State string

const (
	StateIdle       State = "idle"
	StateVerifying  State = "verifying"
	StateAdjusted   State = "adjusted"
	StateSubmitting State = "submitting"
	StateConfirmed  State = "confirmed"
	StateRejected   State = "rejected"
)

// Rejection reasons surfaced on a terminal Rejected intent.
const (
	ReasonTimeout    = "timeout"
	ReasonOutOfStock = "out_of_stock"
	ReasonGateway    = "gateway_error"
)

// Adjustment records one line whose requested quantity exceeded fresh stock.
// Removed means stock hit zero and the line is dropped on re-confirm.
type Adjustment struct {
	CarID             uuid.UUID
	Name              string
	RequestedQuantity int
	AvailableQuantity int
	Removed           bool
}

// Intent is a snapshot of the cart taken when checkout begins. It holds its
// own copy of the lines; edits to the live cart never reach an in-flight intent.
type Intent struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Lines        []cart.Line
	State        State
	Adjustments  []Adjustment
	RejectReason string
	PurchaseID   uuid.UUID
	CreatedAt    time.Time
	VerifiedAt   *time.Time
}

// clone returns a deep copy safe to hand to callers.
func (i *Intent) clone() *Intent {
	if i == nil {
		return nil
	}
	out := *i
	out.Lines = make([]cart.Line, len(i.Lines))
	copy(out.Lines, i.Lines)
	out.Adjustments = make([]Adjustment, len(i.Adjustments))
	copy(out.Adjustments, i.Adjustments)
	if i.VerifiedAt != nil {
		t := *i.VerifiedAt
		out.VerifiedAt = &t
	}
	return &out
}

// terminal reports whether the intent can no longer transition.
func (i *Intent) terminal() bool {
	return i.State == StateConfirmed || i.State == StateRejected
}
