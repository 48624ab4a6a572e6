package cart

import (
	"sync"

	"github.com/google/uuid"

	pkgerrors "github.com/hasanmehediii/cardealer-backend/pkg/errors"
)

// Line is one car/quantity pairing held in a cart. Name, price and image are
// display snapshots captured at add time and may go stale relative to the catalog.
type Line struct {
	CarID          uuid.UUID
	Name           string
	UnitPriceCents int64
	ImageRef       string
	Quantity       int
	MaxQuantity    int
}

// AddInput carries everything Add needs about a car. The caller assembles it
// from a catalog summary; the store never calls the network itself.
type AddInput struct {
	CarID          uuid.UUID
	Name           string
	UnitPriceCents int64
	ImageRef       string
	Quantity       int
	MaxQuantity    int
}

// Subscriber receives a copy of the cart's lines after every mutation.
type Subscriber func(lines []Line)

// Store holds the in-memory cart for a single session. All operations are
// synchronous and local; safe for concurrent use.
type Store struct {
	mu          sync.Mutex
	lines       []Line
	subscribers map[int]Subscriber
	nextSubID   int
}

func NewStore() *Store {
	return &Store{subscribers: make(map[int]Subscriber)}
}

// Add inserts a new line or merges into an existing one by car id. The stored
// quantity is clamped to the supplied stock ceiling; the returned bool reports
// whether clamping occurred. Merging refreshes MaxQuantity to the latest value.
func (s *Store) Add(input AddInput) (Line, bool, error) {
	if input.CarID == uuid.Nil {
		return Line{}, false, pkgerrors.New(pkgerrors.CodeValidation, "car id is required")
	}
	if input.Quantity < 1 {
		return Line{}, false, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a positive integer")
	}
	if input.UnitPriceCents < 0 {
		return Line{}, false, pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
	}
	if input.MaxQuantity < 1 {
		return Line{}, false, pkgerrors.New(pkgerrors.CodeValidation, "car is out of stock")
	}

	s.mu.Lock()
	var result Line
	clamped := false

	if idx := s.indexOf(input.CarID); idx >= 0 {
		line := s.lines[idx]
		line.MaxQuantity = input.MaxQuantity
		wanted := line.Quantity + input.Quantity
		line.Quantity = wanted
		if line.Quantity > line.MaxQuantity {
			line.Quantity = line.MaxQuantity
			clamped = true
		}
		s.lines[idx] = line
		result = line
	} else {
		line := Line{
			CarID:          input.CarID,
			Name:           input.Name,
			UnitPriceCents: input.UnitPriceCents,
			ImageRef:       input.ImageRef,
			Quantity:       input.Quantity,
			MaxQuantity:    input.MaxQuantity,
		}
		if line.Quantity > line.MaxQuantity {
			line.Quantity = line.MaxQuantity
			clamped = true
		}
		s.lines = append(s.lines, line)
		result = line
	}

	snapshot := s.copyLinesLocked()
	s.mu.Unlock()

	s.notify(snapshot)
	return result, clamped, nil
}

// UpdateQuantity sets the quantity for an existing line, clamped into
// [1, MaxQuantity]. Zero or negative removes the line. Missing car ids fail
// with a not-found error.
func (s *Store) UpdateQuantity(carID uuid.UUID, quantity int) (Line, bool, error) {
	s.mu.Lock()
	idx := s.indexOf(carID)
	if idx < 0 {
		s.mu.Unlock()
		return Line{}, false, pkgerrors.New(pkgerrors.CodeNotFound, "car is not in the cart")
	}

	if quantity <= 0 {
		s.lines = append(s.lines[:idx], s.lines[idx+1:]...)
		snapshot := s.copyLinesLocked()
		s.mu.Unlock()
		s.notify(snapshot)
		return Line{}, false, nil
	}

	line := s.lines[idx]
	clamped := false
	line.Quantity = quantity
	if line.Quantity > line.MaxQuantity {
		line.Quantity = line.MaxQuantity
		clamped = true
	}
	s.lines[idx] = line

	snapshot := s.copyLinesLocked()
	s.mu.Unlock()
	s.notify(snapshot)
	return line, clamped, nil
}

// Remove deletes the line for the car id. Absent ids are a no-op, not an error.
func (s *Store) Remove(carID uuid.UUID) {
	s.mu.Lock()
	idx := s.indexOf(carID)
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	s.lines = append(s.lines[:idx], s.lines[idx+1:]...)
	snapshot := s.copyLinesLocked()
	s.mu.Unlock()
	s.notify(snapshot)
}

// Clear empties the cart. Used after a confirmed purchase or on logout.
func (s *Store) Clear() {
	s.mu.Lock()
	s.lines = nil
	snapshot := s.copyLinesLocked()
	s.mu.Unlock()
	s.notify(snapshot)
}

// Total returns the sum of unit price times quantity over all lines, in cents.
func (s *Store) Total() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total int64
	for _, line := range s.lines {
		total += line.UnitPriceCents * int64(line.Quantity)
	}
	return total
}

// Lines returns a copy of the cart's lines in insertion order.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLinesLocked()
}

// Len reports the number of lines in the cart.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines)
}

// Subscribe registers a callback invoked with a fresh copy of the lines after
// every mutation. The returned function unsubscribes.
func (s *Store) Subscribe(fn Subscriber) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

func (s *Store) indexOf(carID uuid.UUID) int {
	for i, line := range s.lines {
		if line.CarID == carID {
			return i
		}
	}
	return -1
}

func (s *Store) copyLinesLocked() []Line {
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// notify runs outside the store lock so subscribers may call back into the store.
func (s *Store) notify(snapshot []Line) {
	s.mu.Lock()
	subs := make([]Subscriber, 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}
