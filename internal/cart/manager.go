package cart

import (
	"sync"

	"github.com/google/uuid"
)

// Manager hands out one cart store per authenticated user. Carts are memory
// resident only; they disappear on logout or process restart.
type Manager struct {
	mu     sync.Mutex
	stores map[uuid.UUID]*Store
}

func NewManager() *Manager {
	return &Manager{stores: make(map[uuid.UUID]*Store)}
}

// StoreFor returns the user's cart, creating an empty one on first use.
func (m *Manager) StoreFor(userID uuid.UUID) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()

	store, ok := m.stores[userID]
	if !ok {
		store = NewStore()
		m.stores[userID] = store
	}
	return store
}

// Drop discards the user's cart entirely. Called on logout.
func (m *Manager) Drop(userID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.stores, userID)
}
