// Package favorites maintains the authenticated user's favorited
// products with the same optimistic pattern as the cart, over a simpler
// entity. Failed toggles are corrected by a full reload rather than a
// snapshot rollback: favorites carry no quantity, so converging on the
// backend's ground truth loses nothing.
package favorites

import (
	"context"
	"sync"

	"quitanda/internal/auth"
	"quitanda/internal/backend"
	"quitanda/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Manager owns the in-process favorites state: the product sequence plus
// a derived id set for O(1) membership tests.
type Manager struct {
	backend backend.Favorites
	logger  zerolog.Logger

	opMu sync.Mutex
	mu   sync.RWMutex

	userID   uuid.UUID
	signedIn bool
	products []model.Product
	ids      map[int64]struct{}
	busy     bool

	subMu     sync.Mutex
	listeners map[int]func()
	nextSub   int
}

// NewManager creates a favorites state manager over the given backend
// port.
func NewManager(port backend.Favorites, logger zerolog.Logger) *Manager {
	return &Manager{
		backend:   port,
		logger:    logger.With().Str("component", "favorites").Logger(),
		ids:       make(map[int64]struct{}),
		listeners: make(map[int]func()),
	}
}

// SetUser reacts to a sign-in state change: a non-nil user loads that
// user's favorites, a nil user resets the local state.
func (m *Manager) SetUser(ctx context.Context, user *auth.User) {
	if user == nil {
		m.mu.Lock()
		m.signedIn = false
		m.userID = uuid.Nil
		m.mu.Unlock()
		m.Reset()
		return
	}

	m.mu.Lock()
	m.signedIn = true
	m.userID = user.ID
	m.mu.Unlock()

	if err := m.Load(ctx); err != nil {
		m.logger.Error().Err(err).Str("user_id", user.ID.String()).Msg("failed to load favorites on sign-in")
	}
}

// Load replaces the local favorites with the backend's. The busy flag is
// set for the call's duration.
func (m *Manager) Load(ctx context.Context) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.mu.RLock()
	signedIn := m.signedIn
	m.mu.RUnlock()
	if !signedIn {
		return model.ErrNotSignedIn
	}

	m.setBusy(true)
	defer m.setBusy(false)

	return m.reload(ctx)
}

// Toggle optimistically adds or removes a product based on current
// membership, then fires the backend toggle. A backend failure triggers a
// full reload to restore ground truth.
func (m *Manager) Toggle(ctx context.Context, product model.Product) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.mu.Lock()
	if !m.signedIn {
		m.mu.Unlock()
		m.logger.Warn().Int64("product_id", product.ID).Msg("toggle favorite without a session")
		return
	}
	userID := m.userID

	if _, favorited := m.ids[product.ID]; favorited {
		kept := m.products[:0:0]
		for _, p := range m.products {
			if p.ID != product.ID {
				kept = append(kept, p)
			}
		}
		m.products = kept
		delete(m.ids, product.ID)
	} else {
		m.products = append(m.products, product)
		m.ids[product.ID] = struct{}{}
	}
	m.mu.Unlock()

	m.notify()

	if err := m.backend.ToggleFavorite(ctx, userID, product.ID); err != nil {
		m.logger.Error().
			Err(err).
			Int64("product_id", product.ID).
			Msg("backend toggle failed, reloading favorites")

		if reloadErr := m.reload(ctx); reloadErr != nil {
			m.logger.Error().Err(reloadErr).Msg("favorites reload after failed toggle also failed")
		}
	}
}

// IsFavorited reports membership against the derived id set.
func (m *Manager) IsFavorited(productID int64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.ids[productID]
	return ok
}

// Products returns a copy of the favorited product sequence.
func (m *Manager) Products() []model.Product {
	m.mu.RLock()
	defer m.mu.RUnlock()

	products := make([]model.Product, len(m.products))
	copy(products, m.products)
	return products
}

// Loading reports whether a backend call is in flight.
func (m *Manager) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.busy
}

// Reset clears the local state without touching the backend.
func (m *Manager) Reset() {
	m.mu.Lock()
	m.products = nil
	m.ids = make(map[int64]struct{})
	m.busy = false
	m.mu.Unlock()
	m.notify()
}

// Subscribe registers a listener invoked after every state transition and
// returns an unsubscribe function.
func (m *Manager) Subscribe(fn func()) func() {
	m.subMu.Lock()
	id := m.nextSub
	m.nextSub++
	m.listeners[id] = fn
	m.subMu.Unlock()

	return func() {
		m.subMu.Lock()
		delete(m.listeners, id)
		m.subMu.Unlock()
	}
}

// reload replaces the local state with the backend's favorites.
func (m *Manager) reload(ctx context.Context) error {
	m.mu.RLock()
	userID := m.userID
	m.mu.RUnlock()

	products, err := m.backend.FetchFavorites(ctx, userID)
	if err != nil {
		m.logger.Error().Err(err).Msg("failed to load favorites")
		return err
	}

	ids := make(map[int64]struct{}, len(products))
	for _, p := range products {
		ids[p.ID] = struct{}{}
	}

	m.mu.Lock()
	m.products = products
	m.ids = ids
	m.mu.Unlock()
	m.notify()

	return nil
}

// setBusy flips the busy flag and notifies subscribers.
func (m *Manager) setBusy(busy bool) {
	m.mu.Lock()
	m.busy = busy
	m.mu.Unlock()
	m.notify()
}

// notify invokes every listener outside the state lock.
func (m *Manager) notify() {
	m.subMu.Lock()
	listeners := make([]func(), 0, len(m.listeners))
	for _, fn := range m.listeners {
		listeners = append(listeners, fn)
	}
	m.subMu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}
