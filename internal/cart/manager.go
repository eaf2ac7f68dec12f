// Package cart maintains a client-local mirror of the authenticated
// user's cart and keeps it consistent with the backend.
//
// The hot path (Add) is optimistic: the local state mutates and
// subscribers are notified before the backend call is issued; on backend
// failure the whole item sequence rolls back to its pre-mutation snapshot.
// Every other mutation follows a mutate-then-reload protocol. Mutations
// are serialized through a single mutex per manager, so concurrent
// operations cannot interleave their snapshots.
package cart

import (
	"context"
	"sync"
	"sync/atomic"

	"quitanda/internal/auth"
	"quitanda/internal/backend"
	"quitanda/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Manager owns the in-process cart state. It is the single in-process
// source of truth for rendering; the backend remains the durable source
// of truth and the local state is reconciled by explicit reloads.
type Manager struct {
	backend backend.Cart
	logger  zerolog.Logger

	// opMu serializes whole mutations (snapshot, local mutate, backend
	// call, rollback). mu guards only the state fields and is never held
	// across a backend call, so listeners may read state freely.
	opMu sync.Mutex
	mu   sync.RWMutex

	userID   uuid.UUID
	signedIn bool
	items    []model.CartItem
	busy     bool

	provisionalSeq atomic.Int64

	subMu     sync.Mutex
	listeners map[int]func()
	nextSub   int
}

// NewManager creates a cart state manager over the given backend port.
func NewManager(port backend.Cart, logger zerolog.Logger) *Manager {
	return &Manager{
		backend:   port,
		logger:    logger.With().Str("component", "cart").Logger(),
		listeners: make(map[int]func()),
	}
}

// SetUser reacts to a sign-in state change: a non-nil user loads that
// user's cart, a nil user resets the local state. Wire it to
// auth.Session.Subscribe.
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
		m.logger.Error().Err(err).Str("user_id", user.ID.String()).Msg("failed to load cart on sign-in")
	}
}

// Load replaces the entire local item sequence with the backend's current
// cart contents. The busy flag is set for the duration of the call.
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

// Add optimistically adds one unit of a product: the local mutation and
// subscriber notification happen before the backend call. A backend
// failure rolls the whole item sequence back to the pre-mutation snapshot
// and is logged, never surfaced — a best-effort policy for the common
// case. A successful first add of a product triggers a reload so the
// provisional item id is replaced by the backend's.
func (m *Manager) Add(ctx context.Context, product model.Product) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.mu.Lock()
	if !m.signedIn {
		m.mu.Unlock()
		m.logger.Warn().Int64("product_id", product.ID).Msg("add to cart without a session")
		return
	}
	userID := m.userID

	snapshot := make([]model.CartItem, len(m.items))
	copy(snapshot, m.items)

	isNew := true
	for i := range m.items {
		if m.items[i].ProductID == product.ID {
			m.items[i].Quantity++
			isNew = false
			break
		}
	}
	if isNew {
		m.items = append(m.items, model.CartItem{
			ID:        -m.provisionalSeq.Add(1),
			ProductID: product.ID,
			Quantity:  1,
			Product:   product,
		})
	}
	m.mu.Unlock()

	m.notify()

	if err := m.backend.AddToCart(ctx, userID, product.ID); err != nil {
		m.mu.Lock()
		m.items = snapshot
		m.mu.Unlock()

		m.logger.Error().
			Err(err).
			Int64("product_id", product.ID).
			Msg("backend add failed, local cart rolled back")

		m.notify()
		return
	}

	if isNew {
		if err := m.reload(ctx); err != nil {
			m.logger.Warn().
				Err(err).
				Int64("product_id", product.ID).
				Msg("reload after add failed, provisional item id retained")
		}
	}
}

// Remove deletes a cart item and unconditionally reloads, clearing the
// busy flag even when the backend call fails. Backend failures are
// absorbed by the reload. Items still carrying a provisional id cannot be
// targeted.
func (m *Manager) Remove(ctx context.Context, cartItemID int64) error {
	if cartItemID < 0 {
		return model.ErrProvisionalItem
	}

	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.setBusy(true)
	defer m.setBusy(false)

	m.mu.RLock()
	userID := m.userID
	m.mu.RUnlock()

	if err := m.backend.RemoveFromCart(ctx, userID, cartItemID); err != nil {
		m.logger.Error().Err(err).Int64("cart_item_id", cartItemID).Msg("backend remove failed")
	}

	_ = m.reload(ctx)
	return nil
}

// UpdateQuantity sets a cart item's quantity with the same
// mutate-then-reload protocol as Remove. Quantity must stay positive:
// callers decrementing to zero must call Remove instead.
func (m *Manager) UpdateQuantity(ctx context.Context, cartItemID int64, quantity int) error {
	if quantity <= 0 {
		return model.ErrInvalidQuantity
	}
	if cartItemID < 0 {
		return model.ErrProvisionalItem
	}

	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.setBusy(true)
	defer m.setBusy(false)

	m.mu.RLock()
	userID := m.userID
	m.mu.RUnlock()

	if err := m.backend.UpdateQuantity(ctx, userID, cartItemID, quantity); err != nil {
		m.logger.Error().Err(err).Int64("cart_item_id", cartItemID).Msg("backend quantity update failed")
	}

	_ = m.reload(ctx)
	return nil
}

// CreateOrder converts the current cart into a persisted order. An empty
// cart is a logged no-op returning (0, nil). On success the local item
// sequence is cleared: the backend captured the line items server-side
// from the cart state it observed. On failure the error propagates and
// the local cart is left untouched — checkout failures must be
// user-visible.
func (m *Manager) CreateOrder(ctx context.Context, addressID int64, paymentMethod string, deliveryFee decimal.Decimal) (int64, error) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.mu.RLock()
	empty := len(m.items) == 0
	userID := m.userID
	m.mu.RUnlock()

	if empty {
		m.logger.Warn().Msg("order creation attempted with an empty cart")
		return 0, nil
	}

	m.setBusy(true)
	defer m.setBusy(false)

	orderID, err := m.backend.CreateOrderFromCart(ctx, userID, addressID, paymentMethod, deliveryFee)
	if err != nil {
		m.logger.Error().
			Err(err).
			Int64("address_id", addressID).
			Msg("order creation failed")
		return 0, err
	}

	m.mu.Lock()
	m.items = nil
	m.mu.Unlock()
	m.notify()

	m.logger.Info().
		Int64("order_id", orderID).
		Str("payment_method", paymentMethod).
		Msg("order created, local cart cleared")

	return orderID, nil
}

// Reset clears the local state without touching the backend. Triggered
// externally on sign-out.
func (m *Manager) Reset() {
	m.mu.Lock()
	m.items = nil
	m.busy = false
	m.mu.Unlock()
	m.notify()
}

// Items returns a copy of the current item sequence.
func (m *Manager) Items() []model.CartItem {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := make([]model.CartItem, len(m.items))
	copy(items, m.items)
	return items
}

// TotalItems returns the sum of all item quantities.
func (m *Manager) TotalItems() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	total := 0
	for _, item := range m.items {
		total += item.Quantity
	}
	return total
}

// TotalPrice returns the sum of effective price times quantity over all
// items.
func (m *Manager) TotalPrice() decimal.Decimal {
	m.mu.RLock()
	defer m.mu.RUnlock()

	total := decimal.Zero
	for _, item := range m.items {
		price := item.Product.EffectivePrice()
		total = total.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// Loading reports whether a backend call is in flight.
func (m *Manager) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.busy
}

// Subscribe registers a listener invoked after every state transition,
// including the optimistic pre-network transition of Add. It returns an
// unsubscribe function.
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

// reload replaces the item sequence with the backend's cart. Callers own
// the busy flag.
func (m *Manager) reload(ctx context.Context) error {
	m.mu.RLock()
	userID := m.userID
	m.mu.RUnlock()

	items, err := m.backend.FetchCart(ctx, userID)
	if err != nil {
		m.logger.Error().Err(err).Msg("failed to load cart")
		return err
	}

	m.mu.Lock()
	m.items = items
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
