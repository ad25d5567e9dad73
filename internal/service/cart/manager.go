package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"storefront/internal/domain"
	"storefront/internal/lock"
	"storefront/internal/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ErrStockLimit is returned by AddItemUpTo when the line already holds the limit.
var ErrStockLimit = errors.New("stock limit reached")

// Store is the subset of the cart repository the manager needs.
type Store interface {
	ListByUser(ctx context.Context, userID string) ([]domain.CartLine, error)
	Insert(ctx context.Context, userID, productID string, quantity int) (string, error)
	UpdateQuantity(ctx context.Context, userID, lineID string, quantity int) error
	Delete(ctx context.Context, userID, lineID string) error
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

// Locker serializes mutations per user id.
type Locker interface {
	Acquire(ctx context.Context, key string) (lock.Release, error)
}

// Manager owns the in-memory cart view of one identity. The store is the
// source of truth: every successful mutation is followed by a full re-read.
type Manager struct {
	store   Store
	locker  Locker
	logger  zerolog.Logger
	metrics *metrics.Metrics

	mu       sync.RWMutex
	identity domain.Identity
	items    []domain.CartLine
}

// NewManager returns an empty manager for identity. Call Refresh to load it.
func NewManager(store Store, locker Locker, identity domain.Identity, logger zerolog.Logger, m *metrics.Metrics) *Manager {
	if locker == nil {
		locker = lock.NewLocal()
	}
	return &Manager{
		store:    store,
		locker:   locker,
		logger:   logger,
		metrics:  m,
		identity: identity,
		items:    []domain.CartLine{},
	}
}

// Identity returns the identity the view belongs to.
func (m *Manager) Identity() domain.Identity {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.identity
}

// Items returns a copy of the current lines.
func (m *Manager) Items() []domain.CartLine {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.CartLine, len(m.items))
	copy(out, m.items)
	return out
}

// Total is recomputed from the current lines on every call.
func (m *Manager) Total() decimal.Decimal {
	return domain.CartTotal(m.Items())
}

// Cart returns the current view with its derived total and item count.
func (m *Manager) Cart() domain.Cart {
	return domain.NewCart(m.Items())
}

// ItemCount is the sum of quantities, shown as the cart badge.
func (m *Manager) ItemCount() int {
	return domain.CartItemCount(m.Items())
}

// SetIdentity switches the view to identity. A different user (login, logout
// or switch) empties the view and reloads it; the same user only updates the
// stored flags.
func (m *Manager) SetIdentity(ctx context.Context, identity domain.Identity) error {
	m.mu.Lock()
	changed := m.identity.UserID != identity.UserID
	m.identity = identity
	if changed {
		m.items = []domain.CartLine{}
	}
	m.mu.Unlock()
	if !changed {
		return nil
	}
	return m.Refresh(ctx)
}

// Refresh replaces the view with the store's lines. Without a user it empties
// the view and touches nothing. On read failure the previous view is kept.
func (m *Manager) Refresh(ctx context.Context) error {
	userID := m.Identity().UserID
	if userID == "" {
		m.setItems([]domain.CartLine{})
		return nil
	}
	release, err := m.locker.Acquire(ctx, userID)
	if err != nil {
		return err
	}
	defer release()

	err = m.refresh(ctx, userID)
	m.metrics.CartOp("refresh", err)
	return err
}

// AddItem merges into an existing line for productID or inserts a line with quantity 1.
func (m *Manager) AddItem(ctx context.Context, productID string) error {
	return m.mutate(ctx, "add", func(userID string) error {
		return m.addItem(ctx, userID, productID, 0)
	})
}

// AddItemUpTo is AddItem with a ceiling: when the existing line already holds
// limit units, or the stock of its fresh snapshot, it returns ErrStockLimit.
// The check runs under the user's lock against a fresh read.
func (m *Manager) AddItemUpTo(ctx context.Context, productID string, limit int) error {
	return m.mutate(ctx, "add", func(userID string) error {
		return m.addItem(ctx, userID, productID, limit)
	})
}

// SetQuantity updates a line. quantity <= 0 removes it. The stock ceiling is
// the caller's concern.
func (m *Manager) SetQuantity(ctx context.Context, lineID string, quantity int) error {
	return m.mutate(ctx, "set_quantity", func(userID string) error {
		return m.setQuantity(ctx, userID, lineID, quantity)
	})
}

// RemoveItem deletes a line. Removing an unknown line succeeds.
func (m *Manager) RemoveItem(ctx context.Context, lineID string) error {
	return m.mutate(ctx, "remove", func(userID string) error {
		return m.removeItem(ctx, userID, lineID)
	})
}

// Clear deletes every line of the user. Without a user it does nothing.
func (m *Manager) Clear(ctx context.Context) error {
	if !m.Identity().Authenticated() {
		return nil
	}
	return m.mutate(ctx, "clear", func(userID string) error {
		n, err := m.store.DeleteByUser(ctx, userID)
		if err != nil {
			return m.writeFailed(userID, "clear", err)
		}
		m.logger.Info().Str("user_id", userID).Int64("rows", n).Msg("cart manager: cleared")
		m.refreshAfterWrite(ctx, userID)
		return nil
	})
}

// Checkout does not place an order; it returns the current view untouched.
func (m *Manager) Checkout(ctx context.Context) (domain.Cart, error) {
	if !m.Identity().Authenticated() {
		return domain.Cart{}, domain.ErrAuthRequired
	}
	cart := m.Cart()
	m.logger.Info().
		Str("user_id", m.Identity().UserID).
		Int("item_count", cart.ItemCount).
		Str("total", cart.Total.StringFixed(2)).
		Msg("cart manager: checkout requested")
	return cart, nil
}

// mutate runs fn under the user's lock. Unauthenticated callers get ErrAuthRequired.
func (m *Manager) mutate(ctx context.Context, op string, fn func(userID string) error) error {
	userID := m.Identity().UserID
	if userID == "" {
		m.logger.Warn().Str("op", op).Msg("cart manager: authentication required")
		m.metrics.CartOp(op, domain.ErrAuthRequired)
		return domain.ErrAuthRequired
	}
	release, err := m.locker.Acquire(ctx, userID)
	if err != nil {
		m.metrics.CartOp(op, err)
		return fmt.Errorf("acquire cart lock: %w", err)
	}
	defer release()

	err = fn(userID)
	m.metrics.CartOp(op, err)
	return err
}

// addItem applies a ceiling only when limit > 0.
func (m *Manager) addItem(ctx context.Context, userID, productID string, limit int) error {
	if !validID(productID) {
		return domain.ErrNotFound
	}
	// Decide merge vs insert on a fresh read so a stale view cannot cause a second line.
	if err := m.refresh(ctx, userID); err != nil {
		return err
	}
	for _, line := range m.Items() {
		if line.ProductID != productID {
			continue
		}
		if limit > 0 {
			ceiling := min(limit, line.Product.Stock)
			if line.Quantity >= ceiling {
				return ErrStockLimit
			}
		}
		return m.setQuantity(ctx, userID, line.ID, line.Quantity+1)
	}

	lineID, err := m.store.Insert(ctx, userID, productID, 1)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return m.writeFailed(userID, "insert", err)
	}
	m.logger.Info().Str("user_id", userID).Str("product_id", productID).Str("line_id", lineID).Msg("cart manager: line added")
	m.refreshAfterWrite(ctx, userID)
	return nil
}

func (m *Manager) setQuantity(ctx context.Context, userID, lineID string, quantity int) error {
	if quantity <= 0 {
		return m.removeItem(ctx, userID, lineID)
	}
	if !validID(lineID) {
		m.refreshAfterWrite(ctx, userID)
		return domain.ErrNotFound
	}
	if err := m.store.UpdateQuantity(ctx, userID, lineID, quantity); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			m.refreshAfterWrite(ctx, userID)
			return err
		}
		return m.writeFailed(userID, "update", err)
	}
	m.logger.Debug().Str("user_id", userID).Str("line_id", lineID).Int("quantity", quantity).Msg("cart manager: quantity set")
	m.refreshAfterWrite(ctx, userID)
	return nil
}

func (m *Manager) removeItem(ctx context.Context, userID, lineID string) error {
	if !validID(lineID) {
		// No row can have this id: nothing to delete.
		m.refreshAfterWrite(ctx, userID)
		return nil
	}
	if err := m.store.Delete(ctx, userID, lineID); err != nil {
		return m.writeFailed(userID, "delete", err)
	}
	m.logger.Debug().Str("user_id", userID).Str("line_id", lineID).Msg("cart manager: line removed")
	m.refreshAfterWrite(ctx, userID)
	return nil
}

// refresh must be called with the user's lock held.
func (m *Manager) refresh(ctx context.Context, userID string) error {
	lines, err := m.store.ListByUser(ctx, userID)
	if err != nil {
		m.metrics.StoreFailure("read")
		m.logger.Error().Err(err).Str("user_id", userID).Msg("cart manager: refresh failed, keeping previous view")
		return fmt.Errorf("%w: %w", domain.ErrStoreRead, err)
	}
	if m.Identity().UserID != userID {
		// Identity switched while the read was in flight; drop the result.
		return nil
	}
	m.setItems(lines)
	return nil
}

// refreshAfterWrite re-reads after a successful write. A failed read only
// leaves the view stale; the write itself already succeeded.
func (m *Manager) refreshAfterWrite(ctx context.Context, userID string) {
	_ = m.refresh(ctx, userID)
}

func (m *Manager) writeFailed(userID, op string, err error) error {
	m.metrics.StoreFailure("write")
	m.logger.Error().Err(err).Str("user_id", userID).Str("op", op).Msg("cart manager: store write failed")
	return fmt.Errorf("%w: %s: %w", domain.ErrStoreWrite, op, err)
}

// validID reports whether id can name a row; ids are uuid columns.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (m *Manager) setItems(lines []domain.CartLine) {
	if lines == nil {
		lines = []domain.CartLine{}
	}
	m.mu.Lock()
	m.items = lines
	m.mu.Unlock()
}
