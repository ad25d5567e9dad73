package cart

import (
	"context"
	"sync"
	"time"

	"storefront/internal/domain"
	"storefront/internal/lock"
	"storefront/internal/metrics"

	"github.com/rs/zerolog"
)

// Sessions keeps one Manager per signed-in user. Anonymous callers get a
// fresh, empty manager that is never stored. Managers not used for
// idleTimeout are forgotten on a later lookup; the store keeps their lines.
type Sessions struct {
	store       Store
	locker      Locker
	logger      zerolog.Logger
	metrics     *metrics.Metrics
	idleTimeout time.Duration
	now         func() time.Time

	mu       sync.Mutex
	managers map[string]*session
}

type session struct {
	mgr      *Manager
	lastUsed time.Time
}

// NewSessions returns an empty registry. idleTimeout <= 0 keeps managers
// until Drop.
func NewSessions(store Store, locker Locker, logger zerolog.Logger, m *metrics.Metrics, idleTimeout time.Duration) *Sessions {
	if locker == nil {
		// Managers of one user must share a locker across evictions.
		locker = lock.NewLocal()
	}
	return &Sessions{
		store:       store,
		locker:      locker,
		logger:      logger,
		metrics:     m,
		idleTimeout: idleTimeout,
		now:         time.Now,
		managers:    make(map[string]*session),
	}
}

// For returns the manager of identity, loading it from the store the first
// time the user is seen. A failed first load still returns the (empty)
// manager together with the error.
func (s *Sessions) For(ctx context.Context, identity domain.Identity) (*Manager, error) {
	if !identity.Authenticated() {
		return NewManager(s.store, s.locker, identity, s.logger, s.metrics), nil
	}

	s.mu.Lock()
	now := s.now()
	s.evictIdleLocked(now, identity.UserID)
	entry, ok := s.managers[identity.UserID]
	if !ok {
		mgr := NewManager(s.store, s.locker, identity, s.logger.With().Str("user_id", identity.UserID).Logger(), s.metrics)
		entry = &session{mgr: mgr}
		s.managers[identity.UserID] = entry
	}
	entry.lastUsed = now
	mgr := entry.mgr
	s.mu.Unlock()

	if !ok {
		return mgr, mgr.Refresh(ctx)
	}
	if mgr.Identity() != identity {
		return mgr, mgr.SetIdentity(ctx, identity)
	}
	return mgr, nil
}

// Drop forgets the user's manager, e.g. after sign-out.
func (s *Sessions) Drop(userID string) {
	s.mu.Lock()
	delete(s.managers, userID)
	s.mu.Unlock()
}

// Len reports how many users have a live manager.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.managers)
}

// evictIdleLocked must be called with s.mu held. keep is never evicted.
func (s *Sessions) evictIdleLocked(now time.Time, keep string) {
	if s.idleTimeout <= 0 {
		return
	}
	for userID, entry := range s.managers {
		if userID == keep || now.Sub(entry.lastUsed) < s.idleTimeout {
			continue
		}
		delete(s.managers, userID)
		s.logger.Debug().Str("user_id", userID).Msg("cart sessions: idle manager evicted")
	}
}
