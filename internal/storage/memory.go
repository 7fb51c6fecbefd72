package storage

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/trade-marketplace/internal/domain"
)

// ErrNotFound is returned when a record does not exist in the repository.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when an insert violates a uniqueness constraint.
var ErrDuplicate = errors.New("duplicate record")

// InMemoryTradeRepository provides an in-memory implementation for tests
// and for running the server without a MongoDB instance.
type InMemoryTradeRepository struct {
	mu     sync.RWMutex
	trades map[string]*domain.Trade
}

// NewInMemoryTradeRepository constructs an empty repository.
func NewInMemoryTradeRepository() *InMemoryTradeRepository {
	return &InMemoryTradeRepository{trades: make(map[string]*domain.Trade)}
}

// Create stores a new trade, generating an ID when absent.
func (r *InMemoryTradeRepository) Create(_ context.Context, tr *domain.Trade) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if tr.ID == "" {
		tr.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if tr.CreatedAt.IsZero() {
		tr.CreatedAt = now
	}
	tr.UpdatedAt = now

	cp := *tr
	r.trades[tr.ID] = &cp
	return nil
}

// Update replaces an existing trade.
func (r *InMemoryTradeRepository) Update(_ context.Context, tr *domain.Trade) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if tr.ID == "" {
		return ErrNotFound
	}
	if _, ok := r.trades[tr.ID]; !ok {
		return ErrNotFound
	}
	cp := *tr
	cp.UpdatedAt = time.Now().UTC()
	r.trades[tr.ID] = &cp
	return nil
}

// Delete removes a trade from the repository.
func (r *InMemoryTradeRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.trades[id]; !ok {
		return ErrNotFound
	}
	delete(r.trades, id)
	return nil
}

// GetByID retrieves a trade by its identifier.
func (r *InMemoryTradeRepository) GetByID(_ context.Context, id string) (*domain.Trade, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tr, ok := r.trades[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *tr
	return &cp, nil
}

// List returns trades sorted by creation date descending, capped at limit
// when limit is positive.
func (r *InMemoryTradeRepository) List(_ context.Context, limit int) ([]*domain.Trade, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make([]*domain.Trade, 0, len(r.trades))
	for _, tr := range r.trades {
		cp := *tr
		results = append(results, &cp)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// ListByUser returns all trades owned by userID, newest first.
func (r *InMemoryTradeRepository) ListByUser(_ context.Context, userID string) ([]*domain.Trade, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make([]*domain.Trade, 0)
	for _, tr := range r.trades {
		if tr.UserID != userID {
			continue
		}
		cp := *tr
		results = append(results, &cp)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})
	return results, nil
}

// InMemoryFavoriteRepository mirrors the Mongo favorite collection,
// including its unique (user, trade) constraint.
type InMemoryFavoriteRepository struct {
	mu        sync.RWMutex
	favorites map[string]*domain.Favorite
	pairs     map[[2]string]string // (userID, tradeID) -> favorite ID
}

// NewInMemoryFavoriteRepository constructs an empty repository.
func NewInMemoryFavoriteRepository() *InMemoryFavoriteRepository {
	return &InMemoryFavoriteRepository{
		favorites: make(map[string]*domain.Favorite),
		pairs:     make(map[[2]string]string),
	}
}

// Create stores a favorite, rejecting duplicates for the same (user, trade)
// pair under the lock so concurrent attempts cannot both commit.
func (r *InMemoryFavoriteRepository) Create(_ context.Context, fav *domain.Favorite) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	pair := [2]string{fav.UserID, fav.TradeID}
	if _, exists := r.pairs[pair]; exists {
		return ErrDuplicate
	}
	if fav.ID == "" {
		fav.ID = uuid.NewString()
	}
	if fav.CreatedAt.IsZero() {
		fav.CreatedAt = time.Now().UTC()
	}
	cp := *fav
	cp.Trade = nil
	r.favorites[fav.ID] = &cp
	r.pairs[pair] = fav.ID
	return nil
}

// Delete removes a favorite from the repository.
func (r *InMemoryFavoriteRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	fav, ok := r.favorites[id]
	if !ok {
		return ErrNotFound
	}
	delete(r.pairs, [2]string{fav.UserID, fav.TradeID})
	delete(r.favorites, id)
	return nil
}

// GetByID retrieves a favorite by its identifier.
func (r *InMemoryFavoriteRepository) GetByID(_ context.Context, id string) (*domain.Favorite, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fav, ok := r.favorites[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *fav
	return &cp, nil
}

// FindByUserAndTrade retrieves the favorite for a (user, trade) pair.
func (r *InMemoryFavoriteRepository) FindByUserAndTrade(_ context.Context, userID, tradeID string) (*domain.Favorite, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.pairs[[2]string{userID, tradeID}]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r.favorites[id]
	return &cp, nil
}

// ListByUser returns the user's favorites sorted by creation date descending.
func (r *InMemoryFavoriteRepository) ListByUser(_ context.Context, userID string) ([]*domain.Favorite, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make([]*domain.Favorite, 0)
	for _, fav := range r.favorites {
		if fav.UserID != userID {
			continue
		}
		cp := *fav
		results = append(results, &cp)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})
	return results, nil
}

// InMemoryUserRepository holds accounts for tests and seeded dev setups.
type InMemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User
}

// NewInMemoryUserRepository constructs an empty repository.
func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{users: make(map[string]*domain.User)}
}

// Create stores a user, rejecting duplicate usernames.
func (r *InMemoryUserRepository) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Username == u.Username {
			return ErrDuplicate
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

// GetByID retrieves a user by identifier.
func (r *InMemoryUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

// GetByUsername retrieves a user by username.
func (r *InMemoryUserRepository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}
