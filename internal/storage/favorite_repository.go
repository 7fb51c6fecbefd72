package storage

import (
	"context"

	"github.com/example/trade-marketplace/internal/domain"
)

// FavoriteRepository describes the persistence operations required by the
// favorite workflow. Create returns ErrDuplicate when a favorite for the
// same (user, trade) pair already exists; the store's unique index is the
// authoritative guard, not the caller's pre-check.
type FavoriteRepository interface {
	Create(ctx context.Context, fav *domain.Favorite) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Favorite, error)
	FindByUserAndTrade(ctx context.Context, userID, tradeID string) (*domain.Favorite, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Favorite, error)
}
