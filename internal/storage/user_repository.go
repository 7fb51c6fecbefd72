package storage

import (
	"context"

	"github.com/example/trade-marketplace/internal/domain"
)

// UserRepository gives read access to accounts plus the create needed for
// seeding. The API itself never mutates users.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}
