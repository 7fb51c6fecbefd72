package storage

import (
	"context"

	"github.com/example/trade-marketplace/internal/domain"
)

// TradeRepository describes the persistence operations required by the
// trade workflow.
type TradeRepository interface {
	Create(ctx context.Context, tr *domain.Trade) error
	Update(ctx context.Context, tr *domain.Trade) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Trade, error)
	List(ctx context.Context, limit int) ([]*domain.Trade, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Trade, error)
}
