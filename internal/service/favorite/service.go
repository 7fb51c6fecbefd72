package favorite

import (
	"context"
	"errors"
	"strings"

	"github.com/example/trade-marketplace/internal/domain"
	"github.com/example/trade-marketplace/internal/storage"
)

var (
	// ErrMissingTrade is returned when no trade id was supplied.
	ErrMissingTrade = errors.New("trade id is required")
	// ErrTradeNotFound is returned when the referenced trade does not exist.
	ErrTradeNotFound = errors.New("trade not found")
	// ErrAlreadyFavorited is returned when the (user, trade) pair exists.
	ErrAlreadyFavorited = errors.New("this trade is already in your favorites")
	// ErrForbidden is returned when the principal does not own the
	// favorite. There is deliberately no admin override here.
	ErrForbidden = errors.New("not authorized to delete this favorite")
)

// Service coordinates the favorite workflow.
type Service struct {
	favorites storage.FavoriteRepository
	trades    storage.TradeRepository
}

func NewService(favorites storage.FavoriteRepository, trades storage.TradeRepository) *Service {
	return &Service{favorites: favorites, trades: trades}
}

// Create favorites an existing trade for the principal. The lookup-based
// duplicate check is only a fast path with a friendlier error; the store's
// unique (user, trade) index is what actually prevents duplicates under
// concurrent requests, and its rejection maps to the same error.
func (s *Service) Create(ctx context.Context, p domain.Principal, tradeID string) (*domain.Favorite, error) {
	tradeID = strings.TrimSpace(tradeID)
	if tradeID == "" {
		return nil, ErrMissingTrade
	}

	tr, err := s.trades.GetByID(ctx, tradeID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrTradeNotFound
		}
		return nil, err
	}

	if _, err := s.favorites.FindByUserAndTrade(ctx, p.ID, tradeID); err == nil {
		return nil, ErrAlreadyFavorited
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	fav := &domain.Favorite{UserID: p.ID, TradeID: tradeID}
	if err := s.favorites.Create(ctx, fav); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, ErrAlreadyFavorited
		}
		return nil, err
	}
	fav.Trade = tr
	return fav, nil
}

// List returns the principal's favorites, newest first, each with its
// trade resolved. A favorite whose trade has since been deleted is kept
// with a nil trade.
func (s *Service) List(ctx context.Context, p domain.Principal) ([]*domain.Favorite, error) {
	favs, err := s.favorites.ListByUser(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	for _, fav := range favs {
		tr, err := s.trades.GetByID(ctx, fav.TradeID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			return nil, err
		}
		fav.Trade = tr
	}
	return favs, nil
}

// Delete removes a favorite. Only the owning user may delete it.
func (s *Service) Delete(ctx context.Context, p domain.Principal, id string) error {
	fav, err := s.favorites.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if fav.UserID != p.ID {
		return ErrForbidden
	}
	return s.favorites.Delete(ctx, id)
}
