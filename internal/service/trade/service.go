package trade

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/trade-marketplace/internal/domain"
	"github.com/example/trade-marketplace/internal/events"
	"github.com/example/trade-marketplace/internal/fiscal"
	"github.com/example/trade-marketplace/internal/storage"
)

// ErrForbidden is returned when the principal is neither the owner of the
// trade nor an admin.
var ErrForbidden = errors.New("not authorized to modify this trade")

// Input is the allow-list of caller-supplied trade attributes. The owner,
// the fiscal receipt, and the timestamps are never caller-controlled.
type Input struct {
	Title       *string
	Description *string
	Category    *string
	ItemOffered *string
	ItemWanted  *string
	CashAmount  *float64
	Status      *string
}

func (in Input) apply(tr *domain.Trade) error {
	if in.Title != nil {
		tr.Title = *in.Title
	}
	if in.Description != nil {
		tr.Description = *in.Description
	}
	if in.Category != nil {
		tr.Category = *in.Category
	}
	if in.ItemOffered != nil {
		tr.ItemOffered = *in.ItemOffered
	}
	if in.ItemWanted != nil {
		tr.ItemWanted = *in.ItemWanted
	}
	if in.CashAmount != nil {
		tr.CashAmount = *in.CashAmount
	}
	if in.Status != nil {
		st, ok := domain.ParseStatus(*in.Status)
		if !ok {
			return fmt.Errorf("%w: unknown status %q", domain.ErrInvalid, *in.Status)
		}
		tr.Status = st
	}
	return tr.Validate()
}

// Service coordinates the trade workflow: ownership checks on mutation,
// persistence, and conditional fiscalization on creation.
type Service struct {
	trades    storage.TradeRepository
	users     storage.UserRepository
	fiscal    fiscal.Client
	publisher events.Publisher
	logger    *zap.Logger
}

func NewService(trades storage.TradeRepository, users storage.UserRepository, fc fiscal.Client, publisher events.Publisher, logger *zap.Logger) *Service {
	return &Service{trades: trades, users: users, fiscal: fc, publisher: publisher, logger: logger}
}

// List returns the newest trades, capped at limit.
func (s *Service) List(ctx context.Context, limit int) ([]*domain.Trade, error) {
	return s.trades.List(ctx, limit)
}

// ListByUser returns all trades owned by userID.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]*domain.Trade, error) {
	return s.trades.ListByUser(ctx, userID)
}

// Get fetches a trade with its owner's public profile attached.
func (s *Service) Get(ctx context.Context, id string) (*domain.Trade, error) {
	tr, err := s.trades.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	owner, err := s.users.GetByID(ctx, tr.UserID)
	switch {
	case err == nil:
		tr.Owner = owner.Public()
	case errors.Is(err, storage.ErrNotFound):
		// owner account gone; the trade itself is still servable
	default:
		return nil, err
	}
	return tr, nil
}

// Create persists a new trade owned by the principal. When the trade
// carries cash, the fiscal authority is called synchronously; if that call
// fails, or the receipt cannot be persisted, the just-created trade is
// deleted again so a cash trade is never visible without a receipt.
func (s *Service) Create(ctx context.Context, p domain.Principal, in Input) (*domain.Trade, error) {
	tr := &domain.Trade{UserID: p.ID, Status: domain.StatusOpen}
	if err := in.apply(tr); err != nil {
		return nil, err
	}
	if err := s.trades.Create(ctx, tr); err != nil {
		return nil, err
	}

	if tr.CashAmount > 0 {
		receipt, err := s.fiscal.Fiscalize(ctx, fiscal.Request{
			TradeID: tr.ID,
			Amount:  tr.CashAmount,
			UserTIN: p.TaxID,
		})
		if err != nil {
			if delErr := s.trades.Delete(ctx, tr.ID); delErr != nil {
				s.logger.Error("compensating delete failed",
					zap.String("trade_id", tr.ID), zap.Error(delErr))
			}
			return nil, err
		}
		tr.FiscalReceipt = receipt.ID
		if err := s.trades.Update(ctx, tr); err != nil {
			if delErr := s.trades.Delete(ctx, tr.ID); delErr != nil {
				s.logger.Error("compensating delete failed",
					zap.String("trade_id", tr.ID), zap.Error(delErr))
			}
			return nil, err
		}
	}

	s.publisher.TradeCreated(ctx, tr)
	return tr, nil
}

// Update applies a partial update after the ownership check.
func (s *Service) Update(ctx context.Context, p domain.Principal, id string, in Input) (*domain.Trade, error) {
	tr, err := s.trades.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.CanMutate(tr.UserID) {
		return nil, ErrForbidden
	}
	if err := in.apply(tr); err != nil {
		return nil, err
	}
	if err := s.trades.Update(ctx, tr); err != nil {
		return nil, err
	}
	return tr, nil
}

// Delete removes a trade after the ownership check.
func (s *Service) Delete(ctx context.Context, p domain.Principal, id string) error {
	tr, err := s.trades.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !p.CanMutate(tr.UserID) {
		return ErrForbidden
	}
	if err := s.trades.Delete(ctx, id); err != nil {
		return err
	}
	s.publisher.TradeDeleted(ctx, id)
	return nil
}
