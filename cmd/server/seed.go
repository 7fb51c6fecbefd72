package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/trade-marketplace/internal/config"
	"github.com/example/trade-marketplace/internal/domain"
	"github.com/example/trade-marketplace/internal/storage"
)

// maybeSeed inserts demo accounts and listings when SEED_SAMPLE_DATA is set
// and the store is still empty. Trades are written straight through the
// repository so seeding never touches the fiscal service.
func maybeSeed(ctx context.Context, cfg config.Config, users storage.UserRepository, trades storage.TradeRepository, logger *zap.Logger) error {
	if !cfg.SeedData {
		return nil
	}

	existing, err := trades.List(ctx, 1)
	if err != nil {
		return fmt.Errorf("check existing trades: %w", err)
	}
	if len(existing) > 0 {
		logger.Info("seed skipped, trades already present")
		return nil
	}

	admin := &domain.User{Username: "admin", Profile: "Marketplace operations", Role: domain.RoleAdmin}
	tendai := &domain.User{Username: "tendai", Profile: "Harare-based collector, swaps electronics and bikes.", Role: domain.RoleUser, TaxID: "2000123456"}
	rudo := &domain.User{Username: "rudo", Profile: "Trades furniture and garden tools.", Role: domain.RoleUser, TaxID: "2000654321"}

	for _, u := range []*domain.User{admin, tendai, rudo} {
		if err := users.Create(ctx, u); err != nil {
			return fmt.Errorf("create sample user %s: %w", u.Username, err)
		}
	}

	samples := []*domain.Trade{
		{
			UserID:      tendai.ID,
			Title:       "Mountain bike for a work laptop",
			Description: "2019 hardtail in good condition, serviced last month. Looking for a mid-range laptop.",
			Category:    "sports",
			ItemOffered: "mountain bike",
			ItemWanted:  "laptop",
			Status:      domain.StatusOpen,
		},
		{
			UserID:      rudo.ID,
			Title:       "Oak dining table, will add cash for a fridge",
			Description: "Seats six, minor scratches. Adding cash on top for a working double-door fridge.",
			Category:    "furniture",
			ItemOffered: "dining table",
			ItemWanted:  "fridge",
			Status:      domain.StatusOpen,
		},
		{
			UserID:      tendai.ID,
			Title:       "Spare phone for garden tools",
			Category:    "electronics",
			ItemOffered: "smartphone",
			ItemWanted:  "garden tools",
			Status:      domain.StatusCompleted,
		},
	}
	for _, tr := range samples {
		if err := trades.Create(ctx, tr); err != nil {
			return fmt.Errorf("create sample trade: %w", err)
		}
	}

	logger.Info("seeded sample data",
		zap.Int("users", 3),
		zap.Int("trades", len(samples)),
	)
	return nil
}
