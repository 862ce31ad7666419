package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-rl/internal/qvalue"
)

// QValueSync mirrors a Q value table to a shared store.
type QValueSync struct {
	logger *slog.Logger
	repo   qValueRepo
	table  string
}

func NewQValueSync(logger *slog.Logger, repo qValueRepo, table string) *QValueSync {
	return &QValueSync{
		logger: logger.With("component", "qvalue_sync", "table", table),
		repo:   repo,
		table:  table,
	}
}

func (that *QValueSync) Push(ctx context.Context, store *qvalue.Store) error {
	if err := that.repo.Save(ctx, that.table, store); err != nil {
		that.logger.Error("failed to push q values", "method", "Push", "error", err)
		return fmt.Errorf("failed to push q values: %w", err)
	}

	that.logger.Info("q values pushed", "states", store.Len())
	return nil
}

func (that *QValueSync) Pull(ctx context.Context, numActions int) (*qvalue.Store, error) {
	store, err := that.repo.Load(ctx, that.table, numActions)
	if err != nil {
		that.logger.Error("failed to pull q values", "method", "Pull", "error", err)
		return nil, fmt.Errorf("failed to pull q values: %w", err)
	}

	that.logger.Info("q values pulled", "states", store.Len())
	return store, nil
}
