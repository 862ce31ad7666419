package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rocketscienceinc/tictactoe-rl/internal/entity"
)

// OutcomeRepository records played games in SQLite.
type OutcomeRepository interface {
	Save(ctx context.Context, records ...entity.EpisodeRecord) error
	Stats(ctx context.Context, runID string) (entity.Stats, error)
}

type dbOutcomes struct {
	db *sql.DB
}

func NewOutcomeRepository(db *sql.DB) OutcomeRepository {
	return &dbOutcomes{
		db: db,
	}
}

// Save stores records in a single transaction. A record for an existing run and episode replaces it.
func (that *dbOutcomes) Save(ctx context.Context, records ...entity.EpisodeRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := that.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO outcomes
		(run_id, episode, winner, profile, played_at) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, record := range records {
		playedAt := record.PlayedAt
		if playedAt.IsZero() {
			playedAt = time.Now()
		}

		_, err = stmt.ExecContext(ctx, record.RunID, record.Episode, int(record.Winner),
			record.Profile.String(), playedAt.UTC().Format(time.RFC3339Nano))
		if err != nil {
			return fmt.Errorf("failed to insert outcome of episode %d: %w", record.Episode, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit outcomes: %w", err)
	}

	return nil
}

func (that *dbOutcomes) Stats(ctx context.Context, runID string) (entity.Stats, error) {
	query := `SELECT
		COUNT(*),
		COALESCE(SUM(CASE WHEN winner = 1 THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN winner = -1 THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN winner = 0 THEN 1 ELSE 0 END), 0),
		COUNT(DISTINCT profile)
	FROM outcomes WHERE run_id = ?`

	var stats entity.Stats
	err := that.db.QueryRowContext(ctx, query, runID).Scan(
		&stats.Episodes, &stats.XWins, &stats.OWins, &stats.Draws, &stats.DistinctGames,
	)
	if err != nil {
		return entity.Stats{}, fmt.Errorf("failed to query stats: %w", err)
	}

	return stats, nil
}
