package storage

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/engagemint-io/engagemint-indexer/models"
)

// PostgresLeaderboardStore is an alternative leaderboard backend for
// deployments that keep the leaderboard in a relational database.
type PostgresLeaderboardStore struct {
	db *gorm.DB
}

func NewPostgresLeaderboardStore(db *gorm.DB) (*PostgresLeaderboardStore, error) {
	if err := db.AutoMigrate(&models.EpochLeaderboardRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate leaderboard schema: %w", err)
	}
	return &PostgresLeaderboardStore{db: db}, nil
}

// PersistBatch upserts the ranked stats. Conflicts on (ticker_epoch_key,
// account_id) update in place, so a rerun for the same epoch is
// last-write-wins rather than accumulating.
func (s *PostgresLeaderboardStore) PersistBatch(ctx context.Context, stats []models.UserStat) error {
	rows := make([]models.EpochLeaderboardRow, 0, len(stats))
	for _, stat := range stats {
		rows = append(rows, models.NewEpochLeaderboardRow(stat))
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "ticker_epoch_key"}, {Name: "account_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"username", "last_updated_at", "favorite_points", "quote_points",
			"retweet_points", "view_points", "video_view_points", "total_points", "rank",
		}),
	}).Create(&rows).Error
	if err != nil {
		return fmt.Errorf("failed to upsert leaderboard rows: %w", err)
	}
	return nil
}
