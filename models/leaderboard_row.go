package models

import (
	"time"

	"gorm.io/gorm"
)

// EpochLeaderboardRow is the relational form of a UserStat, used by the
// Postgres-backed leaderboard store. The (key, account id) pair is unique so
// reruns of the same epoch upsert rather than accumulate.
type EpochLeaderboardRow struct {
	gorm.Model
	TickerEpochKey  string    `gorm:"size:100;not null;uniqueIndex:idx_epoch_user"`
	AccountID       string    `gorm:"size:50;not null;uniqueIndex:idx_epoch_user"`
	Username        string    `gorm:"size:100;not null"`
	LastUpdatedAt   time.Time `gorm:"not null"`
	FavoritePoints  float64   `gorm:"not null;default:0"`
	QuotePoints     float64   `gorm:"not null;default:0"`
	RetweetPoints   float64   `gorm:"not null;default:0"`
	ViewPoints      float64   `gorm:"not null;default:0"`
	VideoViewPoints float64   `gorm:"not null;default:0"`
	TotalPoints     float64   `gorm:"not null;default:0"`
	Rank            int       `gorm:"not null"`
}

func (EpochLeaderboardRow) TableName() string {
	return "epoch_leaderboard_rows"
}

// NewEpochLeaderboardRow converts a scored UserStat into its relational row.
func NewEpochLeaderboardRow(stat UserStat) EpochLeaderboardRow {
	return EpochLeaderboardRow{
		TickerEpochKey:  stat.TickerEpochKey,
		AccountID:       stat.AccountID,
		Username:        stat.Username,
		LastUpdatedAt:   stat.LastUpdatedAt,
		FavoritePoints:  stat.FavoritePoints,
		QuotePoints:     stat.QuotePoints,
		RetweetPoints:   stat.RetweetPoints,
		ViewPoints:      stat.ViewPoints,
		VideoViewPoints: stat.VideoViewPoints,
		TotalPoints:     stat.TotalPoints,
		Rank:            stat.Rank,
	}
}
