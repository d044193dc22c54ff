package models

import (
	"fmt"
	"time"
)

// RegisteredUser is one participant registered for a ticker's campaign.
type RegisteredUser struct {
	Ticker    string `dynamodbav:"ticker"`
	AccountID string `dynamodbav:"twitter_id"`
}

// TickerEpochKey builds the composite leaderboard identity for one ticker
// and epoch, e.g. "TESTTICKER#1".
func TickerEpochKey(ticker string, epoch int) string {
	return fmt.Sprintf("%s#%d", ticker, epoch)
}

// UserStat is one ranked leaderboard row for a user within a ticker epoch.
// Rows are written fresh each run; a rerun for the same ticker/epoch
// overwrites the prior row for the same user.
type UserStat struct {
	TickerEpochKey  string    `dynamodbav:"ticker_epoch_composite_key"`
	AccountID       string    `dynamodbav:"twitter_id"`
	Username        string    `dynamodbav:"username"`
	LastUpdatedAt   time.Time `dynamodbav:"last_updated_at"`
	FavoritePoints  float64   `dynamodbav:"favorite_points"`
	QuotePoints     float64   `dynamodbav:"quote_points"`
	RetweetPoints   float64   `dynamodbav:"retweet_points"`
	ViewPoints      float64   `dynamodbav:"view_points"`
	VideoViewPoints float64   `dynamodbav:"video_view_points"`
	TotalPoints     float64   `dynamodbav:"total_points"`
	Rank            int       `dynamodbav:"rank"`
}
