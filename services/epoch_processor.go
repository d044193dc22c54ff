package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/phuslu/log"

	"github.com/engagemint-io/engagemint-indexer/models"
)

// ConfigStore supplies the ticker-campaign configuration snapshot for a run.
type ConfigStore interface {
	FetchAllTickerConfigs(ctx context.Context) ([]models.RawConfigRecord, error)
}

// UserStore supplies the users registered for a ticker's campaign.
type UserStore interface {
	FetchUsersForTicker(ctx context.Context, ticker string) ([]models.RegisteredUser, error)
}

// SocialClient resolves account ids to display names and fetches a user's
// recent posts mentioning a ticker within a time window.
type SocialClient interface {
	ResolveDisplayName(ctx context.Context, accountID string) (string, error)
	FetchPostsByUser(ctx context.Context, accountID, ticker string, windowStart, windowEnd time.Time) (models.PostBatch, error)
}

// LeaderboardStore persists one ticker's ranked batch of user stats.
type LeaderboardStore interface {
	PersistBatch(ctx context.Context, stats []models.UserStat) error
}

// EpochProcessor runs one full leaderboard pass over every configured ticker.
type EpochProcessor interface {
	ProcessAllTickers(ctx context.Context) error
}

type epochProcessor struct {
	configs     ConfigStore
	users       UserStore
	social      SocialClient
	leaderboard LeaderboardStore
	calendar    EpochCalendar
	clock       Clock
}

func NewEpochProcessor(configs ConfigStore, users UserStore, social SocialClient, leaderboard LeaderboardStore, calendar EpochCalendar, clock Clock) EpochProcessor {
	return &epochProcessor{
		configs:     configs,
		users:       users,
		social:      social,
		leaderboard: leaderboard,
		calendar:    calendar,
		clock:       clock,
	}
}

// userOutcome is the result of processing a single registered user: either a
// scored stat or a skip with its reason.
type userOutcome struct {
	Stat       *models.UserStat
	SkipReason string
}

func skipped(reason string) userOutcome {
	return userOutcome{SkipReason: reason}
}

func scored(stat models.UserStat) userOutcome {
	return userOutcome{Stat: &stat}
}

// ProcessAllTickers sweeps every configured ticker sequentially. Failures are
// contained within the ticker or user iteration that produced them; the run
// itself always completes.
func (p *epochProcessor) ProcessAllTickers(ctx context.Context) error {
	rawConfigs, err := p.configs.FetchAllTickerConfigs(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch ticker configs, nothing to process")
		return nil
	}
	log.Info().Int("tickers", len(rawConfigs)).Msg("starting leaderboard pass")

	for _, raw := range rawConfigs {
		p.processTicker(ctx, raw)
	}
	return nil
}

func (p *epochProcessor) processTicker(ctx context.Context, raw models.RawConfigRecord) {
	cfg, err := models.ParseTickerConfig(raw)
	if err != nil {
		var missing *models.MissingFieldError
		if errors.As(err, &missing) {
			log.Error().Str("ticker", missing.Ticker).Str("field", missing.Field).Msg("skipping ticker config with missing field")
		} else {
			log.Error().Err(err).Str("ticker", raw[models.FieldTicker]).Msg("skipping invalid ticker config")
		}
		return
	}

	now := p.clock.Now()

	firstEpochStart, err := p.calendar.EpochStartDate(cfg.EpochStartDateUtc, 1, cfg.EpochLengthDays)
	if err != nil {
		log.Error().Err(err).Str("ticker", cfg.Ticker).Msg("skipping ticker with unparseable epoch start date")
		return
	}
	if firstEpochStart.After(now) {
		log.Info().Str("ticker", cfg.Ticker).Time("epoch_start", firstEpochStart).Msg("epoch has not started yet")
		return
	}

	currentEpoch, err := p.calendar.CurrentEpochNumber(now, cfg.EpochStartDateUtc, cfg.EpochLengthDays)
	if err != nil {
		log.Error().Err(err).Str("ticker", cfg.Ticker).Msg("skipping ticker, epoch number computation failed")
		return
	}
	epochStart, err := p.calendar.EpochStartDate(cfg.EpochStartDateUtc, currentEpoch, cfg.EpochLengthDays)
	if err != nil {
		log.Error().Err(err).Str("ticker", cfg.Ticker).Int("epoch", currentEpoch).Msg("skipping ticker, epoch start computation failed")
		return
	}

	users, err := p.users.FetchUsersForTicker(ctx, cfg.Ticker)
	if err != nil {
		log.Error().Err(err).Str("ticker", cfg.Ticker).Msg("failed to fetch registered users for ticker")
		return
	}

	var stats []models.UserStat
	for _, user := range users {
		outcome := p.processUser(ctx, cfg, user, currentEpoch, epochStart)
		if outcome.Stat != nil {
			stats = append(stats, *outcome.Stat)
			continue
		}
		if outcome.SkipReason != "" {
			log.Info().Str("ticker", cfg.Ticker).Str("account_id", user.AccountID).Str("reason", outcome.SkipReason).Msg("skipping user")
		}
	}

	if len(stats) == 0 {
		log.Info().Str("ticker", cfg.Ticker).Int("epoch", currentEpoch).Msg("no scored users for epoch, nothing to persist")
		return
	}

	rankUserStats(stats)

	if err := p.leaderboard.PersistBatch(ctx, stats); err != nil {
		log.Error().Err(err).Str("ticker", cfg.Ticker).Int("epoch", currentEpoch).Msg("failed to persist leaderboard batch")
		return
	}
	log.Info().Str("ticker", cfg.Ticker).Int("epoch", currentEpoch).Int("users", len(stats)).Msg("persisted epoch leaderboard")
}

// processUser scores one registered user for the current epoch. The clock is
// sampled fresh here so each user's fetch window ends one minute before its
// own "now", accommodating the social API's recency constraint.
func (p *epochProcessor) processUser(ctx context.Context, cfg models.TickerConfig, user models.RegisteredUser, epoch int, epochStart time.Time) userOutcome {
	now := p.clock.Now()
	windowEnd := now.Add(-time.Minute)

	username, err := p.social.ResolveDisplayName(ctx, user.AccountID)
	if err != nil {
		log.Warn().Err(err).Str("account_id", user.AccountID).Msg("display name lookup failed")
		return skipped("display name lookup failed")
	}
	if username == "" {
		return skipped("display name not resolved")
	}

	batch, err := p.social.FetchPostsByUser(ctx, user.AccountID, cfg.Ticker, epochStart, windowEnd)
	if err != nil {
		log.Warn().Err(err).Str("account_id", user.AccountID).Str("ticker", cfg.Ticker).Msg("post fetch failed")
		return skipped("post fetch failed")
	}
	if len(batch.Posts) == 0 {
		return userOutcome{}
	}

	mediaByKey := batch.MediaByKey()
	var points PointsBreakdown
	for _, post := range FilterPosts(batch.Posts, cfg.Ticker, username) {
		points.Add(ScorePost(post, mediaByKey, cfg.Multipliers))
	}
	if points.Total == 0 {
		return userOutcome{}
	}

	return scored(models.UserStat{
		TickerEpochKey:  models.TickerEpochKey(cfg.Ticker, epoch),
		AccountID:       user.AccountID,
		Username:        username,
		LastUpdatedAt:   now,
		FavoritePoints:  points.Favorite,
		QuotePoints:     points.Quote,
		RetweetPoints:   points.Retweet,
		ViewPoints:      points.View,
		VideoViewPoints: points.VideoView,
		TotalPoints:     points.Total,
	})
}

// rankUserStats sorts stats descending by total points (stable, so ties keep
// their first-seen order) and assigns 1-based ranks.
func rankUserStats(stats []models.UserStat) {
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].TotalPoints > stats[j].TotalPoints
	})
	for i := range stats {
		stats[i].Rank = i + 1
	}
}
