// Command localrun drives the epoch processor on a cron schedule outside of
// Lambda, for development against real AWS resources. The deployed system is
// triggered by EventBridge instead; see the root main package.
package main

import (
	"context"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/phuslu/log"
	"github.com/robfig/cron/v3"

	"github.com/engagemint-io/engagemint-indexer/services"
	"github.com/engagemint-io/engagemint-indexer/storage"
	"github.com/engagemint-io/engagemint-indexer/twitter"
)

func main() {
	log.DefaultLogger = log.Logger{
		Level:      log.InfoLevel,
		TimeFormat: "15:04:05",
		Writer:     &log.ConsoleWriter{ColorOutput: true},
	}

	ctx := context.Background()
	processor, err := buildProcessor(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build processor")
	}

	run := func() {
		if err := processor.ProcessAllTickers(ctx); err != nil {
			log.Error().Err(err).Msg("leaderboard pass failed")
		}
	}

	schedule := envOrDefault("CRON_SCHEDULE", "@hourly")
	log.Info().Str("schedule", schedule).Msg("starting local runner")

	run()

	c := cron.New()
	if _, err := c.AddFunc(schedule, run); err != nil {
		log.Fatal().Err(err).Str("schedule", schedule).Msg("invalid cron schedule")
	}
	c.Run()
}

func buildProcessor(ctx context.Context) (services.EpochProcessor, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}

	secretsClient := secretsmanager.NewFromConfig(cfg)
	creds, err := twitter.FetchCredentials(ctx, secretsClient,
		envOrDefault("X_CREDENTIALS_SECRET_ID", twitter.DefaultCredentialsSecretID))
	if err != nil {
		return nil, err
	}

	store := storage.NewDynamoStore(
		dynamodb.NewFromConfig(cfg),
		envOrDefault("CONFIG_TABLE", storage.DefaultConfigTable),
		envOrDefault("USERS_TABLE", storage.DefaultUsersTable),
		envOrDefault("LEADERBOARD_TABLE", storage.DefaultLeaderboardTable),
	)

	return services.NewEpochProcessor(
		store,
		store,
		twitter.NewClient(ctx, creds.AppKey, creds.AppSecret),
		store,
		services.NewEpochCalendar(),
		services.NewSystemClock(),
	), nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
