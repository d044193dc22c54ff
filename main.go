package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/google/uuid"
	"github.com/phuslu/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/engagemint-io/engagemint-indexer/services"
	"github.com/engagemint-io/engagemint-indexer/storage"
	"github.com/engagemint-io/engagemint-indexer/twitter"
)

// Reused across warm Lambda invocations.
var processor services.EpochProcessor

// handler processes one EventBridge scheduled trigger. The payload carries no
// business parameters; it is logged verbatim for observability.
func handler(ctx context.Context, event events.CloudWatchEvent) error {
	runID := uuid.NewString()
	if payload, err := json.Marshal(event); err == nil {
		log.Info().Str("run_id", runID).RawJSON("event", payload).Msg("scheduled trigger received")
	}

	// Initialize collaborators on cold start
	if processor == nil {
		p, err := initProcessor(ctx)
		if err != nil {
			log.Error().Err(err).Msg("failed to initialize processor")
			return fmt.Errorf("failed to initialize processor: %w", err)
		}
		processor = p
	}

	if err := processor.ProcessAllTickers(ctx); err != nil {
		log.Error().Str("run_id", runID).Err(err).Msg("leaderboard pass failed")
		return err
	}

	log.Info().Str("run_id", runID).Msg("leaderboard pass completed")
	return nil
}

// initProcessor wires the AWS clients, the X client and the configured
// leaderboard backend into an epoch processor.
func initProcessor(ctx context.Context) (services.EpochProcessor, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	secretsClient := secretsmanager.NewFromConfig(cfg)

	creds, err := twitter.FetchCredentials(ctx, secretsClient,
		envOrDefault("X_CREDENTIALS_SECRET_ID", twitter.DefaultCredentialsSecretID))
	if err != nil {
		return nil, err
	}
	socialClient := twitter.NewClient(ctx, creds.AppKey, creds.AppSecret)

	dynamoStore := storage.NewDynamoStore(
		dynamodb.NewFromConfig(cfg),
		envOrDefault("CONFIG_TABLE", storage.DefaultConfigTable),
		envOrDefault("USERS_TABLE", storage.DefaultUsersTable),
		envOrDefault("LEADERBOARD_TABLE", storage.DefaultLeaderboardTable),
	)

	var leaderboard services.LeaderboardStore = dynamoStore
	if os.Getenv("STORE_BACKEND") == "postgres" {
		leaderboard, err = initPostgresStore(ctx, secretsClient)
		if err != nil {
			return nil, err
		}
		log.Info().Msg("using postgres leaderboard backend")
	}

	return services.NewEpochProcessor(
		dynamoStore,
		dynamoStore,
		socialClient,
		leaderboard,
		services.NewEpochCalendar(),
		services.NewSystemClock(),
	), nil
}

// initPostgresStore connects the relational leaderboard backend, with
// credentials from Secrets Manager or environment variables.
func initPostgresStore(ctx context.Context, secretsClient *secretsmanager.Client) (*storage.PostgresLeaderboardStore, error) {
	var dbHost, dbPort, dbUser, dbPassword, dbName string

	if dbSecretArn := os.Getenv("DB_SECRET_ARN"); dbSecretArn != "" {
		creds, err := getDBCredentials(ctx, secretsClient, dbSecretArn)
		if err != nil {
			return nil, fmt.Errorf("failed to get DB credentials: %w", err)
		}
		dbHost = creds["host"]
		dbPort = creds["port"]
		dbUser = creds["username"]
		dbPassword = creds["password"]
		dbName = creds["dbname"]
	} else {
		dbHost = os.Getenv("DB_HOST")
		dbPort = os.Getenv("DB_PORT")
		dbUser = os.Getenv("DB_USER")
		dbPassword = os.Getenv("DB_PASSWORD")
		dbName = os.Getenv("DB_NAME")
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=require",
		dbHost, dbPort, dbUser, dbPassword, dbName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	// Lambda-optimized connection pooling
	sqlDB.SetMaxOpenConns(5)
	sqlDB.SetMaxIdleConns(2)

	return storage.NewPostgresLeaderboardStore(db)
}

// getDBCredentials fetches database credentials from Secrets Manager.
func getDBCredentials(ctx context.Context, client *secretsmanager.Client, secretArn string) (map[string]string, error) {
	result, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: &secretArn,
	})
	if err != nil {
		return nil, err
	}

	var creds map[string]string
	if err := json.Unmarshal([]byte(*result.SecretString), &creds); err != nil {
		return nil, err
	}
	return creds, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func initLogger() {
	level := log.InfoLevel
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		level = log.ParseLevel(v)
	}
	log.DefaultLogger = log.Logger{
		Level:      level,
		TimeFormat: time.RFC3339,
		Writer:     &log.IOWriter{Writer: os.Stderr},
	}
}

func main() {
	initLogger()
	lambda.Start(handler)
}
