// Package storage provides the persistence collaborators backing the epoch
// processor: a DynamoDB document store and an alternative Postgres store for
// the leaderboard.
package storage

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/phuslu/log"

	"github.com/engagemint-io/engagemint-indexer/models"
)

// Default table names match the deployed EngageMint stack.
const (
	DefaultConfigTable      = "engagemint-project_configuration_table"
	DefaultUsersTable       = "engagemint-registered_users_table"
	DefaultLeaderboardTable = "engagemint-leaderboard_table"
)

// DynamoDB caps BatchWriteItem at 25 items; we stay under it.
const persistBatchSize = 20

// DynamoStore implements the config, user and leaderboard store contracts on
// DynamoDB tables.
type DynamoStore struct {
	client           *dynamodb.Client
	configTable      string
	usersTable       string
	leaderboardTable string
}

func NewDynamoStore(client *dynamodb.Client, configTable, usersTable, leaderboardTable string) *DynamoStore {
	return &DynamoStore{
		client:           client,
		configTable:      configTable,
		usersTable:       usersTable,
		leaderboardTable: leaderboardTable,
	}
}

// FetchAllTickerConfigs scans the project configuration table and hands the
// records over as raw field maps. Missing-field detection belongs to the
// processor, not here.
func (s *DynamoStore) FetchAllTickerConfigs(ctx context.Context) ([]models.RawConfigRecord, error) {
	var records []models.RawConfigRecord
	paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName: aws.String(s.configTable),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticker configs: %w", err)
		}
		for _, item := range page.Items {
			records = append(records, rawRecordFromItem(item))
		}
	}
	return records, nil
}

// FetchUsersForTicker queries the registered-users table by ticker partition
// key.
func (s *DynamoStore) FetchUsersForTicker(ctx context.Context, ticker string) ([]models.RegisteredUser, error) {
	out, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.usersTable),
		KeyConditionExpression: aws.String("ticker = :ticker"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":ticker": &types.AttributeValueMemberS{Value: ticker},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query registered users for ticker %q: %w", ticker, err)
	}

	var users []models.RegisteredUser
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &users); err != nil {
		return nil, fmt.Errorf("failed to unmarshal registered users for ticker %q: %w", ticker, err)
	}
	return users, nil
}

// PersistBatch writes the ranked stats to the leaderboard table in chunks.
// Each put is keyed on (ticker_epoch_composite_key, twitter_id), so a rerun
// for the same epoch overwrites the prior rows.
func (s *DynamoStore) PersistBatch(ctx context.Context, stats []models.UserStat) error {
	for start := 0; start < len(stats); start += persistBatchSize {
		end := start + persistBatchSize
		if end > len(stats) {
			end = len(stats)
		}

		writes := make([]types.WriteRequest, 0, end-start)
		for _, stat := range stats[start:end] {
			item, err := attributevalue.MarshalMap(stat)
			if err != nil {
				return fmt.Errorf("failed to marshal user stat for %q: %w", stat.AccountID, err)
			}
			writes = append(writes, types.WriteRequest{
				PutRequest: &types.PutRequest{Item: item},
			})
		}

		out, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{
				s.leaderboardTable: writes,
			},
		})
		if err != nil {
			return fmt.Errorf("failed to batch-write leaderboard rows: %w", err)
		}

		// Throttled writes come back as unprocessed; give them one more pass
		// so a ranked batch lands whole.
		if len(out.UnprocessedItems) > 0 {
			retry, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
				RequestItems: out.UnprocessedItems,
			})
			if err != nil {
				return fmt.Errorf("failed to retry unprocessed leaderboard rows: %w", err)
			}
			if dropped := len(retry.UnprocessedItems[s.leaderboardTable]); dropped > 0 {
				log.Warn().Int("rows", dropped).Msg("leaderboard rows remained unprocessed after retry")
			}
		}
	}
	return nil
}

// rawRecordFromItem flattens a DynamoDB item into field-name -> string form.
// Only string and number attributes carry config data; other types are
// ignored, which reads as a missing field downstream.
func rawRecordFromItem(item map[string]types.AttributeValue) models.RawConfigRecord {
	record := make(models.RawConfigRecord, len(item))
	for name, attr := range item {
		switch v := attr.(type) {
		case *types.AttributeValueMemberS:
			record[name] = v.Value
		case *types.AttributeValueMemberN:
			record[name] = v.Value
		}
	}
	return record
}
