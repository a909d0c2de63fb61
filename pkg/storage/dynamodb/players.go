package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/krautchanpro/TamrielAuctionHouse/pkg/models"
	"github.com/krautchanpro/TamrielAuctionHouse/pkg/storage"
)

const apiKeyGSI = "api_key-index"

// RegisterPlayer creates a player record and mints an API key. A name that is
// already registered only rotates its key when the caller presents the
// current one; anything else is a conflict.
func (s *Store) RegisterPlayer(ctx context.Context, name string, region models.Region, oldApiKey string) (*models.Player, error) {
	now := s.Clock.Now()
	player := &models.Player{
		Name:       name,
		Region:     region,
		ApiKey:     uuid.New().String(),
		CreatedAt:  now,
		LastSeenAt: now,
	}

	existing, err := s.GetPlayer(ctx, name)
	if err != nil && !errors.Is(err, storage.ErrPlayerNotFound) {
		return nil, err
	}
	if existing != nil {
		if oldApiKey == "" || oldApiKey != existing.ApiKey {
			return nil, storage.ErrPlayerExists
		}
		player.Region = existing.Region
		player.CreatedAt = existing.CreatedAt
	}

	playerAV, err := attributevalue.MarshalMap(player)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal player: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(s.Tables.Players),
		Item:      playerAV,
	}
	if existing == nil {
		// Lose a registration race rather than silently stealing the name.
		input.ConditionExpression = aws.String("attribute_not_exists(player_name)")
	}

	if _, err := s.Client.PutItem(ctx, input); err != nil {
		var condCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailed) {
			return nil, storage.ErrPlayerExists
		}
		return nil, fmt.Errorf("failed to register player in DynamoDB: %w", err)
	}

	return player, nil
}

// GetPlayer retrieves a player by account name.
func (s *Store) GetPlayer(ctx context.Context, name string) (*models.Player, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"player_name": name})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal player name: %w", err)
	}

	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.Tables.Players),
		Key:       key,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get player from DynamoDB: %w", err)
	}
	if result.Item == nil {
		return nil, storage.ErrPlayerNotFound
	}

	var player models.Player
	if err := attributevalue.UnmarshalMap(result.Item, &player); err != nil {
		return nil, fmt.Errorf("failed to unmarshal player: %w", err)
	}
	return &player, nil
}

// GetPlayerByApiKey resolves an API key to its player via the key index.
func (s *Store) GetPlayerByApiKey(ctx context.Context, apiKey string) (*models.Player, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Players),
		IndexName:              aws.String(apiKeyGSI),
		KeyConditionExpression: aws.String("api_key = :key"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":key": &types.AttributeValueMemberS{Value: apiKey},
		},
		Limit: aws.Int32(1),
	}

	result, err := s.Client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query player by API key: %w", err)
	}
	if len(result.Items) == 0 {
		return nil, storage.ErrPlayerNotFound
	}

	var player models.Player
	if err := attributevalue.UnmarshalMap(result.Items[0], &player); err != nil {
		return nil, fmt.Errorf("failed to unmarshal player: %w", err)
	}
	return &player, nil
}

// TouchPlayer records the player's last-seen time.
func (s *Store) TouchPlayer(ctx context.Context, name string, seenAt time.Time) error {
	seenAV, err := attributevalue.Marshal(seenAt)
	if err != nil {
		return fmt.Errorf("failed to marshal last-seen time: %w", err)
	}

	_, err = s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.Tables.Players),
		Key: map[string]types.AttributeValue{
			"player_name": &types.AttributeValueMemberS{Value: name},
		},
		UpdateExpression:    aws.String("SET last_seen_at = :seen"),
		ConditionExpression: aws.String("attribute_exists(player_name)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":seen": seenAV,
		},
	})
	if err != nil {
		var condCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailed) {
			return storage.ErrPlayerNotFound
		}
		return fmt.Errorf("failed to touch player %s: %w", name, err)
	}
	return nil
}

// CountPlayers returns the number of registered players in a region.
func (s *Store) CountPlayers(ctx context.Context, region models.Region) (int64, error) {
	input := &dynamodb.ScanInput{
		TableName:        aws.String(s.Tables.Players),
		FilterExpression: aws.String("megaserver = :region"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":region": &types.AttributeValueMemberS{Value: string(region)},
		},
		Select: types.SelectCount,
	}

	result, err := s.Client.Scan(ctx, input)
	if err != nil {
		return 0, fmt.Errorf("failed to count players for region %s: %w", region, err)
	}
	return int64(result.Count), nil
}
