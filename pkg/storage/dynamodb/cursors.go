package dynamodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/krautchanpro/TamrielAuctionHouse/pkg/models"
)

// SaveCursor records the cursor a client acknowledged for a region. The write
// is conditional so a delayed save can never move a cursor backwards.
func (s *Store) SaveCursor(ctx context.Context, cursor *models.SyncCursor) error {
	syncAtAV, err := attributevalue.Marshal(cursor.SyncAt)
	if err != nil {
		return fmt.Errorf("failed to marshal cursor sync time: %w", err)
	}

	_, err = s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.Tables.Cursors),
		Key: map[string]types.AttributeValue{
			"player_name": &types.AttributeValueMemberS{Value: cursor.Player},
			"region":      &types.AttributeValueMemberS{Value: string(cursor.Region)},
		},
		UpdateExpression:    aws.String("SET version = :version, sync_at = :sync_at"),
		ConditionExpression: aws.String("attribute_not_exists(version) OR version <= :version"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":version": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", cursor.Version)},
			":sync_at": syncAtAV,
		},
	})
	if err != nil {
		var condCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailed) {
			// A newer sync already advanced the cursor.
			return nil
		}
		return fmt.Errorf("failed to save cursor for %s/%s: %w", cursor.Player, cursor.Region, err)
	}
	return nil
}
