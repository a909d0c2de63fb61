package dynamodb

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/krautchanpro/TamrielAuctionHouse/pkg/models"
)

// QueueNotification stores a notification for the player's next poll.
func (s *Store) QueueNotification(ctx context.Context, n *models.Notification) error {
	if n.Id == "" {
		n.Id = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.Clock.Now()
	}
	n.TTL = s.retentionDeadline(n.CreatedAt)

	notifAV, err := attributevalue.MarshalMap(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.Tables.Notifications),
		Item:      notifAV,
	})
	if err != nil {
		return fmt.Errorf("failed to queue notification in DynamoDB: %w", err)
	}
	return nil
}

// DrainNotifications returns and deletes every pending notification for the
// player, oldest first. A poll delivers each notification at most once.
func (s *Store) DrainNotifications(ctx context.Context, player string) ([]models.Notification, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Notifications),
		KeyConditionExpression: aws.String("player_name = :player"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":player": &types.AttributeValueMemberS{Value: player},
		},
	}

	result, err := s.Client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications for %s: %w", player, err)
	}

	var notifications []models.Notification
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &notifications); err != nil {
		return nil, fmt.Errorf("failed to unmarshal notifications: %w", err)
	}

	sort.Slice(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt.Before(notifications[j].CreatedAt)
	})

	for _, n := range notifications {
		_, err := s.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(s.Tables.Notifications),
			Key: map[string]types.AttributeValue{
				"player_name": &types.AttributeValueMemberS{Value: player},
				"id":          &types.AttributeValueMemberS{Value: n.Id},
			},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to delete drained notification %s: %w", n.Id, err)
		}
	}

	return notifications, nil
}
