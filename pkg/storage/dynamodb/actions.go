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
	"github.com/krautchanpro/TamrielAuctionHouse/pkg/storage"
)

// GetActionRecord retrieves the recorded outcome for a client action id.
func (s *Store) GetActionRecord(ctx context.Context, actionId string) (*models.ActionRecord, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"action_id": actionId})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal action ID: %w", err)
	}

	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.Tables.Actions),
		Key:            key,
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get action record from DynamoDB: %w", err)
	}
	if result.Item == nil {
		return nil, storage.ErrActionNotFound
	}

	var rec models.ActionRecord
	if err := attributevalue.UnmarshalMap(result.Item, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal action record: %w", err)
	}
	return &rec, nil
}

// RecordActionResult stores the outcome of an applied action so a retried
// batch can be answered without re-applying it. The put is conditioned on the
// action id being unrecorded: when a duplicate submission is still in flight
// alongside the original, exactly one write lands and the other gets
// storage.ErrActionExists so its caller can answer from the stored record.
func (s *Store) RecordActionResult(ctx context.Context, rec *models.ActionRecord) error {
	if rec.TTL == 0 {
		rec.TTL = s.retentionDeadline(rec.AppliedAt)
	}

	recAV, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal action record: %w", err)
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.Tables.Actions),
		Item:                recAV,
		ConditionExpression: aws.String("attribute_not_exists(action_id)"),
	})
	if err != nil {
		var condCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailed) {
			return storage.ErrActionExists
		}
		return fmt.Errorf("failed to record action result in DynamoDB: %w", err)
	}
	return nil
}
