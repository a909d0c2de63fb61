package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/krautchanpro/TamrielAuctionHouse/pkg/models"
)

// maxVersionAttempts bounds retries when concurrent writers contend for the
// same region's version counter.
const maxVersionAttempts = 5

// errCounterConflict reports that another writer advanced the region counter
// between our read and our commit. The caller re-reads and retries.
var errCounterConflict = errors.New("region version counter advanced concurrently")

// errItemConflict reports that the conditional write on the item itself
// failed: a competing commit got there first.
var errItemConflict = errors.New("conditional item write lost to a concurrent commit")

// RegionVersion returns the latest version number issued in the region.
// A region with no listings yet reads as 0.
func (s *Store) RegionVersion(ctx context.Context, region models.Region) (int64, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(s.Tables.Counters),
		Key: map[string]types.AttributeValue{
			"region": &types.AttributeValueMemberS{Value: string(region)},
		},
		ConsistentRead: aws.Bool(true),
	}

	result, err := s.Client.GetItem(ctx, input)
	if err != nil {
		return 0, fmt.Errorf("failed to read version counter for region %s: %w", region, err)
	}
	if result.Item == nil {
		return 0, nil
	}

	attr, ok := result.Item["version"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, nil
	}
	version, err := strconv.ParseInt(attr.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse version counter for region %s: %w", region, err)
	}
	return version, nil
}

// counterAdvanceItem returns the transaction item that moves the region
// counter to nextVersion, conditioned on no other writer having advanced it
// since the nextVersion-1 read. Committing it in the same TransactWriteItems
// as the listing write makes version allocation atomic with the commit: the
// counter never runs ahead of a version that is still unwritten, so a sync
// cursor derived from visible versions cannot skip an in-flight one.
func (s *Store) counterAdvanceItem(region models.Region, nextVersion int64) types.TransactWriteItem {
	return types.TransactWriteItem{
		Update: &types.Update{
			TableName: aws.String(s.Tables.Counters),
			Key: map[string]types.AttributeValue{
				"region": &types.AttributeValueMemberS{Value: string(region)},
			},
			UpdateExpression:    aws.String("SET version = :next"),
			ConditionExpression: aws.String("attribute_not_exists(version) OR version = :current"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":next":    &types.AttributeValueMemberN{Value: strconv.FormatInt(nextVersion, 10)},
				":current": &types.AttributeValueMemberN{Value: strconv.FormatInt(nextVersion-1, 10)},
			},
		},
	}
}

// classifyVersionedWrite maps a TransactWriteItems failure to the conflict it
// represents. Item 0 is always the counter advance; any later item is the
// guarded write itself.
func classifyVersionedWrite(err error) error {
	var txCancelled *types.TransactionCanceledException
	if !errors.As(err, &txCancelled) {
		return err
	}
	for i, reason := range txCancelled.CancellationReasons {
		if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
			if i == 0 {
				return errCounterConflict
			}
			return errItemConflict
		}
	}
	return err
}
