package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/krautchanpro/TamrielAuctionHouse/pkg/models"
)

const regionVersionGSI = "region-version-index"

// ListChangedListings retrieves every listing in the region with a version
// greater than sinceVersion, in version order. This is the read side of delta
// sync: an index query against a versioned snapshot, no locks held.
func (s *Store) ListChangedListings(ctx context.Context, region models.Region, sinceVersion int64) ([]models.Listing, error) {
	var listings []models.Listing
	var startKey map[string]types.AttributeValue

	for {
		input := &dynamodb.QueryInput{
			TableName:              aws.String(s.Tables.Listings),
			IndexName:              aws.String(regionVersionGSI),
			KeyConditionExpression: aws.String("#region = :region AND version > :since"),
			ExpressionAttributeNames: map[string]string{
				"#region": "region",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":region": &types.AttributeValueMemberS{Value: string(region)},
				":since":  &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", sinceVersion)},
			},
			ExclusiveStartKey: startKey,
		}

		result, err := s.Client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to query changed listings for region %s: %w", region, err)
		}

		var page []models.Listing
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &page); err != nil {
			return nil, fmt.Errorf("failed to unmarshal changed listings: %w", err)
		}
		listings = append(listings, page...)

		if result.LastEvaluatedKey == nil {
			return listings, nil
		}
		startKey = result.LastEvaluatedKey
	}
}

// CountActiveListings returns the number of ACTIVE listings in a region.
func (s *Store) CountActiveListings(ctx context.Context, region models.Region) (int64, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Listings),
		IndexName:              aws.String(regionVersionGSI),
		KeyConditionExpression: aws.String("#region = :region"),
		FilterExpression:       aws.String("#state = :active"),
		ExpressionAttributeNames: map[string]string{
			"#region": "region",
			"#state":  "state",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":region": &types.AttributeValueMemberS{Value: string(region)},
			":active": &types.AttributeValueMemberS{Value: string(models.ACTIVE)},
		},
		Select: types.SelectCount,
	}

	result, err := s.Client.Query(ctx, input)
	if err != nil {
		return 0, fmt.Errorf("failed to count active listings for region %s: %w", region, err)
	}
	return int64(result.Count), nil
}
