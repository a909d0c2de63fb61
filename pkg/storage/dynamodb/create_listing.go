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
	"github.com/krautchanpro/TamrielAuctionHouse/pkg/ledger"
	"github.com/krautchanpro/TamrielAuctionHouse/pkg/models"
)

// CreateListing validates the listing, assigns server-side fields, and
// persists it with the next version number in its region. The listing put
// and the counter advance commit in one transaction; counter contention with
// concurrent writers in the region is retried with a fresh read.
func (s *Store) CreateListing(ctx context.Context, listing *models.Listing) (*models.Listing, error) {
	if err := ledger.ValidateNewListing(*listing); err != nil {
		return nil, err
	}

	for attempt := 0; attempt < maxVersionAttempts; attempt++ {
		issued, err := s.RegionVersion(ctx, listing.Region)
		if err != nil {
			return nil, err
		}

		now := s.Clock.Now()
		listing.Id = uuid.New().String()
		listing.State = models.ACTIVE
		listing.Reservation = nil
		listing.Version = issued + 1
		listing.CreatedAt = now
		listing.UpdatedAt = now
		listing.ExpiresAt = now.Add(time.Duration(listing.Duration) * time.Second)

		listingAV, err := attributevalue.MarshalMap(listing)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal listing: %w", err)
		}

		input := &dynamodb.TransactWriteItemsInput{
			TransactItems: []types.TransactWriteItem{
				s.counterAdvanceItem(listing.Region, listing.Version),
				{
					Put: &types.Put{
						TableName:           aws.String(s.Tables.Listings),
						Item:                listingAV,
						ConditionExpression: aws.String("attribute_not_exists(id)"),
					},
				},
			},
		}

		_, err = s.Client.TransactWriteItems(ctx, input)
		if err == nil {
			return listing, nil
		}
		if errors.Is(classifyVersionedWrite(err), errCounterConflict) {
			continue
		}
		return nil, fmt.Errorf("failed to create listing in DynamoDB: %w", err)
	}
	return nil, fmt.Errorf("gave up creating listing: %w", errCounterConflict)
}
