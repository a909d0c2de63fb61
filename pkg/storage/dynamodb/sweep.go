package dynamodb

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/krautchanpro/TamrielAuctionHouse/pkg/models"
)

const stateUpdatedGSI = "state-updated_at-index"

// ListExpiredListings retrieves ACTIVE listings whose expiry time has passed.
func (s *Store) ListExpiredListings(ctx context.Context, now time.Time) ([]models.Listing, error) {
	return s.listByStatePastDeadline(ctx, models.ACTIVE, "expires_at", now)
}

// ListTimedOutReservations retrieves RESERVED listings whose reservation
// deadline has passed.
func (s *Store) ListTimedOutReservations(ctx context.Context, now time.Time) ([]models.Listing, error) {
	return s.listByStatePastDeadline(ctx, models.RESERVED, "reservation.deadline", now)
}

// Deadline attributes are stored as epoch seconds, so the cutoff compares as
// a number. The state-machine guards re-check exact times on apply; a deadline
// landing in the current second is simply picked up by the next pass.
func (s *Store) listByStatePastDeadline(ctx context.Context, state models.ListingState, deadlineAttr string, now time.Time) ([]models.Listing, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Listings),
		IndexName:              aws.String(stateUpdatedGSI),
		KeyConditionExpression: aws.String("#state = :state"),
		FilterExpression:       aws.String(deadlineAttr + " <= :cutoff"),
		ExpressionAttributeNames: map[string]string{
			"#state": "state",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":state":  &types.AttributeValueMemberS{Value: string(state)},
			":cutoff": &types.AttributeValueMemberN{Value: strconv.FormatInt(now.Unix(), 10)},
		},
	}

	result, err := s.Client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s listings past deadline: %w", state, err)
	}

	var listings []models.Listing
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &listings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal listings past deadline: %w", err)
	}
	return listings, nil
}
