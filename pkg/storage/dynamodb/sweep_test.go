package dynamodb

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/krautchanpro/TamrielAuctionHouse/pkg/models"
	"github.com/krautchanpro/TamrielAuctionHouse/pkg/storage/dynamodb/mocks"
)

func TestListExpiredListings(t *testing.T) {
	mockClient := new(mocks.DynamoDBAPI)
	store := newTestStore(mockClient)

	expired := storedActiveListing()
	expired.ExpiresAt = storeNow.Add(-time.Hour)
	av, err := attributevalue.MarshalMap(expired)
	assert.NoError(t, err)

	var captured *dynamodb.QueryInput
	mockClient.On("Query", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		captured = args.Get(1).(*dynamodb.QueryInput)
	}).Return(&dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{av}}, nil)

	listings, err := store.ListExpiredListings(context.Background(), storeNow)

	assert.NoError(t, err)
	assert.Len(t, listings, 1)
	assert.Equal(t, "listing-1", listings[0].Id)

	// The cutoff must be a number. String timestamps with mixed sub-second
	// precision break the comparison: "...00Z" sorts after "...00.5Z".
	cutoff, ok := captured.ExpressionAttributeValues[":cutoff"].(*types.AttributeValueMemberN)
	assert.True(t, ok)
	assert.Equal(t, strconv.FormatInt(storeNow.Unix(), 10), cutoff.Value)
}

func TestListTimedOutReservations(t *testing.T) {
	mockClient := new(mocks.DynamoDBAPI)
	store := newTestStore(mockClient)

	var captured *dynamodb.QueryInput
	mockClient.On("Query", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		captured = args.Get(1).(*dynamodb.QueryInput)
	}).Return(&dynamodb.QueryOutput{}, nil)

	listings, err := store.ListTimedOutReservations(context.Background(), storeNow)

	assert.NoError(t, err)
	assert.Empty(t, listings)
	assert.Contains(t, *captured.FilterExpression, "reservation.deadline")
	_, ok := captured.ExpressionAttributeValues[":cutoff"].(*types.AttributeValueMemberN)
	assert.True(t, ok)
}

func TestDeadlineRoundTripsAsEpoch(t *testing.T) {
	l := storedCodSentListing()
	av, err := attributevalue.MarshalMap(l)
	assert.NoError(t, err)

	item, ok := av["expires_at"].(*types.AttributeValueMemberN)
	assert.True(t, ok)
	assert.Equal(t, strconv.FormatInt(l.ExpiresAt.Unix(), 10), item.Value)

	reservation, ok := av["reservation"].(*types.AttributeValueMemberM)
	assert.True(t, ok)
	_, ok = reservation.Value["deadline"].(*types.AttributeValueMemberN)
	assert.True(t, ok)

	var back models.Listing
	assert.NoError(t, attributevalue.UnmarshalMap(av, &back))
	assert.Equal(t, l.ExpiresAt.Unix(), back.ExpiresAt.Unix())
	assert.Equal(t, l.Reservation.Deadline.Unix(), back.Reservation.Deadline.Unix())
}
