package dynamodb

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/krautchanpro/TamrielAuctionHouse/pkg/models"
	"github.com/krautchanpro/TamrielAuctionHouse/pkg/storage"
	"github.com/krautchanpro/TamrielAuctionHouse/pkg/storage/dynamodb/mocks"
)

func TestRecordActionResult(t *testing.T) {
	record := func() *models.ActionRecord {
		return &models.ActionRecord{
			ActionId:  "action-1",
			Player:    "@seller",
			ListingId: "listing-1",
			Status:    "accepted",
			AppliedAt: storeNow,
		}
	}

	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := newTestStore(mockClient)

		mockClient.On("PutItem", mock.Anything, mock.MatchedBy(func(input *dynamodb.PutItemInput) bool {
			return input.ConditionExpression != nil && *input.ConditionExpression == "attribute_not_exists(action_id)"
		})).Once().Return(&dynamodb.PutItemOutput{}, nil)

		rec := record()
		err := store.RecordActionResult(context.Background(), rec)

		assert.NoError(t, err)
		assert.NotZero(t, rec.TTL)
		mockClient.AssertExpectations(t)
	})

	t.Run("Duplicate In Flight", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := newTestStore(mockClient)

		mockClient.On("PutItem", mock.Anything, mock.Anything).Once().Return(nil, &types.ConditionalCheckFailedException{})

		err := store.RecordActionResult(context.Background(), record())

		assert.ErrorIs(t, err, storage.ErrActionExists)
	})
}
