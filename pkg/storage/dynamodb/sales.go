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

const sellerSoldGSI = "seller-sold_at-index"

// ListSalesBySeller retrieves the most recent completed sales for a seller.
// Sale records are written by the completion transaction in ApplyTransition.
func (s *Store) ListSalesBySeller(ctx context.Context, seller string, limit int32) ([]models.SaleRecord, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Sales),
		IndexName:              aws.String(sellerSoldGSI),
		KeyConditionExpression: aws.String("seller = :seller"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":seller": &types.AttributeValueMemberS{Value: seller},
		},
		ScanIndexForward: aws.Bool(false), // Most recent sales first
		Limit:            &limit,
	}

	result, err := s.Client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales for seller %s: %w", seller, err)
	}

	var sales []models.SaleRecord
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &sales); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sale records: %w", err)
	}
	return sales, nil
}
