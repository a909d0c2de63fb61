package dynamodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/krautchanpro/TamrielAuctionHouse/pkg/ledger"
	"github.com/krautchanpro/TamrielAuctionHouse/pkg/models"
	"github.com/krautchanpro/TamrielAuctionHouse/pkg/storage"
)

// ApplyTransition applies one state-machine event to a listing. The listing
// write, the region counter advance, and (for completions) the sale record
// all commit in one DynamoDB transaction, so a version number only becomes
// visible once the listing carrying it is readable. The listing put is
// conditioned on the version it was read at: concurrent writers for the same
// id serialize and the first committer wins; the loser's re-read yields the
// rejection the now-current state implies. Counter contention with writers
// for other listings in the region is retried with a fresh read.
func (s *Store) ApplyTransition(ctx context.Context, id string, ev ledger.Event) (*models.Listing, error) {
	for attempt := 0; attempt < maxVersionAttempts; attempt++ {
		current, err := s.GetListing(ctx, id)
		if err != nil {
			return nil, err
		}

		now := s.Clock.Now()
		next, err := ledger.Apply(*current, ev, now, s.ReservationTTL)
		if err != nil {
			return nil, err
		}

		issued, err := s.RegionVersion(ctx, next.Region)
		if err != nil {
			return nil, err
		}
		next.Version = issued + 1
		if next.State.Terminal() {
			next.TTL = s.retentionDeadline(now)
		}

		err = s.persistTransition(ctx, current, &next)
		if err == nil {
			return &next, nil
		}
		if errors.Is(err, errCounterConflict) {
			continue
		}
		if errors.Is(err, errItemConflict) {
			return nil, s.lostRace(ctx, id, ev)
		}
		return nil, fmt.Errorf("failed to persist transition for listing %s: %w", id, err)
	}
	return nil, fmt.Errorf("gave up persisting transition for listing %s: %w", id, errCounterConflict)
}

// persistTransition commits the counter advance and the updated listing in
// one transaction. Completion additionally writes the sale history record.
func (s *Store) persistTransition(ctx context.Context, current *models.Listing, next *models.Listing) error {
	listingAV, err := attributevalue.MarshalMap(next)
	if err != nil {
		return fmt.Errorf("failed to marshal listing: %w", err)
	}

	items := []types.TransactWriteItem{
		s.counterAdvanceItem(next.Region, next.Version),
		{
			Put: &types.Put{
				TableName:           aws.String(s.Tables.Listings),
				Item:                listingAV,
				ConditionExpression: aws.String("version = :read_version"),
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":read_version": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", current.Version)},
				},
			},
		},
	}

	if next.State == models.COMPLETED {
		sale := models.SaleRecord{
			Id:        uuid.New().String(),
			ListingId: next.Id,
			Seller:    next.Seller,
			Buyer:     next.Reservation.Buyer,
			ItemName:  next.Item.ItemName,
			Quantity:  next.Item.Quantity,
			Price:     next.Price,
			Region:    next.Region,
			SoldAt:    next.UpdatedAt,
			TTL:       next.TTL,
		}
		saleAV, err := attributevalue.MarshalMap(sale)
		if err != nil {
			return fmt.Errorf("failed to marshal sale record: %w", err)
		}
		items = append(items, types.TransactWriteItem{
			Put: &types.Put{
				TableName:           aws.String(s.Tables.Sales),
				Item:                saleAV,
				ConditionExpression: aws.String("attribute_not_exists(id)"),
			},
		})
	}

	_, err = s.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		return classifyVersionedWrite(err)
	}
	return nil
}

// lostRace re-reads the listing after a conditional write failed and derives
// the rejection the current state implies. There are no automatic retries:
// the competing action committed first and wins.
func (s *Store) lostRace(ctx context.Context, id string, ev ledger.Event) error {
	fresh, err := s.GetListing(ctx, id)
	if err != nil {
		return err
	}
	if _, applyErr := ledger.Apply(*fresh, ev, s.Clock.Now(), s.ReservationTTL); applyErr != nil {
		return applyErr
	}
	return storage.ErrStaleListing
}
