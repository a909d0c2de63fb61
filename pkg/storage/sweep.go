package storage

import (
	"context"
	"time"

	"github.com/krautchanpro/TamrielAuctionHouse/pkg/models"
)

// SweeperStore defines the interface for the reconciliation pass over the
// ledger. It reuses the same serialized transition entry point as client
// traffic, so a sweep-induced expiry and a client action racing over the same
// listing are resolved by the same first-committer-wins rule.
type SweeperStore interface {
	// ListExpiredListings retrieves ACTIVE listings whose expiry time has
	// passed as of now.
	ListExpiredListings(ctx context.Context, now time.Time) ([]models.Listing, error)

	// ListTimedOutReservations retrieves RESERVED listings whose reservation
	// deadline has passed as of now.
	ListTimedOutReservations(ctx context.Context, now time.Time) ([]models.Listing, error)

	ListingWriter
	NotificationWriter
}
