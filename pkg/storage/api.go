package storage

import (
	"context"

	"github.com/krautchanpro/TamrielAuctionHouse/pkg/models"
)

// StatsReader exposes the per-region counts served by the stats endpoint.
type StatsReader interface {
	// CountActiveListings returns the number of ACTIVE listings in a region.
	CountActiveListings(ctx context.Context, region models.Region) (int64, error)

	// CountPlayers returns the number of registered players in a region.
	CountPlayers(ctx context.Context, region models.Region) (int64, error)
}

// ApiStore defines the complete set of non-privileged operations needed by the API.
// It composes other interfaces to provide a clear boundary for the API's data access.
type ApiStore interface {
	ListingStore
	PlayerStore
	NotificationStore
	SalesStore
	ActionStore
	CursorStore
	StatsReader
}
