package storage

import (
	"context"

	"github.com/krautchanpro/TamrielAuctionHouse/pkg/ledger"
	"github.com/krautchanpro/TamrielAuctionHouse/pkg/models"
)

// ListingReader defines the interface for reading listing data.
type ListingReader interface {
	// GetListing retrieves a listing by its ID.
	GetListing(ctx context.Context, id string) (*models.Listing, error)

	// ListChangedListings retrieves every listing in the region whose version
	// is greater than sinceVersion, ordered by version.
	ListChangedListings(ctx context.Context, region models.Region, sinceVersion int64) ([]models.Listing, error)
}

// ListingWriter defines the sole mutation entry points for the ledger.
type ListingWriter interface {
	// CreateListing validates and persists a new listing, assigning its id
	// and the next version number in its region.
	CreateListing(ctx context.Context, listing *models.Listing) (*models.Listing, error)

	// ApplyTransition applies one state-machine event to a listing under the
	// single-writer-per-listing-id discipline and persists the result with a
	// freshly issued region version. A lost race or illegal edge returns a
	// *ledger.RejectionError.
	ApplyTransition(ctx context.Context, id string, ev ledger.Event) (*models.Listing, error)
}

// ListingStore combines the reader and writer interfaces.
type ListingStore interface {
	ListingReader
	ListingWriter
}
