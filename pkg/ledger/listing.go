package ledger

import (
	"fmt"
	"time"

	"github.com/krautchanpro/TamrielAuctionHouse/pkg/models"
)

// Listing durations the market accepts.
const (
	MinListingDuration = 12 * time.Hour
	MaxListingDuration = 7 * 24 * time.Hour
)

// ValidationError reports a malformed create request. It is surfaced to the
// submitting user immediately and never retried.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid listing: %s %s", e.Field, e.Msg)
}

// ValidateNewListing checks a listing before it is admitted to the ledger.
func ValidateNewListing(l models.Listing) error {
	if l.Seller == "" {
		return &ValidationError{Field: "seller", Msg: "is required"}
	}
	if l.Price <= 0 {
		return &ValidationError{Field: "price", Msg: "must be positive"}
	}
	d := time.Duration(l.Duration) * time.Second
	if d < MinListingDuration || d > MaxListingDuration {
		return &ValidationError{Field: "duration", Msg: "must be between 12h and 7d"}
	}
	if !l.Region.Valid() {
		return &ValidationError{Field: "region", Msg: "is not a known megaserver"}
	}
	if l.Item.ItemName == "" || l.Item.Quantity <= 0 {
		return &ValidationError{Field: "item", Msg: "payload is malformed"}
	}
	return nil
}
