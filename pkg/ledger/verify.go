package ledger

import (
	"fmt"

	"github.com/krautchanpro/TamrielAuctionHouse/pkg/models"
)

// MismatchError reports a confirmation claim that does not match what the
// ledger expected for the listing. The COMPLETED transition must be withheld
// and the buyer warned; the external payment has already happened, so this
// is advisory, not recoverable.
type MismatchError struct {
	ListingId string
	Field     string
	Expected  string
	Actual    string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("confirmation claim mismatch on %s for listing %s: expected %s, got %s",
		e.Field, e.ListingId, e.Expected, e.Actual)
}

// VerifyClaim checks a client-reported COD confirmation against the listing's
// expected price and parties. Every field must match exactly. A listing
// without a live reservation (released or expired) can never verify.
func VerifyClaim(l models.Listing, claim models.ConfirmationClaim) error {
	if l.State != models.COD_SENT || l.Reservation == nil {
		return &MismatchError{
			ListingId: l.Id,
			Field:     "state",
			Expected:  string(models.COD_SENT),
			Actual:    string(l.State),
		}
	}
	if claim.Amount != l.Price {
		return &MismatchError{
			ListingId: l.Id,
			Field:     "amount",
			Expected:  fmt.Sprintf("%d", l.Price),
			Actual:    fmt.Sprintf("%d", claim.Amount),
		}
	}
	if claim.Seller != l.Seller {
		return &MismatchError{
			ListingId: l.Id,
			Field:     "seller",
			Expected:  l.Seller,
			Actual:    claim.Seller,
		}
	}
	if claim.Buyer != l.Reservation.Buyer {
		return &MismatchError{
			ListingId: l.Id,
			Field:     "buyer",
			Expected:  l.Reservation.Buyer,
			Actual:    claim.Buyer,
		}
	}
	return nil
}
