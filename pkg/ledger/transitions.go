package ledger

import (
	"fmt"
	"time"

	"github.com/krautchanpro/TamrielAuctionHouse/pkg/models"
)

// EventKind identifies a requested listing transition.
type EventKind string

const (
	// Client-driven events.
	PurchaseIntent EventKind = "purchase_intent"
	SellerCancel   EventKind = "seller_cancel"
	BuyerCancel    EventKind = "buyer_cancel"
	SendCOD        EventKind = "cod_sent"
	ConfirmCOD     EventKind = "cod_accepted"

	// Sweeper-driven events.
	Expire  EventKind = "expire"
	Release EventKind = "release"
)

// Event is one requested transition against a listing.
type Event struct {
	Kind  EventKind
	Actor string
	// SeenVersion is the listing version the client acted against, when the
	// client supplies one. 0 means unknown. It only matters for a seller
	// cancel of a RESERVED listing: a cancel issued against the current
	// version is a deliberate back-out (release the buyer), while a cancel
	// issued against an older version lost the race to a purchase intent.
	SeenVersion int64
}

// Reason classifies why a transition was rejected.
type Reason string

const (
	ReasonAlreadyReserved   Reason = "AlreadyReserved"
	ReasonAlreadySold       Reason = "AlreadySold"
	ReasonCancelled         Reason = "Cancelled"
	ReasonExpired           Reason = "Expired"
	ReasonNotSeller         Reason = "NotSeller"
	ReasonNotBuyer          Reason = "NotBuyer"
	ReasonOwnListing        Reason = "OwnListing"
	ReasonCodInFlight       Reason = "CodInFlight"
	ReasonNotReserved       Reason = "NotReserved"
	ReasonNotExpired        Reason = "NotExpired"
	ReasonDeadlineNotPassed Reason = "DeadlineNotPassed"
	ReasonUnknownEvent      Reason = "UnknownEvent"
	ReasonNotFound          Reason = "NotFound"
)

// RejectionError reports an illegal or race-lost transition. It is a user
// outcome, not an operational failure, and is never retried.
type RejectionError struct {
	ListingId string
	From      models.ListingState
	Event     EventKind
	Reason    Reason
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("transition %s rejected for listing %s in state %s: %s",
		e.Event, e.ListingId, e.From, e.Reason)
}

func reject(l models.Listing, ev Event, reason Reason) (models.Listing, error) {
	return models.Listing{}, &RejectionError{
		ListingId: l.Id,
		From:      l.State,
		Event:     ev.Kind,
		Reason:    reason,
	}
}

// terminalReason maps a terminal state to the rejection a late action gets.
func terminalReason(s models.ListingState) Reason {
	switch s {
	case models.COMPLETED:
		return ReasonAlreadySold
	case models.CANCELLED:
		return ReasonCancelled
	default:
		return ReasonExpired
	}
}

// Apply computes the listing that results from ev at instant now. It returns
// a modified copy and never mutates its input; persistence (and the version
// bump) belongs to the storage layer. Every edge not in the transition table
// yields a *RejectionError.
func Apply(l models.Listing, ev Event, now time.Time, reservationTTL time.Duration) (models.Listing, error) {
	if l.State.Terminal() {
		if ev.Kind == Expire && l.State == models.EXPIRED {
			// Sweeper re-running over an already-expired listing.
			return reject(l, ev, ReasonExpired)
		}
		return reject(l, ev, terminalReason(l.State))
	}

	switch ev.Kind {
	case PurchaseIntent:
		return applyPurchaseIntent(l, ev, now, reservationTTL)
	case SellerCancel:
		return applySellerCancel(l, ev, now)
	case BuyerCancel:
		return applyBuyerCancel(l, ev, now)
	case SendCOD:
		return applySendCOD(l, ev, now)
	case ConfirmCOD:
		return applyConfirmCOD(l, ev, now)
	case Expire:
		return applyExpire(l, ev, now)
	case Release:
		return applyRelease(l, ev, now)
	default:
		return reject(l, ev, ReasonUnknownEvent)
	}
}

func applyPurchaseIntent(l models.Listing, ev Event, now time.Time, reservationTTL time.Duration) (models.Listing, error) {
	if l.State != models.ACTIVE {
		return reject(l, ev, ReasonAlreadyReserved)
	}
	if ev.Actor == l.Seller {
		return reject(l, ev, ReasonOwnListing)
	}
	if !now.Before(l.ExpiresAt) {
		// Past expiry but not yet swept. Never hand out a reservation on it.
		return reject(l, ev, ReasonExpired)
	}
	l.State = models.RESERVED
	l.Reservation = &models.Reservation{
		Buyer:      ev.Actor,
		ReservedAt: now,
		Deadline:   now.Add(reservationTTL),
	}
	l.UpdatedAt = now
	return l, nil
}

func applySellerCancel(l models.Listing, ev Event, now time.Time) (models.Listing, error) {
	if ev.Actor != l.Seller {
		return reject(l, ev, ReasonNotSeller)
	}
	switch l.State {
	case models.ACTIVE:
		l.State = models.CANCELLED
		l.UpdatedAt = now
		return l, nil
	case models.RESERVED:
		if ev.SeenVersion != 0 && ev.SeenVersion < l.Version {
			// The cancel raced a purchase intent and lost.
			return reject(l, ev, ReasonAlreadyReserved)
		}
		// Deliberate back-out: release the reservation to the market.
		l.State = models.ACTIVE
		l.Reservation = nil
		l.UpdatedAt = now
		return l, nil
	case models.COD_SENT:
		// Money may already be in flight in the mail system.
		return reject(l, ev, ReasonCodInFlight)
	}
	return reject(l, ev, terminalReason(l.State))
}

func applyBuyerCancel(l models.Listing, ev Event, now time.Time) (models.Listing, error) {
	switch l.State {
	case models.RESERVED:
		if l.Reservation == nil || ev.Actor != l.Reservation.Buyer {
			return reject(l, ev, ReasonNotBuyer)
		}
		l.State = models.ACTIVE
		l.Reservation = nil
		l.UpdatedAt = now
		return l, nil
	case models.COD_SENT:
		return reject(l, ev, ReasonCodInFlight)
	}
	return reject(l, ev, ReasonNotReserved)
}

func applySendCOD(l models.Listing, ev Event, now time.Time) (models.Listing, error) {
	if l.State != models.RESERVED {
		return reject(l, ev, ReasonNotReserved)
	}
	if ev.Actor != l.Seller {
		return reject(l, ev, ReasonNotSeller)
	}
	l.State = models.COD_SENT
	l.UpdatedAt = now
	return l, nil
}

// applyConfirmCOD assumes the confirmation claim has already passed
// VerifyClaim; Apply only enforces the state edge and the acting party.
func applyConfirmCOD(l models.Listing, ev Event, now time.Time) (models.Listing, error) {
	if l.State != models.COD_SENT {
		return reject(l, ev, ReasonNotReserved)
	}
	if l.Reservation == nil || ev.Actor != l.Reservation.Buyer {
		return reject(l, ev, ReasonNotBuyer)
	}
	l.State = models.COMPLETED
	l.UpdatedAt = now
	return l, nil
}

func applyExpire(l models.Listing, ev Event, now time.Time) (models.Listing, error) {
	if l.State != models.ACTIVE {
		return reject(l, ev, ReasonNotExpired)
	}
	if now.Before(l.ExpiresAt) {
		return reject(l, ev, ReasonNotExpired)
	}
	l.State = models.EXPIRED
	l.UpdatedAt = now
	return l, nil
}

func applyRelease(l models.Listing, ev Event, now time.Time) (models.Listing, error) {
	if l.State != models.RESERVED || l.Reservation == nil {
		return reject(l, ev, ReasonNotReserved)
	}
	if now.Before(l.Reservation.Deadline) {
		return reject(l, ev, ReasonDeadlineNotPassed)
	}
	l.State = models.ACTIVE
	l.Reservation = nil
	l.UpdatedAt = now
	return l, nil
}
