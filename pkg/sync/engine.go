// Package sync implements the delta sync protocol: it applies a client's
// queued actions against the ledger in submitted order and computes the set
// of listing changes the client has not yet seen. The server keeps no
// session; the only state a client needs is the cursor returned here.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/krautchanpro/TamrielAuctionHouse/pkg/clock"
	"github.com/krautchanpro/TamrielAuctionHouse/pkg/ledger"
	"github.com/krautchanpro/TamrielAuctionHouse/pkg/models"
	"github.com/krautchanpro/TamrielAuctionHouse/pkg/notifier"
	"github.com/krautchanpro/TamrielAuctionHouse/pkg/storage"
)

// Store is the slice of the data layer the sync engine needs.
type Store interface {
	storage.ListingStore
	storage.ActionStore
	storage.CursorStore
	storage.NotificationWriter
}

// Kind enumerates the client actions sync can apply.
type Kind string

const (
	KindList           Kind = "list"
	KindCancel         Kind = "cancel"
	KindPurchase       Kind = "purchase"
	KindCancelPurchase Kind = "cancel_purchase"
	KindCodSent        Kind = "cod_sent"
	KindCodAccepted    Kind = "cod_accepted"
)

// Action is one locally-queued client action. Id is client-generated and
// deduplicates retried batches.
type Action struct {
	Id          string
	Kind        Kind
	ListingId   string
	SeenVersion int64
	NewListing  *models.Listing
	Claim       *models.ConfirmationClaim
}

// Result is the outcome of one action.
type Result struct {
	ActionId  string
	ListingId string
	Accepted  bool
	Reason    string
}

// Request is one sync call from a client.
type Request struct {
	Player  string
	Region  models.Region
	Cursor  int64
	Actions []Action
}

// Response carries per-action outcomes plus the delta since the cursor.
type Response struct {
	Results    []Result
	Changes    []models.Listing
	RemovedIds []string
	Cursor     int64
	ServerTime time.Time
	IsFullSync bool
}

// Engine applies sync requests against the ledger.
type Engine struct {
	store    Store
	notifier notifier.Notifier
	clock    clock.Clock
}

// NewEngine creates a sync engine. The notifier may be nil, in which case
// events are only queued for the poll endpoint.
func NewEngine(store Store, n notifier.Notifier, clk clock.Clock) *Engine {
	return &Engine{store: store, notifier: n, clock: clk}
}

// Sync applies the batch in submitted order and computes the delta. Any
// storage failure aborts the whole call so the client retries with its
// cursor unchanged; already-applied actions are answered from the action
// record on the retry instead of being applied twice.
func (e *Engine) Sync(ctx context.Context, req Request) (*Response, error) {
	if !req.Region.Valid() {
		return nil, &ledger.ValidationError{Field: "region", Msg: "is not a known megaserver"}
	}
	now := e.clock.Now()

	results := make([]Result, 0, len(req.Actions))
	for _, action := range req.Actions {
		res, err := e.applyAction(ctx, req.Player, req.Region, action, now)
		if err != nil {
			return nil, err
		}
		results = append(results, *res)
	}

	changes, err := e.store.ListChangedListings(ctx, req.Region, req.Cursor)
	if err != nil {
		return nil, err
	}

	newCursor := req.Cursor
	var removed []string
	for _, l := range changes {
		if l.Version > newCursor {
			newCursor = l.Version
		}
		if l.State.Terminal() {
			removed = append(removed, l.Id)
		}
	}

	cursor := &models.SyncCursor{Player: req.Player, Region: req.Region, Version: newCursor, SyncAt: now}
	if err := e.store.SaveCursor(ctx, cursor); err != nil {
		// The saved cursor is informational; the client keeps its own.
		slog.Warn("failed to save sync cursor", "player", req.Player, "region", req.Region, "error", err)
	}

	return &Response{
		Results:    results,
		Changes:    changes,
		RemovedIds: removed,
		Cursor:     newCursor,
		ServerTime: now,
		IsFullSync: req.Cursor == 0,
	}, nil
}

// applyAction resolves one action, answering retries from the action record.
func (e *Engine) applyAction(ctx context.Context, player string, region models.Region, action Action, now time.Time) (*Result, error) {
	if action.Id != "" {
		rec, err := e.store.GetActionRecord(ctx, action.Id)
		if err == nil {
			return &Result{
				ActionId:  action.Id,
				ListingId: rec.ListingId,
				Accepted:  rec.Status == "accepted",
				Reason:    rec.Reason,
			}, nil
		}
		if !errors.Is(err, storage.ErrActionNotFound) {
			return nil, err
		}
	}

	res, err := e.resolveAction(ctx, player, region, action)
	if err != nil {
		return nil, err
	}

	if action.Id != "" {
		status := "rejected"
		if res.Accepted {
			status = "accepted"
		}
		rec := &models.ActionRecord{
			ActionId:  action.Id,
			Player:    player,
			ListingId: res.ListingId,
			Status:    status,
			Reason:    res.Reason,
			AppliedAt: now,
		}
		if err := e.store.RecordActionResult(ctx, rec); err != nil {
			// A duplicate submission raced us and recorded first; the first
			// record is authoritative, so answer from it.
			if errors.Is(err, storage.ErrActionExists) {
				stored, getErr := e.store.GetActionRecord(ctx, action.Id)
				if getErr != nil {
					return nil, getErr
				}
				return &Result{
					ActionId:  action.Id,
					ListingId: stored.ListingId,
					Accepted:  stored.Status == "accepted",
					Reason:    stored.Reason,
				}, nil
			}
			return nil, err
		}
	}
	return res, nil
}

func (e *Engine) resolveAction(ctx context.Context, player string, region models.Region, action Action) (*Result, error) {
	if action.Kind == KindList {
		return e.resolveList(ctx, player, region, action)
	}

	// Every other kind targets an existing listing. Pre-read it to capture
	// the counterparty for notifications and to keep cross-region ids
	// invisible.
	before, err := e.store.GetListing(ctx, action.ListingId)
	if errors.Is(err, storage.ErrListingNotFound) {
		return rejected(action, string(ledger.ReasonNotFound)), nil
	}
	if err != nil {
		return nil, err
	}
	if before.Region != region {
		return rejected(action, string(ledger.ReasonNotFound)), nil
	}

	switch action.Kind {
	case KindCancel:
		return e.transit(ctx, before, action, ledger.Event{Kind: ledger.SellerCancel, Actor: player, SeenVersion: action.SeenVersion})
	case KindPurchase:
		return e.transit(ctx, before, action, ledger.Event{Kind: ledger.PurchaseIntent, Actor: player, SeenVersion: action.SeenVersion})
	case KindCancelPurchase:
		return e.transit(ctx, before, action, ledger.Event{Kind: ledger.BuyerCancel, Actor: player, SeenVersion: action.SeenVersion})
	case KindCodSent:
		return e.transit(ctx, before, action, ledger.Event{Kind: ledger.SendCOD, Actor: player, SeenVersion: action.SeenVersion})
	case KindCodAccepted:
		return e.resolveCodAccepted(ctx, player, before, action)
	default:
		return rejected(action, "UnknownAction"), nil
	}
}

func (e *Engine) resolveList(ctx context.Context, player string, region models.Region, action Action) (*Result, error) {
	if action.NewListing == nil {
		return rejected(action, "invalid listing: payload is missing"), nil
	}
	listing := *action.NewListing
	listing.Seller = player
	listing.Region = region

	created, err := e.store.CreateListing(ctx, &listing)
	if err != nil {
		var ve *ledger.ValidationError
		if errors.As(err, &ve) {
			return rejected(action, ve.Error()), nil
		}
		return nil, err
	}
	return &Result{ActionId: action.Id, ListingId: created.Id, Accepted: true}, nil
}

// resolveCodAccepted gates the COMPLETED transition behind claim
// verification. A mismatch leaves the listing in COD_SENT and tells the
// buyer not to proceed.
func (e *Engine) resolveCodAccepted(ctx context.Context, player string, before *models.Listing, action Action) (*Result, error) {
	if action.Claim == nil {
		return rejected(action, "confirmation claim is missing"), nil
	}
	claim := *action.Claim
	claim.ListingId = before.Id

	if err := ledger.VerifyClaim(*before, claim); err != nil {
		var mm *ledger.MismatchError
		if errors.As(err, &mm) {
			return rejected(action, mm.Error()), nil
		}
		return nil, err
	}
	return e.transit(ctx, before, action, ledger.Event{Kind: ledger.ConfirmCOD, Actor: player, SeenVersion: action.SeenVersion})
}

// transit applies the event through the serialized ledger entry point, maps
// domain rejections to action results, and queues the notifications the
// transition implies.
func (e *Engine) transit(ctx context.Context, before *models.Listing, action Action, ev ledger.Event) (*Result, error) {
	after, err := e.store.ApplyTransition(ctx, before.Id, ev)
	if err != nil {
		var rej *ledger.RejectionError
		if errors.As(err, &rej) {
			return rejected(action, string(rej.Reason)), nil
		}
		if errors.Is(err, storage.ErrListingNotFound) {
			return rejected(action, string(ledger.ReasonNotFound)), nil
		}
		if errors.Is(err, storage.ErrStaleListing) {
			return rejected(action, string(ledger.ReasonAlreadyReserved)), nil
		}
		return nil, err
	}

	e.queueTransitionNotifications(ctx, before, after, ev)

	return &Result{ActionId: action.Id, ListingId: after.Id, Accepted: true}, nil
}

func (e *Engine) queueTransitionNotifications(ctx context.Context, before, after *models.Listing, ev ledger.Event) {
	switch {
	case ev.Kind == ledger.PurchaseIntent && after.State == models.RESERVED:
		e.notify(ctx, &models.Notification{
			Player:    after.Seller,
			Type:      models.NotifItemSold,
			ListingId: after.Id,
			Data: map[string]string{
				"item_name": after.Item.ItemName,
				"buyer":     after.Reservation.Buyer,
				"price":     fmt.Sprintf("%d", after.Price),
				"quantity":  fmt.Sprintf("%d", after.Item.Quantity),
			},
		})
	case ev.Kind == ledger.SendCOD && after.State == models.COD_SENT:
		e.notify(ctx, &models.Notification{
			Player:    after.Reservation.Buyer,
			Type:      models.NotifCodReceived,
			ListingId: after.Id,
			Data: map[string]string{
				"item_name": after.Item.ItemName,
				"price":     fmt.Sprintf("%d", after.Price),
			},
		})
	case ev.Kind == ledger.BuyerCancel && before.State == models.RESERVED && after.State == models.ACTIVE:
		// The seller was told the item sold; walk that back.
		e.notify(ctx, &models.Notification{
			Player:    after.Seller,
			Type:      models.NotifPurchaseFailed,
			ListingId: after.Id,
			Data: map[string]string{
				"item_name": after.Item.ItemName,
				"reason":    "The buyer cancelled the reserved purchase.",
			},
		})
	case ev.Kind == ledger.SellerCancel && before.State == models.RESERVED && after.State == models.ACTIVE:
		// The seller backed out of an accepted reservation.
		e.notify(ctx, &models.Notification{
			Player:    before.Reservation.Buyer,
			Type:      models.NotifListingCancelled,
			ListingId: after.Id,
			Data: map[string]string{
				"item_name": after.Item.ItemName,
				"reason":    "The seller cancelled your reserved purchase.",
			},
		})
	}
}

func (e *Engine) notify(ctx context.Context, n *models.Notification) {
	if err := e.store.QueueNotification(ctx, n); err != nil {
		slog.Error("failed to queue notification", "player", n.Player, "type", n.Type, "error", err)
		return
	}
	if e.notifier != nil {
		if err := e.notifier.PublishNotification(ctx, n); err != nil {
			slog.Error("failed to publish notification event", "player", n.Player, "type", n.Type, "error", err)
		}
	}
}

func rejected(action Action, reason string) *Result {
	return &Result{
		ActionId:  action.Id,
		ListingId: action.ListingId,
		Accepted:  false,
		Reason:    reason,
	}
}
