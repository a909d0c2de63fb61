package sync

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/krautchanpro/TamrielAuctionHouse/pkg/clock"
	"github.com/krautchanpro/TamrielAuctionHouse/pkg/ledger"
	"github.com/krautchanpro/TamrielAuctionHouse/pkg/models"
	"github.com/krautchanpro/TamrielAuctionHouse/pkg/storage"
	"github.com/krautchanpro/TamrielAuctionHouse/pkg/storage/mocks"
)

var engineNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestEngine(store *mocks.Storage) *Engine {
	return NewEngine(store, nil, clock.NewFixed(engineNow))
}

func activeListing() *models.Listing {
	return &models.Listing{
		Id:        "listing-1",
		Seller:    "@seller",
		Item:      models.Item{ItemName: "Tempering Alloy", Quantity: 10},
		Price:     1000,
		Region:    models.RegionNA,
		State:     models.ACTIVE,
		Version:   4,
		ExpiresAt: engineNow.Add(48 * time.Hour),
	}
}

func reservedListing(buyer string) *models.Listing {
	l := activeListing()
	l.State = models.RESERVED
	l.Version = 5
	l.Reservation = &models.Reservation{
		Buyer:      buyer,
		ReservedAt: engineNow,
		Deadline:   engineNow.Add(24 * time.Hour),
	}
	return l
}

// expectDelta stubs an empty changes query and cursor save so tests can
// focus on the action half of the sync.
func expectDelta(store *mocks.Storage, region models.Region) {
	store.On("ListChangedListings", mock.Anything, region, mock.Anything).Return([]models.Listing{}, nil)
	store.On("SaveCursor", mock.Anything, mock.Anything).Return(nil)
}

func TestSyncPurchaseRace(t *testing.T) {
	store := &mocks.Storage{}
	engine := newTestEngine(store)

	// B1 wins the conditional write; B2's attempt resolves against the
	// now-reserved listing.
	store.On("GetActionRecord", mock.Anything, "a-b1").Return(nil, storage.ErrActionNotFound)
	store.On("GetActionRecord", mock.Anything, "a-b2").Return(nil, storage.ErrActionNotFound)
	store.On("GetListing", mock.Anything, "listing-1").Return(activeListing(), nil)
	store.On("ApplyTransition", mock.Anything, "listing-1", mock.MatchedBy(func(ev ledger.Event) bool {
		return ev.Kind == ledger.PurchaseIntent && ev.Actor == "@b1"
	})).Return(reservedListing("@b1"), nil)
	store.On("ApplyTransition", mock.Anything, "listing-1", mock.MatchedBy(func(ev ledger.Event) bool {
		return ev.Kind == ledger.PurchaseIntent && ev.Actor == "@b2"
	})).Return(nil, &ledger.RejectionError{
		ListingId: "listing-1",
		From:      models.RESERVED,
		Reason:    ledger.ReasonAlreadyReserved,
	})
	store.On("QueueNotification", mock.Anything, mock.MatchedBy(func(n *models.Notification) bool {
		return n.Player == "@seller" && n.Type == models.NotifItemSold
	})).Return(nil)
	store.On("RecordActionResult", mock.Anything, mock.Anything).Return(nil)
	expectDelta(store, models.RegionNA)

	resp1, err := engine.Sync(context.Background(), Request{
		Player:  "@b1",
		Region:  models.RegionNA,
		Cursor:  4,
		Actions: []Action{{Id: "a-b1", Kind: KindPurchase, ListingId: "listing-1"}},
	})
	assert.NoError(t, err)
	assert.True(t, resp1.Results[0].Accepted)

	resp2, err := engine.Sync(context.Background(), Request{
		Player:  "@b2",
		Region:  models.RegionNA,
		Cursor:  4,
		Actions: []Action{{Id: "a-b2", Kind: KindPurchase, ListingId: "listing-1"}},
	})
	assert.NoError(t, err)
	assert.False(t, resp2.Results[0].Accepted)
	assert.Equal(t, "AlreadyReserved", resp2.Results[0].Reason)

	store.AssertExpectations(t)
	store.AssertNumberOfCalls(t, "QueueNotification", 1)
}

func TestSyncStaleSellerCancelRejected(t *testing.T) {
	store := &mocks.Storage{}
	engine := newTestEngine(store)

	store.On("GetActionRecord", mock.Anything, "a-1").Return(nil, storage.ErrActionNotFound)
	store.On("GetListing", mock.Anything, "listing-1").Return(reservedListing("@buyer"), nil)
	store.On("ApplyTransition", mock.Anything, "listing-1", mock.Anything).Return(nil, &ledger.RejectionError{
		ListingId: "listing-1",
		From:      models.RESERVED,
		Reason:    ledger.ReasonAlreadyReserved,
	})
	store.On("RecordActionResult", mock.Anything, mock.MatchedBy(func(rec *models.ActionRecord) bool {
		return rec.Status == "rejected" && rec.Reason == "AlreadyReserved"
	})).Return(nil)
	expectDelta(store, models.RegionNA)

	resp, err := engine.Sync(context.Background(), Request{
		Player: "@seller",
		Region: models.RegionNA,
		Cursor: 4,
		Actions: []Action{
			{Id: "a-1", Kind: KindCancel, ListingId: "listing-1", SeenVersion: 4},
		},
	})
	assert.NoError(t, err)
	assert.False(t, resp.Results[0].Accepted)
	assert.Equal(t, "AlreadyReserved", resp.Results[0].Reason)

	// A rejected cancel releases nothing, so the buyer hears nothing.
	store.AssertNotCalled(t, "QueueNotification", mock.Anything, mock.Anything)
}

func TestSyncDeliberateReleaseNotifiesBuyer(t *testing.T) {
	store := &mocks.Storage{}
	engine := newTestEngine(store)

	released := activeListing()
	released.Version = 6

	store.On("GetActionRecord", mock.Anything, "a-1").Return(nil, storage.ErrActionNotFound)
	store.On("GetListing", mock.Anything, "listing-1").Return(reservedListing("@buyer"), nil)
	store.On("ApplyTransition", mock.Anything, "listing-1", mock.Anything).Return(released, nil)
	store.On("QueueNotification", mock.Anything, mock.MatchedBy(func(n *models.Notification) bool {
		return n.Player == "@buyer" && n.Type == models.NotifListingCancelled
	})).Return(nil)
	store.On("RecordActionResult", mock.Anything, mock.Anything).Return(nil)
	expectDelta(store, models.RegionNA)

	resp, err := engine.Sync(context.Background(), Request{
		Player: "@seller",
		Region: models.RegionNA,
		Cursor: 5,
		Actions: []Action{
			{Id: "a-1", Kind: KindCancel, ListingId: "listing-1", SeenVersion: 5},
		},
	})
	assert.NoError(t, err)
	assert.True(t, resp.Results[0].Accepted)
	store.AssertExpectations(t)
}

func TestSyncBuyerCancelNotifiesSeller(t *testing.T) {
	store := &mocks.Storage{}
	engine := newTestEngine(store)

	released := activeListing()
	released.Version = 6

	store.On("GetActionRecord", mock.Anything, "a-1").Return(nil, storage.ErrActionNotFound)
	store.On("GetListing", mock.Anything, "listing-1").Return(reservedListing("@buyer"), nil)
	store.On("ApplyTransition", mock.Anything, "listing-1", mock.MatchedBy(func(ev ledger.Event) bool {
		return ev.Kind == ledger.BuyerCancel && ev.Actor == "@buyer"
	})).Return(released, nil)
	store.On("QueueNotification", mock.Anything, mock.MatchedBy(func(n *models.Notification) bool {
		return n.Player == "@seller" && n.Type == models.NotifPurchaseFailed
	})).Return(nil)
	store.On("RecordActionResult", mock.Anything, mock.Anything).Return(nil)
	expectDelta(store, models.RegionNA)

	resp, err := engine.Sync(context.Background(), Request{
		Player: "@buyer",
		Region: models.RegionNA,
		Cursor: 5,
		Actions: []Action{
			{Id: "a-1", Kind: KindCancelPurchase, ListingId: "listing-1"},
		},
	})
	assert.NoError(t, err)
	assert.True(t, resp.Results[0].Accepted)
	store.AssertExpectations(t)
}

func TestSyncActionDedup(t *testing.T) {
	store := &mocks.Storage{}
	engine := newTestEngine(store)

	// A retried batch replays the recorded outcome without touching the
	// listing again.
	store.On("GetActionRecord", mock.Anything, "a-1").Return(&models.ActionRecord{
		ActionId:  "a-1",
		Player:    "@buyer",
		ListingId: "listing-1",
		Status:    "accepted",
	}, nil)
	expectDelta(store, models.RegionNA)

	resp, err := engine.Sync(context.Background(), Request{
		Player:  "@buyer",
		Region:  models.RegionNA,
		Cursor:  4,
		Actions: []Action{{Id: "a-1", Kind: KindPurchase, ListingId: "listing-1"}},
	})
	assert.NoError(t, err)
	assert.True(t, resp.Results[0].Accepted)
	store.AssertNotCalled(t, "ApplyTransition", mock.Anything, mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "RecordActionResult", mock.Anything, mock.Anything)
}

func TestSyncDedupOfInFlightDuplicate(t *testing.T) {
	store := &mocks.Storage{}
	engine := newTestEngine(store)

	// The duplicate submission passes the action-record lookup because the
	// original is still in flight. Its conditional record write then loses,
	// and the answer comes from whatever the original recorded.
	store.On("GetActionRecord", mock.Anything, "a-1").Once().Return(nil, storage.ErrActionNotFound)
	store.On("GetListing", mock.Anything, "listing-1").Return(activeListing(), nil)
	store.On("ApplyTransition", mock.Anything, "listing-1", mock.Anything).Return(reservedListing("@buyer"), nil)
	store.On("QueueNotification", mock.Anything, mock.Anything).Return(nil)
	store.On("RecordActionResult", mock.Anything, mock.Anything).Return(storage.ErrActionExists)
	store.On("GetActionRecord", mock.Anything, "a-1").Once().Return(&models.ActionRecord{
		ActionId:  "a-1",
		Player:    "@buyer",
		ListingId: "listing-1",
		Status:    "rejected",
		Reason:    "AlreadyReserved",
	}, nil)
	expectDelta(store, models.RegionNA)

	resp, err := engine.Sync(context.Background(), Request{
		Player:  "@buyer",
		Region:  models.RegionNA,
		Cursor:  4,
		Actions: []Action{{Id: "a-1", Kind: KindPurchase, ListingId: "listing-1"}},
	})
	assert.NoError(t, err)
	assert.False(t, resp.Results[0].Accepted)
	assert.Equal(t, "AlreadyReserved", resp.Results[0].Reason)
	store.AssertExpectations(t)
}

func TestSyncListValidationRejected(t *testing.T) {
	store := &mocks.Storage{}
	engine := newTestEngine(store)

	store.On("GetActionRecord", mock.Anything, "a-1").Return(nil, storage.ErrActionNotFound)
	store.On("CreateListing", mock.Anything, mock.Anything).Return(nil, &ledger.ValidationError{Field: "price", Msg: "must be positive"})
	store.On("RecordActionResult", mock.Anything, mock.MatchedBy(func(rec *models.ActionRecord) bool {
		return rec.Status == "rejected"
	})).Return(nil)
	expectDelta(store, models.RegionNA)

	resp, err := engine.Sync(context.Background(), Request{
		Player: "@seller",
		Region: models.RegionNA,
		Actions: []Action{
			{Id: "a-1", Kind: KindList, NewListing: &models.Listing{Price: 0}},
		},
	})
	assert.NoError(t, err)
	assert.False(t, resp.Results[0].Accepted)
	assert.Contains(t, resp.Results[0].Reason, "price")
}

func TestSyncCodAcceptedMismatch(t *testing.T) {
	store := &mocks.Storage{}
	engine := newTestEngine(store)

	codSent := reservedListing("@buyer")
	codSent.State = models.COD_SENT

	store.On("GetActionRecord", mock.Anything, "a-1").Return(nil, storage.ErrActionNotFound)
	store.On("GetListing", mock.Anything, "listing-1").Return(codSent, nil)
	store.On("RecordActionResult", mock.Anything, mock.Anything).Return(nil)
	expectDelta(store, models.RegionNA)

	resp, err := engine.Sync(context.Background(), Request{
		Player: "@buyer",
		Region: models.RegionNA,
		Cursor: 6,
		Actions: []Action{
			{
				Id:        "a-1",
				Kind:      KindCodAccepted,
				ListingId: "listing-1",
				Claim: &models.ConfirmationClaim{
					Amount: 900,
					Seller: "@seller",
					Buyer:  "@buyer",
				},
			},
		},
	})
	assert.NoError(t, err)
	assert.False(t, resp.Results[0].Accepted)
	assert.Contains(t, resp.Results[0].Reason, "amount")

	// The claim never reached the state machine; the listing stays COD_SENT.
	store.AssertNotCalled(t, "ApplyTransition", mock.Anything, mock.Anything, mock.Anything)
}

func TestSyncCrossRegionListingInvisible(t *testing.T) {
	store := &mocks.Storage{}
	engine := newTestEngine(store)

	euListing := activeListing()
	euListing.Region = models.RegionEU

	store.On("GetActionRecord", mock.Anything, "a-1").Return(nil, storage.ErrActionNotFound)
	store.On("GetListing", mock.Anything, "listing-1").Return(euListing, nil)
	store.On("RecordActionResult", mock.Anything, mock.Anything).Return(nil)
	expectDelta(store, models.RegionNA)

	resp, err := engine.Sync(context.Background(), Request{
		Player:  "@buyer",
		Region:  models.RegionNA,
		Actions: []Action{{Id: "a-1", Kind: KindPurchase, ListingId: "listing-1"}},
	})
	assert.NoError(t, err)
	assert.False(t, resp.Results[0].Accepted)
	assert.Equal(t, "NotFound", resp.Results[0].Reason)
}

func TestSyncDeltaCursorAdvance(t *testing.T) {
	store := &mocks.Storage{}
	engine := newTestEngine(store)

	sold := *reservedListing("@buyer")
	sold.State = models.COMPLETED
	sold.Version = 9
	changed := activeListing()
	changed.Id = "listing-2"
	changed.Version = 7

	store.On("ListChangedListings", mock.Anything, models.RegionNA, int64(5)).Return([]models.Listing{*changed, sold}, nil)
	store.On("SaveCursor", mock.Anything, mock.MatchedBy(func(c *models.SyncCursor) bool {
		return c.Player == "@buyer" && c.Version == 9
	})).Return(nil)

	resp, err := engine.Sync(context.Background(), Request{Player: "@buyer", Region: models.RegionNA, Cursor: 5})
	assert.NoError(t, err)
	assert.Equal(t, int64(9), resp.Cursor)
	assert.Len(t, resp.Changes, 2)
	assert.Equal(t, []string{"listing-1"}, resp.RemovedIds)
	assert.False(t, resp.IsFullSync)
	assert.Equal(t, engineNow, resp.ServerTime)
	store.AssertExpectations(t)
}

func TestSyncEmptyDeltaKeepsCursor(t *testing.T) {
	store := &mocks.Storage{}
	engine := newTestEngine(store)

	store.On("ListChangedListings", mock.Anything, models.RegionNA, int64(42)).Return([]models.Listing{}, nil)
	store.On("SaveCursor", mock.Anything, mock.Anything).Return(nil)

	resp, err := engine.Sync(context.Background(), Request{Player: "@buyer", Region: models.RegionNA, Cursor: 42})
	assert.NoError(t, err)
	assert.Equal(t, int64(42), resp.Cursor)
	assert.Empty(t, resp.Changes)
	assert.Empty(t, resp.RemovedIds)
}

func TestSyncZeroCursorIsFullSync(t *testing.T) {
	store := &mocks.Storage{}
	engine := newTestEngine(store)

	store.On("ListChangedListings", mock.Anything, models.RegionNA, int64(0)).Return([]models.Listing{*activeListing()}, nil)
	store.On("SaveCursor", mock.Anything, mock.Anything).Return(nil)

	resp, err := engine.Sync(context.Background(), Request{Player: "@buyer", Region: models.RegionNA, Cursor: 0})
	assert.NoError(t, err)
	assert.True(t, resp.IsFullSync)
	assert.Equal(t, int64(4), resp.Cursor)
}

func TestSyncUnknownRegion(t *testing.T) {
	store := &mocks.Storage{}
	engine := newTestEngine(store)

	_, err := engine.Sync(context.Background(), Request{Player: "@buyer", Region: "JP"})
	var ve *ledger.ValidationError
	assert.ErrorAs(t, err, &ve)
}
