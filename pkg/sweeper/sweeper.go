// Package sweeper drives the state machine's time-based transitions:
// expiring listings that outlived their duration and releasing reservations
// whose confirmation deadline passed. It applies both through the same
// serialized transition path as client traffic, so a client action that
// lands first simply wins and the sweep moves on.
package sweeper

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/krautchanpro/TamrielAuctionHouse/pkg/clock"
	"github.com/krautchanpro/TamrielAuctionHouse/pkg/ledger"
	"github.com/krautchanpro/TamrielAuctionHouse/pkg/models"
	"github.com/krautchanpro/TamrielAuctionHouse/pkg/notifier"
	"github.com/krautchanpro/TamrielAuctionHouse/pkg/storage"
)

const sweepActor = "system"

// Report summarizes one sweep pass.
type Report struct {
	Expired  int
	Released int
	Skipped  int
	Failed   int
}

// Sweeper performs reconciliation passes over the ledger.
type Sweeper struct {
	store    storage.SweeperStore
	notifier notifier.Notifier
	clock    clock.Clock
}

// New creates a sweeper. The notifier may be nil, in which case release
// notifications are only queued for the poll endpoint.
func New(store storage.SweeperStore, n notifier.Notifier, clk clock.Clock) *Sweeper {
	return &Sweeper{store: store, notifier: n, clock: clk}
}

// Sweep runs one pass. Rejections are expected under concurrency (another
// sweep or a client action got there first) and are skipped, not failed.
// Storage errors on individual listings are logged and counted so one bad
// item cannot stall the rest of the pass.
func (s *Sweeper) Sweep(ctx context.Context) (*Report, error) {
	now := s.clock.Now()
	report := &Report{}

	expired, err := s.store.ListExpiredListings(ctx, now)
	if err != nil {
		return nil, err
	}
	for _, l := range expired {
		switch s.apply(ctx, l.Id, ledger.Event{Kind: ledger.Expire, Actor: sweepActor}) {
		case outcomeApplied:
			report.Expired++
		case outcomeSkipped:
			report.Skipped++
		case outcomeFailed:
			report.Failed++
		}
	}

	timedOut, err := s.store.ListTimedOutReservations(ctx, now)
	if err != nil {
		return nil, err
	}
	for _, l := range timedOut {
		buyer := ""
		if l.Reservation != nil {
			buyer = l.Reservation.Buyer
		}
		switch s.apply(ctx, l.Id, ledger.Event{Kind: ledger.Release, Actor: sweepActor}) {
		case outcomeApplied:
			report.Released++
			s.notifyRelease(ctx, l, buyer)
		case outcomeSkipped:
			report.Skipped++
		case outcomeFailed:
			report.Failed++
		}
	}

	slog.Info("sweep complete",
		"expired", report.Expired,
		"released", report.Released,
		"skipped", report.Skipped,
		"failed", report.Failed,
	)
	return report, nil
}

// Run sweeps on a fixed interval until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				slog.Error("sweep pass failed", "error", err)
			}
		}
	}
}

type outcome int

const (
	outcomeApplied outcome = iota
	outcomeSkipped
	outcomeFailed
)

func (s *Sweeper) apply(ctx context.Context, id string, ev ledger.Event) outcome {
	_, err := s.store.ApplyTransition(ctx, id, ev)
	if err == nil {
		return outcomeApplied
	}
	var rej *ledger.RejectionError
	if errors.As(err, &rej) || errors.Is(err, storage.ErrListingNotFound) {
		return outcomeSkipped
	}
	slog.Error("sweep transition failed", "listing_id", id, "event", ev.Kind, "error", err)
	return outcomeFailed
}

func (s *Sweeper) notifyRelease(ctx context.Context, l models.Listing, buyer string) {
	if buyer == "" {
		return
	}
	n := &models.Notification{
		Player:    buyer,
		Type:      models.NotifReservationReleased,
		ListingId: l.Id,
		Data: map[string]string{
			"item_name": l.Item.ItemName,
			"reason":    "Your reservation deadline passed and the listing returned to the market.",
		},
	}
	if err := s.store.QueueNotification(ctx, n); err != nil {
		slog.Error("failed to queue release notification", "player", buyer, "listing_id", l.Id, "error", err)
		return
	}
	if s.notifier != nil {
		if err := s.notifier.PublishNotification(ctx, n); err != nil {
			slog.Error("failed to publish release notification", "player", buyer, "listing_id", l.Id, "error", err)
		}
	}
}
