// Package mapping converts between the API wire types and the internal
// domain models.
package mapping

import (
	"time"

	"github.com/krautchanpro/TamrielAuctionHouse/pkg/api"
	"github.com/krautchanpro/TamrielAuctionHouse/pkg/models"
)

// ToDomainItem converts an API item payload to the domain model.
func ToDomainItem(item api.ItemPayload) models.Item {
	return models.Item{
		ItemLink:       item.ItemLink,
		ItemName:       item.ItemName,
		ItemID:         item.ItemID,
		Icon:           item.Icon,
		Quality:        item.Quality,
		Level:          item.Level,
		ChampionPoints: item.ChampionPoints,
		Quantity:       item.Quantity,
	}
}

// ToApiItem converts a domain item to the API payload.
func ToApiItem(item models.Item) api.ItemPayload {
	return api.ItemPayload{
		ItemLink:       item.ItemLink,
		ItemName:       item.ItemName,
		ItemID:         item.ItemID,
		Icon:           item.Icon,
		Quality:        item.Quality,
		Level:          item.Level,
		ChampionPoints: item.ChampionPoints,
		Quantity:       item.Quantity,
	}
}

// ToDomainNewListing builds the domain listing for a "list" action. Id,
// version, and timestamps are assigned by the ledger.
func ToDomainNewListing(seller string, region models.Region, nl *api.NewListing) *models.Listing {
	return &models.Listing{
		Seller:   seller,
		Region:   region,
		Item:     ToDomainItem(nl.Item),
		Price:    nl.Price,
		Duration: nl.DurationSeconds,
	}
}

// ToApiListing converts a domain listing to its sync snapshot. TimeRemaining
// is relative to now so clients with skewed clocks display sane countdowns.
func ToApiListing(l *models.Listing, now time.Time) api.Listing {
	remaining := int64(l.ExpiresAt.Sub(now).Seconds())
	if remaining < 0 || l.State != models.ACTIVE {
		remaining = 0
	}
	out := api.Listing{
		Id:            l.Id,
		Seller:        l.Seller,
		Item:          ToApiItem(l.Item),
		Price:         l.Price,
		Region:        string(l.Region),
		State:         string(l.State),
		Version:       l.Version,
		CreatedAt:     l.CreatedAt,
		ExpiresAt:     l.ExpiresAt,
		TimeRemaining: remaining,
	}
	if l.Reservation != nil {
		out.Buyer = l.Reservation.Buyer
	}
	return out
}

// ToDomainClaim converts an API confirmation claim to the domain model.
func ToDomainClaim(c *api.ConfirmationClaim, now time.Time) models.ConfirmationClaim {
	return models.ConfirmationClaim{
		ListingId: c.ListingId,
		Amount:    c.Amount,
		Seller:    c.Seller,
		Buyer:     c.Buyer,
		ClaimedAt: now,
	}
}

// ToApiNotification converts a domain notification to the poll response shape.
func ToApiNotification(n *models.Notification) api.Notification {
	return api.Notification{
		Type:      string(n.Type),
		ListingId: n.ListingId,
		Data:      n.Data,
		CreatedAt: n.CreatedAt,
	}
}

// ToApiSaleRecord converts a domain sale record to the history response shape.
func ToApiSaleRecord(s *models.SaleRecord) api.SaleRecord {
	return api.SaleRecord{
		ListingId: s.ListingId,
		Seller:    s.Seller,
		Buyer:     s.Buyer,
		ItemName:  s.ItemName,
		Quantity:  s.Quantity,
		Price:     s.Price,
		SoldAt:    s.SoldAt,
	}
}
