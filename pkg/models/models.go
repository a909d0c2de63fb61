package models

import (
	"time"
)

// ListingState defines the possible states of a listing.
type ListingState string

const (
	ACTIVE    ListingState = "ACTIVE"
	RESERVED  ListingState = "RESERVED"
	COD_SENT  ListingState = "COD_SENT"
	COMPLETED ListingState = "COMPLETED"
	CANCELLED ListingState = "CANCELLED"
	EXPIRED   ListingState = "EXPIRED"
)

// Terminal reports whether a listing in this state can never change again.
func (s ListingState) Terminal() bool {
	return s == COMPLETED || s == CANCELLED || s == EXPIRED
}

// Region identifies an isolated megaserver market. Listings never cross regions.
type Region string

const (
	RegionNA  Region = "NA"
	RegionEU  Region = "EU"
	RegionPTS Region = "PTS"
)

// Valid reports whether r is a known megaserver.
func (r Region) Valid() bool {
	return r == RegionNA || r == RegionEU || r == RegionPTS
}

// Item is the opaque item payload attached to a listing. The server never
// interprets it beyond checking that a name and quantity are present.
type Item struct {
	ItemLink       string `json:"item_link" dynamodbav:"item_link"`
	ItemName       string `json:"item_name" dynamodbav:"item_name"`
	ItemID         string `json:"item_id" dynamodbav:"item_id"`
	Icon           string `json:"icon,omitempty" dynamodbav:"icon,omitempty"`
	Quality        int    `json:"quality" dynamodbav:"quality"`
	Level          int    `json:"level" dynamodbav:"level"`
	ChampionPoints int    `json:"champion_points" dynamodbav:"champion_points"`
	Quantity       int    `json:"quantity" dynamodbav:"quantity"`
}

// Reservation is a time-bounded hold on a listing granted to one buyer.
// Deadline is stored as epoch seconds so sweep queries compare it numerically.
type Reservation struct {
	Buyer      string    `dynamodbav:"buyer"`
	ReservedAt time.Time `dynamodbav:"reserved_at"`
	Deadline   time.Time `dynamodbav:"deadline,unixtime"`
}

// Listing represents one item for sale in one region.
// It includes dynamodbav tags for marshalling.
type Listing struct {
	Id          string       `dynamodbav:"id"`
	Seller      string       `dynamodbav:"seller"`
	Item        Item         `dynamodbav:"item"`
	Price       int64        `dynamodbav:"price"`
	Region      Region       `dynamodbav:"region"`
	State       ListingState `dynamodbav:"state"`
	Reservation *Reservation `dynamodbav:"reservation,omitempty"`
	// Version is strictly increasing per region and drives delta sync.
	Version   int64     `dynamodbav:"version"`
	CreatedAt time.Time `dynamodbav:"created_at"`
	UpdatedAt time.Time `dynamodbav:"updated_at"`
	Duration  int64     `dynamodbav:"duration_seconds"`
	// ExpiresAt is stored as epoch seconds. Sweep queries filter on it with a
	// numeric comparison; RFC3339 strings with mixed sub-second precision do
	// not order lexicographically.
	ExpiresAt time.Time `dynamodbav:"expires_at,unixtime"`
	TTL       int64     `dynamodbav:"ttl,omitempty"`
}

// ConfirmationClaim is a client-reported account of an out-of-band COD
// payment. It is untrusted until checked against the listing.
type ConfirmationClaim struct {
	ListingId string    `dynamodbav:"listing_id"`
	Amount    int64     `dynamodbav:"amount"`
	Seller    string    `dynamodbav:"seller"`
	Buyer     string    `dynamodbav:"buyer"`
	ClaimedAt time.Time `dynamodbav:"claimed_at"`
}

// Player represents a registered account on one megaserver.
type Player struct {
	Name       string    `json:"player_name" dynamodbav:"player_name"`
	Region     Region    `json:"megaserver" dynamodbav:"megaserver"`
	ApiKey     string    `json:"-" dynamodbav:"api_key"`
	CreatedAt  time.Time `json:"created_at" dynamodbav:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at" dynamodbav:"last_seen_at"`
}

// SyncCursor records the last version a client acknowledged for a region.
// It is informational: delta computation always uses the cursor the client
// presents, never this record.
type SyncCursor struct {
	Player  string    `dynamodbav:"player_name"`
	Region  Region    `dynamodbav:"region"`
	Version int64     `dynamodbav:"version"`
	SyncAt  time.Time `dynamodbav:"sync_at"`
}

// NotificationType distinguishes the events the desktop client polls for.
type NotificationType string

const (
	NotifItemSold            NotificationType = "item_sold"
	NotifCodReceived         NotificationType = "purchase_cod_received"
	NotifPurchaseFailed      NotificationType = "purchase_failed"
	NotifReservationReleased NotificationType = "reservation_released"
	NotifListingCancelled    NotificationType = "listing_cancelled"
)

// Notification is a queued out-of-band signal for one player, drained by the
// desktop client's poll.
type Notification struct {
	Id        string            `dynamodbav:"id"`
	Player    string            `dynamodbav:"player_name"`
	Type      NotificationType  `dynamodbav:"type"`
	ListingId string            `dynamodbav:"listing_id,omitempty"`
	Data      map[string]string `dynamodbav:"data,omitempty"`
	CreatedAt time.Time         `dynamodbav:"created_at"`
	TTL       int64             `dynamodbav:"ttl,omitempty"`
}

// SaleRecord is the completed-sale history entry retained for the seller.
type SaleRecord struct {
	Id        string    `dynamodbav:"id"`
	ListingId string    `dynamodbav:"listing_id"`
	Seller    string    `dynamodbav:"seller"`
	Buyer     string    `dynamodbav:"buyer"`
	ItemName  string    `dynamodbav:"item_name"`
	Quantity  int       `dynamodbav:"quantity"`
	Price     int64     `dynamodbav:"price"`
	Region    Region    `dynamodbav:"region"`
	SoldAt    time.Time `dynamodbav:"sold_at"`
	TTL       int64     `dynamodbav:"ttl,omitempty"`
}

// ActionRecord stores the outcome of one client action, keyed by the
// client-generated action id, so a retried batch cannot double-apply.
type ActionRecord struct {
	ActionId  string    `dynamodbav:"action_id"`
	Player    string    `dynamodbav:"player_name"`
	ListingId string    `dynamodbav:"listing_id,omitempty"`
	Status    string    `dynamodbav:"status"`
	Reason    string    `dynamodbav:"reason,omitempty"`
	AppliedAt time.Time `dynamodbav:"applied_at"`
	TTL       int64     `dynamodbav:"ttl,omitempty"`
}
