// Package api defines the wire types and server interface for the Tamriel
// Auction House HTTP API consumed by the desktop client.
package api

import "time"

// RegisterRequest is the body of POST /api/v1/auth/register.
type RegisterRequest struct {
	PlayerName string `json:"player_name"`
	Megaserver string `json:"megaserver"`
}

// RegisterResponse carries the minted API key back to the client.
type RegisterResponse struct {
	PlayerName string `json:"player_name"`
	Megaserver string `json:"megaserver"`
	ApiKey     string `json:"api_key"`
}

// ItemPayload is the opaque item descriptor attached to a listing.
type ItemPayload struct {
	ItemLink       string `json:"item_link"`
	ItemName       string `json:"item_name"`
	ItemID         string `json:"item_id"`
	Icon           string `json:"icon,omitempty"`
	Quality        int    `json:"quality"`
	Level          int    `json:"level"`
	ChampionPoints int    `json:"champion_points"`
	Quantity       int    `json:"quantity"`
}

// NewListing is the payload of a "list" sync action.
type NewListing struct {
	Item            ItemPayload `json:"item"`
	Price           int64       `json:"price"`
	DurationSeconds int64       `json:"duration_seconds"`
}

// Listing is the full snapshot of a listing returned by delta sync.
type Listing struct {
	Id            string      `json:"id"`
	Seller        string      `json:"seller"`
	Item          ItemPayload `json:"item"`
	Price         int64       `json:"price"`
	Region        string      `json:"region"`
	State         string      `json:"state"`
	Buyer         string      `json:"buyer,omitempty"`
	Version       int64       `json:"version"`
	CreatedAt     time.Time   `json:"created_at"`
	ExpiresAt     time.Time   `json:"expires_at"`
	TimeRemaining int64       `json:"time_remaining"`
}

// ActionKind enumerates the client actions accepted by sync.
type ActionKind string

const (
	ActionList           ActionKind = "list"
	ActionCancel         ActionKind = "cancel"
	ActionPurchase       ActionKind = "purchase"
	ActionCancelPurchase ActionKind = "cancel_purchase"
	ActionCodSent        ActionKind = "cod_sent"
	ActionCodAccepted    ActionKind = "cod_accepted"
)

// SyncAction is one locally-queued client action submitted in a sync batch.
// ActionId is client-generated and deduplicates retried batches.
type SyncAction struct {
	ActionId    string             `json:"action_id"`
	Kind        ActionKind         `json:"kind"`
	ListingId   string             `json:"listing_id,omitempty"`
	SeenVersion int64              `json:"seen_version,omitempty"`
	Listing     *NewListing        `json:"listing,omitempty"`
	Claim       *ConfirmationClaim `json:"claim,omitempty"`
}

// SyncRequest is the body of POST /api/v1/sync.
type SyncRequest struct {
	Region  string       `json:"region"`
	Cursor  int64        `json:"cursor"`
	Actions []SyncAction `json:"actions"`
}

// ActionResult reports the outcome of one submitted action.
type ActionResult struct {
	ActionId  string `json:"action_id"`
	ListingId string `json:"listing_id,omitempty"`
	Status    string `json:"status"` // accepted | rejected
	Reason    string `json:"reason,omitempty"`
}

// SyncResponse is the delta the server computed for the presented cursor.
type SyncResponse struct {
	Results    []ActionResult `json:"results"`
	Changes    []Listing      `json:"changes"`
	RemovedIds []string       `json:"removed_ids"`
	Cursor     int64          `json:"cursor"`
	ServerTime time.Time      `json:"server_time"`
	IsFullSync bool           `json:"is_full_sync"`
}

// ConfirmationClaim is the client-reported COD confirmation.
type ConfirmationClaim struct {
	ListingId string `json:"listing_id"`
	Amount    int64  `json:"amount"`
	Seller    string `json:"seller"`
	Buyer     string `json:"buyer"`
}

// VerifyClaimResponse reports whether a claim matches the ledger's
// expectation. Expected and Actual are only set on a mismatch.
type VerifyClaimResponse struct {
	Status   string `json:"status"` // verified | mismatch
	Field    string `json:"field,omitempty"`
	Expected string `json:"expected,omitempty"`
	Actual   string `json:"actual,omitempty"`
}

// Notification is one queued out-of-band signal for a player.
type Notification struct {
	Type      string            `json:"type"`
	ListingId string            `json:"listing_id,omitempty"`
	Data      map[string]string `json:"data,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// SaleRecord is one completed-sale history entry.
type SaleRecord struct {
	ListingId string    `json:"listing_id"`
	Seller    string    `json:"seller"`
	Buyer     string    `json:"buyer"`
	ItemName  string    `json:"item_name"`
	Quantity  int       `json:"quantity"`
	Price     int64     `json:"price"`
	SoldAt    time.Time `json:"sold_at"`
}

// RegionStats is the per-region slice of the stats endpoint.
type RegionStats struct {
	ActiveListings int64 `json:"active_listings"`
	Players        int64 `json:"players"`
}

// StatsResponse is the body of GET /api/v1/stats.
type StatsResponse struct {
	Regions map[string]RegionStats `json:"regions"`
}

// HealthResponse is the body of GET /api/v1/health.
type HealthResponse struct {
	Status string `json:"status"`
}

// GetSalesHistoryParams holds the query parameters of GET /api/v1/sales/{playerName}.
type GetSalesHistoryParams struct {
	Limit *int `json:"limit,omitempty"`
}
