package dynamodb

import (
	"time"

	"github.com/krautchanpro/TamrielAuctionHouse/pkg/clock"
	"github.com/krautchanpro/TamrielAuctionHouse/pkg/storage"
)

// Tables groups the DynamoDB table names the store operates on.
type Tables struct {
	Listings      string
	Players       string
	Notifications string
	Sales         string
	Actions       string
	Counters      string
	Cursors       string
}

// Store implements the Storage interface using AWS DynamoDB.
// Per-listing serialization comes from conditional writes on the listing's
// version attribute; there are no server-side locks.
type Store struct {
	Client DynamoDBAPI
	Clock  clock.Clock
	Tables Tables

	// ReservationTTL is how long a purchase reservation holds the listing.
	ReservationTTL time.Duration
	// RetentionWindow bounds how long terminal listings, sales, and
	// notifications stay queryable before DynamoDB TTL purges them.
	RetentionWindow time.Duration
}

// New creates a new Store.
func New(client DynamoDBAPI, clk clock.Clock, tables Tables, reservationTTL, retentionWindow time.Duration) *Store {
	return &Store{
		Client:          client,
		Clock:           clk,
		Tables:          tables,
		ReservationTTL:  reservationTTL,
		RetentionWindow: retentionWindow,
	}
}

// Make sure we conform to the interface
var _ storage.Storage = (*Store)(nil)

func (s *Store) retentionDeadline(now time.Time) int64 {
	return now.Add(s.RetentionWindow).Unix()
}
