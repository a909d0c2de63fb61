package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// App holds the runtime configuration for every binary in this module.
type App struct {
	// DynamoDB tables
	ListingsTable      string `envconfig:"DYNAMODB_LISTINGS_TABLE_NAME" required:"true"`
	PlayersTable       string `envconfig:"DYNAMODB_PLAYERS_TABLE_NAME" required:"true"`
	NotificationsTable string `envconfig:"DYNAMODB_NOTIFICATIONS_TABLE_NAME" required:"true"`
	SalesTable         string `envconfig:"DYNAMODB_SALES_TABLE_NAME" required:"true"`
	ActionsTable       string `envconfig:"DYNAMODB_ACTIONS_TABLE_NAME" required:"true"`
	CountersTable      string `envconfig:"DYNAMODB_COUNTERS_TABLE_NAME" required:"true"`
	CursorsTable       string `envconfig:"DYNAMODB_CURSORS_TABLE_NAME" required:"true"`

	// Notification fan-out
	SQSQueueURL string `envconfig:"SQS_QUEUE_URL" required:"true"`

	// Network
	HTTPPort string `envconfig:"HTTP_PORT" default:"8080"`

	// Timing. Reservation TTL and sweep cadence are deployment choices,
	// not user-tunable per request.
	SweepInterval  time.Duration `envconfig:"SWEEP_INTERVAL" default:"1m"`
	ReservationTTL time.Duration `envconfig:"RESERVATION_TTL" default:"24h"`
	// Retention of terminal listings, sale records, and notifications.
	RetentionWindow time.Duration `envconfig:"RETENTION_WINDOW" default:"720h"`
}

// Load reads the configuration from the environment.
func Load() (App, error) {
	var c App
	err := envconfig.Process("", &c)
	return c, err
}
