package storage

import (
	"context"

	"github.com/krautchanpro/TamrielAuctionHouse/pkg/models"
)

// NotificationWriter queues out-of-band signals for a player.
type NotificationWriter interface {
	// QueueNotification stores a notification for the player's next poll.
	QueueNotification(ctx context.Context, n *models.Notification) error
}

// NotificationStore defines the interface for the notification queue the
// desktop client polls.
type NotificationStore interface {
	NotificationWriter

	// DrainNotifications returns and deletes every pending notification for
	// the player, oldest first.
	DrainNotifications(ctx context.Context, player string) ([]models.Notification, error)
}
