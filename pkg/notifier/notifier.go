package notifier

import (
	"context"

	"github.com/krautchanpro/TamrielAuctionHouse/pkg/models"
)

// Notifier defines the interface for publishing notification events to
// out-of-band consumers (the desktop alerting pipeline). The poll queue the
// client drains is fed separately by the storage layer; this fan-out is
// best-effort on top of it.
type Notifier interface {
	// PublishNotification emits a notification event.
	PublishNotification(ctx context.Context, n *models.Notification) error
}
