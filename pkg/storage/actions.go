package storage

import (
	"context"

	"github.com/krautchanpro/TamrielAuctionHouse/pkg/models"
)

// ActionStore records the outcome of client actions keyed by the
// client-generated action id, so a retried sync batch returns the original
// outcome instead of applying the action again.
type ActionStore interface {
	// GetActionRecord retrieves a previously recorded outcome, or
	// ErrActionNotFound.
	GetActionRecord(ctx context.Context, actionId string) (*models.ActionRecord, error)

	// RecordActionResult stores the outcome of an applied action.
	RecordActionResult(ctx context.Context, rec *models.ActionRecord) error
}
