package storage

import (
	"context"

	"github.com/krautchanpro/TamrielAuctionHouse/pkg/models"
)

// CursorStore keeps the last cursor each client acknowledged per region.
// Delta computation never reads it; the authoritative cursor is the one the
// client presents. The saved items are read out-of-band by operators.
type CursorStore interface {
	// SaveCursor records the cursor a client acknowledged. Saves are
	// monotonic: an older cursor never overwrites a newer one.
	SaveCursor(ctx context.Context, cursor *models.SyncCursor) error
}
