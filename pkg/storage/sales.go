package storage

import (
	"context"

	"github.com/krautchanpro/TamrielAuctionHouse/pkg/models"
)

// SalesStore defines the interface for the completed-sale history. Sale
// records are written only inside the completion transaction; there is no
// standalone write path.
type SalesStore interface {
	// ListSalesBySeller retrieves the most recent sales for a seller.
	ListSalesBySeller(ctx context.Context, seller string, limit int32) ([]models.SaleRecord, error)
}
