package storage

import (
	"context"
	"time"

	"github.com/krautchanpro/TamrielAuctionHouse/pkg/models"
)

// PlayerStore defines the interface for the player registry.
type PlayerStore interface {
	// RegisterPlayer creates a player and mints an API key. Registering an
	// existing name rotates the key only when oldApiKey matches the stored
	// one; otherwise ErrPlayerExists is returned.
	RegisterPlayer(ctx context.Context, name string, region models.Region, oldApiKey string) (*models.Player, error)

	// GetPlayerByApiKey resolves an API key to its player.
	GetPlayerByApiKey(ctx context.Context, apiKey string) (*models.Player, error)

	// GetPlayer retrieves a player by account name.
	GetPlayer(ctx context.Context, name string) (*models.Player, error)

	// TouchPlayer records that the player was seen at the given instant.
	TouchPlayer(ctx context.Context, name string, seenAt time.Time) error
}
