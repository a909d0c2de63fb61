package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/krautchanpro/TamrielAuctionHouse/pkg/models"
	"github.com/krautchanpro/TamrielAuctionHouse/pkg/storage"
)

// ApiKeyHeader carries the key minted at registration.
const ApiKeyHeader = "X-API-Key"

type contextKey int

const (
	playerKey contextKey = iota
	holderKey
)

// playerHolder lets the auth middleware report the resolved player back to
// the request logger, which wraps it from the outside.
type playerHolder struct {
	name string
}

func withPlayerHolder(r *http.Request) (*http.Request, *playerHolder) {
	holder := &playerHolder{}
	return r.WithContext(context.WithValue(r.Context(), holderKey, holder)), holder
}

// PlayerFrom returns the authenticated player stored on the request context.
func PlayerFrom(ctx context.Context) (*models.Player, bool) {
	player, ok := ctx.Value(playerKey).(*models.Player)
	return player, ok
}

// WithPlayer returns a context carrying an authenticated player. Handlers
// normally receive this from RequireApiKey; tests use it directly.
func WithPlayer(ctx context.Context, player *models.Player) context.Context {
	return context.WithValue(ctx, playerKey, player)
}

// RequireApiKey authenticates requests by the X-API-Key header and stores
// the resolved player on the request context. An unknown or missing key is
// answered with 401 without reaching the handler.
func RequireApiKey(store storage.PlayerStore) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			apiKey := r.Header.Get(ApiKeyHeader)
			if apiKey == "" {
				unauthorized(w, "missing API key")
				return
			}

			player, err := store.GetPlayerByApiKey(r.Context(), apiKey)
			if errors.Is(err, storage.ErrPlayerNotFound) {
				unauthorized(w, "invalid API key")
				return
			}
			if err != nil {
				slog.Error("failed to resolve API key", "error", err)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]string{"error": "internal server error"})
				return
			}

			if err := store.TouchPlayer(r.Context(), player.Name, time.Now().UTC()); err != nil {
				slog.Warn("failed to touch player", "player", player.Name, "error", err)
			}

			if holder, ok := r.Context().Value(holderKey).(*playerHolder); ok {
				holder.name = player.Name
			}
			next.ServeHTTP(w, r.WithContext(WithPlayer(r.Context(), player)))
		}
		return http.HandlerFunc(fn)
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
