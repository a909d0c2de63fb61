package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/krautchanpro/TamrielAuctionHouse/pkg/api"
	"github.com/krautchanpro/TamrielAuctionHouse/pkg/clock"
	"github.com/krautchanpro/TamrielAuctionHouse/pkg/ledger"
	"github.com/krautchanpro/TamrielAuctionHouse/pkg/mapping"
	"github.com/krautchanpro/TamrielAuctionHouse/pkg/middleware"
	"github.com/krautchanpro/TamrielAuctionHouse/pkg/models"
	"github.com/krautchanpro/TamrielAuctionHouse/pkg/storage"
	auctionsync "github.com/krautchanpro/TamrielAuctionHouse/pkg/sync"
)

const (
	defaultSalesLimit = 50
	maxSalesLimit     = 200
)

// ApiHandler implements the server interface.
// It holds our application's dependencies, including the storage layer.
type ApiHandler struct {
	Store  storage.ApiStore
	Engine *auctionsync.Engine
	Clock  clock.Clock
}

// NewApiHandler creates a new ApiHandler with its dependencies.
func NewApiHandler(store storage.ApiStore, engine *auctionsync.Engine, clk clock.Clock) *ApiHandler {
	return &ApiHandler{Store: store, Engine: engine, Clock: clk}
}

// Make sure we conform to the interface
var _ api.ServerInterface = (*ApiHandler)(nil)

// GetHealth reports liveness.
func (h *ApiHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, api.HealthResponse{Status: "healthy"})
}

// RegisterPlayer registers an account name on a megaserver and mints an API
// key. Presenting the current key in X-API-Key rotates it; registering a
// taken name without it is refused.
func (h *ApiHandler) RegisterPlayer(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if req.PlayerName == "" {
		http.Error(w, "player_name is required", http.StatusBadRequest)
		return
	}
	region := models.Region(req.Megaserver)
	if !region.Valid() {
		http.Error(w, fmt.Sprintf("unknown megaserver %q", req.Megaserver), http.StatusBadRequest)
		return
	}

	player, err := h.Store.RegisterPlayer(r.Context(), req.PlayerName, region, r.Header.Get(middleware.ApiKeyHeader))
	if err != nil {
		if errors.Is(err, storage.ErrPlayerExists) {
			http.Error(w, "Player name is already registered", http.StatusConflict)
		} else {
			slog.Error("failed to register player", "player", req.PlayerName, "error", err)
			http.Error(w, "Failed to register player", http.StatusInternalServerError)
		}
		return
	}

	respond(w, http.StatusCreated, api.RegisterResponse{
		PlayerName: player.Name,
		Megaserver: string(player.Region),
		ApiKey:     player.ApiKey,
	})
}

// Sync applies a batch of client actions and returns the delta since the
// presented cursor.
func (h *ApiHandler) Sync(w http.ResponseWriter, r *http.Request) {
	player, ok := middleware.PlayerFrom(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req api.SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	now := h.Clock.Now()
	domainReq := auctionsync.Request{
		Player: player.Name,
		Region: models.Region(req.Region),
		Cursor: req.Cursor,
	}
	for _, a := range req.Actions {
		action := auctionsync.Action{
			Id:          a.ActionId,
			Kind:        auctionsync.Kind(a.Kind),
			ListingId:   a.ListingId,
			SeenVersion: a.SeenVersion,
		}
		if a.Listing != nil {
			action.NewListing = mapping.ToDomainNewListing(player.Name, domainReq.Region, a.Listing)
		}
		if a.Claim != nil {
			claim := mapping.ToDomainClaim(a.Claim, now)
			action.Claim = &claim
		}
		domainReq.Actions = append(domainReq.Actions, action)
	}

	resp, err := h.Engine.Sync(r.Context(), domainReq)
	if err != nil {
		var ve *ledger.ValidationError
		if errors.As(err, &ve) {
			http.Error(w, ve.Error(), http.StatusBadRequest)
		} else {
			slog.Error("sync failed", "player", player.Name, "error", err)
			http.Error(w, "Failed to sync", http.StatusInternalServerError)
		}
		return
	}

	apiResp := api.SyncResponse{
		Results:    make([]api.ActionResult, 0, len(resp.Results)),
		Changes:    make([]api.Listing, 0, len(resp.Changes)),
		RemovedIds: resp.RemovedIds,
		Cursor:     resp.Cursor,
		ServerTime: resp.ServerTime,
		IsFullSync: resp.IsFullSync,
	}
	if apiResp.RemovedIds == nil {
		apiResp.RemovedIds = []string{}
	}
	for _, res := range resp.Results {
		status := "rejected"
		if res.Accepted {
			status = "accepted"
		}
		apiResp.Results = append(apiResp.Results, api.ActionResult{
			ActionId:  res.ActionId,
			ListingId: res.ListingId,
			Status:    status,
			Reason:    res.Reason,
		})
	}
	for i := range resp.Changes {
		apiResp.Changes = append(apiResp.Changes, mapping.ToApiListing(&resp.Changes[i], now))
	}

	respond(w, http.StatusOK, apiResp)
}

// VerifyClaim checks a COD confirmation claim against the ledger without
// applying any transition. The desktop client calls this before telling the
// buyer it is safe to accept the in-game COD mail.
func (h *ApiHandler) VerifyClaim(w http.ResponseWriter, r *http.Request) {
	var claim api.ConfirmationClaim
	if err := json.NewDecoder(r.Body).Decode(&claim); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if claim.ListingId == "" {
		http.Error(w, "listing_id is required", http.StatusBadRequest)
		return
	}

	listing, err := h.Store.GetListing(r.Context(), claim.ListingId)
	if err != nil {
		if errors.Is(err, storage.ErrListingNotFound) {
			http.Error(w, "Listing not found", http.StatusNotFound)
		} else {
			slog.Error("failed to load listing for claim", "listing_id", claim.ListingId, "error", err)
			http.Error(w, "Failed to verify claim", http.StatusInternalServerError)
		}
		return
	}

	domainClaim := mapping.ToDomainClaim(&claim, h.Clock.Now())
	if err := ledger.VerifyClaim(*listing, domainClaim); err != nil {
		var mm *ledger.MismatchError
		if errors.As(err, &mm) {
			respond(w, http.StatusUnprocessableEntity, api.VerifyClaimResponse{
				Status:   "mismatch",
				Field:    mm.Field,
				Expected: mm.Expected,
				Actual:   mm.Actual,
			})
			return
		}
		slog.Error("claim verification failed", "listing_id", claim.ListingId, "error", err)
		http.Error(w, "Failed to verify claim", http.StatusInternalServerError)
		return
	}

	respond(w, http.StatusOK, api.VerifyClaimResponse{Status: "verified"})
}

// GetNotifications drains pending notifications for the authenticated player.
func (h *ApiHandler) GetNotifications(w http.ResponseWriter, r *http.Request, playerName string) {
	player, ok := middleware.PlayerFrom(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}
	if player.Name != playerName {
		http.Error(w, "cannot read another player's notifications", http.StatusForbidden)
		return
	}

	notifications, err := h.Store.DrainNotifications(r.Context(), playerName)
	if err != nil {
		slog.Error("failed to drain notifications", "player", playerName, "error", err)
		http.Error(w, "Failed to retrieve notifications", http.StatusInternalServerError)
		return
	}

	out := make([]api.Notification, 0, len(notifications))
	for i := range notifications {
		out = append(out, mapping.ToApiNotification(&notifications[i]))
	}
	respond(w, http.StatusOK, out)
}

// GetSalesHistory lists recent completed sales for a seller, newest first.
func (h *ApiHandler) GetSalesHistory(w http.ResponseWriter, r *http.Request, playerName string, params api.GetSalesHistoryParams) {
	player, ok := middleware.PlayerFrom(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}
	if player.Name != playerName {
		http.Error(w, "cannot read another seller's sales history", http.StatusForbidden)
		return
	}

	limit := defaultSalesLimit
	if params.Limit != nil {
		limit = *params.Limit
	}
	if limit <= 0 || limit > maxSalesLimit {
		http.Error(w, fmt.Sprintf("limit must be between 1 and %d", maxSalesLimit), http.StatusBadRequest)
		return
	}

	sales, err := h.Store.ListSalesBySeller(r.Context(), playerName, int32(limit))
	if err != nil {
		slog.Error("failed to list sales", "player", playerName, "error", err)
		http.Error(w, "Failed to retrieve sales history", http.StatusInternalServerError)
		return
	}

	out := make([]api.SaleRecord, 0, len(sales))
	for i := range sales {
		out = append(out, mapping.ToApiSaleRecord(&sales[i]))
	}
	respond(w, http.StatusOK, out)
}

// GetStats reports per-region market counts.
func (h *ApiHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	regions := []models.Region{models.RegionNA, models.RegionEU, models.RegionPTS}
	resp := api.StatsResponse{Regions: make(map[string]api.RegionStats, len(regions))}

	for _, region := range regions {
		listings, err := h.Store.CountActiveListings(r.Context(), region)
		if err != nil {
			slog.Error("failed to count listings", "region", region, "error", err)
			http.Error(w, "Failed to compute stats", http.StatusInternalServerError)
			return
		}
		players, err := h.Store.CountPlayers(r.Context(), region)
		if err != nil {
			slog.Error("failed to count players", "region", region, "error", err)
			http.Error(w, "Failed to compute stats", http.StatusInternalServerError)
			return
		}
		resp.Regions[string(region)] = api.RegionStats{
			ActiveListings: listings,
			Players:        players,
		}
	}

	respond(w, http.StatusOK, resp)
}

func respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}
