package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// GetHealth reports server liveness.
	// (GET /api/v1/health)
	GetHealth(w http.ResponseWriter, r *http.Request)

	// RegisterPlayer registers a player and mints an API key.
	// (POST /api/v1/auth/register)
	RegisterPlayer(w http.ResponseWriter, r *http.Request)

	// Sync applies a batch of client actions and returns the delta since the
	// presented cursor.
	// (POST /api/v1/sync)
	Sync(w http.ResponseWriter, r *http.Request)

	// VerifyClaim checks a COD confirmation claim against the ledger.
	// (POST /api/v1/claims/verify)
	VerifyClaim(w http.ResponseWriter, r *http.Request)

	// GetNotifications drains pending notifications for a player.
	// (GET /api/v1/notifications/{playerName})
	GetNotifications(w http.ResponseWriter, r *http.Request, playerName string)

	// GetSalesHistory lists recent completed sales for a seller.
	// (GET /api/v1/sales/{playerName})
	GetSalesHistory(w http.ResponseWriter, r *http.Request, playerName string, params GetSalesHistoryParams)

	// GetStats reports per-region market counts.
	// (GET /api/v1/stats)
	GetStats(w http.ResponseWriter, r *http.Request)
}

// ServerInterfaceWrapper converts contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

// GetNotifications operation middleware
func (siw *ServerInterfaceWrapper) GetNotifications(w http.ResponseWriter, r *http.Request) {
	playerName := chi.URLParam(r, "playerName")
	if playerName == "" {
		http.Error(w, "missing playerName path parameter", http.StatusBadRequest)
		return
	}
	siw.Handler.GetNotifications(w, r, playerName)
}

// GetSalesHistory operation middleware
func (siw *ServerInterfaceWrapper) GetSalesHistory(w http.ResponseWriter, r *http.Request) {
	playerName := chi.URLParam(r, "playerName")
	if playerName == "" {
		http.Error(w, "missing playerName path parameter", http.StatusBadRequest)
		return
	}

	var params GetSalesHistoryParams
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &params.Limit); err != nil {
		http.Error(w, fmt.Sprintf("Invalid format for parameter limit: %v", err), http.StatusBadRequest)
		return
	}

	siw.Handler.GetSalesHistory(w, r, playerName, params)
}

// HandlerFromMux attaches all API handlers to the given chi router.
func HandlerFromMux(si ServerInterface, r chi.Router) http.Handler {
	wrapper := &ServerInterfaceWrapper{Handler: si}

	r.Get("/api/v1/health", si.GetHealth)
	r.Post("/api/v1/auth/register", si.RegisterPlayer)
	r.Post("/api/v1/sync", si.Sync)
	r.Post("/api/v1/claims/verify", si.VerifyClaim)
	r.Get("/api/v1/notifications/{playerName}", wrapper.GetNotifications)
	r.Get("/api/v1/sales/{playerName}", wrapper.GetSalesHistory)
	r.Get("/api/v1/stats", si.GetStats)

	return r
}
