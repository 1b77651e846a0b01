// Package admin exposes a read-only HTTP status surface next to the TCP
// lobby protocol: health, room list, catalog, and online users.
package admin

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/openarcade/lobby/internal/services/account"
	"github.com/openarcade/lobby/internal/services/catalog"
	"github.com/openarcade/lobby/internal/services/room"
)

// RouterConfig holds configuration for the admin router
type RouterConfig struct {
	Logger   *slog.Logger
	Accounts *account.Service
	Rooms    *room.Manager
	Catalog  *catalog.Service
}

// NewRouter creates the admin router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	h := &handlers{
		accounts: cfg.Accounts,
		rooms:    cfg.Rooms,
		catalog:  cfg.Catalog,
	}

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recovery(cfg.Logger))
	api.Use(logging(cfg.Logger))

	api.HandleFunc("/rooms", h.listRooms).Methods(http.MethodGet)
	api.HandleFunc("/games", h.listGames).Methods(http.MethodGet)
	api.HandleFunc("/online", h.listOnline).Methods(http.MethodGet)

	r.HandleFunc("/healthz", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type handlers struct {
	accounts *account.Service
	rooms    *room.Manager
	catalog  *catalog.Service
}

func (h *handlers) listRooms(w http.ResponseWriter, r *http.Request) {
	game := r.URL.Query().Get("game")
	writeJSON(w, http.StatusOK, map[string]any{
		"rooms": h.rooms.List(game),
	})
}

func (h *handlers) listGames(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"games": h.catalog.List(),
	})
}

func (h *handlers) listOnline(w http.ResponseWriter, _ *http.Request) {
	players, developers := h.accounts.OnlineUsers()
	writeJSON(w, http.StatusOK, map[string]any{
		"players":    players,
		"developers": developers,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// logging creates request logging middleware
func logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.Debug("admin request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path))
			next.ServeHTTP(w, r)
		})
	}
}

// recovery creates panic recovery middleware
func recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("admin handler panicked",
						slog.String("path", r.URL.Path),
						slog.Any("panic", rec))
					writeJSON(w, http.StatusInternalServerError,
						map[string]string{"error": "internal server error"})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
