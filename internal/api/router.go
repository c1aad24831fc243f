package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/hptracker/internal/api/handler"
	"github.com/mcoot/hptracker/internal/api/middleware"
	"github.com/mcoot/hptracker/internal/api/response"
	"github.com/mcoot/hptracker/internal/services/players"
	"github.com/mcoot/hptracker/internal/services/roster"
	"github.com/mcoot/hptracker/internal/services/tracker"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger     *slog.Logger
	Players    *players.Repository
	Observer   *roster.Observer
	Controller *tracker.Controller
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	roomHandler := handler.NewRoomHandler(cfg.Controller)
	playerHandler := handler.NewPlayerHandler(cfg.Players)
	rosterHandler := handler.NewRosterHandler(cfg.Observer, cfg.Logger)

	// Create middleware
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Room routes
	api.HandleFunc("/rooms", roomHandler.Create).Methods(http.MethodPost)

	rooms := api.PathPrefix("/rooms/{code}").Subrouter()
	rooms.HandleFunc("/players", playerHandler.List).Methods(http.MethodGet)
	rooms.HandleFunc("/players/{name}", playerHandler.Get).Methods(http.MethodGet)
	rooms.HandleFunc("/players/{name}", playerHandler.Ensure).Methods(http.MethodPost)
	rooms.HandleFunc("/players/{name}", playerHandler.Save).Methods(http.MethodPut)
	rooms.HandleFunc("/players/{name}/adjust", playerHandler.Adjust).Methods(http.MethodPost)
	rooms.HandleFunc("/roster", rosterHandler.Get).Methods(http.MethodGet)
	rooms.HandleFunc("/roster/ws", rosterHandler.Stream).Methods(http.MethodGet)

	// Health check endpoint
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{Status: "ok"})
}
