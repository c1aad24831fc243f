package web

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/hptracker/internal/services/roster"
	"github.com/mcoot/hptracker/internal/services/tracker"
	"github.com/mcoot/hptracker/internal/web/handler"
	"github.com/mcoot/hptracker/internal/web/middleware"
	"github.com/mcoot/hptracker/internal/web/sse"
)

// RouterConfig holds configuration for the web router
type RouterConfig struct {
	Logger     *slog.Logger
	Controller *tracker.Controller
	Observer   *roster.Observer
	HubManager *sse.HubManager
	StaticDir  string // Path to static files directory
}

// NewRouter creates a new web router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create middleware
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)
	flashMiddleware := middleware.Flash()
	identityMiddleware := middleware.RequireIdentity()

	// Apply global middleware to all routes
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)

	// Create SSE hub manager if not provided
	hubManager := cfg.HubManager
	if hubManager == nil {
		hubManager = sse.NewHubManager(cfg.Observer, sse.RosterRenderer(cfg.Logger), cfg.Logger)
	}

	// Create handlers
	homeHandler := handler.NewHomeHandler(cfg.Controller, cfg.Observer, cfg.Logger)
	sessionHandler := handler.NewSessionHandler(cfg.Controller)
	playerHandler := handler.NewPlayerHandler(cfg.Controller)
	dmHandler := handler.NewDMHandler(cfg.Controller)
	roomHandler := handler.NewRoomHandler(hubManager, cfg.Logger)

	// Static files
	if cfg.StaticDir != "" {
		staticHandler := http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir)))
		r.PathPrefix("/static/").Handler(staticHandler)
	}

	// Public routes
	public := r.NewRoute().Subrouter()
	public.Use(flashMiddleware)
	public.HandleFunc("/", homeHandler.Home).Methods(http.MethodGet)
	public.HandleFunc("/session/login", sessionHandler.Login).Methods(http.MethodPost)
	public.HandleFunc("/session/logout", sessionHandler.Logout).Methods(http.MethodPost)

	// Routes that need a room identity
	protected := r.NewRoute().Subrouter()
	protected.Use(flashMiddleware)
	protected.Use(identityMiddleware)

	protected.HandleFunc("/player/character", playerHandler.SaveCharacter).Methods(http.MethodPost)
	protected.HandleFunc("/player/adjust", playerHandler.Adjust).Methods(http.MethodPost)
	protected.HandleFunc("/dm/adjust", dmHandler.Adjust).Methods(http.MethodPost)
	protected.HandleFunc("/room/events", roomHandler.Events).Methods(http.MethodGet)
	protected.HandleFunc("/room/qr.png", roomHandler.QRCode).Methods(http.MethodGet)

	return r
}
