// Package handler wires the REST and websocket surface to core services.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tabshare/tabshare/internal/middleware"
	"github.com/tabshare/tabshare/internal/realtime"
	"github.com/tabshare/tabshare/internal/service"
)

// Handler bundles the services behind the HTTP surface.
type Handler struct {
	sessions *service.SessionService
	members  *service.MemberService
	claims   *service.ClaimService
	hub      *realtime.Hub
	validate *validator.Validate
	upgrader websocket.Upgrader
}

// NewRouter builds the chi router with all routes and middleware.
func NewRouter(sessions *service.SessionService, members *service.MemberService, claims *service.ClaimService, hub *realtime.Hub, allowedOrigin string) http.Handler {
	h := &Handler{
		sessions: sessions,
		members:  members,
		claims:   claims,
		hub:      hub,
		validate: validator.New(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The share link is the only credential; origins vary per
			// deployment and CORS is enforced on the REST surface.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Logging)
	r.Use(middleware.Metrics)
	r.Use(middleware.CORS(allowedOrigin))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/sessions", func(api chi.Router) {
		api.Post("/", h.handleCreateSession)
		api.Route("/{sessionID}", func(sr chi.Router) {
			sr.Get("/", h.handleGetSession)
			sr.Post("/transition", h.handleTransition)
			sr.Get("/ws", h.handleSubscribe)

			sr.Post("/members", h.handleJoin)
			sr.Post("/members/{memberID}/paid", h.handleSetPaid)

			sr.Post("/items", h.handleAddItem)
			sr.Put("/items/{itemID}", h.handleUpdateItem)
			sr.Delete("/items/{itemID}", h.handleRemoveItem)

			sr.Post("/items/{itemID}/claims", h.handleClaim)
			sr.Delete("/items/{itemID}/claims/{memberID}", h.handleUnclaim)
		})
	})

	return r
}
