/*
Package handler provides the HTTP routing and handlers for the chat relay:
the WebSocket upgrade endpoint, the room roster API, and the health check.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"chatrelay/internal/pkg/limiter"
	"chatrelay/internal/pkg/logx"
	"chatrelay/internal/pkg/resp"
)

// Per-IP rate limits: sustained events per second and burst, for the
// WebSocket handshake and the REST API respectively.
const (
	JoinRate  = 0.5
	JoinBurst = 8
	APIRate   = 5
	APIBurst  = 20
)

// Router builds the routing table: CORS and logging middleware, the health
// and roster endpoints, and the rate-limited WebSocket upgrade.
func Router(deps *AppDeps) http.Handler {
	joinLimiter := limiter.NewIPRateLimiter(rate.Limit(JoinRate), JoinBurst)
	apiLimiter := limiter.NewIPRateLimiter(rate.Limit(APIRate), APIBurst)

	upgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.IsDevelopment() {
				return true
			}

			origin := r.Header.Get("Origin")
			if origin == deps.Config.AllowedOrigin {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsOrigins := []string{deps.Config.AllowedOrigin}
	if deps.Config.IsDevelopment() {
		corsOrigins = []string{"*"}
	}

	c := cors.New(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	})

	r := chi.NewRouter()

	r.Use(c.Handler)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, map[string]string{
			"status":  "ok",
			"service": "Chat Relay",
		})
	})

	r.Route("/api", func(api chi.Router) {
		api.Use(apiLimiter.Middleware)
		api.Get("/rooms/{room}/users", HandleRoomUsers(deps))
	})

	r.Get("/ws", HandleWebSocket(upgrader, joinLimiter, deps))

	return r
}
