package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"chatrelay/internal/app/chat"
	"chatrelay/internal/pkg/errs"
	"chatrelay/internal/pkg/limiter"
	"chatrelay/internal/pkg/logx"
	"chatrelay/internal/pkg/randx"
	"chatrelay/internal/pkg/resp"
)

// HandleWebSocket upgrades the request to a WebSocket connection, assigns
// the opaque connection id, and hands the connection to the hub. Joining a
// room happens afterwards over the Join event, not at upgrade time.
func HandleWebSocket(upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !rateLimiter.Allow(r.RemoteAddr) {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.")
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		id := randx.ConnID()
		client := chat.NewClient(deps.Hub, conn, id)

		go client.WritePump()

		deps.Hub.Register(client)
		logx.Info("WebSocket connection established", "client_id", id)

		client.ReadPump()
	}
}
