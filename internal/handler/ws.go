package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// handleSubscribe upgrades to a websocket and streams the session's
// committed mutations. The socket is delivery only: clients never write
// state through it, and on reconnect they must re-fetch the full session
// before trusting incremental events again.
func (h *Handler) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	// Reject unknown sessions before upgrading.
	if _, _, _, err := h.sessions.Get(r.Context(), sessionID); err != nil {
		respondServiceError(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("Websocket upgrade failed", "session_id", sessionID, "error", err)
		return
	}

	sub := h.hub.Subscribe(sessionID)
	slog.Info("Subscriber connected", "session_id", sessionID, "subscribers", h.hub.SubscriberCount(sessionID))

	// Read pump: the client sends nothing meaningful, but reading is how
	// close frames and pong responses surface.
	go func() {
		defer sub.Close()
		conn.SetReadLimit(512)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// Write pump: fan events out, ping to keep intermediaries open.
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		sub.Close()
		conn.Close()
		slog.Info("Subscriber disconnected", "session_id", sessionID)
	}()

	for {
		select {
		case event, ok := <-sub.Events():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub dropped us (slow consumer); tell the client to
				// re-fetch by closing cleanly.
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "resubscribe"))
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
