package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/ngo-connect-api/internal/realtime"
)

// WSHandler upgrades HTTP requests onto the realtime channel.
type WSHandler struct {
	hub      *realtime.Hub
	upgrader websocket.Upgrader
}

func NewWSHandler(hub *realtime.Hub, checkOrigin func(*http.Request) bool) *WSHandler {
	return &WSHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

func (h *WSHandler) Serve(w http.ResponseWriter, r *http.Request) {
	sock, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		slog.Debug("websocket upgrade failed", "err", err)
		return
	}
	h.hub.Serve(sock)
}
