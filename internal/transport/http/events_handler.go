package http

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/gorilla/websocket"

	ws "github.com/franfh599/dashboard-autos/internal/websocket"
)

// EventsHandler upgrades GET /api/events to a WebSocket that streams dataset
// change notifications.
type EventsHandler struct {
	hub            *ws.Hub
	allowedOrigins []string
	upgrader       websocket.Upgrader
	logger         *slog.Logger
}

// NewEventsHandler creates the handler. Browsers may connect from the
// server's own host or from one of allowedOrigins; "*" allows any origin.
func NewEventsHandler(hub *ws.Hub, allowedOrigins []string, logger *slog.Logger) *EventsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &EventsHandler{
		hub:            hub,
		allowedOrigins: allowedOrigins,
		logger:         logger.With(slog.String("component", "events_handler")),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *EventsHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if u, err := url.Parse(origin); err == nil && u.Host == r.Host {
		return true
	}
	for _, allowed := range h.allowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	h.logger.WarnContext(r.Context(), "WebSocket origin check - origin not allowed",
		slog.String("origin", origin),
		slog.Any("allowed_origins", h.allowedOrigins))
	return false
}

// ServeHTTP handles the upgrade. The upgrader writes its own error response
// when the handshake is rejected.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WarnContext(r.Context(), "WebSocket upgrade failed",
			slog.String("error", err.Error()),
			slog.String("origin", r.Header.Get("Origin")))
		return
	}

	client, err := ws.Serve(r.Context(), h.hub, conn, h.logger)
	if err != nil {
		h.logger.WarnContext(r.Context(), "WebSocket client rejected", slog.String("error", err.Error()))
		return
	}
	h.logger.DebugContext(r.Context(), "WebSocket client connected", slog.String("client_id", client.ID()))
}
