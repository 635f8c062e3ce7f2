package handlers

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/dom/musikkhylla/internal/service"
	"github.com/dom/musikkhylla/internal/websocket"
	ws "github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	hub         *websocket.Hub
	authService *service.AuthService
	upgrader    ws.Upgrader
}

// NewWebSocketHandler accepts upgrades from the given origins. Requests
// without an Origin header (non-browser clients) are always accepted.
func NewWebSocketHandler(hub *websocket.Hub, authService *service.AuthService, origins []string) *WebSocketHandler {
	allowAny := slices.Contains(origins, "*")
	return &WebSocketHandler{
		hub:         hub,
		authService: authService,
		upgrader: ws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowAny || slices.Contains(origins, origin)
			},
		},
	}
}

// Handle authenticates with ?token= since browsers cannot set headers on
// the upgrade request.
func (h *WebSocketHandler) Handle(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, http.StatusUnauthorized, "No token provided")
		return
	}

	user, err := h.authService.VerifyToken(r.Context(), token)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.WarnContext(r.Context(), "websocket upgrade failed", "user_id", user.ID, "error", err)
		return
	}

	client := websocket.NewClient(h.hub, conn, user.ID)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
