package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestor/internal/market"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// WebSocketHandler upgrades client connections and streams relayed
// market ticks to them.
type WebSocketHandler struct {
	relay            *market.Relay
	logger           arbor.ILogger
	serverInstanceID string // Unique ID generated on startup - clients use to detect server restart
}

// NewWebSocketHandler creates a new websocket handler
func NewWebSocketHandler(relay *market.Relay, logger arbor.ILogger) *WebSocketHandler {
	h := &WebSocketHandler{
		relay:            relay,
		logger:           logger,
		serverInstanceID: uuid.New().String(),
	}

	logger.Info().
		Str("server_instance_id", h.serverInstanceID).
		Msg("WebSocket handler initialized with server instance ID")

	return h
}

// HandleWebSocket handles GET /ws/market?tickers=AAPL,MSFT requests.
// The connection receives one JSON tick per message until the client
// disconnects.
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	tickers := splitTickers(r.URL.Query().Get("tickers"))
	if len(tickers) == 0 {
		http.Error(w, "tickers query parameter is required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	clientID, ticks := h.relay.Subscribe(tickers)
	defer h.relay.Unsubscribe(clientID)

	h.logger.Info().
		Str("client_id", clientID).
		Str("remote", r.RemoteAddr).
		Int("tickers", len(tickers)).
		Msg("WebSocket client connected")

	// Hello message so clients can detect server restarts
	if err := conn.WriteJSON(map[string]string{
		"type":               "hello",
		"server_instance_id": h.serverInstanceID,
	}); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to send hello message")
		return
	}

	// Drain client reads so close frames are processed
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			h.logger.Info().Str("client_id", clientID).Msg("WebSocket client disconnected")
			return
		case tick, ok := <-ticks:
			if !ok {
				return
			}
			if err := conn.WriteJSON(tick); err != nil {
				h.logger.Debug().Err(err).Str("client_id", clientID).Msg("WebSocket write failed")
				return
			}
		}
	}
}

func splitTickers(raw string) []string {
	var tickers []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			tickers = append(tickers, part)
		}
	}
	return tickers
}
