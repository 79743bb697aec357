package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/ksenkov/cryptoledger/internal/session"
)

// BalanceStreamHandler upgrades GET /api/ws/balance to a websocket and
// streams balance-changed events for the authenticated account.
type BalanceStreamHandler struct {
	hub      *session.Hub
	cache    *session.BalanceCache
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewBalanceStreamHandler creates a new BalanceStreamHandler.
func NewBalanceStreamHandler(hub *session.Hub, cache *session.BalanceCache, logger *slog.Logger) *BalanceStreamHandler {
	return &BalanceStreamHandler{
		hub:    hub,
		cache:  cache,
		logger: logger,
		upgrader: websocket.Upgrader{
			// The exchange is a simulation serving its own UI; no
			// cross-origin restriction.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Stream handles GET /api/ws/balance.
func (h *BalanceStreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	account := accountID(r)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		h.logger.Debug("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	h.hub.Add(account, conn)
	defer func() {
		h.hub.Remove(account, conn)
		conn.Close()
	}()

	// Seed this connection with the last known balance, if any, so a
	// newly opened view renders without waiting for the next mutation.
	// Only the new connection is seeded; the account's other views
	// already hold the same value.
	if balance, ok := h.cache.Get(account); ok {
		if err := h.hub.SendBalance(conn, balance); err != nil {
			h.logger.Debug("balance stream seed failed", slog.String("error", err.Error()))
			return
		}
	}

	// Drain client frames until the connection closes; the stream is
	// one-way.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
