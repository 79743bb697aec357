package session

import (
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
)

// balanceEvent is the JSON payload pushed to connected views when an
// account's balance changes.
type balanceEvent struct {
	Event      string `json:"event"`
	BalanceUSD string `json:"balance_usd"`
}

// Hub fans balance-changed notifications out to an account's open
// websocket connections, so independent views (e.g. a navigation
// header) refresh without re-querying the ledger. Delivery is
// fire-and-forget: a connection that fails a write is dropped.
type Hub struct {
	mu     sync.Mutex
	conns  map[string]map[*websocket.Conn]bool // account_id → connections
	logger *slog.Logger
}

// NewHub creates an empty Hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		conns:  make(map[string]map[*websocket.Conn]bool),
		logger: logger,
	}
}

// Add registers a connection for an account.
func (h *Hub) Add(accountID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.conns[accountID] == nil {
		h.conns[accountID] = make(map[*websocket.Conn]bool)
	}
	h.conns[accountID][conn] = true
}

// Remove unregisters a connection. The caller closes it.
func (h *Hub) Remove(accountID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.conns[accountID], conn)
	if len(h.conns[accountID]) == 0 {
		delete(h.conns, accountID)
	}
}

// SendBalance writes a balance-changed event to a single connection.
// Used to seed a newly opened stream without waking the account's
// other views.
func (h *Hub) SendBalance(conn *websocket.Conn, balance decimal.Decimal) error {
	return conn.WriteJSON(balanceEvent{
		Event:      "balance_updated",
		BalanceUSD: balance.String(),
	})
}

// BroadcastBalance pushes a balance-changed event to every connection
// registered for the account. Failed connections are closed and
// removed.
func (h *Hub) BroadcastBalance(accountID string, balance decimal.Decimal) {
	event := balanceEvent{
		Event:      "balance_updated",
		BalanceUSD: balance.String(),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.conns[accountID] {
		if err := conn.WriteJSON(event); err != nil {
			h.logger.Debug("dropping balance stream connection",
				slog.String("account_id", accountID),
				slog.String("error", err.Error()),
			)
			conn.Close()
			delete(h.conns[accountID], conn)
		}
	}
	if len(h.conns[accountID]) == 0 {
		delete(h.conns, accountID)
	}
}
