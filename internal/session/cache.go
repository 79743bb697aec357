// Package session holds the denormalized per-account balance view used
// by the UI. The cache is advisory display state, never ledger truth:
// it is only ever overwritten with the authoritative balance returned
// by the last successful mutating call, and on any conflict with a
// fresh ledger read the ledger wins.
package session

import (
	"sync"

	"github.com/shopspring/decimal"
)

// BalanceCache stores the last known balance per account and notifies
// the hub whenever a mutating operation reports a new one.
type BalanceCache struct {
	mu       sync.RWMutex
	balances map[string]decimal.Decimal
	hub      *Hub
}

// NewBalanceCache creates a BalanceCache broadcasting updates through
// hub. hub may be nil when no push channel is wired.
func NewBalanceCache(hub *Hub) *BalanceCache {
	return &BalanceCache{
		balances: make(map[string]decimal.Decimal),
		hub:      hub,
	}
}

// Update overwrites the cached balance with the authoritative value
// returned from a successful mutating call and broadcasts a
// balance-changed notification to the account's connected views.
func (c *BalanceCache) Update(accountID string, balance decimal.Decimal) {
	c.mu.Lock()
	c.balances[accountID] = balance
	c.mu.Unlock()

	if c.hub != nil {
		c.hub.BroadcastBalance(accountID, balance)
	}
}

// Get returns the cached balance, if any.
func (c *BalanceCache) Get(accountID string) (decimal.Decimal, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	b, ok := c.balances[accountID]
	return b, ok
}
