package domain

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Holding represents an account's position in a single asset.
// Reserved is the portion locked by the account's open sell orders;
// it is consumed at settlement or stays locked until then.
type Holding struct {
	Quantity decimal.Decimal
	Reserved decimal.Decimal
}

// Available returns the unreserved quantity.
func (h *Holding) Available() decimal.Decimal {
	return h.Quantity.Sub(h.Reserved)
}

// Account is a user's ledger identity: a USD balance plus asset holdings.
// Balance and holdings are mutated only under Mu, which serializes all
// trades and settlements touching this account.
type Account struct {
	AccountID string
	Balance   decimal.Decimal     // USD
	Holdings  map[string]*Holding // asset id → holding
	CreatedAt time.Time
	Mu        sync.Mutex
}

// AvailableQuantity returns the unreserved quantity for the given asset,
// or zero if the account has no holding in that asset.
func (a *Account) AvailableQuantity(assetID string) decimal.Decimal {
	h, ok := a.Holdings[assetID]
	if !ok {
		return decimal.Zero
	}
	return h.Available()
}

// Holding returns the holding for the given asset, creating an empty
// one if none exists. Caller must hold Mu.
func (a *Account) Holding(assetID string) *Holding {
	h, ok := a.Holdings[assetID]
	if !ok {
		h = &Holding{}
		a.Holdings[assetID] = h
	}
	return h
}

// PruneHolding removes the holding for the given asset if both its
// quantity and reservation are zero. Caller must hold Mu.
func (a *Account) PruneHolding(assetID string) {
	h, ok := a.Holdings[assetID]
	if !ok {
		return
	}
	if h.Quantity.IsZero() && h.Reserved.IsZero() {
		delete(a.Holdings, assetID)
	}
}
