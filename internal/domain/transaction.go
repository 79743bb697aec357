package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeSide indicates whether a transaction bought or sold the asset.
type TradeSide string

const (
	TradeSideBuy  TradeSide = "buy"
	TradeSideSell TradeSide = "sell"
)

// Transaction is an immutable record of a completed buy or sell.
// Total is the amount the balance moved by: gross plus fee for buys,
// gross minus fee for sells. NewBalance is the balance immediately
// after the transaction applied, so callers can refresh derived views
// without re-querying the ledger. Records are append-only and never
// mutated after creation.
type Transaction struct {
	TransactionID string
	AccountID     string
	Asset         Asset
	Side          TradeSide
	Quantity      decimal.Decimal
	UnitPrice     decimal.Decimal
	Fee           decimal.Decimal
	Total         decimal.Decimal
	NewBalance    decimal.Decimal
	ExecutedAt    time.Time
}
