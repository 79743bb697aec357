package domain

import "github.com/shopspring/decimal"

// Asset identifies a tradable cryptocurrency by its external catalog id
// (e.g. "bitcoin") plus display metadata. Price is never stored on the
// asset; it is fetched live from the oracle at transaction time.
type Asset struct {
	ID     string
	Symbol string
	Name   string
}

// Quote is a point-in-time market snapshot for an asset.
type Quote struct {
	UnitPrice decimal.Decimal
	Change24h decimal.Decimal
	Volume24h decimal.Decimal
	MarketCap decimal.Decimal
}
