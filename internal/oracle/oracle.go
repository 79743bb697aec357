// Package oracle supplies live market data for assets. The ledger never
// stores a price for settlement purposes: every trade fetches its quote
// through the oracle at execution time. The CoinGecko implementation
// keeps a short-lived quote cache against the upstream API, so a trade
// may clear at a quote up to the cache TTL old; prices are otherwise
// live, and two trades in different TTL windows may clear at different
// prices.
package oracle

import (
	"context"

	"github.com/ksenkov/cryptoledger/internal/domain"
)

// Listing pairs an asset's catalog metadata with a current quote.
type Listing struct {
	Asset domain.Asset
	Quote domain.Quote
}

// Oracle resolves an asset identifier to its metadata and current
// market quote. Implementations return domain.ErrAssetNotFound for
// unknown identifiers and domain.ErrPriceUnavailable for transient
// upstream failures; the caller must fail the operation rather than
// guess a price.
type Oracle interface {
	GetListing(ctx context.Context, assetID string) (*Listing, error)
}
