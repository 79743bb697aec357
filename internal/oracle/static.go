package oracle

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/ksenkov/cryptoledger/internal/domain"
)

// Static is an in-memory Oracle with fixed listings. Used in tests and
// for offline operation.
type Static struct {
	mu       sync.RWMutex
	listings map[string]Listing
}

// NewStatic creates a Static oracle serving the given listings.
func NewStatic(listings ...Listing) *Static {
	s := &Static{listings: make(map[string]Listing, len(listings))}
	for _, l := range listings {
		s.listings[l.Asset.ID] = l
	}
	return s
}

// SetPrice updates the unit price for an asset, creating a bare listing
// if the asset is unknown.
func (s *Static) SetPrice(assetID string, price decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.listings[assetID]
	if !ok {
		l = Listing{Asset: domain.Asset{ID: assetID}}
	}
	l.Quote.UnitPrice = price
	s.listings[assetID] = l
}

// GetListing returns the fixed listing for the asset, or
// domain.ErrAssetNotFound.
func (s *Static) GetListing(_ context.Context, assetID string) (*Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.listings[assetID]
	if !ok {
		return nil, domain.ErrAssetNotFound
	}
	out := l
	return &out, nil
}
