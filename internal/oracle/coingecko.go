package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/shopspring/decimal"

	"github.com/ksenkov/cryptoledger/internal/domain"
)

// DefaultBaseURL is the public CoinGecko API v3 endpoint.
const DefaultBaseURL = "https://api.coingecko.com/api/v3"

// coinResponse mirrors the subset of the CoinGecko /coins/{id} payload
// the ledger needs.
type coinResponse struct {
	ID         string `json:"id"`
	Symbol     string `json:"symbol"`
	Name       string `json:"name"`
	MarketData struct {
		CurrentPrice struct {
			USD float64 `json:"usd"`
		} `json:"current_price"`
		MarketCap struct {
			USD float64 `json:"usd"`
		} `json:"market_cap"`
		TotalVolume struct {
			USD float64 `json:"usd"`
		} `json:"total_volume"`
		PriceChangePercentage24h float64 `json:"price_change_percentage_24h"`
	} `json:"market_data"`
}

// CoinGecko is an Oracle backed by the CoinGecko HTTP API with a
// TTL-bounded quote cache. Requests carry a bounded timeout; upstream
// failures surface as domain.ErrPriceUnavailable so callers can treat
// them as transient and retry the whole operation.
type CoinGecko struct {
	baseURL string
	client  *http.Client
	cache   *ristretto.Cache
	ttl     time.Duration
}

// NewCoinGecko creates a CoinGecko oracle. baseURL is typically
// DefaultBaseURL; timeout bounds each upstream request; ttl bounds how
// long a fetched quote may serve reads before a refetch.
func NewCoinGecko(baseURL string, timeout, ttl time.Duration) (*CoinGecko, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e4,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create quote cache: %w", err)
	}
	return &CoinGecko{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		cache:   cache,
		ttl:     ttl,
	}, nil
}

// GetListing fetches metadata and a current quote for the given asset.
func (c *CoinGecko) GetListing(ctx context.Context, assetID string) (*Listing, error) {
	if cached, ok := c.cache.Get(assetID); ok {
		if listing, ok := cached.(*Listing); ok {
			return listing, nil
		}
	}

	listing, err := c.fetch(ctx, assetID)
	if err != nil {
		return nil, err
	}

	c.cache.SetWithTTL(assetID, listing, 1, c.ttl)
	return listing, nil
}

func (c *CoinGecko) fetch(ctx context.Context, assetID string) (*Listing, error) {
	url := fmt.Sprintf("%s/coins/%s", c.baseURL, assetID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPriceUnavailable, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPriceUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.ErrAssetNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: upstream status %d", domain.ErrPriceUnavailable, resp.StatusCode)
	}

	var coin coinResponse
	if err := json.NewDecoder(resp.Body).Decode(&coin); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", domain.ErrPriceUnavailable, err)
	}

	price := decimal.NewFromFloat(coin.MarketData.CurrentPrice.USD)
	if !price.IsPositive() {
		return nil, fmt.Errorf("%w: no positive USD price for %s", domain.ErrPriceUnavailable, assetID)
	}

	return &Listing{
		Asset: domain.Asset{
			ID:     coin.ID,
			Symbol: strings.ToUpper(coin.Symbol),
			Name:   coin.Name,
		},
		Quote: domain.Quote{
			UnitPrice: price,
			Change24h: decimal.NewFromFloat(coin.MarketData.PriceChangePercentage24h),
			Volume24h: decimal.NewFromFloat(coin.MarketData.TotalVolume.USD),
			MarketCap: decimal.NewFromFloat(coin.MarketData.MarketCap.USD),
		},
	}, nil
}
