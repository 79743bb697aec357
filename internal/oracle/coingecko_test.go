package oracle

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ksenkov/cryptoledger/internal/domain"
)

const bitcoinPayload = `{
	"id": "bitcoin",
	"symbol": "btc",
	"name": "Bitcoin",
	"market_data": {
		"current_price": {"usd": 50000},
		"market_cap": {"usd": 980000000000},
		"total_volume": {"usd": 32000000000},
		"price_change_percentage_24h": -1.25
	}
}`

func newTestOracle(t *testing.T, handler http.HandlerFunc) (*CoinGecko, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	o, err := NewCoinGecko(srv.URL, 2*time.Second, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return o, srv
}

func TestGetListing_Success(t *testing.T) {
	o, _ := newTestOracle(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/coins/bitcoin" {
			t.Errorf("got path %q, want /coins/bitcoin", r.URL.Path)
		}
		w.Write([]byte(bitcoinPayload))
	})

	listing, err := o.GetListing(context.Background(), "bitcoin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if listing.Asset.Symbol != "BTC" {
		t.Errorf("got symbol %q, want BTC", listing.Asset.Symbol)
	}
	if listing.Asset.Name != "Bitcoin" {
		t.Errorf("got name %q, want Bitcoin", listing.Asset.Name)
	}
	if !listing.Quote.UnitPrice.Equal(decimal.RequireFromString("50000")) {
		t.Errorf("got price %s, want 50000", listing.Quote.UnitPrice)
	}
	if !listing.Quote.Change24h.Equal(decimal.RequireFromString("-1.25")) {
		t.Errorf("got change %s, want -1.25", listing.Quote.Change24h)
	}
}

func TestGetListing_NotFound(t *testing.T) {
	o, _ := newTestOracle(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := o.GetListing(context.Background(), "notacoin")
	if !errors.Is(err, domain.ErrAssetNotFound) {
		t.Errorf("got error %v, want ErrAssetNotFound", err)
	}
}

func TestGetListing_UpstreamError(t *testing.T) {
	o, _ := newTestOracle(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := o.GetListing(context.Background(), "bitcoin")
	if !errors.Is(err, domain.ErrPriceUnavailable) {
		t.Errorf("got error %v, want ErrPriceUnavailable", err)
	}
}

func TestGetListing_ZeroPrice(t *testing.T) {
	o, _ := newTestOracle(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"x","symbol":"x","name":"X","market_data":{"current_price":{"usd":0}}}`))
	})

	_, err := o.GetListing(context.Background(), "x")
	if !errors.Is(err, domain.ErrPriceUnavailable) {
		t.Errorf("got error %v, want ErrPriceUnavailable", err)
	}
}

func TestGetListing_CacheServesRepeatReads(t *testing.T) {
	var hits atomic.Int64
	o, _ := newTestOracle(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(bitcoinPayload))
	})

	if _, err := o.GetListing(context.Background(), "bitcoin"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Ristretto applies buffered sets asynchronously.
	o.cache.Wait()

	if _, err := o.GetListing(context.Background(), "bitcoin"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hits.Load() != 1 {
		t.Errorf("got %d upstream hits, want 1", hits.Load())
	}
}
