package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/ksenkov/cryptoledger/internal/oracle"
)

// MarketHandler exposes oracle quotes to the UI. Quotes returned here
// are informational: the ledger always re-fetches the price at
// execution time.
type MarketHandler struct {
	oracle oracle.Oracle
}

// NewMarketHandler creates a new MarketHandler.
func NewMarketHandler(o oracle.Oracle) *MarketHandler {
	return &MarketHandler{oracle: o}
}

// priceResponse is the JSON response for GET /api/assets/{asset_id}/price.
type priceResponse struct {
	Asset     assetResponse   `json:"asset"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Change24h decimal.Decimal `json:"change_24h"`
	Volume24h decimal.Decimal `json:"volume_24h"`
	MarketCap decimal.Decimal `json:"market_cap"`
}

// GetPrice handles GET /api/assets/{asset_id}/price.
func (h *MarketHandler) GetPrice(w http.ResponseWriter, r *http.Request) {
	assetID := chi.URLParam(r, "asset_id")

	listing, err := h.oracle.GetListing(r.Context(), assetID)
	if err != nil {
		mapError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, priceResponse{
		Asset: assetResponse{
			ID:     listing.Asset.ID,
			Symbol: listing.Asset.Symbol,
			Name:   listing.Asset.Name,
		},
		UnitPrice: listing.Quote.UnitPrice,
		Change24h: listing.Quote.Change24h,
		Volume24h: listing.Quote.Volume24h,
		MarketCap: listing.Quote.MarketCap,
	})
}
