package handler

import (
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/ksenkov/cryptoledger/internal/service"
)

// PortfolioHandler handles HTTP requests for the portfolio and
// transaction-history endpoints.
type PortfolioHandler struct {
	portfolioSvc *service.PortfolioService
}

// NewPortfolioHandler creates a new PortfolioHandler.
func NewPortfolioHandler(portfolioSvc *service.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{portfolioSvc: portfolioSvc}
}

// portfolioHoldingResponse is one valued position. Nullable fields are
// nil when the asset could not be quoted.
type portfolioHoldingResponse struct {
	Asset      assetResponse    `json:"asset"`
	Amount     decimal.Decimal  `json:"amount"`
	UnitPrice  *decimal.Decimal `json:"unit_price"`
	TotalValue *decimal.Decimal `json:"total_value"`
}

// portfolioResponse is the JSON response for GET /api/portfolio.
type portfolioResponse struct {
	BalanceUSD     decimal.Decimal            `json:"balance_usd"`
	PortfolioValue decimal.Decimal            `json:"portfolio_value"`
	TotalValue     decimal.Decimal            `json:"total_value"`
	Holdings       []portfolioHoldingResponse `json:"holdings"`
}

// GetPortfolio handles GET /api/portfolio.
func (h *PortfolioHandler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	p, err := h.portfolioSvc.Portfolio(r.Context(), accountID(r))
	if err != nil {
		mapError(w, err)
		return
	}

	holdings := make([]portfolioHoldingResponse, len(p.Holdings))
	for i, hld := range p.Holdings {
		holdings[i] = portfolioHoldingResponse{
			Asset: assetResponse{
				ID:     hld.Asset.ID,
				Symbol: hld.Asset.Symbol,
				Name:   hld.Asset.Name,
			},
			Amount:     hld.Quantity,
			UnitPrice:  hld.UnitPrice,
			TotalValue: hld.Value,
		}
	}

	WriteJSON(w, http.StatusOK, portfolioResponse{
		BalanceUSD:     p.BalanceUSD,
		PortfolioValue: p.PortfolioValue,
		TotalValue:     p.TotalValue,
		Holdings:       holdings,
	})
}

// ListTransactions handles GET /api/transactions.
func (h *PortfolioHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "validation_error", "limit must be an integer")
			return
		}
		limit = n
	}

	txs, err := h.portfolioSvc.Transactions(accountID(r), limit)
	if err != nil {
		mapError(w, err)
		return
	}

	result := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		result[i] = buildTransactionResponse(tx)
	}
	WriteJSON(w, http.StatusOK, result)
}
