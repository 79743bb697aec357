package handler

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/ksenkov/cryptoledger/internal/domain"
	"github.com/ksenkov/cryptoledger/internal/service"
	"github.com/ksenkov/cryptoledger/internal/session"
)

// TradeHandler handles HTTP requests for the immediate buy/sell
// endpoints. After every successful trade it refreshes the session
// balance cache with the authoritative balance from the transaction.
type TradeHandler struct {
	tradeSvc *service.TradeService
	cache    *session.BalanceCache
}

// NewTradeHandler creates a new TradeHandler.
func NewTradeHandler(tradeSvc *service.TradeService, cache *session.BalanceCache) *TradeHandler {
	return &TradeHandler{tradeSvc: tradeSvc, cache: cache}
}

// tradeRequest is the JSON request body for POST /api/buy and /api/sell.
// Quantity accepts both JSON numbers and decimal strings.
type tradeRequest struct {
	AssetID  string          `json:"asset_id"`
	Quantity decimal.Decimal `json:"quantity"`
}

// assetResponse is the JSON representation of asset metadata.
type assetResponse struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// transactionResponse is the JSON representation of a ledger transaction.
type transactionResponse struct {
	TransactionID string          `json:"transaction_id"`
	Asset         assetResponse   `json:"asset"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	Price         decimal.Decimal `json:"price"`
	Fee           decimal.Decimal `json:"fee"`
	Total         decimal.Decimal `json:"total"`
	NewBalance    decimal.Decimal `json:"new_balance"`
	ExecutedAt    string          `json:"executed_at"`
}

// tradeResponse is the JSON response for buy/sell endpoints.
type tradeResponse struct {
	Message     string              `json:"message"`
	Transaction transactionResponse `json:"transaction"`
}

// Buy handles POST /api/buy.
func (h *TradeHandler) Buy(w http.ResponseWriter, r *http.Request) {
	h.trade(w, r, "Purchase successful", h.tradeSvc.Buy)
}

// Sell handles POST /api/sell.
func (h *TradeHandler) Sell(w http.ResponseWriter, r *http.Request) {
	h.trade(w, r, "Sale successful", h.tradeSvc.Sell)
}

func (h *TradeHandler) trade(
	w http.ResponseWriter,
	r *http.Request,
	message string,
	execute func(ctx context.Context, req service.TradeRequest) (*domain.Transaction, error),
) {
	var req tradeRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	tx, err := execute(r.Context(), service.TradeRequest{
		AccountID: accountID(r),
		AssetID:   req.AssetID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		mapError(w, err)
		return
	}

	h.cache.Update(tx.AccountID, tx.NewBalance)

	WriteJSON(w, http.StatusOK, tradeResponse{
		Message:     message,
		Transaction: buildTransactionResponse(tx),
	})
}

func buildTransactionResponse(tx *domain.Transaction) transactionResponse {
	return transactionResponse{
		TransactionID: tx.TransactionID,
		Asset: assetResponse{
			ID:     tx.Asset.ID,
			Symbol: tx.Asset.Symbol,
			Name:   tx.Asset.Name,
		},
		Type:       string(tx.Side),
		Amount:     tx.Quantity,
		Price:      tx.UnitPrice,
		Fee:        tx.Fee,
		Total:      tx.Total,
		NewBalance: tx.NewBalance,
		ExecutedAt: tx.ExecutedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}
