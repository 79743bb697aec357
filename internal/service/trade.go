package service

import (
	"context"
	"regexp"

	"github.com/shopspring/decimal"

	"github.com/ksenkov/cryptoledger/internal/domain"
	"github.com/ksenkov/cryptoledger/internal/engine"
)

// assetIDRegex matches external catalog identifiers ("bitcoin",
// "matic-network").
var assetIDRegex = regexp.MustCompile(`^[a-z0-9-]{1,100}$`)

// TradeRequest represents the input for an immediate buy or sell.
type TradeRequest struct {
	AccountID string
	AssetID   string
	Quantity  decimal.Decimal
}

// TradeService validates trade requests and runs them through the
// trade engine.
type TradeService struct {
	engine *engine.TradeEngine
}

// NewTradeService creates a TradeService over the given engine.
func NewTradeService(e *engine.TradeEngine) *TradeService {
	return &TradeService{engine: e}
}

// Buy executes an immediate purchase at the live price.
func (s *TradeService) Buy(ctx context.Context, req TradeRequest) (*domain.Transaction, error) {
	if err := validateTradeRequest(req); err != nil {
		return nil, err
	}
	return s.engine.ExecuteTrade(ctx, req.AccountID, req.AssetID, domain.TradeSideBuy, req.Quantity)
}

// Sell executes an immediate sale at the live price.
func (s *TradeService) Sell(ctx context.Context, req TradeRequest) (*domain.Transaction, error) {
	if err := validateTradeRequest(req); err != nil {
		return nil, err
	}
	return s.engine.ExecuteTrade(ctx, req.AccountID, req.AssetID, domain.TradeSideSell, req.Quantity)
}

func validateTradeRequest(req TradeRequest) error {
	if !assetIDRegex.MatchString(req.AssetID) {
		return &domain.ValidationError{Message: "asset_id must match ^[a-z0-9-]{1,100}$"}
	}
	if !req.Quantity.IsPositive() {
		return &domain.ValidationError{Message: "quantity must be greater than 0"}
	}
	return nil
}
