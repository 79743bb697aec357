package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/ksenkov/cryptoledger/internal/domain"
	"github.com/ksenkov/cryptoledger/internal/engine"
	"github.com/ksenkov/cryptoledger/internal/oracle"
	"github.com/ksenkov/cryptoledger/internal/store"
)

// CreateOrderRequest represents the input for placing a resting sell
// order at a fixed price.
type CreateOrderRequest struct {
	AccountID string
	AssetID   string
	Quantity  decimal.Decimal
	Price     decimal.Decimal
}

// ListOrdersRequest represents the input for listing orders. SortBy
// and Dir default to time-descending (newest first) when empty.
type ListOrdersRequest struct {
	AssetID       string
	SortBy        string
	Dir           string
	IncludeFilled bool
}

// OrderService handles order placement, listing, and execution.
type OrderService struct {
	book    *engine.OrderBook
	settler *engine.SettlementEngine
	orders  *store.OrderStore
	oracle  oracle.Oracle
}

// NewOrderService creates an OrderService with the given dependencies.
func NewOrderService(
	book *engine.OrderBook,
	settler *engine.SettlementEngine,
	orders *store.OrderStore,
	o oracle.Oracle,
) *OrderService {
	return &OrderService{
		book:    book,
		settler: settler,
		orders:  orders,
		oracle:  o,
	}
}

// CreateOrder validates the request, resolves the asset via the
// oracle, and places the order, reserving the seller's holding.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*domain.Order, error) {
	if !assetIDRegex.MatchString(req.AssetID) {
		return nil, &domain.ValidationError{Message: "asset_id must match ^[a-z0-9-]{1,100}$"}
	}
	if !req.Quantity.IsPositive() {
		return nil, &domain.ValidationError{Message: "quantity must be greater than 0"}
	}
	if !req.Price.IsPositive() {
		return nil, &domain.ValidationError{Message: "price must be greater than 0"}
	}

	// Resolve catalog metadata; this also rejects unknown assets.
	listing, err := s.oracle.GetListing(ctx, req.AssetID)
	if err != nil {
		return nil, err
	}

	return s.book.PlaceOrder(req.AccountID, listing.Asset, req.Quantity, req.Price)
}

// ListOrders validates the sort parameters and returns matching orders.
func (s *OrderService) ListOrders(req ListOrdersRequest) ([]*domain.Order, error) {
	q := store.OrderQuery{
		AssetID:       req.AssetID,
		IncludeFilled: req.IncludeFilled,
	}

	switch req.SortBy {
	case "", "time":
		q.SortBy = store.SortByTime
	case "price":
		q.SortBy = store.SortByPrice
	default:
		return nil, &domain.ValidationError{Message: "sort_by must be 'time' or 'price'"}
	}

	switch req.Dir {
	case "", "desc":
		q.Dir = store.SortDesc
	case "asc":
		q.Dir = store.SortAsc
	default:
		return nil, &domain.ValidationError{Message: "order must be 'asc' or 'desc'"}
	}

	return s.orders.List(q), nil
}

// ExecuteOrder settles an open order on behalf of the buyer.
func (s *OrderService) ExecuteOrder(orderID, buyerID string) (*engine.SettlementResult, error) {
	if orderID == "" {
		return nil, &domain.ValidationError{Message: "order_id is required"}
	}
	return s.settler.SettleOrder(orderID, buyerID)
}
