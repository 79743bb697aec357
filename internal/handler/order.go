package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/ksenkov/cryptoledger/internal/domain"
	"github.com/ksenkov/cryptoledger/internal/service"
	"github.com/ksenkov/cryptoledger/internal/session"
)

// OrderHandler handles HTTP requests for order endpoints.
type OrderHandler struct {
	orderSvc *service.OrderService
	cache    *session.BalanceCache
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderSvc *service.OrderService, cache *session.BalanceCache) *OrderHandler {
	return &OrderHandler{orderSvc: orderSvc, cache: cache}
}

// createOrderRequest is the JSON request body for POST /api/orders.
type createOrderRequest struct {
	AssetID  string          `json:"asset_id"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// orderResponse is the JSON representation of a resting sell order.
type orderResponse struct {
	OrderID   string          `json:"order_id"`
	AccountID string          `json:"account_id"`
	Asset     assetResponse   `json:"asset"`
	Quantity  decimal.Decimal `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Total     decimal.Decimal `json:"total"`
	Status    string          `json:"status"`
	CreatedAt string          `json:"created_at"`
	FilledAt  *string         `json:"filled_at"`
}

// executeOrderResponse is the JSON response for order execution.
type executeOrderResponse struct {
	Message    string          `json:"message"`
	OrderID    string          `json:"order_id"`
	NewBalance decimal.Decimal `json:"new_balance"`
}

// CreateOrder handles POST /api/orders.
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	order, err := h.orderSvc.CreateOrder(r.Context(), service.CreateOrderRequest{
		AccountID: accountID(r),
		AssetID:   req.AssetID,
		Quantity:  req.Quantity,
		Price:     req.Price,
	})
	if err != nil {
		mapError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, buildOrderResponse(order))
}

// ListOrders handles GET /api/orders.
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	orders, err := h.orderSvc.ListOrders(service.ListOrdersRequest{
		AssetID:       q.Get("asset"),
		SortBy:        q.Get("sort_by"),
		Dir:           q.Get("order"),
		IncludeFilled: q.Get("include_filled") == "true",
	})
	if err != nil {
		mapError(w, err)
		return
	}

	result := make([]orderResponse, len(orders))
	for i, o := range orders {
		result[i] = buildOrderResponse(o)
	}
	WriteJSON(w, http.StatusOK, result)
}

// ExecuteOrder handles POST /api/orders/{order_id}/execute.
func (h *OrderHandler) ExecuteOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "order_id")
	buyerID := accountID(r)

	res, err := h.orderSvc.ExecuteOrder(orderID, buyerID)
	if err != nil {
		mapError(w, err)
		return
	}

	h.cache.Update(buyerID, res.BuyerBalance)
	// The seller's views learn about the proceeds too.
	h.cache.Update(res.SellerTransaction.AccountID, res.SellerTransaction.NewBalance)

	WriteJSON(w, http.StatusOK, executeOrderResponse{
		Message:    "Order executed",
		OrderID:    res.Order.OrderID,
		NewBalance: res.BuyerBalance,
	})
}

func buildOrderResponse(o *domain.Order) orderResponse {
	resp := orderResponse{
		OrderID:   o.OrderID,
		AccountID: o.AccountID,
		Asset: assetResponse{
			ID:     o.Asset.ID,
			Symbol: o.Asset.Symbol,
			Name:   o.Asset.Name,
		},
		Quantity:  o.Quantity,
		Price:     o.Price,
		Total:     o.Gross(),
		Status:    string(o.Status()),
		CreatedAt: o.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
	if filledAt := o.FilledAt(); filledAt != nil {
		s := filledAt.UTC().Format("2006-01-02T15:04:05Z")
		resp.FilledAt = &s
	}
	return resp
}
