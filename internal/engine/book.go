package engine

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ksenkov/cryptoledger/internal/domain"
	"github.com/ksenkov/cryptoledger/internal/store"
)

// OrderBook handles placement of resting sell orders. Placing an order
// reserves the offered quantity on the seller's holding, so the seller
// cannot spend it through a trade or a second order before settlement
// consumes or keeps the reservation.
type OrderBook struct {
	accounts *store.AccountStore
	orders   *store.OrderStore
}

// NewOrderBook creates an OrderBook over the given stores.
func NewOrderBook(accounts *store.AccountStore, orders *store.OrderStore) *OrderBook {
	return &OrderBook{
		accounts: accounts,
		orders:   orders,
	}
}

// PlaceOrder creates a resting sell order at a fixed price. It fails
// with domain.ErrInsufficientHoldings if the account's unreserved
// holding in the asset is below quantity. On success the quantity is
// reserved and the order becomes visible to all accounts.
func (b *OrderBook) PlaceOrder(
	accountID string,
	asset domain.Asset,
	quantity, price decimal.Decimal,
) (*domain.Order, error) {
	if !quantity.IsPositive() {
		return nil, &domain.ValidationError{Message: "quantity must be greater than 0"}
	}
	if !price.IsPositive() {
		return nil, &domain.ValidationError{Message: "price must be greater than 0"}
	}

	account, err := b.accounts.Get(accountID)
	if err != nil {
		return nil, err
	}

	account.Mu.Lock()
	defer account.Mu.Unlock()

	if account.AvailableQuantity(asset.ID).LessThan(quantity) {
		return nil, domain.ErrInsufficientHoldings
	}

	h := account.Holding(asset.ID)
	h.Reserved = h.Reserved.Add(quantity)

	order := domain.NewOrder(uuid.New().String(), accountID, asset, quantity, price, time.Now())
	b.orders.Create(order)

	return order, nil
}
