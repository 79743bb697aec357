package domain

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents the lifecycle state of a resting sell order.
// The only transition is open → filled, and it happens exactly once.
type OrderStatus string

const (
	OrderStatusOpen   OrderStatus = "open"
	OrderStatusFilled OrderStatus = "filled"
)

// Order is a resting sell intent: a fixed quantity of an asset offered
// at a price fixed at creation, independent of the live price. Orders
// are visible to all accounts and are never amended by their owner.
type Order struct {
	OrderID   string
	AccountID string
	Asset     Asset
	Quantity  decimal.Decimal
	Price     decimal.Decimal // USD per unit, fixed at creation
	CreatedAt time.Time

	mu       sync.Mutex
	status   OrderStatus
	filledAt *time.Time
}

// NewOrder creates an open order.
func NewOrder(orderID, accountID string, asset Asset, quantity, price decimal.Decimal, createdAt time.Time) *Order {
	return &Order{
		OrderID:   orderID,
		AccountID: accountID,
		Asset:     asset,
		Quantity:  quantity,
		Price:     price,
		CreatedAt: createdAt,
		status:    OrderStatusOpen,
	}
}

// Status returns the current lifecycle state.
func (o *Order) Status() OrderStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

// FilledAt returns the settlement time, or nil while the order is open.
func (o *Order) FilledAt() *time.Time {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.filledAt
}

// Fill transitions the order from open to filled. It reports whether
// this call performed the transition: under concurrent settlement
// attempts exactly one caller observes true, every other caller false.
func (o *Order) Fill(at time.Time) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.status != OrderStatusOpen {
		return false
	}
	o.status = OrderStatusFilled
	o.filledAt = &at
	return true
}

// Gross returns quantity × price, the USD value of the order.
func (o *Order) Gross() decimal.Decimal {
	return o.Quantity.Mul(o.Price)
}
