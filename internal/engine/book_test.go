package engine

import (
	"errors"
	"testing"

	"github.com/ksenkov/cryptoledger/internal/domain"
	"github.com/ksenkov/cryptoledger/internal/store"
)

func newTestOrderBook() (*OrderBook, *store.AccountStore, *store.OrderStore) {
	accounts := store.NewAccountStore()
	orders := store.NewOrderStore()
	return NewOrderBook(accounts, orders), accounts, orders
}

func TestPlaceOrder_ReservesHolding(t *testing.T) {
	book, accounts, orders := newTestOrderBook()
	a := registerAccount(t, accounts, "seller", "0")
	a.Holdings["bitcoin"] = &domain.Holding{Quantity: dec("1")}

	order, err := book.PlaceOrder("seller", btcAsset, dec("0.4"), dec("60000"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Status() != domain.OrderStatusOpen {
		t.Errorf("got status %s, want open", order.Status())
	}
	if !a.Holdings["bitcoin"].Reserved.Equal(dec("0.4")) {
		t.Errorf("got reserved %s, want 0.4", a.Holdings["bitcoin"].Reserved)
	}
	if !a.AvailableQuantity("bitcoin").Equal(dec("0.6")) {
		t.Errorf("got available %s, want 0.6", a.AvailableQuantity("bitcoin"))
	}

	stored, err := orders.Get(order.OrderID)
	if err != nil {
		t.Fatalf("order not stored: %v", err)
	}
	if stored != order {
		t.Error("stored order differs from returned order")
	}
}

func TestPlaceOrder_InsufficientHoldings(t *testing.T) {
	book, accounts, _ := newTestOrderBook()
	a := registerAccount(t, accounts, "seller", "0")
	a.Holdings["bitcoin"] = &domain.Holding{Quantity: dec("0.3")}

	_, err := book.PlaceOrder("seller", btcAsset, dec("0.4"), dec("60000"))
	if !errors.Is(err, domain.ErrInsufficientHoldings) {
		t.Fatalf("got error %v, want ErrInsufficientHoldings", err)
	}
	if !a.Holdings["bitcoin"].Reserved.IsZero() {
		t.Errorf("reservation changed on failed placement: got %s, want 0", a.Holdings["bitcoin"].Reserved)
	}
}

func TestPlaceOrder_CannotDoubleReserve(t *testing.T) {
	book, accounts, _ := newTestOrderBook()
	a := registerAccount(t, accounts, "seller", "0")
	a.Holdings["bitcoin"] = &domain.Holding{Quantity: dec("1")}

	if _, err := book.PlaceOrder("seller", btcAsset, dec("0.7"), dec("60000")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Only 0.3 remains unreserved.
	_, err := book.PlaceOrder("seller", btcAsset, dec("0.7"), dec("61000"))
	if !errors.Is(err, domain.ErrInsufficientHoldings) {
		t.Errorf("got error %v, want ErrInsufficientHoldings", err)
	}
}

func TestPlaceOrder_Validation(t *testing.T) {
	book, accounts, _ := newTestOrderBook()
	registerAccount(t, accounts, "seller", "0")

	tests := []struct {
		name     string
		quantity string
		price    string
	}{
		{"zero quantity", "0", "100"},
		{"negative quantity", "-1", "100"},
		{"zero price", "1", "0"},
		{"negative price", "1", "-5"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := book.PlaceOrder("seller", btcAsset, dec(tc.quantity), dec(tc.price))
			var validationErr *domain.ValidationError
			if !errors.As(err, &validationErr) {
				t.Errorf("got error %v, want ValidationError", err)
			}
		})
	}
}
