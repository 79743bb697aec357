package service

import (
	"context"
	"errors"
	"testing"

	"github.com/ksenkov/cryptoledger/internal/domain"
	"github.com/ksenkov/cryptoledger/internal/engine"
	"github.com/ksenkov/cryptoledger/internal/oracle"
	"github.com/ksenkov/cryptoledger/internal/store"
)

type orderEnv struct {
	svc      *OrderService
	accounts *store.AccountStore
	orders   *store.OrderStore
}

func newOrderEnv() *orderEnv {
	accounts := store.NewAccountStore()
	orders := store.NewOrderStore()
	transactions := store.NewTransactionStore()
	market := oracle.NewStatic(
		oracle.Listing{Asset: btcAsset, Quote: domain.Quote{UnitPrice: dec("50000")}},
	)
	book := engine.NewOrderBook(accounts, orders)
	settler := engine.NewSettlementEngine(accounts, orders, transactions, rate)
	return &orderEnv{
		svc:      NewOrderService(book, settler, orders, market),
		accounts: accounts,
		orders:   orders,
	}
}

func (env *orderEnv) fund(t *testing.T, id, balance string) *domain.Account {
	t.Helper()
	a := &domain.Account{AccountID: id, Balance: dec(balance), Holdings: map[string]*domain.Holding{}}
	if err := env.accounts.Create(a); err != nil {
		t.Fatalf("create account: %v", err)
	}
	return a
}

func TestCreateOrder_Success(t *testing.T) {
	env := newOrderEnv()
	seller := env.fund(t, "seller", "0")
	seller.Holdings["bitcoin"] = &domain.Holding{Quantity: dec("1")}

	order, err := env.svc.CreateOrder(context.Background(), CreateOrderRequest{
		AccountID: "seller",
		AssetID:   "bitcoin",
		Quantity:  dec("0.5"),
		Price:     dec("60000"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Asset.Symbol != "BTC" {
		t.Errorf("got symbol %q, want BTC", order.Asset.Symbol)
	}
	if !seller.Holdings["bitcoin"].Reserved.Equal(dec("0.5")) {
		t.Errorf("got reserved %s, want 0.5", seller.Holdings["bitcoin"].Reserved)
	}
}

func TestCreateOrder_UnknownAsset(t *testing.T) {
	env := newOrderEnv()
	env.fund(t, "seller", "0")

	_, err := env.svc.CreateOrder(context.Background(), CreateOrderRequest{
		AccountID: "seller",
		AssetID:   "dogecoin",
		Quantity:  dec("1"),
		Price:     dec("1"),
	})
	if !errors.Is(err, domain.ErrAssetNotFound) {
		t.Errorf("got error %v, want ErrAssetNotFound", err)
	}
}

func TestListOrders_InvalidSort(t *testing.T) {
	env := newOrderEnv()

	_, err := env.svc.ListOrders(ListOrdersRequest{SortBy: "volume"})
	var validationErr *domain.ValidationError
	if !errors.As(err, &validationErr) {
		t.Errorf("got error %v, want ValidationError", err)
	}

	_, err = env.svc.ListOrders(ListOrdersRequest{Dir: "sideways"})
	if !errors.As(err, &validationErr) {
		t.Errorf("got error %v, want ValidationError", err)
	}
}

func TestListOrders_DefaultsToOpenNewestFirst(t *testing.T) {
	env := newOrderEnv()
	seller := env.fund(t, "seller", "0")
	seller.Holdings["bitcoin"] = &domain.Holding{Quantity: dec("3")}

	var created []*domain.Order
	for i := 0; i < 3; i++ {
		o, err := env.svc.CreateOrder(context.Background(), CreateOrderRequest{
			AccountID: "seller",
			AssetID:   "bitcoin",
			Quantity:  dec("1"),
			Price:     dec("100"),
		})
		if err != nil {
			t.Fatalf("create order: %v", err)
		}
		created = append(created, o)
	}

	listed, err := env.svc.ListOrders(ListOrdersRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(listed) != 3 {
		t.Fatalf("got %d orders, want 3", len(listed))
	}

	// Fill one and confirm the default listing drops it.
	created[0].Fill(created[0].CreatedAt)
	listed, err = env.svc.ListOrders(ListOrdersRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(listed) != 2 {
		t.Errorf("got %d open orders, want 2", len(listed))
	}
}

func TestExecuteOrder_EndToEnd(t *testing.T) {
	env := newOrderEnv()
	seller := env.fund(t, "seller", "0")
	seller.Holdings["bitcoin"] = &domain.Holding{Quantity: dec("1")}
	buyer := env.fund(t, "buyer", "70000")

	order, err := env.svc.CreateOrder(context.Background(), CreateOrderRequest{
		AccountID: "seller",
		AssetID:   "bitcoin",
		Quantity:  dec("1"),
		Price:     dec("60000"),
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	res, err := env.svc.ExecuteOrder(order.OrderID, "buyer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.BuyerBalance.Equal(dec("10000")) {
		t.Errorf("got buyer balance %s, want 10000", res.BuyerBalance)
	}
	if !buyer.Holdings["bitcoin"].Quantity.Equal(dec("1")) {
		t.Errorf("got buyer holding %s, want 1", buyer.Holdings["bitcoin"].Quantity)
	}
}
