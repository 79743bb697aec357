package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ksenkov/cryptoledger/internal/domain"
	"github.com/ksenkov/cryptoledger/internal/oracle"
	"github.com/ksenkov/cryptoledger/internal/store"
)

var ethAsset = domain.Asset{ID: "ethereum", Symbol: "ETH", Name: "Ethereum"}

func newPortfolioEnv() (*PortfolioService, *store.AccountStore, *store.TransactionStore) {
	accounts := store.NewAccountStore()
	transactions := store.NewTransactionStore()
	market := oracle.NewStatic(
		oracle.Listing{Asset: btcAsset, Quote: domain.Quote{UnitPrice: dec("50000")}},
		oracle.Listing{Asset: ethAsset, Quote: domain.Quote{UnitPrice: dec("3000")}},
	)
	return NewPortfolioService(accounts, transactions, market), accounts, transactions
}

func TestPortfolio_ValuesHoldings(t *testing.T) {
	svc, accounts, _ := newPortfolioEnv()
	a := &domain.Account{
		AccountID: "u1",
		Balance:   dec("1000"),
		Holdings: map[string]*domain.Holding{
			"bitcoin":  {Quantity: dec("0.1")},
			"ethereum": {Quantity: dec("2"), Reserved: dec("1")},
		},
	}
	if err := accounts.Create(a); err != nil {
		t.Fatalf("create account: %v", err)
	}

	p, err := svc.Portfolio(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.BalanceUSD.Equal(dec("1000")) {
		t.Errorf("got balance %s, want 1000", p.BalanceUSD)
	}
	// 0.1×50000 + 2×3000 = 11000; reserved quantity is still owned.
	if !p.PortfolioValue.Equal(dec("11000")) {
		t.Errorf("got portfolio value %s, want 11000", p.PortfolioValue)
	}
	if !p.TotalValue.Equal(dec("12000")) {
		t.Errorf("got total value %s, want 12000", p.TotalValue)
	}
	if len(p.Holdings) != 2 {
		t.Fatalf("got %d holdings, want 2", len(p.Holdings))
	}
	// Holdings are sorted by asset id.
	if p.Holdings[0].Asset.ID != "bitcoin" || p.Holdings[1].Asset.ID != "ethereum" {
		t.Errorf("got holding order %s, %s; want bitcoin, ethereum", p.Holdings[0].Asset.ID, p.Holdings[1].Asset.ID)
	}
}

func TestPortfolio_UnquotableAssetExcludedFromValue(t *testing.T) {
	svc, accounts, _ := newPortfolioEnv()
	a := &domain.Account{
		AccountID: "u1",
		Balance:   dec("100"),
		Holdings: map[string]*domain.Holding{
			"bitcoin":  {Quantity: dec("0.1")},
			"delisted": {Quantity: dec("500")},
		},
	}
	if err := accounts.Create(a); err != nil {
		t.Fatalf("create account: %v", err)
	}

	p, err := svc.Portfolio(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.PortfolioValue.Equal(dec("5000")) {
		t.Errorf("got portfolio value %s, want 5000", p.PortfolioValue)
	}
	if len(p.Holdings) != 2 {
		t.Fatalf("got %d holdings, want 2 (unquotable still listed)", len(p.Holdings))
	}
	for _, h := range p.Holdings {
		if h.Asset.ID == "delisted" && h.Value != nil {
			t.Error("expected nil value for unquotable asset")
		}
	}
}

func TestPortfolio_UnknownAccount(t *testing.T) {
	svc, _, _ := newPortfolioEnv()

	_, err := svc.Portfolio(context.Background(), "ghost")
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("got error %v, want ErrAccountNotFound", err)
	}
}

func TestTransactions_DefaultAndClampedLimit(t *testing.T) {
	svc, accounts, transactions := newPortfolioEnv()
	a := &domain.Account{AccountID: "u1", Balance: dec("0"), Holdings: map[string]*domain.Holding{}}
	if err := accounts.Create(a); err != nil {
		t.Fatalf("create account: %v", err)
	}
	for i := 0; i < 60; i++ {
		transactions.Append(&domain.Transaction{
			TransactionID: fmt.Sprintf("tx-%d", i),
			AccountID:     "u1",
			Asset:         btcAsset,
			Side:          domain.TradeSideBuy,
			ExecutedAt:    time.Now(),
		})
	}

	got, err := svc.Transactions("u1", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 50 {
		t.Errorf("got %d transactions with default limit, want 50", len(got))
	}

	got, _ = svc.Transactions("u1", 1000)
	if len(got) != 50 {
		t.Errorf("got %d transactions with oversized limit, want 50", len(got))
	}

	got, _ = svc.Transactions("u1", 5)
	if len(got) != 5 {
		t.Errorf("got %d transactions with limit 5, want 5", len(got))
	}
}
