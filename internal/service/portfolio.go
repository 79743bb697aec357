package service

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ksenkov/cryptoledger/internal/domain"
	"github.com/ksenkov/cryptoledger/internal/oracle"
	"github.com/ksenkov/cryptoledger/internal/store"
)

// transactionPageLimit caps how much history a single request returns.
const transactionPageLimit = 50

// PortfolioHolding is one valued position. UnitPrice and Value are nil
// when the oracle could not quote the asset; such positions are listed
// but excluded from the portfolio value.
type PortfolioHolding struct {
	Asset     domain.Asset
	Quantity  decimal.Decimal
	UnitPrice *decimal.Decimal
	Value     *decimal.Decimal
}

// Portfolio is the derived total view of an account: USD balance plus
// holdings valued at current prices. It is computed on demand, never
// stored.
type Portfolio struct {
	BalanceUSD     decimal.Decimal
	Holdings       []PortfolioHolding
	PortfolioValue decimal.Decimal
	TotalValue     decimal.Decimal
}

// PortfolioService assembles portfolio and transaction-history views.
type PortfolioService struct {
	accounts     *store.AccountStore
	transactions *store.TransactionStore
	oracle       oracle.Oracle
}

// NewPortfolioService creates a PortfolioService with the given
// dependencies.
func NewPortfolioService(
	accounts *store.AccountStore,
	transactions *store.TransactionStore,
	o oracle.Oracle,
) *PortfolioService {
	return &PortfolioService{
		accounts:     accounts,
		transactions: transactions,
		oracle:       o,
	}
}

// Portfolio values the account's holdings at live prices. Quantities
// include amounts reserved by open sell orders: the asset is still
// owned until settlement.
func (s *PortfolioService) Portfolio(ctx context.Context, accountID string) (*Portfolio, error) {
	account, err := s.accounts.Get(accountID)
	if err != nil {
		return nil, err
	}

	// Snapshot under the account lock so a concurrent trade can't
	// tear the balance/holdings pair.
	account.Mu.Lock()
	balance := account.Balance
	quantities := make(map[string]decimal.Decimal, len(account.Holdings))
	for assetID, h := range account.Holdings {
		quantities[assetID] = h.Quantity
	}
	account.Mu.Unlock()

	assetIDs := make([]string, 0, len(quantities))
	for assetID := range quantities {
		assetIDs = append(assetIDs, assetID)
	}
	sort.Strings(assetIDs)

	p := &Portfolio{
		BalanceUSD:     balance,
		Holdings:       make([]PortfolioHolding, 0, len(assetIDs)),
		PortfolioValue: decimal.Zero,
	}

	for _, assetID := range assetIDs {
		qty := quantities[assetID]
		holding := PortfolioHolding{
			Asset:    domain.Asset{ID: assetID},
			Quantity: qty,
		}

		if listing, err := s.oracle.GetListing(ctx, assetID); err == nil {
			price := listing.Quote.UnitPrice
			value := qty.Mul(price)
			holding.Asset = listing.Asset
			holding.UnitPrice = &price
			holding.Value = &value
			p.PortfolioValue = p.PortfolioValue.Add(value)
		}

		p.Holdings = append(p.Holdings, holding)
	}

	p.TotalValue = p.BalanceUSD.Add(p.PortfolioValue)
	return p, nil
}

// Transactions returns the account's history, newest first. limit <= 0
// means the default page size; anything above the cap is clamped.
func (s *PortfolioService) Transactions(accountID string, limit int) ([]*domain.Transaction, error) {
	if !s.accounts.Exists(accountID) {
		return nil, domain.ErrAccountNotFound
	}
	if limit <= 0 || limit > transactionPageLimit {
		limit = transactionPageLimit
	}
	return s.transactions.ListByAccount(accountID, limit), nil
}
