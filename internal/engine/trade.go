package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ksenkov/cryptoledger/internal/domain"
	"github.com/ksenkov/cryptoledger/internal/oracle"
	"github.com/ksenkov/cryptoledger/internal/store"
)

// TradeEngine applies immediate buy/sell requests against the price
// oracle and the ledger store, computing commission and validating
// sufficiency of funds or holdings.
type TradeEngine struct {
	oracle         oracle.Oracle
	accounts       *store.AccountStore
	transactions   *store.TransactionStore
	commissionRate decimal.Decimal
}

// NewTradeEngine creates a TradeEngine charging the given commission
// rate (a fraction of gross value, e.g. 0.015 for 1.5%).
func NewTradeEngine(
	o oracle.Oracle,
	accounts *store.AccountStore,
	transactions *store.TransactionStore,
	commissionRate decimal.Decimal,
) *TradeEngine {
	return &TradeEngine{
		oracle:         o,
		accounts:       accounts,
		transactions:   transactions,
		commissionRate: commissionRate,
	}
}

// ExecuteTrade executes an immediate trade at the live oracle price.
//
// For buys: total cost = quantity×price×(1+rate) is debited from the
// balance and quantity is credited to the holding. For sells: net
// proceeds = quantity×price×(1−rate) are credited to the balance and
// quantity is debited from the available holding.
//
// Balance mutation, holding mutation, and the transaction append all
// happen under the account's lock: either all apply or none do. A
// failed call leaves no partial effect, so it is safe to retry.
func (e *TradeEngine) ExecuteTrade(
	ctx context.Context,
	accountID, assetID string,
	side domain.TradeSide,
	quantity decimal.Decimal,
) (*domain.Transaction, error) {
	if !quantity.IsPositive() {
		return nil, &domain.ValidationError{Message: "quantity must be greater than 0"}
	}

	// Fetch the live price before touching the ledger. Oracle failure
	// means trade failure: the ledger never guesses a price.
	listing, err := e.oracle.GetListing(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if !listing.Quote.UnitPrice.IsPositive() {
		return nil, fmt.Errorf("%w: non-positive price for %s", domain.ErrPriceUnavailable, assetID)
	}

	account, err := e.accounts.Get(accountID)
	if err != nil {
		return nil, err
	}

	gross := quantity.Mul(listing.Quote.UnitPrice)
	fee := gross.Mul(e.commissionRate)

	account.Mu.Lock()
	defer account.Mu.Unlock()

	var total decimal.Decimal
	switch side {
	case domain.TradeSideBuy:
		total = gross.Add(fee)
		if account.Balance.LessThan(total) {
			return nil, domain.ErrInsufficientFunds
		}
		account.Balance = account.Balance.Sub(total)
		account.Holding(assetID).Quantity = account.Holding(assetID).Quantity.Add(quantity)

	case domain.TradeSideSell:
		if account.AvailableQuantity(assetID).LessThan(quantity) {
			return nil, domain.ErrInsufficientHoldings
		}
		total = gross.Sub(fee)
		h := account.Holding(assetID)
		h.Quantity = h.Quantity.Sub(quantity)
		account.PruneHolding(assetID)
		account.Balance = account.Balance.Add(total)

	default:
		return nil, &domain.ValidationError{Message: "side must be 'buy' or 'sell'"}
	}

	tx := &domain.Transaction{
		TransactionID: uuid.New().String(),
		AccountID:     accountID,
		Asset:         listing.Asset,
		Side:          side,
		Quantity:      quantity,
		UnitPrice:     listing.Quote.UnitPrice,
		Fee:           fee,
		Total:         total,
		NewBalance:    account.Balance,
		ExecutedAt:    time.Now(),
	}
	e.transactions.Append(tx)

	return tx, nil
}
