package engine

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ksenkov/cryptoledger/internal/domain"
	"github.com/ksenkov/cryptoledger/internal/store"
)

// SettlementResult reports the outcome of a settled order: the filled
// order, both ledger transactions, and the buyer's new balance for
// refreshing derived views.
type SettlementResult struct {
	Order             *domain.Order
	BuyerTransaction  *domain.Transaction
	SellerTransaction *domain.Transaction
	BuyerBalance      decimal.Decimal
}

// SettlementEngine executes resting sell orders: the asset moves from
// the seller's reservation to the buyer's holding and USD moves the
// other way, atomically or not at all.
//
// Commission is charged to the seller, computed exactly as in the
// immediate-sell path: settlement completes the seller's sell, so the
// fee falls on the same side. The buyer pays gross = quantity×price.
type SettlementEngine struct {
	accounts       *store.AccountStore
	orders         *store.OrderStore
	transactions   *store.TransactionStore
	commissionRate decimal.Decimal
}

// NewSettlementEngine creates a SettlementEngine charging the given
// seller-side commission rate.
func NewSettlementEngine(
	accounts *store.AccountStore,
	orders *store.OrderStore,
	transactions *store.TransactionStore,
	commissionRate decimal.Decimal,
) *SettlementEngine {
	return &SettlementEngine{
		accounts:       accounts,
		orders:         orders,
		transactions:   transactions,
		commissionRate: commissionRate,
	}
}

// SettleOrder fills an open order on behalf of the buyer.
//
// Both accounts are locked in deterministic ID order; concurrent
// settlement attempts on the same order serialize on the seller's
// lock, and the open→filled transition happens exactly once via the
// order's compare-and-swap. Every failure path leaves the order open
// and both ledgers untouched.
func (e *SettlementEngine) SettleOrder(orderID, buyerID string) (*SettlementResult, error) {
	order, err := e.orders.Get(orderID)
	if err != nil {
		return nil, err
	}
	if order.AccountID == buyerID {
		return nil, domain.ErrSelfTrade
	}

	buyer, err := e.accounts.Get(buyerID)
	if err != nil {
		return nil, err
	}
	seller, err := e.accounts.Get(order.AccountID)
	if err != nil {
		return nil, err
	}

	unlock := lockPair(buyer, seller)
	defer unlock()

	if order.Status() != domain.OrderStatusOpen {
		return nil, domain.ErrOrderAlreadyFilled
	}

	gross := order.Gross()
	if buyer.Balance.LessThan(gross) {
		return nil, domain.ErrInsufficientFunds
	}

	now := time.Now()
	if !order.Fill(now) {
		return nil, domain.ErrOrderAlreadyFilled
	}

	fee := gross.Mul(e.commissionRate)
	net := gross.Sub(fee)
	assetID := order.Asset.ID

	// Buyer: pay gross, receive the asset.
	buyer.Balance = buyer.Balance.Sub(gross)
	bh := buyer.Holding(assetID)
	bh.Quantity = bh.Quantity.Add(order.Quantity)

	// Seller: reservation is consumed, proceeds net of fee credited.
	sh := seller.Holding(assetID)
	sh.Quantity = sh.Quantity.Sub(order.Quantity)
	sh.Reserved = sh.Reserved.Sub(order.Quantity)
	seller.PruneHolding(assetID)
	seller.Balance = seller.Balance.Add(net)

	buyerTx := &domain.Transaction{
		TransactionID: uuid.New().String(),
		AccountID:     buyer.AccountID,
		Asset:         order.Asset,
		Side:          domain.TradeSideBuy,
		Quantity:      order.Quantity,
		UnitPrice:     order.Price,
		Fee:           decimal.Zero,
		Total:         gross,
		NewBalance:    buyer.Balance,
		ExecutedAt:    now,
	}
	sellerTx := &domain.Transaction{
		TransactionID: uuid.New().String(),
		AccountID:     seller.AccountID,
		Asset:         order.Asset,
		Side:          domain.TradeSideSell,
		Quantity:      order.Quantity,
		UnitPrice:     order.Price,
		Fee:           fee,
		Total:         net,
		NewBalance:    seller.Balance,
		ExecutedAt:    now,
	}
	e.transactions.Append(buyerTx)
	e.transactions.Append(sellerTx)

	return &SettlementResult{
		Order:             order,
		BuyerTransaction:  buyerTx,
		SellerTransaction: sellerTx,
		BuyerBalance:      buyer.Balance,
	}, nil
}

// lockPair locks two accounts in deterministic ID order and returns
// the matching unlock. Ordering prevents deadlock when two settlements
// touch the same pair from opposite sides.
func lockPair(a, b *domain.Account) func() {
	first, second := a, b
	if second.AccountID < first.AccountID {
		first, second = second, first
	}
	first.Mu.Lock()
	second.Mu.Lock()
	return func() {
		second.Mu.Unlock()
		first.Mu.Unlock()
	}
}
