package store

import (
	"sync"

	"github.com/ksenkov/cryptoledger/internal/domain"
)

// TransactionStore is a thread-safe append-only store for completed
// transactions, keyed by account_id in chronological order. It forms
// the audit trail: records are never mutated or removed.
type TransactionStore struct {
	mu           sync.RWMutex
	transactions map[string][]*domain.Transaction // account_id → chronological
}

// NewTransactionStore creates an empty TransactionStore.
func NewTransactionStore() *TransactionStore {
	return &TransactionStore{
		transactions: make(map[string][]*domain.Transaction),
	}
}

// Append adds a transaction to the account's chronological list.
func (s *TransactionStore) Append(t *domain.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.transactions[t.AccountID] = append(s.transactions[t.AccountID], t)
}

// ListByAccount returns up to limit transactions for an account in
// reverse chronological order (newest first).
func (s *TransactionStore) ListByAccount(accountID string, limit int) []*domain.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.transactions[accountID]

	result := make([]*domain.Transaction, 0, limit)
	for i := len(all) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, all[i])
	}
	return result
}
