package service

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ksenkov/cryptoledger/internal/domain"
	"github.com/ksenkov/cryptoledger/internal/store"
)

var accountIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// RegisterAccountRequest represents the input for account registration.
type RegisterAccountRequest struct {
	AccountID string
}

// AccountService creates ledger accounts. Authentication happens
// outside the core; by the time a request reaches this layer the
// account identity is already established and trusted.
type AccountService struct {
	accounts       *store.AccountStore
	initialBalance decimal.Decimal
}

// NewAccountService creates an AccountService crediting each new
// account with the given initial USD balance.
func NewAccountService(accounts *store.AccountStore, initialBalance decimal.Decimal) *AccountService {
	return &AccountService{
		accounts:       accounts,
		initialBalance: initialBalance,
	}
}

// Register validates the request and creates the account.
func (s *AccountService) Register(req RegisterAccountRequest) (*domain.Account, error) {
	if !accountIDRegex.MatchString(req.AccountID) {
		return nil, &domain.ValidationError{
			Message: "account_id must match ^[a-zA-Z0-9_-]{1,64}$",
		}
	}

	account := &domain.Account{
		AccountID: req.AccountID,
		Balance:   s.initialBalance,
		Holdings:  make(map[string]*domain.Holding),
		CreatedAt: time.Now(),
	}
	if err := s.accounts.Create(account); err != nil {
		return nil, err
	}
	return account, nil
}
