package handler

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/ksenkov/cryptoledger/internal/domain"
	"github.com/ksenkov/cryptoledger/internal/service"
)

// AccountHandler handles HTTP requests for account endpoints.
type AccountHandler struct {
	accountSvc *service.AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountSvc *service.AccountService) *AccountHandler {
	return &AccountHandler{accountSvc: accountSvc}
}

// registerAccountRequest is the JSON request body for POST /api/accounts.
type registerAccountRequest struct {
	AccountID string `json:"account_id"`
}

// accountResponse is the JSON representation of a ledger account.
type accountResponse struct {
	AccountID  string          `json:"account_id"`
	BalanceUSD decimal.Decimal `json:"balance_usd"`
	CreatedAt  string          `json:"created_at"`
}

// Register handles POST /api/accounts.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerAccountRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	account, err := h.accountSvc.Register(service.RegisterAccountRequest{
		AccountID: req.AccountID,
	})
	if err != nil {
		mapError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, buildAccountResponse(account))
}

func buildAccountResponse(a *domain.Account) accountResponse {
	return accountResponse{
		AccountID:  a.AccountID,
		BalanceUSD: a.Balance,
		CreatedAt:  a.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}
