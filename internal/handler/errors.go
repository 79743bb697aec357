package handler

import (
	"errors"
	"net/http"

	"github.com/ksenkov/cryptoledger/internal/domain"
)

// mapError maps domain errors to HTTP responses. None of these errors
// leave the ledger partially updated, so callers may retry transient
// failures verbatim.
func mapError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		WriteError(w, http.StatusBadRequest, "validation_error", validationErr.Message)
		return
	}

	switch {
	case errors.Is(err, domain.ErrAccountAlreadyExists):
		WriteError(w, http.StatusConflict, "account_already_exists", err.Error())
	case errors.Is(err, domain.ErrAccountNotFound):
		WriteError(w, http.StatusNotFound, "account_not_found", err.Error())
	case errors.Is(err, domain.ErrAssetNotFound):
		WriteError(w, http.StatusNotFound, "asset_not_found", err.Error())
	case errors.Is(err, domain.ErrPriceUnavailable):
		WriteError(w, http.StatusBadGateway, "price_unavailable", err.Error())
	case errors.Is(err, domain.ErrInsufficientFunds):
		WriteError(w, http.StatusConflict, "insufficient_funds", err.Error())
	case errors.Is(err, domain.ErrInsufficientHoldings):
		WriteError(w, http.StatusConflict, "insufficient_holdings", err.Error())
	case errors.Is(err, domain.ErrOrderNotFound):
		WriteError(w, http.StatusNotFound, "order_not_found", err.Error())
	case errors.Is(err, domain.ErrOrderAlreadyFilled):
		WriteError(w, http.StatusConflict, "order_already_filled", err.Error())
	case errors.Is(err, domain.ErrSelfTrade):
		WriteError(w, http.StatusConflict, "self_trade", err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}
