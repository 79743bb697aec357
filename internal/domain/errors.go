package domain

import "errors"

// Sentinel errors for domain-level error handling.
// The handler layer maps these to HTTP status codes.
var (
	ErrAccountAlreadyExists = errors.New("account_already_exists")
	ErrAccountNotFound      = errors.New("account_not_found")
	ErrAssetNotFound        = errors.New("asset_not_found")
	ErrPriceUnavailable     = errors.New("price_unavailable")
	ErrInsufficientFunds    = errors.New("insufficient_funds")
	ErrInsufficientHoldings = errors.New("insufficient_holdings")
	ErrOrderNotFound        = errors.New("order_not_found")
	ErrOrderAlreadyFilled   = errors.New("order_already_filled")
	ErrSelfTrade            = errors.New("self_trade")
)

// ValidationError represents a request validation failure.
// Validation failures are rejected before any ledger mutation.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
