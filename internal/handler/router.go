package handler

import (
	"bufio"
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ksenkov/cryptoledger/internal/oracle"
	"github.com/ksenkov/cryptoledger/internal/service"
	"github.com/ksenkov/cryptoledger/internal/session"
	"github.com/ksenkov/cryptoledger/internal/store"
)

// accountHeader carries the opaque account identity established by the
// external auth layer. The core trusts it and performs no
// authentication itself.
const accountHeader = "X-Account-ID"

type contextKey string

const accountIDKey contextKey = "account_id"

// NewRouter creates a chi router with all routes registered, request
// logging, and Content-Type validation middleware.
func NewRouter(
	accountSvc *service.AccountService,
	tradeSvc *service.TradeService,
	orderSvc *service.OrderService,
	portfolioSvc *service.PortfolioService,
	market oracle.Oracle,
	accounts *store.AccountStore,
	cache *session.BalanceCache,
	hub *session.Hub,
	logger *slog.Logger,
) chi.Router {
	r := chi.NewRouter()

	// Global middleware.
	r.Use(requestLogging(logger))
	r.Use(contentTypeJSON)

	// Create handlers.
	accountH := NewAccountHandler(accountSvc)
	tradeH := NewTradeHandler(tradeSvc, cache)
	orderH := NewOrderHandler(orderSvc, cache)
	portfolioH := NewPortfolioHandler(portfolioSvc)
	marketH := NewMarketHandler(market)
	streamH := NewBalanceStreamHandler(hub, cache, logger)

	// Health check.
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		// Registration and market data need no account identity.
		r.Post("/accounts", accountH.Register)
		r.Get("/assets/{asset_id}/price", marketH.GetPrice)

		// Ledger operations act on the authenticated account.
		r.Group(func(r chi.Router) {
			r.Use(requireAccount(accounts))

			r.Post("/buy", tradeH.Buy)
			r.Post("/sell", tradeH.Sell)
			r.Post("/orders", orderH.CreateOrder)
			r.Get("/orders", orderH.ListOrders)
			r.Post("/orders/{order_id}/execute", orderH.ExecuteOrder)
			r.Get("/portfolio", portfolioH.GetPortfolio)
			r.Get("/transactions", portfolioH.ListTransactions)
			r.Get("/ws/balance", streamH.Stream)
		})
	})

	return r
}

// requireAccount extracts the account identity from the X-Account-ID
// header (falling back to the account_id query parameter for websocket
// clients that cannot set headers) and rejects requests without a
// known account.
func requireAccount(accounts *store.AccountStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			accountID := r.Header.Get(accountHeader)
			if accountID == "" {
				accountID = r.URL.Query().Get("account_id")
			}
			if accountID == "" {
				WriteError(w, http.StatusUnauthorized, "unauthenticated",
					"account identity is required")
				return
			}
			if !accounts.Exists(accountID) {
				WriteError(w, http.StatusUnauthorized, "unknown_account",
					"account identity is not recognized")
				return
			}
			ctx := context.WithValue(r.Context(), accountIDKey, accountID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// accountID returns the authenticated account identity placed in the
// request context by requireAccount.
func accountID(r *http.Request) string {
	id, _ := r.Context().Value(accountIDKey).(string)
	return id
}

// requestLogging returns middleware that logs each request's method, path,
// status code, and duration using slog.
func requestLogging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.Info("request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

// Hijack passes through to the underlying writer so the balance
// stream's websocket upgrade works behind the logging middleware.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return hj.Hijack()
}

// contentTypeJSON is middleware that validates Content-Type for POST, PUT, and
// PATCH requests carrying a body. If the Content-Type header doesn't start
// with "application/json", it returns 400 Bad Request before the handler runs.
// Bodyless requests (such as order execution) pass through.
func contentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hasBody := r.ContentLength != 0
		if hasBody && (r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch) {
			ct := r.Header.Get("Content-Type")
			if ct == "" || !strings.HasPrefix(ct, "application/json") {
				WriteError(w, http.StatusBadRequest, "invalid_request",
					"Content-Type must be application/json")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
