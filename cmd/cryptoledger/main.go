package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ksenkov/cryptoledger/internal/config"
	"github.com/ksenkov/cryptoledger/internal/engine"
	"github.com/ksenkov/cryptoledger/internal/handler"
	"github.com/ksenkov/cryptoledger/internal/oracle"
	"github.com/ksenkov/cryptoledger/internal/service"
	"github.com/ksenkov/cryptoledger/internal/session"
	"github.com/ksenkov/cryptoledger/internal/store"
)

func main() {
	healthcheck := flag.Bool("healthcheck", false, "Run health check against running server")
	flag.Parse()

	// Handle -healthcheck flag: HTTP GET to localhost:PORT/healthz, exit 0/1.
	if *healthcheck {
		port := os.Getenv("PORT")
		if port == "" {
			port = "8080"
		}
		resp, err := http.Get(fmt.Sprintf("http://localhost:%s/healthz", port))
		if err != nil || resp.StatusCode != http.StatusOK {
			os.Exit(1)
		}
		os.Exit(0)
	}

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	// Instantiate stores.
	accountStore := store.NewAccountStore()
	orderStore := store.NewOrderStore()
	transactionStore := store.NewTransactionStore()

	// Price oracle with TTL quote cache.
	market, err := oracle.NewCoinGecko(cfg.OracleBaseURL, cfg.OracleTimeout, cfg.QuoteCacheTTL)
	if err != nil {
		logger.Error("failed to create price oracle", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Engines.
	tradeEngine := engine.NewTradeEngine(market, accountStore, transactionStore, cfg.CommissionRate)
	book := engine.NewOrderBook(accountStore, orderStore)
	settler := engine.NewSettlementEngine(accountStore, orderStore, transactionStore, cfg.CommissionRate)

	// Services.
	accountSvc := service.NewAccountService(accountStore, cfg.InitialBalance)
	tradeSvc := service.NewTradeService(tradeEngine)
	orderSvc := service.NewOrderService(book, settler, orderStore, market)
	portfolioSvc := service.NewPortfolioService(accountStore, transactionStore, market)

	// Session-facing balance fan-out.
	hub := session.NewHub(logger)
	balanceCache := session.NewBalanceCache(hub)

	// Router.
	router := handler.NewRouter(accountSvc, tradeSvc, orderSvc, portfolioSvc, market, accountStore, balanceCache, hub, logger)

	// Configure HTTP server.
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	// Start HTTP server in a goroutine.
	go func() {
		logger.Info("server starting", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Wait for SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutdown signal received", slog.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
}
