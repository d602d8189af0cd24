package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hellobooks/lending-api/borrow"
	"github.com/hellobooks/lending-api/config"
	"github.com/hellobooks/lending-api/httpapi"
	"github.com/hellobooks/lending-api/identity"
	"github.com/hellobooks/lending-api/lending/postgresengine"
	"github.com/hellobooks/lending-api/loanquery"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if err := run(logger); err != nil {
		logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	apiCfg := config.LoadAPIConfig()

	poolCfg, err := config.PostgresPGXPoolConfig()
	if err != nil {
		return err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	store, err := postgresengine.NewStoreFromPGXPool(pool, postgresengine.WithLogger(logger))
	if err != nil {
		return err
	}

	if err = store.CreateSchema(ctx); err != nil {
		return err
	}

	authService := identity.NewService(store, store, apiCfg.AuthSecret, identity.WithTokenTTL(apiCfg.TokenTTL))
	borrowService := borrow.NewService(store)
	loanService := loanquery.NewService(store)

	router := httpapi.NewRouter(authService, store, borrowService, loanService)

	server := &http.Server{
		Addr:    apiCfg.ListenAddr,
		Handler: router,
	}

	serveErr := make(chan error, 1)

	go func() {
		logger.Info("listening", "addr", apiCfg.ListenAddr)
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err = <-serveErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err = server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
