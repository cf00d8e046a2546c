package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/api-sage/banking-ledger/internal/adapter/http/controller"
	"github.com/api-sage/banking-ledger/internal/adapter/http/middleware"
	"github.com/api-sage/banking-ledger/internal/adapter/http/router"
	"github.com/api-sage/banking-ledger/internal/adapter/repository/implementations"
	"github.com/api-sage/banking-ledger/internal/config"
	"github.com/api-sage/banking-ledger/internal/usecase/services"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	migrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := implementations.RunMigrations(migrateCtx, cfg.DatabaseDSN, cfg.MigrationsDir); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	db, err := implementations.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	userRepo := implementations.NewUserRepository(db)
	transactionRepo := implementations.NewTransactionRepository(db)
	ledgerRepo := implementations.NewLedgerRepository(db)

	userService := services.NewUserService(userRepo)
	transactionService := services.NewTransactionService(ledgerRepo, transactionRepo)
	transferService := services.NewTransferService(userRepo, ledgerRepo)

	var authMiddleware func(http.Handler) http.Handler
	if cfg.ChannelID != "" && cfg.ChannelKey != "" {
		authMiddleware = middleware.BasicAuth(cfg.ChannelID, cfg.ChannelKey)
	}

	mux := router.New(
		controller.NewUserController(userService),
		controller.NewTransactionController(transactionService),
		controller.NewTransferController(transferService),
		authMiddleware,
		db.Ping,
	)

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("listening on %s", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("server: %v", err)
	}
}
