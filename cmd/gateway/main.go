package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"bookworm/internal/apiclient"
	"bookworm/internal/config"
	"bookworm/internal/db"
	"bookworm/internal/httpserver"
	badgerepo "bookworm/internal/repository/badge"
	cartrepo "bookworm/internal/repository/cart"
	tokenrepo "bookworm/internal/repository/token"
	cartsvc "bookworm/internal/service/cart"
	catalogsvc "bookworm/internal/service/catalog"
	checkoutsvc "bookworm/internal/service/checkout"
	sessionsvc "bookworm/internal/service/session"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[gateway] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	api := apiclient.New(cfg.APIBaseURL, logger)

	tokenRepo := tokenrepo.NewPostgres(dbpool)
	cartRepo := cartrepo.NewPostgres(dbpool)
	badgeRepo := badgerepo.NewPostgres(dbpool)

	sessionManager := sessionsvc.New(api, tokenRepo, logger,
		sessionsvc.WithRefreshLeeway(cfg.RefreshLeeway))
	defer sessionManager.Close()

	cartService := cartsvc.New(cartRepo, badgeRepo, logger)
	checkoutService := checkoutsvc.New(cartService, sessionManager, logger)
	catalogService := catalogsvc.New(api, sessionManager)

	// Cart partitions follow the session identity. A login moves the guest
	// cart into the user's partition; everything else is a plain switch.
	sessionManager.OnIdentityChange(func(ctx context.Context, change sessionsvc.IdentityChange) {
		if change.ViaLogin && change.Previous.IsAnonymous() && !change.Current.IsAnonymous() {
			if err := cartService.MigrateGuestTo(ctx, change.Current); err != nil {
				logger.Printf("migrate guest cart: %v", err)
			}
			return
		}
		if err := cartService.SwitchIdentity(ctx, change.Current); err != nil {
			logger.Printf("switch cart identity: %v", err)
		}
	})

	if err := sessionManager.Bootstrap(ctx); err != nil {
		logger.Printf("session bootstrap: %v", err)
	}
	if err := cartService.SwitchIdentity(ctx, sessionManager.Identity()); err != nil {
		logger.Printf("load cart: %v", err)
	}

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		Session:  sessionManager,
		Cart:     cartService,
		Checkout: checkoutService,
		Catalog:  catalogService,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
