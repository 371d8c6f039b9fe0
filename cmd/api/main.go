package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/MulubahzumuKSipor/zynk-cart/internal/config"
	"github.com/MulubahzumuKSipor/zynk-cart/internal/db"
	"github.com/MulubahzumuKSipor/zynk-cart/internal/httpserver"
	cartrepo "github.com/MulubahzumuKSipor/zynk-cart/internal/repository/cart"
	tokenrepo "github.com/MulubahzumuKSipor/zynk-cart/internal/repository/token"
	userrepo "github.com/MulubahzumuKSipor/zynk-cart/internal/repository/user"
	variantrepo "github.com/MulubahzumuKSipor/zynk-cart/internal/repository/variant"
	authsvc "github.com/MulubahzumuKSipor/zynk-cart/internal/service/auth"
	cartsvc "github.com/MulubahzumuKSipor/zynk-cart/internal/service/cart"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	variantRepo := variantrepo.NewPostgres(dbpool, logger)
	cartRepo := cartrepo.NewPostgres(dbpool, logger)
	cartService := cartsvc.New(cartRepo, variantRepo)
	userRepo := userrepo.NewPostgres(dbpool, logger)
	tokenRepo := tokenrepo.NewPostgres(dbpool)
	authService := authsvc.New(userRepo, tokenRepo)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		CartSvc:        cartService,
		AuthSvc:        authService,
		CORSOrigins:    cfg.CORSOrigins,
		GuestCookieTTL: cfg.GuestCookieTTL,
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
