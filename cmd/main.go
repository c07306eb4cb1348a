package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"bakery/internal/config"
	httpapi "bakery/internal/http"
	"bakery/internal/logging"
	"bakery/internal/repository"
	"bakery/internal/service"

	_ "bakery/docs"
)

// @title Bakery storefront API
// @version 1.0
// @description Catalog, cart and order hand-off for the bakery storefront.
// @BasePath /api/v1
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logging.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if cfg.SheetID == "" {
		log.Warn("SHEET_ID is not set; catalog requests will fail with a configuration error")
	}

	client := repository.NewTracedHTTPClient(nil)
	client.Timeout = cfg.HTTPClientTimeout
	source := repository.NewSheetSource(client, cfg.SheetBaseURL, cfg.SheetID)
	catalog := service.NewCatalogService(source,
		service.WithTTL(cfg.CatalogCacheTTL),
		service.WithServeStale(cfg.CatalogServeStale),
		service.WithCatalogLogger(log.Named("catalog")),
	)

	carts, tx, closeStore := openCartStore(cfg, log)
	defer closeStore()

	cartsSvc := service.NewCartService(carts, tx, catalog, log.Named("cart"))
	ordersSvc := service.NewOrderService(carts, tx, cfg.WhatsAppNumber, cfg.CurrencySymbol, log.Named("order"))

	srv := httpapi.NewServer(catalog, cartsSvc, ordersSvc, cfg.CurrencySymbol, log.Named("http"))

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Engine(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", httpServer.Addr), zap.String("env", cfg.Env))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error("shutdown error", zap.Error(err))
	}
}

func openCartStore(cfg config.Config, log *zap.Logger) (repository.CartRepository, repository.TxManager, func()) {
	if strings.EqualFold(cfg.CartBackend, "redis") {
		client, err := repository.OpenRedis(context.Background(), cfg.RedisURL)
		if err != nil {
			log.Fatal("redis", zap.Error(err))
		}
		log.Info("cart backend: redis", zap.Duration("ttl", cfg.CartTTL))
		return repository.NewRedisCarts(client, cfg.CartTTL), repository.NewMutexTx(), func() { _ = client.Close() }
	}
	store := repository.NewMemoryStore()
	log.Info("cart backend: memory")
	return store, repository.NewMemoryTx(store), func() {}
}
