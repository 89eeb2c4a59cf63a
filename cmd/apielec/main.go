package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"apielec/internal/auth"
	"apielec/internal/config"
	"apielec/internal/consumption"
	"apielec/internal/db"
	"apielec/internal/httpserver"
	"apielec/internal/logging"
	"apielec/internal/respcache"
)

func main() {
	ctx := context.Background()
	logger := logging.New()

	cfg := config.Load()

	dbConn, err := db.OpenReadOnly(ctx, cfg.DBDSN)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer dbConn.Close()

	// Column names are fetched once here and reused for every response.
	store, err := consumption.NewStore(ctx, dbConn, cfg.Table)
	if err != nil {
		log.Fatalf("init consumption store: %v", err)
	}

	userStore := auth.NewStore(dbConn)
	authSvc := auth.NewService(userStore, cfg.JWTSecret)

	cache := respcache.New(cfg.CacheSize, cfg.CacheTTL)

	handler := httpserver.NewRouter(logger, authSvc, store, cache, cfg.SessionHeader)
	server := httpserver.New(cfg.HTTPAddr, handler, logger)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("http server: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
