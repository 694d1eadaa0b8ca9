package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/astrelay/astrelay/internal/config"
	"github.com/astrelay/astrelay/internal/dialog"
	"github.com/astrelay/astrelay/internal/dispatch"
	"github.com/astrelay/astrelay/internal/httpapi"
	"github.com/astrelay/astrelay/internal/observability"
)

func main() {
	// Local development keeps settings in .env; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	ctx := context.Background()
	store, err := dialog.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("preference store init failed: %v", err)
	}
	defer store.Close()

	cache, err := dialog.NewCache(cfg.RedisURL)
	if err != nil {
		log.Fatalf("reading cache init failed: %v", err)
	}
	if cache != nil {
		defer cache.Close()
		log.Printf("reading cache: redis")
	} else {
		log.Printf("reading cache: disabled")
	}

	engine := dialog.NewHoroscopeEngine(store, cache)
	dispatcher := dispatch.New(engine, metrics, cfg.DefaultLocale, cfg.DefaultTimezone)

	api := httpapi.New(cfg, dispatcher, metrics)
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	go func() {
		log.Printf("server listening on %s", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = httpServer.Close()
	}

	log.Printf("shutdown complete")
}
