package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookingflow/internal/audit"
	"bookingflow/internal/httpapi"
	"bookingflow/internal/querycache"
	"bookingflow/pkg/config"
	"bookingflow/pkg/db"
	"bookingflow/pkg/decorapi"
)

func main() {
	cfg := config.Load()
	if cfg.SessionSecret == "" {
		log.Fatalf("SESSION_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := httpapi.Dependencies{
		Cfg:     cfg,
		Backend: decorapi.New(cfg.Backend.BaseURL, cfg.Backend.Timeout),
	}

	if cfg.AuditEnabled {
		conn, err := db.Open(ctx, cfg)
		if err != nil {
			log.Fatalf("db open: %v", err)
		}
		defer conn.Close()

		if cfg.MigrationsPath != "" {
			if err := db.MigrateConfig(cfg.MigrationsPath, cfg); err != nil {
				log.Fatalf("migrate: %v", err)
			}
		}
		repo := audit.NewRepository(conn)
		deps.Audit = repo
		deps.AuditLog = repo
	} else {
		log.Printf("[api] audit log disabled")
	}

	if cfg.RedisURL != "" {
		rc, err := querycache.OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("redis open: %v", err)
		}
		defer func() { _ = rc.Close() }()
		deps.Cache = rc
		log.Printf("[api] query cache: redis")
	} else {
		deps.Cache = querycache.NewMemory()
		log.Printf("[api] query cache: in-process memory")
	}

	router := httpapi.NewRouter(deps)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("http listening on %s (backend %s)", cfg.HTTPAddr, cfg.Backend.BaseURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http serve: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(shutdownCtx)
}
