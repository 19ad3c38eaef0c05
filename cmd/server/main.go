package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"pumpkhata/backend/internal/cache"
	"pumpkhata/backend/internal/config"
	"pumpkhata/backend/internal/docstore"
	"pumpkhata/backend/internal/httpapi"
	"pumpkhata/backend/internal/service"
	"pumpkhata/backend/internal/store"
	"pumpkhata/backend/internal/store/memory"
	pgstore "pumpkhata/backend/internal/store/postgres"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var repo store.Repository
	closers := make([]func() error, 0, 2)

	if cfg.DatabaseURL != "" {
		pg, err := pgstore.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("postgres unavailable (%v) and DATABASE_URL is set; refusing to start with in-memory fallback", err)
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Fatalf("postgres schema error: %v", err)
		}
		repo = pg
		closers = append(closers, pg.Close)
		log.Println("repository: postgres")
	} else if cfg.DataDir != "" {
		files, err := docstore.NewFileStore(cfg.DataDir)
		if err != nil {
			log.Fatalf("data directory error: %v", err)
		}
		mem, err := memory.NewPersistent(ctx, files)
		if err != nil {
			log.Fatalf("load state documents: %v", err)
		}
		repo = mem
		log.Printf("repository: in-memory with snapshots under %s", cfg.DataDir)
	} else {
		repo = memory.New()
		log.Println("repository: in-memory (no persistence)")
	}

	summaries := cache.SummaryCache(cache.NoopSummaryCache{})
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisSummaryCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := redisCache.Ping(ctx); err != nil {
			log.Printf("redis unavailable (%v), using noop cache", err)
		} else {
			summaries = redisCache
			closers = append(closers, redisCache.Close)
			log.Println("summary cache: redis")
		}
	} else {
		log.Println("summary cache: noop")
	}

	svc := service.New(repo, summaries, service.LogNotifier{}).
		WithSummaryTTL(time.Duration(cfg.SummaryTTLSeconds) * time.Second)
	api := httpapi.New(svc, cfg.StationName, cfg.AllowedOrigin)

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("%s backend listening on %s", cfg.StationName, cfg.Address())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Printf("close error: %v", err)
		}
	}

	log.Println("server stopped")
}
