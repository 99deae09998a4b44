package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"

	"github.com/ybakri/medstock/internal/adapter/handler"
	"github.com/ybakri/medstock/internal/adapter/storage"
	"github.com/ybakri/medstock/internal/config"
	"github.com/ybakri/medstock/internal/core/service"
	"github.com/ybakri/medstock/internal/port"
)

func main() {
	cfg := config.Load()
	log := config.NewLogger(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.WithError(err).Fatal("invalid mysql dsn")
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	if err := db.PingContext(pingCtx); err != nil {
		// Degraded start: the server comes up and reports store errors
		// per request instead of refusing to boot.
		log.WithError(err).Warn("mysql unreachable, starting degraded")
	} else {
		log.Info("connected to mysql")
	}
	pingCancel()

	var cache port.CacheRepository
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.WithError(err).Warn("redis unreachable, idempotency check disabled")
			rdb.Close()
			rdb = nil
		} else {
			cache = storage.NewRedisAdapter(rdb)
			log.Info("connected to redis")
		}
	}

	store := storage.NewMySQLStore(db)
	inventory := service.NewInventoryService(store, store, log)
	views := service.NewViewsService(store, store)
	reports := service.NewReportService(store, store, views, store, cfg.ReportDir, log)

	httpHandler := handler.NewHTTPHandler(inventory, views, reports, store, store, store, cache, log)
	mux := http.NewServeMux()
	httpHandler.Register(mux)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}

	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.WithError(err).Error("HTTP server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	log.Info("HTTP server stopped")

	if rdb != nil {
		rdb.Close()
	}
	db.Close()
	log.Info("connections closed")
}
