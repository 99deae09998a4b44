package main

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/ybakri/medstock/internal/adapter/storage"
	"github.com/ybakri/medstock/internal/config"
	"github.com/ybakri/medstock/internal/core/domain"
	"github.com/ybakri/medstock/internal/core/service"
)

const (
	totalAdjustments = 50
	drainAttempts    = 10
)

// Hammers one supply with concurrent unit adjustments and checks that no
// update was lost: the final quantity must equal the number of committed
// IN adjustments minus the committed OUT ones.
func main() {
	cfg := config.Load()
	log := config.NewLogger(cfg.LogLevel)
	ctx := context.Background()

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.WithError(err).Fatal("invalid mysql dsn")
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.WithError(err).Fatal("mysql unreachable")
	}

	store := storage.NewMySQLStore(db)
	inventory := service.NewInventoryService(store, store, log)

	name := "loadtest-" + uuid.New().String()
	sup, err := inventory.CreateSupply(ctx, domain.SupplyDraft{
		Name:     name,
		Category: "loadtest",
		Quantity: 0,
		Location: "nowhere",
	}, "loadtest")
	if err != nil {
		log.WithError(err).Fatal("create supply")
	}

	var committed, contended atomic.Int32
	start := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < totalAdjustments; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			callCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()

			_, err := inventory.AdjustQuantity(callCtx, sup.ID, +1, "loadtest", "load test in")
			if errors.Is(err, domain.ErrConsistency) {
				contended.Add(1)
				return
			}
			if err != nil {
				log.WithError(err).Error("adjustment failed")
				return
			}
			committed.Add(1)
		}(i)
	}
	wg.Wait()
	elapsed := time.Since(start)

	final, err := store.Get(ctx, sup.ID)
	if err != nil {
		log.WithError(err).Fatal("read back supply")
	}
	entries, err := store.ListBySupply(ctx, sup.ID)
	if err != nil {
		log.WithError(err).Fatal("read back ledger")
	}

	log.WithFields(map[string]interface{}{
		"committed":      committed.Load(),
		"contended":      contended.Load(),
		"final_quantity": final.Quantity,
		"ledger_entries": len(entries),
		"elapsed":        elapsed.String(),
	}).Info("load test finished")

	if final.Quantity != int(committed.Load()) {
		log.WithFields(map[string]interface{}{
			"expected": committed.Load(),
			"got":      final.Quantity,
		}).Fatal("LOST UPDATE detected")
	}

	// Drain and remove the test supply; the delete itself can contend.
	for i := 0; i < drainAttempts; i++ {
		if err := inventory.DeleteSupply(ctx, sup.ID, "loadtest"); err == nil {
			break
		}
	}
	log.Info("no lost updates")
}
