package main

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/ybakri/medstock/internal/adapter/storage"
	"github.com/ybakri/medstock/internal/config"
	"github.com/ybakri/medstock/internal/core/domain"
	"github.com/ybakri/medstock/internal/core/service"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS supplies (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		category VARCHAR(100) NOT NULL,
		quantity INT NOT NULL DEFAULT 0,
		expiry_date DATE NULL,
		location VARCHAR(100) NOT NULL,
		supplier VARCHAR(255) NULL,
		reorder_threshold INT NOT NULL DEFAULT 0,
		created_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		updated_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6) ON UPDATE CURRENT_TIMESTAMP(6)
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		supply_id BIGINT NOT NULL,
		direction ENUM('IN', 'OUT') NOT NULL,
		magnitude INT NOT NULL,
		quantity_before INT NOT NULL,
		quantity_after INT NOT NULL,
		reason TEXT,
		actor VARCHAR(100) NOT NULL,
		created_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		INDEX idx_transactions_supply (supply_id),
		INDEX idx_transactions_created (created_at)
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		username VARCHAR(100) NOT NULL UNIQUE,
		password VARCHAR(255) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS reports (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		report_type VARCHAR(255) NOT NULL,
		report_date DATE NOT NULL,
		generated_by VARCHAR(100) NOT NULL,
		file_path VARCHAR(512) NOT NULL,
		created_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6)
	)`,
}

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

	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			log.WithError(err).Fatal("create schema")
		}
	}
	log.Info("schema ready")

	if _, err := db.ExecContext(ctx, `
		INSERT IGNORE INTO users (username, password) VALUES ('admin', 'admin123')`); err != nil {
		log.WithError(err).Fatal("seed admin user")
	}

	var existing int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM supplies`).Scan(&existing); err != nil {
		log.WithError(err).Fatal("count supplies")
	}
	if existing > 0 {
		log.WithField("supplies", existing).Info("supplies already present, skipping sample data")
		return
	}

	// Sample data goes through the inventory service so every supply
	// starts with a proper opening ledger entry.
	store := storage.NewMySQLStore(db)
	inventory := service.NewInventoryService(store, store, log)

	in90 := time.Now().AddDate(0, 0, 90)
	in14 := time.Now().AddDate(0, 0, 14)

	drafts := []domain.SupplyDraft{
		{Name: "Paracetamol 500mg", Category: "Medication", Quantity: 240, ExpiryDate: &in90, Location: "Shelf A1", Supplier: "PharmaPlus", ReorderThreshold: 50},
		{Name: "Surgical Gloves (M)", Category: "Consumables", Quantity: 35, Location: "Cabinet B2", Supplier: "MediSupply Co", ReorderThreshold: 40},
		{Name: "Insulin Vials", Category: "Medication", Quantity: 18, ExpiryDate: &in14, Location: "Fridge 1", Supplier: "PharmaPlus", ReorderThreshold: 10},
		{Name: "Gauze Rolls", Category: "Consumables", Quantity: 120, Location: "Shelf A3", ReorderThreshold: 30},
	}
	for _, draft := range drafts {
		if _, err := inventory.CreateSupply(ctx, draft, "seed"); err != nil {
			log.WithError(err).WithField("name", draft.Name).Fatal("seed supply")
		}
	}
	log.WithField("supplies", len(drafts)).Info("sample data seeded")
}
