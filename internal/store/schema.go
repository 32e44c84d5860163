package store

import (
	"database/sql"
	"fmt"
)

// createSchema creates all tables and indexes, then seeds the catalog
// defaults the host platform ships with. Transactional: all schema creation
// succeeds or fails together.
func createSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	tables := []struct {
		name string
		ddl  string
	}{
		{"documents", createDocumentsTable},
		{"settings", createSettingsTable},
		{"stock_statuses", createStockStatusesTable},
		{"order_counts", createOrderCountsTable},
		{"product_taxonomies", createProductTaxonomiesTable},
		{"events", createEventsTable},
	}
	for _, table := range tables {
		if _, err := tx.Exec(table.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
	}

	for i, idx := range schemaIndexes {
		if _, err := tx.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index %d: %w", i+1, err)
		}
	}

	for i, seed := range schemaSeeds {
		if _, err := tx.Exec(seed); err != nil {
			return fmt.Errorf("failed to seed defaults %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema transaction: %w", err)
	}
	return nil
}

const createDocumentsTable = `
CREATE TABLE IF NOT EXISTS documents (
    id         INTEGER PRIMARY KEY,
    doc_type   TEXT NOT NULL,
    status     TEXT NOT NULL,
    slug       TEXT NOT NULL,
    theme      TEXT NOT NULL DEFAULT '',
    title      TEXT NOT NULL DEFAULT '',
    content    TEXT NOT NULL DEFAULT '',
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

const createSettingsTable = `
CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
)`

const createStockStatusesTable = `
CREATE TABLE IF NOT EXISTS stock_statuses (
    status_key TEXT PRIMARY KEY,
    label      TEXT NOT NULL
)`

const createOrderCountsTable = `
CREATE TABLE IF NOT EXISTS order_counts (
    status TEXT PRIMARY KEY,
    count  INTEGER NOT NULL DEFAULT 0
)`

const createProductTaxonomiesTable = `
CREATE TABLE IF NOT EXISTS product_taxonomies (
    name TEXT PRIMARY KEY
)`

const createEventsTable = `
CREATE TABLE IF NOT EXISTS events (
    event_id   TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    emitted_at TIMESTAMP NOT NULL,
    props      TEXT NOT NULL
)`

var schemaIndexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_documents_type_slug ON documents(doc_type, theme, slug)`,
	`CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status)`,
	`CREATE INDEX IF NOT EXISTS idx_events_name ON events(name)`,
}

// Catalog defaults mirroring a stock host install. Ingest overwrites them
// when the export carries real values.
var schemaSeeds = []string{
	`INSERT OR IGNORE INTO stock_statuses(status_key, label) VALUES
        ('instock', 'In stock'),
        ('outofstock', 'Out of stock'),
        ('onbackorder', 'On backorder')`,
	`INSERT OR IGNORE INTO settings(key, value) VALUES
        ('woocommerce_hide_out_of_stock_items', 'no')`,
	`INSERT OR IGNORE INTO product_taxonomies(name) VALUES
        ('product_cat'),
        ('product_tag')`,
	`INSERT OR IGNORE INTO order_counts(status, count) VALUES
        ('pending', 0),
        ('processing', 0),
        ('on-hold', 0),
        ('completed', 0),
        ('cancelled', 0),
        ('refunded', 0),
        ('failed', 0)`,
}
