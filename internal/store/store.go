// Package store is the SQLite-backed mirror of the host platform's data the
// pipeline needs: saved documents, template parts, synced patterns, catalog
// settings, and an events table for the sqlite sink.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
)

// SettingHideOutOfStock controls whether out-of-stock products are hidden
// from the catalog; it shifts the default stock-status set.
const SettingHideOutOfStock = "woocommerce_hide_out_of_stock_items"

// StockStatusOutOfStock is excluded from the default stock-status set when
// hide-out-of-stock is enabled.
const StockStatusOutOfStock = "outofstock"

// OrderStatuses is the fixed status partition the aggregate order count is
// summed over.
var OrderStatuses = []string{
	"pending",
	"processing",
	"on-hold",
	"completed",
	"cancelled",
	"refunded",
	"failed",
}

// Document is one stored content record.
type Document struct {
	ID      int64  `json:"id"`
	Type    string `json:"type"`
	Status  string `json:"status"`
	Slug    string `json:"slug"`
	Theme   string `json:"theme"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Store provides read and write access to the content database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the content database at path and ensures the
// schema exists. Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == ":memory:" {
		// Every pooled connection would otherwise see its own empty database.
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if err := createSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// ResolveTemplateFragment returns the serialized content of the template part
// stored under (theme, slug). A document of any other type under that key is
// a miss, never an error.
func (s *Store) ResolveTemplateFragment(ctx context.Context, theme, slug string) (string, bool, error) {
	var content string
	err := sq.Select("content").
		From("documents").
		Where(sq.Eq{"doc_type": "wp_template_part", "theme": theme, "slug": slug}).
		OrderBy("id").
		Limit(1).
		RunWith(s.db).
		QueryRowContext(ctx).
		Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve template part %s/%s: %w", theme, slug, err)
	}
	return content, true, nil
}

// ResolvePattern returns the serialized content of the synced pattern with
// the given id. Documents that are not synced patterns are a miss.
func (s *Store) ResolvePattern(ctx context.Context, ref int64) (string, bool, error) {
	var content string
	err := sq.Select("content").
		From("documents").
		Where(sq.Eq{"id": ref, "doc_type": "wp_block"}).
		RunWith(s.db).
		QueryRowContext(ctx).
		Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve pattern %d: %w", ref, err)
	}
	return content, true, nil
}

// StockStatusOptions returns the full stock-status option set, key to label.
func (s *Store) StockStatusOptions(ctx context.Context) (map[string]string, error) {
	rows, err := sq.Select("status_key", "label").
		From("stock_statuses").
		RunWith(s.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock statuses: %w", err)
	}
	defer rows.Close()

	options := make(map[string]string)
	for rows.Next() {
		var key, label string
		if err := rows.Scan(&key, &label); err != nil {
			return nil, fmt.Errorf("failed to scan stock status: %w", err)
		}
		options[key] = label
	}
	return options, rows.Err()
}

// HideOutOfStockEnabled reports the hide-out-of-stock catalog option.
func (s *Store) HideOutOfStockEnabled(ctx context.Context) (bool, error) {
	var value string
	err := sq.Select("value").
		From("settings").
		Where(sq.Eq{"key": SettingHideOutOfStock}).
		RunWith(s.db).
		QueryRowContext(ctx).
		Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query %s: %w", SettingHideOutOfStock, err)
	}
	return value == "yes", nil
}

// OrderCountByStatus returns the recorded order count for one status.
// Unknown statuses count zero.
func (s *Store) OrderCountByStatus(ctx context.Context, status string) (int, error) {
	var count int
	err := sq.Select("count").
		From("order_counts").
		Where(sq.Eq{"status": status}).
		RunWith(s.db).
		QueryRowContext(ctx).
		Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query order count for %s: %w", status, err)
	}
	return count, nil
}

// ProductTaxonomyNames returns the set of taxonomies registered against the
// product entity.
func (s *Store) ProductTaxonomyNames(ctx context.Context) (map[string]bool, error) {
	rows, err := sq.Select("name").
		From("product_taxonomies").
		RunWith(s.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query product taxonomies: %w", err)
	}
	defer rows.Close()

	names := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan taxonomy name: %w", err)
		}
		names[name] = true
	}
	return names, rows.Err()
}

// Documents returns all stored documents in id order.
func (s *Store) Documents(ctx context.Context) ([]Document, error) {
	rows, err := sq.Select("id", "doc_type", "status", "slug", "theme", "title", "content").
		From("documents").
		OrderBy("id").
		RunWith(s.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.Type, &d.Status, &d.Slug, &d.Theme, &d.Title, &d.Content); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// DocumentsByType returns stored documents of one type in id order.
func (s *Store) DocumentsByType(ctx context.Context, docType string) ([]Document, error) {
	rows, err := sq.Select("id", "doc_type", "status", "slug", "theme", "title", "content").
		From("documents").
		Where(sq.Eq{"doc_type": docType}).
		OrderBy("id").
		RunWith(s.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s documents: %w", docType, err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.Type, &d.Status, &d.Slug, &d.Theme, &d.Title, &d.Content); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}
