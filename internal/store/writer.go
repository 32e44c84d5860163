package store

import (
	"context"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/mvp-joe/blockpulse/internal/telemetry"
)

// UpsertDocument inserts or replaces a document by id.
func (s *Store) UpsertDocument(ctx context.Context, d Document) error {
	_, err := sq.Replace("documents").
		Columns("id", "doc_type", "status", "slug", "theme", "title", "content").
		Values(d.ID, d.Type, d.Status, d.Slug, d.Theme, d.Title, d.Content).
		RunWith(s.db).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert document %d: %w", d.ID, err)
	}
	return nil
}

// SetSetting stores one key/value catalog setting.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	_, err := sq.Replace("settings").
		Columns("key", "value").
		Values(key, value).
		RunWith(s.db).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}
	return nil
}

// SetOrderCount records the order count for one status.
func (s *Store) SetOrderCount(ctx context.Context, status string, count int) error {
	_, err := sq.Replace("order_counts").
		Columns("status", "count").
		Values(status, count).
		RunWith(s.db).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to set order count for %s: %w", status, err)
	}
	return nil
}

// AddProductTaxonomy registers a taxonomy name against the product entity.
func (s *Store) AddProductTaxonomy(ctx context.Context, name string) error {
	_, err := sq.Insert("product_taxonomies").
		Options("OR IGNORE").
		Columns("name").
		Values(name).
		RunWith(s.db).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to add product taxonomy %s: %w", name, err)
	}
	return nil
}

// SetStockStatus registers or relabels one stock status option.
func (s *Store) SetStockStatus(ctx context.Context, key, label string) error {
	_, err := sq.Replace("stock_statuses").
		Columns("status_key", "label").
		Values(key, label).
		RunWith(s.db).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to set stock status %s: %w", key, err)
	}
	return nil
}

// EventSink persists emitted events into the store's events table. It
// implements telemetry.Sink; the store's lifetime is managed by the caller,
// so Close is a no-op.
type EventSink struct {
	store *Store
}

// NewEventSink creates a sink writing into s.
func NewEventSink(s *Store) *EventSink {
	return &EventSink{store: s}
}

func (e *EventSink) Emit(ctx context.Context, event telemetry.Event) error {
	props, err := json.Marshal(event.Props)
	if err != nil {
		return fmt.Errorf("failed to encode event properties: %w", err)
	}
	_, err = sq.Insert("events").
		Columns("event_id", "name", "emitted_at", "props").
		Values(event.ID, event.Name, event.Time, string(props)).
		RunWith(e.store.db).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to write event %s: %w", event.ID, err)
	}
	return nil
}

func (e *EventSink) Close() error { return nil }

// EventCount returns the number of stored events, used by scan summaries and
// tests.
func (s *Store) EventCount(ctx context.Context) (int, error) {
	var count int
	err := sq.Select("COUNT(*)").
		From("events").
		RunWith(s.db).
		QueryRowContext(ctx).
		Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return count, nil
}
