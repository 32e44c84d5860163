// Package tracker runs the save pipeline: trigger gate, block-tree walk,
// classification, and event emission.
package tracker

import (
	"context"
	"encoding/json"
	"sort"

	"go.uber.org/zap"

	"github.com/mvp-joe/blockpulse/internal/blocks"
	"github.com/mvp-joe/blockpulse/internal/store"
	"github.com/mvp-joe/blockpulse/internal/telemetry"
	"github.com/mvp-joe/blockpulse/internal/usage"
)

// Catalog supplies the store-level signals classification needs.
type Catalog interface {
	StockStatusOptions(ctx context.Context) (map[string]string, error)
	HideOutOfStockEnabled(ctx context.Context) (bool, error)
	OrderCountByStatus(ctx context.Context, status string) (int, error)
	ProductTaxonomyNames(ctx context.Context) (map[string]bool, error)
}

// Save is one document-save invocation.
type Save struct {
	Doc store.Document
	// ViaRESTSave is true when the save arrived through the editor's REST
	// save path.
	ViaRESTSave bool
	// BlockThemeActive is true when the active theme supports full-site
	// editing.
	BlockThemeActive bool
}

// Options configures a Tracker.
type Options struct {
	// ActiveTheme resolves template-part references without a theme attr.
	ActiveTheme string
	Logger      *zap.Logger
}

// Tracker ties the pipeline together. It holds no per-save state; every
// HandleSave call is independent.
type Tracker struct {
	resolver usage.Resolver
	catalog  Catalog
	sink     telemetry.Sink
	opts     Options
}

// New creates a tracker emitting to sink.
func New(resolver usage.Resolver, catalog Catalog, sink telemetry.Sink, opts Options) *Tracker {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Tracker{resolver: resolver, catalog: catalog, sink: sink, opts: opts}
}

// HandleSave runs the full pipeline for one save. Returns the number of
// events emitted. Gate rejection is a normal zero, not an error; catalog and
// sink anomalies are absorbed (the save path must never fail on analytics),
// trading silent undercounting for robustness.
func (t *Tracker) HandleSave(ctx context.Context, save Save) int {
	gated := usage.SaveContext{
		ViaRESTSave:      save.ViaRESTSave,
		BlockThemeActive: save.BlockThemeActive,
		DocumentType:     save.Doc.Type,
		DocumentStatus:   save.Doc.Status,
		RawContent:       save.Doc.Content,
	}
	if !usage.ShouldTrack(gated) {
		return 0
	}

	walker := usage.NewWalker(t.resolver, usage.WalkerOptions{
		DefaultStockStatuses: t.defaultStockStatuses(ctx),
		ActiveTheme:          t.opts.ActiveTheme,
		Logger:               t.opts.Logger,
	})
	instances := walker.Walk(ctx, blocks.Parse(save.Doc.Content), usage.Context{})
	if len(instances) == 0 {
		return 0
	}

	editorContext := usage.LocateDocument(save.Doc.Type, save.Doc.Slug, t.productTaxonomies(ctx))
	orderCount := t.totalOrderCount(ctx)

	emitted := 0
	for _, instance := range instances {
		event := telemetry.NewEvent(telemetry.EventProductCollectionInstance,
			buildProperties(instance, editorContext, orderCount))
		if err := t.sink.Emit(ctx, event); err != nil {
			t.opts.Logger.Warn("event emission failed",
				zap.String("event", event.ID), zap.Error(err))
			continue
		}
		emitted++
	}

	t.opts.Logger.Info("save tracked",
		zap.Int64("document", save.Doc.ID),
		zap.String("type", save.Doc.Type),
		zap.String("editor_context", editorContext),
		zap.Int("instances", len(instances)),
		zap.Int("emitted", emitted))
	return emitted
}

// buildProperties flattens one instance into event properties. The filter map
// is JSON-encoded so every property stays scalar.
func buildProperties(instance usage.Instance, editorContext string, orderCount int) telemetry.Properties {
	filters, err := json.Marshal(instance.Filters)
	if err != nil {
		filters = []byte("{}")
	}
	return telemetry.Properties{
		"editor_context":    editorContext,
		"order_count":       orderCount,
		"collection":        instance.Collection,
		"in-single-product": yesNo(instance.Context.InSingleProduct),
		"in-template-part":  yesNo(instance.Context.InTemplatePart),
		"in-synced-pattern": yesNo(instance.Context.InSyncedPattern),
		"filters":           string(filters),
	}
}

// defaultStockStatuses computes the effective default stock-status set: the
// full option set, minus out-of-stock when the catalog hides it.
func (t *Tracker) defaultStockStatuses(ctx context.Context) []string {
	options, err := t.catalog.StockStatusOptions(ctx)
	if err != nil {
		t.opts.Logger.Warn("stock status options unavailable", zap.Error(err))
		return nil
	}
	hide, err := t.catalog.HideOutOfStockEnabled(ctx)
	if err != nil {
		t.opts.Logger.Warn("hide-out-of-stock setting unavailable", zap.Error(err))
		hide = false
	}

	statuses := make([]string, 0, len(options))
	for key := range options {
		if hide && key == store.StockStatusOutOfStock {
			continue
		}
		statuses = append(statuses, key)
	}
	sort.Strings(statuses)
	return statuses
}

func (t *Tracker) productTaxonomies(ctx context.Context) map[string]bool {
	names, err := t.catalog.ProductTaxonomyNames(ctx)
	if err != nil {
		t.opts.Logger.Warn("product taxonomies unavailable", zap.Error(err))
		return nil
	}
	return names
}

// totalOrderCount sums the per-status counts over the fixed status partition.
func (t *Tracker) totalOrderCount(ctx context.Context) int {
	total := 0
	for _, status := range store.OrderStatuses {
		count, err := t.catalog.OrderCountByStatus(ctx, status)
		if err != nil {
			t.opts.Logger.Warn("order count unavailable",
				zap.String("status", status), zap.Error(err))
			continue
		}
		total += count
	}
	return total
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
