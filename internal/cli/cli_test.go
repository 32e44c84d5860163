package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mvp-joe/blockpulse/internal/config"
)

// Test Plan for CLI wiring:
// - ingestDir loads matching export files and skips broken ones
// - scanStore runs the pipeline and counts emitted events
// - The sqlite sink persists events into the store
// - openSink rejects unknown sink types via config validation upstream

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Store.Path = filepath.Join(t.TempDir(), "content.db")
	cfg.Sink.Type = config.SinkSQLite
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) *app {
	t.Helper()
	a, err := newApp(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func writeExport(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestIngestAndScan(t *testing.T) {
	a := newTestApp(t, testConfig(t))
	ctx := context.Background()

	exports := t.TempDir()
	writeExport(t, exports, "page-shop.json",
		`{"id":1,"type":"page","status":"publish","slug":"shop",
		  "content":"<!-- wp:woocommerce/product-collection /-->"}`)
	writeExport(t, exports, "template-part.json",
		`{"id":2,"type":"wp_template_part","status":"publish","slug":"grid","theme":"storefront",
		  "content":"<!-- wp:woocommerce/product-collection /-->"}`)
	writeExport(t, exports, "broken.json", `{not json`)
	writeExport(t, exports, "notes.txt", `ignored`)

	loaded, skipped, err := ingestDir(ctx, a, exports, true)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded)
	assert.Equal(t, 1, skipped)

	documents, events, err := scanStore(ctx, a, true)
	require.NoError(t, err)
	assert.Equal(t, 2, documents)
	// The page emits one instance; the template part emits its own too.
	assert.Equal(t, 2, events)

	stored, err := a.store.EventCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stored)
}

func TestScan_ClassicThemeEmitsNothing(t *testing.T) {
	cfg := testConfig(t)
	cfg.Theme.BlockTheme = false
	a := newTestApp(t, cfg)
	ctx := context.Background()

	exports := t.TempDir()
	writeExport(t, exports, "page.json",
		`{"id":1,"type":"page","status":"publish","slug":"shop",
		  "content":"<!-- wp:woocommerce/product-collection /-->"}`)

	_, _, err := ingestDir(ctx, a, exports, true)
	require.NoError(t, err)

	_, events, err := scanStore(ctx, a, true)
	require.NoError(t, err)
	assert.Zero(t, events)
}

func TestOpenSink_JSONL(t *testing.T) {
	cfg := testConfig(t)
	cfg.Sink.Type = config.SinkJSONL
	cfg.Sink.Path = filepath.Join(t.TempDir(), "events.jsonl")
	a := newTestApp(t, cfg)
	ctx := context.Background()

	exports := t.TempDir()
	writeExport(t, exports, "page.json",
		`{"id":1,"type":"page","status":"publish","slug":"shop",
		  "content":"<!-- wp:woocommerce/product-collection /-->"}`)

	_, _, err := ingestDir(ctx, a, exports, true)
	require.NoError(t, err)
	_, events, err := scanStore(ctx, a, true)
	require.NoError(t, err)
	require.Equal(t, 1, events)

	data, err := os.ReadFile(cfg.Sink.Path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "product_collection_instance")
}
