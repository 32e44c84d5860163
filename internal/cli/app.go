package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/mvp-joe/blockpulse/internal/cache"
	"github.com/mvp-joe/blockpulse/internal/config"
	"github.com/mvp-joe/blockpulse/internal/store"
	"github.com/mvp-joe/blockpulse/internal/telemetry"
	"github.com/mvp-joe/blockpulse/internal/tracker"
)

// app bundles the wired pipeline for one command invocation.
type app struct {
	cfg     *config.Config
	store   *store.Store
	sink    telemetry.Sink
	tracker *tracker.Tracker
	logger  *zap.Logger

	resolver *cache.Resolver
}

// newApp opens the store and sink and wires the tracker according to cfg.
// Callers must Close.
func newApp(cfg *config.Config, logger *zap.Logger) (*app, error) {
	storePath, err := ensureParentDir(resolvePath(cfg.Store.Path))
	if err != nil {
		return nil, err
	}
	s, err := store.Open(storePath)
	if err != nil {
		return nil, err
	}

	sink, err := openSink(cfg, s)
	if err != nil {
		s.Close()
		return nil, err
	}

	resolver, err := cache.NewResolver(s, cfg.Cache.Capacity, time.Duration(cfg.Cache.TTLSeconds)*time.Second)
	if err != nil {
		sink.Close()
		s.Close()
		return nil, err
	}

	trk := tracker.New(resolver, s, sink, tracker.Options{
		ActiveTheme: cfg.Theme.Active,
		Logger:      logger,
	})

	return &app{
		cfg:      cfg,
		store:    s,
		sink:     sink,
		tracker:  trk,
		logger:   logger,
		resolver: resolver,
	}, nil
}

func (a *app) Close() {
	a.resolver.Close()
	a.sink.Close()
	a.store.Close()
}

// save wraps a stored document as an editor save, honoring the configured
// theme capability.
func (a *app) save(doc store.Document) tracker.Save {
	return tracker.Save{
		Doc:              doc,
		ViaRESTSave:      true,
		BlockThemeActive: a.cfg.Theme.BlockTheme,
	}
}

func openSink(cfg *config.Config, s *store.Store) (telemetry.Sink, error) {
	switch cfg.Sink.Type {
	case config.SinkStdout:
		return telemetry.NewStdoutSink(), nil
	case config.SinkSQLite:
		return store.NewEventSink(s), nil
	case config.SinkJSONL:
		path, err := ensureParentDir(resolvePath(cfg.Sink.Path))
		if err != nil {
			return nil, err
		}
		return telemetry.NewJSONLSink(path)
	default:
		return nil, fmt.Errorf("unknown sink type %q", cfg.Sink.Type)
	}
}

// ensureParentDir creates the directory a file path lives in.
func ensureParentDir(path string) (string, error) {
	if path == ":memory:" {
		return path, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	return path, nil
}

// resolvePath anchors relative configured paths at --root. The in-memory
// store path passes through untouched.
func resolvePath(path string) string {
	if path == ":memory:" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(rootDir, path)
}
