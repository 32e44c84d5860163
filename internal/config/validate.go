package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyStorePath indicates a missing content database path
	ErrEmptyStorePath = errors.New("empty store path")

	// ErrInvalidSink indicates an unsupported sink type
	ErrInvalidSink = errors.New("invalid sink type")

	// ErrEmptySinkPath indicates a file sink without a path
	ErrEmptySinkPath = errors.New("empty sink path")

	// ErrEmptyTheme indicates a missing active theme slug
	ErrEmptyTheme = errors.New("empty active theme")

	// ErrInvalidCacheSettings indicates invalid cache configuration
	ErrInvalidCacheSettings = errors.New("invalid cache settings")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if strings.TrimSpace(cfg.Store.Path) == "" {
		errs = append(errs, fmt.Errorf("%w: store.path is required", ErrEmptyStorePath))
	}

	if err := validateSink(&cfg.Sink); err != nil {
		errs = append(errs, err)
	}

	if strings.TrimSpace(cfg.Theme.Active) == "" {
		errs = append(errs, fmt.Errorf("%w: theme.active is required", ErrEmptyTheme))
	}

	if cfg.Cache.Capacity < 0 {
		errs = append(errs, fmt.Errorf("%w: capacity cannot be negative, got %d", ErrInvalidCacheSettings, cfg.Cache.Capacity))
	}
	if cfg.Cache.TTLSeconds < 0 {
		errs = append(errs, fmt.Errorf("%w: ttl_seconds cannot be negative, got %d", ErrInvalidCacheSettings, cfg.Cache.TTLSeconds))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}
	return nil
}

func validateSink(cfg *Sink) error {
	switch strings.ToLower(cfg.Type) {
	case SinkJSONL:
		if strings.TrimSpace(cfg.Path) == "" {
			return fmt.Errorf("%w: sink.path is required for the jsonl sink", ErrEmptySinkPath)
		}
	case SinkStdout, SinkSQLite:
	default:
		return fmt.Errorf("%w: must be 'jsonl', 'stdout' or 'sqlite', got '%s'", ErrInvalidSink, cfg.Type)
	}
	return nil
}

// joinErrors combines multiple errors into a single error with clear formatting.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}

	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}
	return fmt.Errorf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}
