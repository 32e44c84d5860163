// Package files discovers document export files on disk.
package files

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gobwas/glob"

	"github.com/mvp-joe/blockpulse/internal/store"
)

// compiledPattern holds both the pattern string and compiled glob.
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// Discovery finds document export files under a root directory using glob
// include and ignore patterns.
type Discovery struct {
	rootDir string
	include []compiledPattern
	ignore  []compiledPattern
}

// NewDiscovery compiles the given patterns. Patterns match paths relative to
// rootDir with '/' separators, e.g. "**/*.json".
func NewDiscovery(rootDir string, includePatterns, ignorePatterns []string) (*Discovery, error) {
	d := &Discovery{rootDir: rootDir}

	for _, pattern := range includePatterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid include pattern %q: %w", pattern, err)
		}
		d.include = append(d.include, compiledPattern{pattern: pattern, glob: g})
	}
	for _, pattern := range ignorePatterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", pattern, err)
		}
		d.ignore = append(d.ignore, compiledPattern{pattern: pattern, glob: g})
	}
	return d, nil
}

// Discover walks the root directory and returns matching file paths in walk
// order.
func (d *Discovery) Discover() ([]string, error) {
	var found []string
	err := filepath.Walk(d.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(d.rootDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if d.matchesAny(d.ignore, rel) {
			return nil
		}
		if d.matchesAny(d.include, rel) {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", d.rootDir, err)
	}
	return found, nil
}

// Matches reports whether a single path (relative to the root) passes the
// include/ignore patterns. Used by the watch path for event filtering.
func (d *Discovery) Matches(path string) bool {
	rel, err := filepath.Rel(d.rootDir, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	return !d.matchesAny(d.ignore, rel) && d.matchesAny(d.include, rel)
}

func (d *Discovery) matchesAny(patterns []compiledPattern, rel string) bool {
	for _, p := range patterns {
		if p.glob.Match(rel) {
			return true
		}
	}
	return false
}

// ReadDocument parses one document export file.
func ReadDocument(path string) (store.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return store.Document{}, fmt.Errorf("failed to read document file: %w", err)
	}
	var doc store.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return store.Document{}, fmt.Errorf("failed to parse document file %s: %w", path, err)
	}
	return doc, nil
}
