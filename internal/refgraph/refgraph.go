// Package refgraph builds the cross-document reference graph (template parts
// and synced patterns) and reports reference cycles. The walker's cycle guard
// makes cycles harmless at tracking time; this audit surfaces them to content
// authors as the authoring mistake they are.
package refgraph

import (
	"context"
	"errors"
	"fmt"

	"github.com/dominikbraun/graph"

	"github.com/mvp-joe/blockpulse/internal/blocks"
	"github.com/mvp-joe/blockpulse/internal/store"
)

// Reference is one resolved or attempted cross-document edge.
type Reference struct {
	From string
	To   string
}

// Report summarizes one audit pass.
type Report struct {
	Documents  int
	References int
	// Cycles holds the references that would close a reference cycle.
	Cycles []Reference
	// Dangling holds references whose target does not exist in the store.
	Dangling []Reference
}

// Audit loads every document and checks the reference graph for cycles and
// dangling targets.
func Audit(ctx context.Context, s *store.Store) (*Report, error) {
	docs, err := s.Documents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load documents: %w", err)
	}

	g := graph.New(graph.StringHash, graph.Directed(), graph.PreventCycles())
	report := &Report{Documents: len(docs)}

	vertices := make(map[string]bool, len(docs))
	for _, doc := range docs {
		key := documentKey(doc)
		vertices[key] = true
		if err := g.AddVertex(key); err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
			return nil, fmt.Errorf("failed to add vertex %s: %w", key, err)
		}
	}

	for _, doc := range docs {
		from := documentKey(doc)
		for _, to := range referenceKeys(blocks.Parse(doc.Content), doc.Theme) {
			ref := Reference{From: from, To: to}
			report.References++

			if !vertices[to] {
				report.Dangling = append(report.Dangling, ref)
				continue
			}
			switch err := g.AddEdge(from, to); {
			case err == nil:
			case errors.Is(err, graph.ErrEdgeAlreadyExists):
				// Repeated reference, structurally fine.
			case errors.Is(err, graph.ErrEdgeCreatesCycle):
				report.Cycles = append(report.Cycles, ref)
			default:
				return nil, fmt.Errorf("failed to add edge %s -> %s: %w", from, to, err)
			}
		}
	}

	return report, nil
}

// documentKey is the vertex identity a document is referenced under.
func documentKey(doc store.Document) string {
	switch doc.Type {
	case "wp_template_part":
		return fmt.Sprintf("template:%s:%s", doc.Theme, doc.Slug)
	case "wp_block":
		return fmt.Sprintf("pattern:%d", doc.ID)
	default:
		return fmt.Sprintf("doc:%d", doc.ID)
	}
}

// referenceKeys collects the reference targets in a block tree. fallbackTheme
// applies to template-part blocks without a theme attribute.
func referenceKeys(nodes []blocks.Node, fallbackTheme string) []string {
	var keys []string
	for _, node := range nodes {
		switch node.Kind {
		case blocks.KindTemplatePart:
			if slug, ok := node.StringAttr("slug"); ok {
				theme, ok := node.StringAttr("theme")
				if !ok {
					theme = fallbackTheme
				}
				keys = append(keys, fmt.Sprintf("template:%s:%s", theme, slug))
			}
		case blocks.KindSyncedPattern:
			if ref, ok := node.IntAttr("ref"); ok {
				keys = append(keys, fmt.Sprintf("pattern:%d", ref))
			}
		}
		keys = append(keys, referenceKeys(node.Children, fallbackTheme)...)
	}
	return keys
}
