package usage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mvp-joe/blockpulse/internal/blocks"
)

// Resolver resolves cross-document references encountered during a walk.
// A miss is (_, false, nil); errors are treated exactly like misses by the
// walker, the save path never fails on a bad reference.
type Resolver interface {
	// ResolveTemplateFragment returns the serialized content of the template
	// part stored under (theme, slug).
	ResolveTemplateFragment(ctx context.Context, theme, slug string) (string, bool, error)
	// ResolvePattern returns the serialized content of the synced pattern
	// with the given reference id.
	ResolvePattern(ctx context.Context, ref int64) (string, bool, error)
}

// maxWalkDepth caps recursion for adversarially deep trees and reference
// chains; subtrees beyond it contribute nothing.
const maxWalkDepth = 64

// WalkerOptions configures a Walker.
type WalkerOptions struct {
	// DefaultStockStatuses is the effective default stock-status set used by
	// filter extraction.
	DefaultStockStatuses []string
	// ActiveTheme is used to resolve template-part references that carry no
	// theme attribute.
	ActiveTheme string
	Logger      *zap.Logger
}

// Walker walks a block tree depth-first and collects one Instance per
// product-collection block, resolving template-part and synced-pattern
// references along the way.
type Walker struct {
	resolver Resolver
	opts     WalkerOptions
}

// NewWalker creates a walker over the given resolver.
func NewWalker(resolver Resolver, opts WalkerOptions) *Walker {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Walker{resolver: resolver, opts: opts}
}

// walkState is per-invocation traversal state. visited holds the reference
// keys on the current resolution path; re-entering one is a cycle and
// resolves to nothing.
type walkState struct {
	visited map[string]bool
}

// Walk traverses nodes and returns the located instances in document order
// (depth-first, sibling order preserved).
func (w *Walker) Walk(ctx context.Context, nodes []blocks.Node, tctx Context) []Instance {
	state := &walkState{visited: make(map[string]bool)}
	return w.walk(ctx, state, nodes, tctx, 0)
}

func (w *Walker) walk(ctx context.Context, state *walkState, nodes []blocks.Node, tctx Context, depth int) []Instance {
	if depth >= maxWalkDepth {
		w.opts.Logger.Debug("walk depth cap reached, pruning subtree", zap.Int("depth", depth))
		return nil
	}

	var found []Instance
	for _, node := range nodes {
		if node.Kind == blocks.KindProductCollection {
			found = append(found, w.classify(node, tctx))
		}

		// The single-product escalation applies to this node's subtree only,
		// never to its siblings.
		localCtx := tctx
		if node.Kind == blocks.KindSingleProduct {
			localCtx.InSingleProduct = true
		}

		switch node.Kind {
		case blocks.KindTemplatePart:
			found = append(found, w.walkTemplatePart(ctx, state, node, localCtx, depth)...)
		case blocks.KindSyncedPattern:
			found = append(found, w.walkPattern(ctx, state, node, localCtx, depth)...)
		}

		// Structurally nested children inherit the single-product escalation
		// but not the template/pattern escalation, that applies only to
		// externally resolved content.
		if len(node.Children) > 0 {
			found = append(found, w.walk(ctx, state, node.Children, localCtx, depth+1)...)
		}
	}
	return found
}

func (w *Walker) classify(node blocks.Node, tctx Context) Instance {
	collection := DefaultCollection
	if c, ok := node.StringAttr("collection"); ok {
		collection = c
	}
	return Instance{
		Collection: collection,
		Context:    tctx,
		Filters:    ExtractFilters(node.Attrs, w.opts.DefaultStockStatuses),
	}
}

func (w *Walker) walkTemplatePart(ctx context.Context, state *walkState, node blocks.Node, localCtx Context, depth int) []Instance {
	slug, ok := node.StringAttr("slug")
	if !ok {
		return nil
	}
	theme, ok := node.StringAttr("theme")
	if !ok {
		theme = w.opts.ActiveTheme
	}

	key := fmt.Sprintf("template:%s:%s", theme, slug)
	if state.visited[key] {
		w.opts.Logger.Debug("template part reference cycle, skipping", zap.String("slug", slug))
		return nil
	}

	content, ok, err := w.resolver.ResolveTemplateFragment(ctx, theme, slug)
	if err != nil {
		w.opts.Logger.Debug("template part resolution failed",
			zap.String("theme", theme), zap.String("slug", slug), zap.Error(err))
		return nil
	}
	if !ok || content == "" {
		return nil
	}

	childCtx := localCtx
	childCtx.InTemplatePart = true

	state.visited[key] = true
	instances := w.walk(ctx, state, blocks.Parse(content), childCtx, depth+1)
	delete(state.visited, key)
	return instances
}

func (w *Walker) walkPattern(ctx context.Context, state *walkState, node blocks.Node, localCtx Context, depth int) []Instance {
	ref, ok := node.IntAttr("ref")
	if !ok {
		return nil
	}

	key := fmt.Sprintf("pattern:%d", ref)
	if state.visited[key] {
		w.opts.Logger.Debug("synced pattern reference cycle, skipping", zap.Int64("ref", ref))
		return nil
	}

	content, ok, err := w.resolver.ResolvePattern(ctx, ref)
	if err != nil {
		w.opts.Logger.Debug("synced pattern resolution failed", zap.Int64("ref", ref), zap.Error(err))
		return nil
	}
	if !ok || content == "" {
		return nil
	}

	childCtx := localCtx
	childCtx.InSyncedPattern = true

	state.visited[key] = true
	instances := w.walk(ctx, state, blocks.Parse(content), childCtx, depth+1)
	delete(state.visited, key)
	return instances
}
