package usage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/blockpulse/internal/blocks"
)

// Test Plan for Walker:
// - Emits one instance per target block, in depth-first document order
// - Single-product escalation covers the subtree but not siblings
// - Template-part and synced-pattern content is walked with the matching
//   flag forced on
// - Flags are monotone down every path
// - Resolution misses and errors contribute nothing and never fail the walk
// - Mutually referencing patterns terminate via the cycle guard
// - Re-use of the same reference on distinct paths still counts each time
// - Depth cap prunes pathologically deep trees

// fakeResolver resolves from in-memory maps and counts lookups.
type fakeResolver struct {
	templates map[string]string // theme:slug -> content
	patterns  map[int64]string
	err       error
	calls     int
}

func (f *fakeResolver) ResolveTemplateFragment(_ context.Context, theme, slug string) (string, bool, error) {
	f.calls++
	if f.err != nil {
		return "", false, f.err
	}
	c, ok := f.templates[theme+":"+slug]
	return c, ok, nil
}

func (f *fakeResolver) ResolvePattern(_ context.Context, ref int64) (string, bool, error) {
	f.calls++
	if f.err != nil {
		return "", false, f.err
	}
	c, ok := f.patterns[ref]
	return c, ok, nil
}

func newTestWalker(r Resolver) *Walker {
	return NewWalker(r, WalkerOptions{
		DefaultStockStatuses: []string{"instock", "onbackorder"},
		ActiveTheme:          "storefront",
	})
}

const target = `<!-- wp:woocommerce/product-collection /-->`

func TestWalker_CountsAndOrder(t *testing.T) {
	t.Parallel()

	raw := `<!-- wp:woocommerce/product-collection {"collection":"first"} /-->
<!-- wp:group -->
  <!-- wp:columns -->
    <!-- wp:woocommerce/product-collection {"collection":"second"} /-->
  <!-- /wp:columns -->
<!-- /wp:group -->
<!-- wp:woocommerce/product-collection {"collection":"third"} /-->`

	w := newTestWalker(&fakeResolver{})
	instances := w.Walk(context.Background(), blocks.Parse(raw), Context{})

	require.Len(t, instances, 3)
	assert.Equal(t, "first", instances[0].Collection)
	assert.Equal(t, "second", instances[1].Collection)
	assert.Equal(t, "third", instances[2].Collection)
}

func TestWalker_DefaultCollection(t *testing.T) {
	t.Parallel()

	w := newTestWalker(&fakeResolver{})
	instances := w.Walk(context.Background(), blocks.Parse(target), Context{})

	require.Len(t, instances, 1)
	assert.Equal(t, DefaultCollection, instances[0].Collection)
	for _, name := range FilterNames {
		assert.Zero(t, instances[0].Filters[name], name)
	}
}

func TestWalker_SingleProductScope(t *testing.T) {
	t.Parallel()

	raw := `<!-- wp:woocommerce/single-product -->` + target + `<!-- /wp:woocommerce/single-product -->` + target

	w := newTestWalker(&fakeResolver{})
	instances := w.Walk(context.Background(), blocks.Parse(raw), Context{})

	require.Len(t, instances, 2)
	assert.True(t, instances[0].Context.InSingleProduct, "inside the container")
	assert.False(t, instances[1].Context.InSingleProduct, "sibling after the container")
}

func TestWalker_TemplatePartResolution(t *testing.T) {
	t.Parallel()

	r := &fakeResolver{templates: map[string]string{
		"storefront:shop-grid": target,
	}}
	w := newTestWalker(r)

	// No theme attribute: the active theme is assumed.
	raw := `<!-- wp:template-part {"slug":"shop-grid"} /-->`
	instances := w.Walk(context.Background(), blocks.Parse(raw), Context{})

	require.Len(t, instances, 1)
	assert.True(t, instances[0].Context.InTemplatePart)
	assert.False(t, instances[0].Context.InSyncedPattern)
}

func TestWalker_PatternResolution(t *testing.T) {
	t.Parallel()

	r := &fakeResolver{patterns: map[int64]string{
		41: target,
	}}
	w := newTestWalker(r)

	raw := `<!-- wp:block {"ref":41} /-->`
	instances := w.Walk(context.Background(), blocks.Parse(raw), Context{})

	require.Len(t, instances, 1)
	assert.True(t, instances[0].Context.InSyncedPattern)
	assert.False(t, instances[0].Context.InTemplatePart)
}

func TestWalker_FlagsAreMonotone(t *testing.T) {
	t.Parallel()

	// single-product container -> template part -> synced pattern -> target:
	// every flag picked up along the path must still be set at the leaf.
	r := &fakeResolver{
		templates: map[string]string{"storefront:deal-wall": `<!-- wp:block {"ref":7} /-->`},
		patterns:  map[int64]string{7: target},
	}
	w := newTestWalker(r)

	raw := `<!-- wp:woocommerce/single-product --><!-- wp:template-part {"slug":"deal-wall"} /--><!-- /wp:woocommerce/single-product -->`
	instances := w.Walk(context.Background(), blocks.Parse(raw), Context{})

	require.Len(t, instances, 1)
	assert.True(t, instances[0].Context.InSingleProduct)
	assert.True(t, instances[0].Context.InTemplatePart)
	assert.True(t, instances[0].Context.InSyncedPattern)
}

func TestWalker_ResolutionMissIsSilent(t *testing.T) {
	t.Parallel()

	w := newTestWalker(&fakeResolver{})
	raw := `<!-- wp:template-part {"slug":"nowhere"} /--><!-- wp:block {"ref":999} /-->` + target
	instances := w.Walk(context.Background(), blocks.Parse(raw), Context{})

	require.Len(t, instances, 1, "misses contribute nothing, the walk continues")
}

func TestWalker_EmptyResolvedContent(t *testing.T) {
	t.Parallel()

	r := &fakeResolver{templates: map[string]string{"storefront:empty": ""}}
	w := newTestWalker(r)

	instances := w.Walk(context.Background(), blocks.Parse(`<!-- wp:template-part {"slug":"empty"} /-->`), Context{})
	assert.Empty(t, instances)
}

func TestWalker_ResolverErrorIsSilent(t *testing.T) {
	t.Parallel()

	r := &fakeResolver{err: errors.New("store offline")}
	w := newTestWalker(r)

	raw := `<!-- wp:block {"ref":5} /-->` + target
	instances := w.Walk(context.Background(), blocks.Parse(raw), Context{})

	require.Len(t, instances, 1)
}

func TestWalker_CyclicReferencesTerminate(t *testing.T) {
	t.Parallel()

	r := &fakeResolver{patterns: map[int64]string{
		1: target + `<!-- wp:block {"ref":2} /-->`,
		2: `<!-- wp:block {"ref":1} /-->`,
	}}
	w := newTestWalker(r)

	instances := w.Walk(context.Background(), blocks.Parse(`<!-- wp:block {"ref":1} /-->`), Context{})

	// Pattern 1 contributes its target once; re-entering it through pattern 2
	// is refused.
	require.Len(t, instances, 1)
	assert.True(t, instances[0].Context.InSyncedPattern)
}

func TestWalker_SelfReferencingTemplateTerminates(t *testing.T) {
	t.Parallel()

	r := &fakeResolver{templates: map[string]string{
		"storefront:loop": target + `<!-- wp:template-part {"slug":"loop"} /-->`,
	}}
	w := newTestWalker(r)

	instances := w.Walk(context.Background(), blocks.Parse(`<!-- wp:template-part {"slug":"loop"} /-->`), Context{})
	require.Len(t, instances, 1)
}

func TestWalker_RepeatedReferenceOnDistinctPaths(t *testing.T) {
	t.Parallel()

	// The cycle guard is path-scoped: two sibling references to the same
	// template part both count.
	r := &fakeResolver{templates: map[string]string{
		"storefront:grid": target,
	}}
	w := newTestWalker(r)

	raw := `<!-- wp:template-part {"slug":"grid"} /--><!-- wp:template-part {"slug":"grid"} /-->`
	instances := w.Walk(context.Background(), blocks.Parse(raw), Context{})

	require.Len(t, instances, 2)
}

func TestWalker_DepthCap(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	for i := 0; i < maxWalkDepth+8; i++ {
		sb.WriteString("<!-- wp:group -->")
	}
	sb.WriteString(target)
	for i := 0; i < maxWalkDepth+8; i++ {
		sb.WriteString("<!-- /wp:group -->")
	}

	w := newTestWalker(&fakeResolver{})
	instances := w.Walk(context.Background(), blocks.Parse(sb.String()), Context{})
	assert.Empty(t, instances, "subtrees beyond the depth cap are pruned")
}

func TestWalker_UnknownBlocksStillWalked(t *testing.T) {
	t.Parallel()

	raw := `<!-- wp:some-plugin/mystery -->` + target + `<!-- /wp:some-plugin/mystery -->`
	w := newTestWalker(&fakeResolver{})
	instances := w.Walk(context.Background(), blocks.Parse(raw), Context{})
	require.Len(t, instances, 1)
}

func TestWalker_GateRejectionMeansNoResolverCalls(t *testing.T) {
	t.Parallel()

	// Pipeline-level property: a rejected save never reaches the walker.
	sc := SaveContext{
		ViaRESTSave:      true,
		BlockThemeActive: true,
		DocumentType:     TypePage,
		DocumentStatus:   "draft",
		RawContent:       fmt.Sprintf(`<!-- wp:template-part {"slug":"grid"} /-->%s`, target),
	}
	require.False(t, ShouldTrack(sc))

	r := &fakeResolver{}
	if ShouldTrack(sc) {
		newTestWalker(r).Walk(context.Background(), blocks.Parse(sc.RawContent), Context{})
	}
	assert.Zero(t, r.calls)
}
