// Package usage locates product-collection blocks in saved content and
// classifies how each instance is configured and where it lives.
package usage

// Document types whose saves are tracked.
const (
	TypePost          = "post"
	TypePage          = "page"
	TypeTemplate      = "wp_template"
	TypeTemplatePart  = "wp_template_part"
	TypeReusableBlock = "wp_block"
)

// StatusPublished is the only document status that triggers tracking.
const StatusPublished = "publish"

// DefaultCollection is reported when a product-collection block carries no
// collection attribute.
const DefaultCollection = "product-catalog"

// Context carries the three traversal flags threaded down the block tree.
// Flags are monotone: once set on the way down they are never cleared for a
// subtree. Context is passed by value so sibling branches cannot alias.
type Context struct {
	InSingleProduct bool
	InTemplatePart  bool
	InSyncedPattern bool
}

// Instance is one located product-collection block, in traversal order.
type Instance struct {
	Collection string
	Context    Context
	Filters    map[string]int
}
