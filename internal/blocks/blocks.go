// Package blocks models block-structured storefront content and parses the
// comment-delimited serialization format used by the host CMS.
package blocks

// Well-known block kinds the walker gives special treatment to. Everything
// else passes through: unrecognized blocks contribute nothing themselves but
// their children are still walked.
const (
	KindProductCollection = "woocommerce/product-collection"
	KindSingleProduct     = "woocommerce/single-product"
	KindTemplatePart      = "core/template-part"
	KindSyncedPattern     = "core/block"
)

// Node is one block in a parsed document tree.
type Node struct {
	// Kind is the namespaced block name, e.g. "core/paragraph".
	Kind string
	// Attrs holds the block's JSON attributes. Never nil after parsing;
	// malformed attribute payloads parse to an empty map.
	Attrs map[string]any
	// Children are nested blocks in document order.
	Children []Node
}

// Attr returns the attribute stored under key, or nil if absent.
func (n Node) Attr(key string) any {
	if n.Attrs == nil {
		return nil
	}
	return n.Attrs[key]
}

// StringAttr returns the attribute under key if it is a non-empty string.
func (n Node) StringAttr(key string) (string, bool) {
	s, ok := n.Attr(key).(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// IntAttr returns the attribute under key coerced to an int64. JSON numbers
// decode as float64, so both forms are accepted.
func (n Node) IntAttr(key string) (int64, bool) {
	switch v := n.Attr(key).(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	}
	return 0, false
}
