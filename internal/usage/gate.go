package usage

import "github.com/mvp-joe/blockpulse/internal/blocks"

// SaveContext describes one document-save invocation as seen by the trigger
// gate.
type SaveContext struct {
	// ViaRESTSave is true when the save arrived through the REST save path
	// (editor saves) rather than a programmatic update.
	ViaRESTSave bool
	// BlockThemeActive is true when the active theme supports full-site
	// editing.
	BlockThemeActive bool
	DocumentType     string
	DocumentStatus   string
	RawContent       string
}

var trackedTypes = map[string]bool{
	TypePost:          true,
	TypePage:          true,
	TypeTemplate:      true,
	TypeTemplatePart:  true,
	TypeReusableBlock: true,
}

// ShouldTrack decides whether a save is worth parsing at all. Every condition
// short-circuits: drafts, unsupported document types, and content that cannot
// structurally contain a product-collection block are rejected before any
// parse work happens.
func ShouldTrack(sc SaveContext) bool {
	if !sc.ViaRESTSave || !sc.BlockThemeActive {
		return false
	}
	if sc.DocumentStatus != StatusPublished {
		return false
	}
	if !trackedTypes[sc.DocumentType] {
		return false
	}
	// The target can be reached indirectly through a template part or a
	// synced pattern, so containment of any of the three passes the gate.
	return blocks.ContainsAny(sc.RawContent,
		blocks.KindProductCollection,
		blocks.KindTemplatePart,
		blocks.KindSyncedPattern,
	)
}
