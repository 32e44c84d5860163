package usage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Test Plan for LocateDocument:
// - Post/page/reusable-block/template-part types map directly
// - Template slugs resolve in priority order
// - taxonomy-* slugs depend on the registered product taxonomy set
// - Everything unrecognized maps to other

func TestLocateDocument(t *testing.T) {
	t.Parallel()

	taxonomies := map[string]bool{
		"product_cat":   true,
		"product_tag":   true,
		"product_brand": true,
	}

	tests := []struct {
		name    string
		docType string
		slug    string
		want    string
	}{
		{"post", TypePost, "hello-world", LocationPost},
		{"page", TypePage, "shop", LocationPage},
		{"reusable block", TypeReusableBlock, "promo-grid", LocationIsolatedBlock},
		{"template part", TypeTemplatePart, "header", LocationIsolatedFragment},
		{"single product template", TypeTemplate, "single-product", LocationSingleProduct},
		{"specific single product template", TypeTemplate, "single-product-hoodie", LocationSingleProduct},
		{"attribute archive", TypeTemplate, "taxonomy-product_attribute", LocationProductArchive},
		{"category archive", TypeTemplate, "taxonomy-product_cat", LocationProductArchive},
		{"custom product taxonomy archive", TypeTemplate, "taxonomy-product_brand", LocationProductArchive},
		{"non-product taxonomy", TypeTemplate, "taxonomy-post_tag", LocationOther},
		{"cart", TypeTemplate, "cart", LocationCart},
		{"mini cart", TypeTemplate, "mini-cart", LocationCart},
		{"checkout", TypeTemplate, "checkout", LocationCheckout},
		{"catalog", TypeTemplate, "archive-product", LocationProductCatalog},
		{"order confirmation", TypeTemplate, "order-confirmation", LocationOrderConfirmation},
		{"unknown template slug", TypeTemplate, "404", LocationOther},
		{"disallowed type", "attachment", "whatever", LocationOther},
		{"empty type", "", "", LocationOther},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, LocateDocument(tt.docType, tt.slug, taxonomies))
		})
	}
}

func TestLocateDocument_NilTaxonomySet(t *testing.T) {
	t.Parallel()
	assert.Equal(t, LocationOther, LocateDocument(TypeTemplate, "taxonomy-product_cat", nil))
}
