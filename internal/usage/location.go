package usage

import "strings"

// Editor locations reported as the event's editor_context.
const (
	LocationPost              = "post"
	LocationPage              = "page"
	LocationIsolatedBlock     = "isolated-wp_block"
	LocationIsolatedFragment  = "isolated-wp_template_part"
	LocationSingleProduct     = "single-product"
	LocationProductArchive    = "product-archive"
	LocationCart              = "cart"
	LocationCheckout          = "checkout"
	LocationProductCatalog    = "product-catalog"
	LocationOrderConfirmation = "order-confirmation"
	LocationOther             = "other"
)

// Template slugs with a fixed meaning. Taxonomy templates are matched by
// prefix against the registered product taxonomies instead.
const (
	slugPrefixSingleProduct = "single-product"
	slugAttributeArchive    = "taxonomy-product_attribute"
	slugPrefixTaxonomy      = "taxonomy-"
	slugCart                = "cart"
	slugMiniCart            = "mini-cart"
	slugCheckout            = "checkout"
	slugProductCatalog      = "archive-product"
	slugOrderConfirmation   = "order-confirmation"
)

// LocateDocument maps a document's type and slug to its editor location.
// productTaxonomies is the set of taxonomy names registered against the
// product entity; it decides which taxonomy-* template slugs are product
// archives. Total over any input: unrecognized types and slugs map to
// LocationOther.
func LocateDocument(docType, slug string, productTaxonomies map[string]bool) string {
	switch docType {
	case TypeReusableBlock:
		return LocationIsolatedBlock
	case TypeTemplatePart:
		return LocationIsolatedFragment
	case TypePage:
		return LocationPage
	case TypePost:
		return LocationPost
	case TypeTemplate:
		return locateTemplate(slug, productTaxonomies)
	default:
		return LocationOther
	}
}

// locateTemplate resolves a full-site template slug. First match wins; a slug
// matching nothing stays at LocationOther.
func locateTemplate(slug string, productTaxonomies map[string]bool) string {
	switch {
	case strings.HasPrefix(slug, slugPrefixSingleProduct):
		return LocationSingleProduct
	case slug == slugAttributeArchive:
		return LocationProductArchive
	case strings.HasPrefix(slug, slugPrefixTaxonomy):
		if productTaxonomies[strings.TrimPrefix(slug, slugPrefixTaxonomy)] {
			return LocationProductArchive
		}
		return LocationOther
	case slug == slugCart || slug == slugMiniCart:
		return LocationCart
	case slug == slugCheckout:
		return LocationCheckout
	case slug == slugProductCatalog:
		return LocationProductCatalog
	case slug == slugOrderConfirmation:
		return LocationOrderConfirmation
	default:
		return LocationOther
	}
}
