package models

import (
	"strings"
	"time"

	"github.com/uptrace/bun"

	"github.com/kainuguru/ingestion-core/pkg/normalize"
)

// CanonicalProduct is one row per distinct physical product, deduplicated across retailers.
type CanonicalProduct struct {
	bun.BaseModel `bun:"table:canonical_products,alias:cp"`

	ID            string `bun:"id,pk" json:"id"`
	CanonicalName string `bun:"canonical_name,notnull" json:"canonical_name"`
	Vertical      string `bun:"vertical,notnull" json:"vertical"`
	Brand         string `bun:"brand,notnull" json:"brand"`
	Category      string `bun:"category,notnull" json:"category"`

	GTIN         *string `bun:"gtin" json:"gtin,omitempty"`
	MPN          *string `bun:"mpn" json:"mpn,omitempty"`
	ModelNumber  *string `bun:"model_number" json:"model_number,omitempty"`
	ImageURL     *string `bun:"image_url" json:"image_url,omitempty"`

	Attributes     AttributeMap `bun:"attributes,type:jsonb" json:"attributes"`
	SearchableText string       `bun:"searchable_text,notnull,default:''" json:"searchable_text"`

	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`

	Listings []*RetailerListing `bun:"rel:has-many,join:id=product_id" json:"listings,omitempty"`
}

func (cp *CanonicalProduct) TableName() string {
	return "canonical_products"
}

// unknownBrandCategoryValues is the set treated as "effectively empty" for brand/category
// overwrite decisions during canonical merge.
var unknownBrandCategoryValues = map[string]struct{}{
	"":        {},
	"unknown": {},
	"generic": {},
	"other":   {},
}

// IsUnknownBrandOrCategory reports whether a brand/category value should be treated as
// overwritable by a later ingestion (spec: current value empty or in {unknown, generic, other}).
func IsUnknownBrandOrCategory(value string) bool {
	_, ok := unknownBrandCategoryValues[strings.ToLower(strings.TrimSpace(value))]
	return ok
}

// FillIdentifiersMonotonic sets GTIN/MPN/ModelNumber/ImageURL only when currently empty,
// enforcing the "identifiers, once non-empty, are never cleared" invariant.
func (cp *CanonicalProduct) FillIdentifiersMonotonic(gtin, mpn, modelNumber, imageURL string) {
	if cp.GTIN == nil || *cp.GTIN == "" {
		if v := normalize.Identifier(gtin); v != "" {
			cp.GTIN = &v
		}
	}
	if cp.MPN == nil || *cp.MPN == "" {
		if v := normalize.Identifier(mpn); v != "" {
			cp.MPN = &v
		}
	}
	if cp.ModelNumber == nil || *cp.ModelNumber == "" {
		if v := normalize.Identifier(modelNumber); v != "" {
			cp.ModelNumber = &v
		}
	}
	if (cp.ImageURL == nil || *cp.ImageURL == "") && imageURL != "" {
		cp.ImageURL = &imageURL
	}
}

// ApplyBrandCategory overwrites brand/category only if the current value is unknown/empty.
func (cp *CanonicalProduct) ApplyBrandCategory(brand, category string) {
	if brand != "" && IsUnknownBrandOrCategory(cp.Brand) {
		cp.Brand = brand
	}
	if category != "" && IsUnknownBrandOrCategory(cp.Category) {
		cp.Category = category
	}
}

// MergeAttributes fills only empty slots in cp.Attributes from the supplied maps, applied in
// order (earlier maps fill first; existing non-empty values are never overwritten).
func (cp *CanonicalProduct) MergeAttributes(sources ...AttributeMap) {
	if cp.Attributes == nil {
		cp.Attributes = AttributeMap{}
	}
	for _, src := range sources {
		for k, v := range src {
			if IsEmptyAttributeValue(v) {
				continue
			}
			existing, has := cp.Attributes[k]
			if !has || IsEmptyAttributeValue(existing) {
				cp.Attributes[k] = v
			}
		}
	}
}

// RebuildSearchableText tokenizes the union of existing text, the canonical's own fields, and
// the supplied extra fields/attributes, deduplicates preserving first-seen order, and caps at
// maxTokens. Mixed alphanumeric tokens (e.g. "16GB") also emit a space-stripped variant.
func (cp *CanonicalProduct) RebuildSearchableText(maxTokens int, extraFields ...string) {
	var all []string
	all = append(all, normalize.Tokens(cp.SearchableText)...)
	all = append(all, normalize.Tokens(cp.CanonicalName)...)
	all = append(all, normalize.Tokens(cp.Brand)...)
	all = append(all, normalize.Tokens(cp.Category)...)
	if cp.GTIN != nil {
		all = append(all, normalize.Tokens(*cp.GTIN)...)
	}
	if cp.MPN != nil {
		all = append(all, normalize.Tokens(*cp.MPN)...)
	}
	if cp.ModelNumber != nil {
		all = append(all, normalize.Tokens(*cp.ModelNumber)...)
	}
	for _, f := range extraFields {
		all = append(all, normalize.Tokens(f)...)
	}
	for k, v := range cp.Attributes {
		all = append(all, normalize.Tokens(k)...)
		all = append(all, tokensFromAttributeValue(v)...)
	}

	var withVariants []string
	for _, tok := range all {
		withVariants = append(withVariants, tok)
		if normalize.IsMixedAlnum(tok) {
			withVariants = append(withVariants, strings.ReplaceAll(tok, " ", ""))
		}
	}

	deduped := normalize.DedupTokens(withVariants, maxTokens)
	cp.SearchableText = strings.Join(deduped, " ")
}

func tokensFromAttributeValue(v interface{}) []string {
	switch val := v.(type) {
	case string:
		return normalize.Tokens(val)
	case []interface{}:
		var out []string
		for _, item := range val {
			out = append(out, tokensFromAttributeValue(item)...)
		}
		return out
	case map[string]interface{}:
		var out []string
		for _, item := range val {
			out = append(out, tokensFromAttributeValue(item)...)
		}
		return out
	default:
		return nil
	}
}

// verticalFamilies groups verticals that should be treated as the same family for the
// transition gate (pharma and pharmaceuticals are one family).
var verticalFamilies = map[string]string{
	"pharma":          "pharma",
	"pharmaceuticals": "pharma",
	"tech":            "tech",
	"beauty":          "beauty",
	"home-appliances": "home-appliances",
	"supplements":     "supplements",
	"pet-goods":       "pet-goods",
}

func verticalFamily(v string) string {
	if f, ok := verticalFamilies[strings.ToLower(v)]; ok {
		return f
	}
	return strings.ToLower(v)
}

// StructuredVerticalSources is the set of inference sources treated as "structured" for the
// vertical transition gate's lower confidence threshold.
var StructuredVerticalSources = map[string]struct{}{
	"json_ld":            {},
	"breadcrumb":         {},
	"structured_category": {},
}

// ShouldTransitionVertical implements the vertical transition gate (spec §4.9): change only
// when the new vertical is a different family AND either confidence >= 0.93, or the source is
// structured and confidence >= 0.88.
func (cp *CanonicalProduct) ShouldTransitionVertical(newVertical, source string, confidence float64) bool {
	if verticalFamily(newVertical) == verticalFamily(cp.Vertical) {
		return false
	}
	if confidence >= 0.93 {
		return true
	}
	if _, structured := StructuredVerticalSources[source]; structured && confidence >= 0.88 {
		return true
	}
	return false
}
