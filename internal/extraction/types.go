// Package extraction implements the shared per-page parser: given raw HTML and a
// source-product-id, produce a normalized product-page record or signal the page is
// not a product (spec §4.4).
package extraction

import "time"

// CategorySource records which signal produced the normalized category, since later
// vertical inference weights confidence by it.
type CategorySource string

const (
	CategorySourceJSONLD     CategorySource = "json_ld"
	CategorySourceBreadcrumb CategorySource = "breadcrumb"
	CategorySourceFallback   CategorySource = "fallback"
)

// Page is the normalized output of parsing one product page.
type Page struct {
	SourceProductID string
	URL             string
	Title           string
	ImageURL        string
	Brand           string
	RawCategory     string
	Category        string
	CategorySource  CategorySource
	Availability    string

	GTIN        string
	MPN         string
	ModelNumber string

	Attributes map[string]interface{}

	RegularPrice float64
	PromoPrice   *float64
	DiscountPct  *float64

	CapturedAt time.Time
}

// NonProductError signals the page is not a product page (category landing, compare
// page, 404-ish body) rather than a parse failure; the adapter treats it as zero
// listings, not an error (spec §4.4).
type NonProductError struct {
	Reason string
}

func (e *NonProductError) Error() string { return "extraction: non-product page: " + e.Reason }

// RxExclusionError signals a pharma listing matched a prescription-only exclusion token
// and must be dropped (spec §4.4).
type RxExclusionError struct {
	Reason string
}

func (e *RxExclusionError) Error() string { return "extraction: rx exclusion: " + e.Reason }

// PriceError signals no positive price could be extracted from the page.
type PriceError struct {
	URL string
}

func (e *PriceError) Error() string { return "extraction: no positive price found for " + e.URL }
