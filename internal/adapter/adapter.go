// Package adapter provides the retailer-specific configuration and four-operation
// contract the pipeline drives: listPages, parseListing, fetchDetail, normalize
// (spec §4.5).
package adapter

import "time"

// PageStub is one unit of work returned by listPages: either a URL to fetch, or a
// fixture page whose Items field carries a full offline dataset.
type PageStub struct {
	URL             string
	SourceProductID string
	Items           []FixtureItem // non-nil only for fixture-sourced pages
}

// Listing is the thin record parseListing yields per page, before detail/price
// extraction.
type Listing struct {
	SourceProductID string
	Title           string
	URL             string
	ImageURL        string
	Category        string
	Brand           string
	Availability    string
}

// Detail is the per-listing data fetchDetail produces (usually the cached extraction
// parse).
type Detail struct {
	GTIN         string
	MPN          string
	ModelNumber  string
	Attributes   map[string]interface{}
	PriceNZD     float64
	PromoPriceNZD *float64
	PromoText    string
	DiscountPct  *float64
	CapturedAt   time.Time
}

// NormalizedProduct is the record consumed by the matching engine and pipeline upsert.
type NormalizedProduct struct {
	Vertical           string
	VerticalSource     string
	VerticalConfidence float64
	SourceProductID    string
	Title              string
	URL                string
	ImageURL           string
	CanonicalName      string
	Brand              string
	Category           string
	ModelNumber        string
	GTIN               string
	MPN                string
	Attributes         map[string]interface{}
	RawAttributes      map[string]interface{}
	Availability       string
	PriceNZD           float64
	PromoPriceNZD      *float64
	PromoText          string
	DiscountPct        *float64
	CapturedAt         time.Time
}

// SourceAdapter is the four-operation contract every retailer adapter implements
// (spec §4.5).
type SourceAdapter interface {
	ListPages() ([]PageStub, error)
	ParseListing(page PageStub) ([]Listing, error)
	FetchDetail(listing Listing) (Detail, error)
	Normalize(listing Listing, detail Detail) (NormalizedProduct, error)
}
