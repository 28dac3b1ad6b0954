package adapter

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kainuguru/ingestion-core/internal/vertical"
	"github.com/kainuguru/ingestion-core/pkg/normalize"
)

// FixtureItem is one entry of a fixture file's items array (spec §6 fixture file format).
type FixtureItem struct {
	SourceProductID string                 `json:"source_product_id"`
	Title           string                 `json:"title"`
	URL             string                 `json:"url"`
	ImageURL        string                 `json:"image_url,omitempty"`
	Brand           string                 `json:"brand"`
	Category        string                 `json:"category"`
	Availability    string                 `json:"availability,omitempty"`
	GTIN            string                 `json:"gtin,omitempty"`
	MPN             string                 `json:"mpn,omitempty"`
	ModelNumber     string                 `json:"model_number,omitempty"`
	Attributes      map[string]interface{} `json:"attributes"`
	PriceNZD        float64                `json:"price_nzd"`
	PromoPriceNZD   *float64               `json:"promo_price_nzd,omitempty"`
	PromoText       string                 `json:"promo_text,omitempty"`
	DiscountPct     *float64               `json:"discount_pct,omitempty"`
}

type fixturePayload struct {
	Items []FixtureItem `json:"items"`
}

// FixtureAdapter serves an offline dataset in place of live scraping, used both as a
// standalone mode and as the fallback a LiveAdapter reaches for (spec §4.5).
type FixtureAdapter struct {
	Vertical string
	Path     string

	cached *fixturePayload
}

func NewFixtureAdapter(vertical, path string) *FixtureAdapter {
	return &FixtureAdapter{Vertical: vertical, Path: path}
}

func (a *FixtureAdapter) load() (*fixturePayload, error) {
	if a.cached != nil {
		return a.cached, nil
	}
	data, err := os.ReadFile(a.Path)
	if err != nil {
		return nil, fmt.Errorf("adapter: reading fixture %s: %w", a.Path, err)
	}
	var payload fixturePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("adapter: parsing fixture %s: %w", a.Path, err)
	}
	a.cached = &payload
	return a.cached, nil
}

// ListPages returns a single page stub carrying the whole fixture dataset.
func (a *FixtureAdapter) ListPages() ([]PageStub, error) {
	payload, err := a.load()
	if err != nil {
		return nil, err
	}
	return []PageStub{{Items: payload.Items}}, nil
}

func (a *FixtureAdapter) ParseListing(page PageStub) ([]Listing, error) {
	listings := make([]Listing, 0, len(page.Items))
	for _, item := range page.Items {
		listings = append(listings, Listing{
			SourceProductID: item.SourceProductID,
			Title:           item.Title,
			URL:             item.URL,
			ImageURL:        item.ImageURL,
			Category:        item.Category,
			Brand:           item.Brand,
			Availability:    item.Availability,
		})
	}
	return listings, nil
}

func (a *FixtureAdapter) FetchDetail(listing Listing) (Detail, error) {
	payload, err := a.load()
	if err != nil {
		return Detail{}, err
	}
	for _, item := range payload.Items {
		if item.SourceProductID == listing.SourceProductID {
			return Detail{
				GTIN:          item.GTIN,
				MPN:           item.MPN,
				ModelNumber:   item.ModelNumber,
				Attributes:    item.Attributes,
				PriceNZD:      item.PriceNZD,
				PromoPriceNZD: item.PromoPriceNZD,
				PromoText:     item.PromoText,
				DiscountPct:   item.DiscountPct,
				CapturedAt:    time.Now().UTC(),
			}, nil
		}
	}
	return Detail{}, fmt.Errorf("adapter: fixture item %s not found in %s", listing.SourceProductID, a.Path)
}

func (a *FixtureAdapter) Normalize(listing Listing, detail Detail) (NormalizedProduct, error) {
	modelNumber := normalize.Identifier(detail.ModelNumber)
	gtin := normalize.Identifier(detail.GTIN)
	mpn := normalize.Identifier(detail.MPN)

	merged := map[string]interface{}{}
	for k, v := range detail.Attributes {
		merged[k] = v
	}
	if modelNumber != "" {
		if _, ok := merged["model_number"]; !ok {
			merged["model_number"] = modelNumber
		}
	}

	// Fixture items declare their category directly (spec §6 fixture file format), so it's
	// treated as a structured signal, same as a retailer's own category taxonomy.
	decision := vertical.Infer(
		vertical.SourceStructuredCategory,
		listing.Category,
		urlPath(listing.URL),
		listing.Title,
		attributeStrings(detail.Attributes),
		a.Vertical,
	)

	return NormalizedProduct{
		Vertical:           decision.Vertical,
		VerticalSource:     string(decision.Source),
		VerticalConfidence: decision.Confidence,
		SourceProductID:    listing.SourceProductID,
		Title:              listing.Title,
		URL:                listing.URL,
		ImageURL:           listing.ImageURL,
		CanonicalName:      strings.TrimSpace(listing.Title),
		Brand:              strings.TrimSpace(listing.Brand),
		Category:           strings.ToLower(strings.TrimSpace(listing.Category)),
		ModelNumber:        modelNumber,
		GTIN:               gtin,
		MPN:                mpn,
		Attributes:         merged,
		RawAttributes:      detail.Attributes,
		Availability:       listing.Availability,
		PriceNZD:           detail.PriceNZD,
		PromoPriceNZD:      detail.PromoPriceNZD,
		PromoText:          detail.PromoText,
		DiscountPct:        detail.DiscountPct,
		CapturedAt:         detail.CapturedAt,
	}, nil
}
