package adapter

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"

	"github.com/kainuguru/ingestion-core/internal/discovery"
	"github.com/kainuguru/ingestion-core/internal/extraction"
	"github.com/kainuguru/ingestion-core/internal/vertical"
	"github.com/kainuguru/ingestion-core/pkg/logger"
)

// LiveFetcher is the subset of fetch.Client a live adapter needs: text fetches for
// product pages, plus sitemap fetches for discovery.
type LiveFetcher interface {
	FetchText(ctx context.Context, url string) (string, error)
	FetchSitemap(ctx context.Context, url string) (string, error)
}

// LiveConfig parameterizes one retailer's live adapter (spec §6 adapter configuration).
type LiveConfig struct {
	RetailerSlug       string
	BaseURL            string
	Vertical           string
	SitemapSeeds       []string
	IncludeURLPatterns []string
	ExcludeURLPatterns []string
	RequireFileSuffix  string
	MaxProducts        int
}

// pharmaAllowedCategories restricts which normalized categories a pharma adapter is
// permitted to emit listings for, dropping the rest silently.
var pharmaAllowedCategories = map[string]bool{
	"otc": true, "supplements": true, "other-pharma": true,
}

// LiveAdapter is the generic retailer adapter driven by discovery + the shared
// extraction engine, with an optional fixture fallback and subclass-style override
// hooks (spec §4.5).
type LiveAdapter struct {
	cfg        LiveConfig
	fetcher    LiveFetcher
	discoverer *discovery.Discoverer
	fixture    *FixtureAdapter

	pageCache map[string]*extraction.Page

	// IsCandidateURL, when set, rejects product-like URLs that are actually generic
	// landing pages (subclass override hook).
	IsCandidateURL func(rawURL string) bool
	// IsNonProduct, when set, layers adapter-specific non-product detection on top of
	// the engine's own checks (subclass override hook).
	IsNonProduct func(url, title, body string) (string, bool)
	// FetchOverride, when set, replaces the default fetcher call (e.g. routing specific
	// hosts through the browser fallback).
	FetchOverride func(ctx context.Context, url string) (string, error)

	ctx context.Context
}

func NewLiveAdapter(cfg LiveConfig, fetcher LiveFetcher, fixture *FixtureAdapter) *LiveAdapter {
	filter := discovery.Filter{
		IncludePatterns:   cfg.IncludeURLPatterns,
		ExcludePatterns:   cfg.ExcludeURLPatterns,
		RequireFileSuffix: cfg.RequireFileSuffix,
	}
	return &LiveAdapter{
		cfg:        cfg,
		fetcher:    fetcher,
		discoverer: discovery.New(fetcher, cfg.RetailerSlug, cfg.BaseURL, filter, cfg.MaxProducts),
		fixture:    fixture,
		pageCache:  map[string]*extraction.Page{},
		ctx:        context.Background(),
	}
}

// SetContext installs the context used for this run's fetches; the pipeline calls this
// once per run.
func (a *LiveAdapter) SetContext(ctx context.Context) { a.ctx = ctx }

func (a *LiveAdapter) ListPages() ([]PageStub, error) {
	urls, err := a.discoverer.Discover(a.ctx, a.cfg.SitemapSeeds)
	if err != nil {
		return nil, err
	}
	if a.IsCandidateURL != nil {
		filtered := urls[:0]
		for _, u := range urls {
			if a.IsCandidateURL(u) {
				filtered = append(filtered, u)
			}
		}
		urls = filtered
	}

	if len(urls) > 0 {
		probe := discovery.Probe(a.ctx, a.fetcher, urls, a.cfg.Vertical, a.cfg.BaseURL)
		if !probe.OK {
			if a.fixture != nil {
				return a.fixture.ListPages()
			}
			return nil, fmt.Errorf("adapter: live probe failed for %s: %s", a.cfg.RetailerSlug, probe.Reason)
		}
		urls = probe.Reordered
		pages := make([]PageStub, 0, len(urls))
		for _, u := range urls {
			pages = append(pages, PageStub{URL: u, SourceProductID: sourceIDFromURL(a.cfg.RetailerSlug, u)})
		}
		return pages, nil
	}

	if a.fixture != nil {
		return a.fixture.ListPages()
	}
	return nil, fmt.Errorf("adapter: no product URLs discovered for %s", a.cfg.RetailerSlug)
}

func (a *LiveAdapter) ParseListing(page PageStub) ([]Listing, error) {
	if page.Items != nil && a.fixture != nil {
		return a.fixture.ParseListing(page)
	}

	parsed, err := a.parseProductPage(page.URL, page.SourceProductID)
	if err != nil {
		var npErr *extraction.NonProductError
		if isErrorType(err, &npErr) {
			return nil, nil
		}
		return nil, err
	}
	a.pageCache[page.SourceProductID] = parsed

	if a.cfg.Vertical == "pharma" && !pharmaAllowedCategories[parsed.Category] {
		return nil, nil
	}

	return []Listing{{
		SourceProductID: parsed.SourceProductID,
		Title:           parsed.Title,
		URL:             parsed.URL,
		ImageURL:        parsed.ImageURL,
		Category:        parsed.Category,
		Brand:           parsed.Brand,
		Availability:    parsed.Availability,
	}}, nil
}

func (a *LiveAdapter) FetchDetail(listing Listing) (Detail, error) {
	if parsed, ok := a.pageCache[listing.SourceProductID]; ok {
		return toDetail(parsed), nil
	}

	if a.fixture != nil {
		if detail, err := a.fixture.FetchDetail(listing); err == nil {
			return detail, nil
		}
	}

	parsed, err := a.parseProductPage(listing.URL, listing.SourceProductID)
	if err != nil {
		return Detail{}, err
	}
	a.pageCache[listing.SourceProductID] = parsed
	return toDetail(parsed), nil
}

func (a *LiveAdapter) Normalize(listing Listing, detail Detail) (NormalizedProduct, error) {
	attrValues := attributeStrings(detail.Attributes)
	decision := vertical.Infer(
		categorySourceToVerticalSource(a.pageCache[listing.SourceProductID]),
		categoryOf(a.pageCache[listing.SourceProductID]),
		urlPath(listing.URL),
		listing.Title,
		attrValues,
		a.cfg.Vertical,
	)

	merged := map[string]interface{}{}
	for k, v := range detail.Attributes {
		merged[k] = v
	}
	if detail.ModelNumber != "" {
		if _, ok := merged["model_number"]; !ok {
			merged["model_number"] = detail.ModelNumber
		}
	}

	return NormalizedProduct{
		Vertical:           decision.Vertical,
		VerticalSource:     string(decision.Source),
		VerticalConfidence: decision.Confidence,
		SourceProductID:    listing.SourceProductID,
		Title:              strings.TrimSpace(listing.Title),
		URL:                listing.URL,
		ImageURL:           listing.ImageURL,
		CanonicalName:      strings.TrimSpace(listing.Title),
		Brand:              strings.TrimSpace(listing.Brand),
		Category:           listing.Category,
		ModelNumber:        detail.ModelNumber,
		GTIN:               detail.GTIN,
		MPN:                detail.MPN,
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

func (a *LiveAdapter) parseProductPage(pageURL, sourceProductID string) (*extraction.Page, error) {
	log := logger.AdapterLogger(a.cfg.RetailerSlug, "parse_product_page")

	var html string
	var err error
	if a.FetchOverride != nil {
		html, err = a.FetchOverride(a.ctx, pageURL)
	} else {
		html, err = a.fetcher.FetchText(a.ctx, pageURL)
	}
	if err != nil {
		log.Debug().Str("url", pageURL).Err(err).Msg("fetch failed")
		return nil, err
	}

	return extraction.Parse(html, pageURL, sourceProductID, a.cfg.BaseURL, extraction.VerticalHint{
		Vertical:     a.cfg.Vertical,
		IsNonProduct: a.IsNonProduct,
	})
}

func toDetail(p *extraction.Page) Detail {
	promoText := ""
	if p.PromoPrice != nil {
		promoText = "Promo"
	}
	return Detail{
		GTIN:          p.GTIN,
		MPN:           p.MPN,
		ModelNumber:   p.ModelNumber,
		Attributes:    p.Attributes,
		PriceNZD:      p.RegularPrice,
		PromoPriceNZD: p.PromoPrice,
		PromoText:     promoText,
		DiscountPct:   p.DiscountPct,
		CapturedAt:    p.CapturedAt,
	}
}

func sourceIDFromURL(retailerSlug, rawURL string) string {
	parsed, err := url.Parse(rawURL)
	base := rawURL
	if err == nil {
		base = strings.Trim(parsed.Host+parsed.Path, "/")
	}
	sum := sha1.Sum([]byte(base))
	digest := hex.EncodeToString(sum[:])[:16]
	return fmt.Sprintf("%s-%s", retailerSlug, digest)
}

func urlPath(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return parsed.Path
}

func categoryOf(p *extraction.Page) string {
	if p == nil {
		return ""
	}
	return p.RawCategory
}

func categorySourceToVerticalSource(p *extraction.Page) vertical.Source {
	if p == nil {
		return vertical.SourceAdapterDefault
	}
	switch p.CategorySource {
	case extraction.CategorySourceJSONLD:
		return vertical.SourceJSONLD
	case extraction.CategorySourceBreadcrumb:
		return vertical.SourceBreadcrumb
	default:
		return vertical.SourceAdapterDefault
	}
}

func attributeStrings(attrs map[string]interface{}) []string {
	var out []string
	for _, v := range attrs {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func isErrorType(err error, target **extraction.NonProductError) bool {
	if npErr, ok := err.(*extraction.NonProductError); ok {
		*target = npErr
		return true
	}
	return false
}
