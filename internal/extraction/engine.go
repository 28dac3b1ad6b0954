package extraction

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/kainuguru/ingestion-core/pkg/normalize"
)

// VerticalHint carries the adapter's declared vertical and whatever non-product
// detection hook it wants layered on top of the engine's own checks (spec §4.4, §4.5).
type VerticalHint struct {
	Vertical         string
	IsNonProduct     func(url, title, body string) (string, bool)
}

// Parse extracts a normalized Page from raw HTML. Returns a *NonProductError when the
// page isn't a product, a *RxExclusionError when a pharma listing is prescription-only,
// or a *PriceError when no positive price could be found.
func Parse(html, pageURL, sourceProductID, baseURL string, hint VerticalHint) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &NonProductError{Reason: "unparseable HTML"}
	}

	if hint.IsNonProduct != nil {
		if reason, ok := hint.IsNonProduct(pageURL, doc.Find("title").First().Text(), html); ok {
			return nil, &NonProductError{Reason: reason}
		}
	}

	product := extractProduct(doc)
	if product == nil {
		product = map[string]interface{}{}
	}

	title := firstNonEmpty(
		asText(product["name"]),
		metaContent(doc, "property", "og:title"),
		doc.Find("title").First().Text(),
		sourceProductID,
	)
	title = strings.TrimSpace(title)

	brand := firstNonEmpty(
		extractBrand(product),
		metaContent(doc, "name", "brand"),
		firstWord(title),
	)
	brand = strings.TrimSpace(brand)

	rawCategory := firstNonEmpty(
		asText(product["category"]),
		extractBreadcrumbCategory(doc),
		fallbackCategory(hint.Vertical),
	)
	categorySource := CategorySourceFallback
	switch {
	case asText(product["category"]) != "":
		categorySource = CategorySourceJSONLD
	case extractBreadcrumbCategory(doc) != "":
		categorySource = CategorySourceBreadcrumb
	}

	if hint.Vertical == "pharma" && containsRxExclusion(rawCategory, title) {
		return nil, &RxExclusionError{Reason: "prescription-only listing excluded"}
	}
	category := normalizeCategory(hint.Vertical, rawCategory, title)

	availability := extractAvailability(product)
	regular, promo := extractPrices(product, doc, hint.Vertical, title)
	if regular <= 0 {
		return nil, &PriceError{URL: pageURL}
	}

	var discountPct *float64
	if promo != nil {
		if pct, ok := normalize.DiscountPercent(regular, *promo); ok {
			discountPct = &pct
		}
	}

	attrs := extractAttributes(product, doc)

	switch hint.Vertical {
	case "pharma":
		enrichPharma(title, attrs)
	case "beauty":
		enrichBeauty(title, attrs)
	case "home-appliances":
		enrichHomeAppliances(title, attrs)
	}

	gtin := firstNonEmpty(
		asText(product["gtin13"]),
		asText(product["gtin14"]),
		asText(product["gtin"]),
		metaContent(doc, "name", "gtin"),
	)
	mpn := firstNonEmpty(asText(product["mpn"]), asText(product["sku"]))
	modelNumber := firstNonEmpty(asText(product["model"]), attrStringValue(attrs, "model"), attrStringValue(attrs, "model_number"))

	imageURL := extractImageURL(product, doc, baseURL, title)

	return &Page{
		SourceProductID: sourceProductID,
		URL:             pageURL,
		Title:           title,
		ImageURL:        imageURL,
		Brand:           brand,
		RawCategory:     rawCategory,
		Category:        category,
		CategorySource:  categorySource,
		Availability:    availability,
		GTIN:            normalize.Identifier(gtin),
		MPN:             normalize.Identifier(mpn),
		ModelNumber:     normalize.Identifier(modelNumber),
		Attributes:      attrs,
		RegularPrice:    regular,
		PromoPrice:      promo,
		DiscountPct:     discountPct,
		CapturedAt:      time.Now().UTC(),
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func attrStringValue(attrs map[string]interface{}, key string) string {
	v, ok := attrs[key]
	if !ok {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
