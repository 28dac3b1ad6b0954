package extraction

import (
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	scriptPriceKeyRE = regexp.MustCompile(`(?i)"(?:price|saleprice|currentprice|finalprice|regularprice|amount|pricevalue)"\s*:\s*"?(\d+(?:\.\d+)?)"?`)
	textPriceRE      = regexp.MustCompile(`(?i)(?:was|now|price|sale|special|from|only)\D{0,12}\$\s*(\d{1,3}(?:,\d{3})*(?:\.\d{1,2})?)|\$\s*(\d{1,3}(?:,\d{3})*(?:\.\d{1,2})?)`)

	premiumTechTokens = []string{"macbook", "iphone", "galaxy", "surface", "playstation", "xbox", "ultrabook"}
)

// pricePool is one of the three candidate sources a page's prices are drawn from,
// ordered by trust: structured markup beats inline script beats free text (spec §4.4).
type pricePool int

const (
	poolStructured pricePool = iota
	poolScript
	poolText
)

// priceCandidate is a raw extracted value tagged with the pool it came from, so the
// primary pool (structured > script > text) can be chosen deterministically.
type priceCandidate struct {
	value float64
	pool  pricePool
}

// centsCorrect divides integer values that look like cents (e.g. 196900 -> 1969.00)
// and rejects anything still absurd afterward (spec §4.4).
func centsCorrect(value float64) (float64, bool) {
	if value > 10000 && value == float64(int64(value)) && int64(value)%100 == 0 {
		corrected := value / 100
		if corrected > 0 && corrected < 100000 {
			return corrected, true
		}
	}
	if value >= 100000 {
		return 0, false
	}
	return value, true
}

func appendPrice(candidates *[]priceCandidate, pool pricePool, v interface{}) {
	raw, ok := toFloat(v)
	if !ok {
		return
	}
	corrected, ok := centsCorrect(raw)
	if !ok {
		return
	}
	if corrected <= 0 {
		return
	}
	*candidates = append(*candidates, priceCandidate{value: round2(corrected), pool: pool})
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}

// extractPrices builds the three candidate pools, dedupes within each, picks the
// highest-trust non-empty pool as primary, and derives regular/promo from it per
// spec §4.4 (regular = max(primary); promo = largest value < regular clearing the
// vertical plausibility floor).
func extractPrices(product map[string]interface{}, doc *goquery.Document, vertical, title string) (regular float64, promo *float64) {
	var structured []priceCandidate
	offer := extractOffer(product)
	if offer != nil {
		appendPrice(&structured, poolStructured, offer["price"])
		appendPrice(&structured, poolStructured, offer["lowPrice"])
		appendPrice(&structured, poolStructured, offer["highPrice"])

		switch spec := offer["priceSpecification"].(type) {
		case []interface{}:
			for _, s := range spec {
				if m, ok := s.(map[string]interface{}); ok {
					appendPrice(&structured, poolStructured, m["price"])
				}
			}
		case map[string]interface{}:
			appendPrice(&structured, poolStructured, spec["price"])
		}
	}
	appendPrice(&structured, poolStructured, metaContent(doc, "property", "product:price:amount"))
	appendPrice(&structured, poolStructured, metaContent(doc, "property", "og:price:amount"))
	appendPrice(&structured, poolStructured, metaContent(doc, "name", "price"))

	var script []priceCandidate
	scriptText := scriptsText(doc)
	for _, m := range scriptPriceKeyRE.FindAllStringSubmatch(scriptText, -1) {
		appendPrice(&script, poolScript, m[1])
	}

	var text []priceCandidate
	bodyText := doc.Text()
	count := 0
	for _, m := range textPriceRE.FindAllStringSubmatch(bodyText, -1) {
		if count >= 12 {
			break
		}
		value := m[1]
		if value == "" {
			value = m[2]
		}
		appendPrice(&text, poolText, value)
		count++
	}

	var primary []priceCandidate
	switch {
	case len(structured) > 0:
		primary = structured
	case len(script) > 0:
		primary = script
	default:
		primary = text
	}

	values := dedupeValues(primary)
	if len(values) == 0 {
		return 0, nil
	}
	regular = values[len(values)-1]
	if len(values) == 1 {
		return regular, nil
	}

	floor := plausibilityFloor(vertical, regular, title)
	for i := len(values) - 2; i >= 0; i-- {
		candidate := values[i]
		if candidate <= 0 || candidate >= regular {
			continue
		}
		if candidate/regular >= floor {
			p := candidate
			return regular, &p
		}
	}
	return regular, nil
}

func dedupeValues(candidates []priceCandidate) []float64 {
	seen := map[float64]bool{}
	var values []float64
	for _, c := range candidates {
		if seen[c.value] {
			continue
		}
		seen[c.value] = true
		values = append(values, c.value)
	}
	sort.Float64s(values)
	return values
}

// plausibilityFloor implements the minimum promo/regular ratio table (spec §4.4): the
// tech + premium-token case rejects e.g. a $4 "lowPrice" bait against a $1969 MacBook.
func plausibilityFloor(verticalName string, regular float64, title string) float64 {
	if verticalName == "tech" && regular >= 800 {
		lowerTitle := strings.ToLower(title)
		for _, token := range premiumTechTokens {
			if strings.Contains(lowerTitle, token) {
				return 0.55
			}
		}
		return 0.35
	}
	return 0.20
}

func scriptsText(doc *goquery.Document) string {
	var b strings.Builder
	doc.Find("script").Each(func(_ int, sel *goquery.Selection) {
		b.WriteString(sel.Text())
		b.WriteString(" ")
	})
	return b.String()
}

func metaContent(doc *goquery.Document, attr, key string) string {
	sel := doc.Find(`meta[` + attr + `="` + key + `"]`).First()
	content, _ := sel.Attr("content")
	return content
}
