package extraction

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	maxSpecTableRows   = 220
	maxDefinitionTerms = 80
	maxAttributes      = 60
	maxAttributeValue  = 260
	maxKeywords        = 16
)

var (
	attrKeyDisallowed = regexp.MustCompile(`[^a-z0-9]+`)
	ingredientInline   = regexp.MustCompile(`(?i)"(?:ingredients|activeIngredients)"\s*:\s*"([^"]+)"`)
	skipAttrKeys       = map[string]struct{}{"": {}, "price": {}, "quantity": {}, "qty": {}}
)

// extractAttributes merges attribute sources in spec §4.4 order, earlier sources
// filling only unclaimed keys, then applies empty-value hygiene and the 60-attribute cap.
func extractAttributes(product map[string]interface{}, doc *goquery.Document) map[string]interface{} {
	attrs := map[string]interface{}{}

	if additional, ok := product["additionalProperty"].([]interface{}); ok {
		for _, item := range additional {
			m, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			name := asText(m["name"])
			if name == "" || m["value"] == nil {
				continue
			}
			setIfAbsent(attrs, normalizeAttrKey(name), normalizeAttrValue(m["value"]))
		}
	}

	for _, key := range []string{"model", "sku", "description", "color", "size", "material", "pattern", "scent", "gender"} {
		if v, ok := product[key]; ok && v != nil {
			if text := asText(v); text != "" {
				setIfAbsent(attrs, key, text)
			}
		}
	}

	keywords := asText(product["keywords"])
	if keywords == "" {
		keywords = metaContent(doc, "name", "keywords")
	}
	if keywords != "" {
		parts := strings.Split(keywords, ",")
		if len(parts) > maxKeywords {
			parts = parts[:maxKeywords]
		}
		var cleaned []string
		for _, p := range parts {
			if t := strings.TrimSpace(p); t != "" {
				cleaned = append(cleaned, t)
			}
		}
		if len(cleaned) > 0 {
			setIfAbsent(attrs, "keywords", cleaned)
		}
	}

	if ingredients := extractIngredients(product, doc); ingredients != "" {
		setIfAbsent(attrs, "ingredients", ingredients)
	}

	harvestSpecTables(doc, attrs)
	harvestDefinitionLists(doc, attrs)

	if len(attrs) == 0 {
		if m := regexp.MustCompile(`"model"\s*:\s*"([^"]+)"`).FindStringSubmatch(scriptsText(doc)); m != nil {
			attrs["model"] = m[1]
		}
	}

	return hygiene(capAttributes(attrs))
}

func setIfAbsent(attrs map[string]interface{}, key string, value interface{}) {
	if key == "" {
		return
	}
	if _, ok := skipAttrKeys[key]; ok {
		return
	}
	if _, exists := attrs[key]; exists {
		return
	}
	attrs[key] = value
}

func normalizeAttrKey(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = attrKeyDisallowed.ReplaceAllString(key, "_")
	return strings.Trim(key, "_")
}

func normalizeAttrValue(v interface{}) interface{} {
	switch val := v.(type) {
	case float64, bool:
		return val
	case string:
		text := strings.TrimSpace(val)
		if text == "" {
			return text
		}
		if f, ok := toFloat(text); ok && regexp.MustCompile(`\d`).MatchString(text) {
			return f
		}
		return text
	default:
		return val
	}
}

func extractIngredients(product map[string]interface{}, doc *goquery.Document) string {
	for _, key := range []string{"ingredients", "activeIngredients"} {
		if v, ok := product[key]; ok {
			if text := asText(v); text != "" {
				return text
			}
		}
	}
	if m := ingredientInline.FindStringSubmatch(scriptsText(doc)); m != nil {
		return m[1]
	}
	return ""
}

func harvestSpecTables(doc *goquery.Document, attrs map[string]interface{}) {
	rows := 0
	doc.Find("table tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		if rows >= maxSpecTableRows {
			return false
		}
		cells := row.Find("th, td")
		if cells.Length() < 2 {
			return true
		}
		key := normalizeAttrKey(cells.Eq(0).Text())
		value := strings.TrimSpace(cells.Eq(1).Text())
		rows++
		if value == "" || len(value) > maxAttributeValue {
			return true
		}
		setIfAbsent(attrs, key, normalizeAttrValue(value))
		return true
	})
}

func harvestDefinitionLists(doc *goquery.Document, attrs map[string]interface{}) {
	terms := 0
	doc.Find("dl").Each(func(_ int, dl *goquery.Selection) {
		dts := dl.Find("dt")
		dds := dl.Find("dd")
		n := dts.Length()
		if dds.Length() < n {
			n = dds.Length()
		}
		for i := 0; i < n; i++ {
			if terms >= maxDefinitionTerms {
				return
			}
			key := normalizeAttrKey(dts.Eq(i).Text())
			value := strings.TrimSpace(dds.Eq(i).Text())
			terms++
			if value == "" || len(value) > maxAttributeValue {
				continue
			}
			setIfAbsent(attrs, key, normalizeAttrValue(value))
		}
	})
}

func capAttributes(attrs map[string]interface{}) map[string]interface{} {
	if len(attrs) <= maxAttributes {
		return attrs
	}
	capped := map[string]interface{}{}
	count := 0
	for k, v := range attrs {
		if count >= maxAttributes {
			break
		}
		capped[k] = v
		count++
	}
	return capped
}

func hygiene(attrs map[string]interface{}) map[string]interface{} {
	cleaned := map[string]interface{}{}
	for k, v := range attrs {
		if isEmptyValue(v) {
			continue
		}
		cleaned[k] = v
	}
	return cleaned
}

func isEmptyValue(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case []interface{}:
		return len(val) == 0
	case []string:
		return len(val) == 0
	case map[string]interface{}:
		return len(val) == 0
	default:
		return false
	}
}

