package extraction

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// jsonLDBlocks returns every JSON-LD payload embedded in <script type="application/ld+json">
// tags, already unmarshaled. Malformed blocks are skipped.
func jsonLDBlocks(doc *goquery.Document) []interface{} {
	var blocks []interface{}
	doc.Find(`script[type]`).Each(func(_ int, sel *goquery.Selection) {
		typeAttr, _ := sel.Attr("type")
		if !strings.Contains(strings.ToLower(typeAttr), "application/ld+json") {
			return
		}
		text := strings.TrimSpace(sel.Text())
		if text == "" {
			return
		}
		var payload interface{}
		if err := json.Unmarshal([]byte(text), &payload); err != nil {
			return
		}
		blocks = append(blocks, payload)
	})
	return blocks
}

// findProductObject walks a JSON-LD payload (possibly wrapped in @graph or a list)
// looking for the first node whose @type is "Product" (case-insensitive).
func findProductObject(payload interface{}) map[string]interface{} {
	switch v := payload.(type) {
	case []interface{}:
		for _, item := range v {
			if found := findProductObject(item); found != nil {
				return found
			}
		}
		return nil
	case map[string]interface{}:
		if graph, ok := v["@graph"]; ok {
			if found := findProductObject(graph); found != nil {
				return found
			}
		}
		if hasType(v, "product") {
			return v
		}
		for _, value := range v {
			if found := findProductObject(value); found != nil {
				return found
			}
		}
		return nil
	default:
		return nil
	}
}

// findBreadcrumb walks a JSON-LD payload looking for a BreadcrumbList node and returns
// the name of its last itemListElement.
func findBreadcrumb(payload interface{}) string {
	switch v := payload.(type) {
	case []interface{}:
		for _, item := range v {
			if found := findBreadcrumb(item); found != "" {
				return found
			}
		}
		return ""
	case map[string]interface{}:
		if graph, ok := v["@graph"]; ok {
			if found := findBreadcrumb(graph); found != "" {
				return found
			}
		}
		if hasType(v, "breadcrumblist") {
			elements, _ := v["itemListElement"].([]interface{})
			var names []string
			for _, el := range elements {
				elMap, ok := el.(map[string]interface{})
				if !ok {
					continue
				}
				var name string
				if item, ok := elMap["item"].(map[string]interface{}); ok {
					name = asText(item["name"])
				} else {
					name = asText(elMap["name"])
				}
				if name != "" {
					names = append(names, name)
				}
			}
			if len(names) > 0 {
				return names[len(names)-1]
			}
		}
		for _, value := range v {
			if found := findBreadcrumb(value); found != "" {
				return found
			}
		}
		return ""
	default:
		return ""
	}
}

func hasType(node map[string]interface{}, want string) bool {
	switch t := node["@type"].(type) {
	case string:
		return strings.EqualFold(t, want)
	case []interface{}:
		for _, item := range t {
			if s, ok := item.(string); ok && strings.EqualFold(s, want) {
				return true
			}
		}
	}
	return false
}

// extractProduct scans every JSON-LD block on the page and returns the first Product
// object found, or nil.
func extractProduct(doc *goquery.Document) map[string]interface{} {
	for _, block := range jsonLDBlocks(doc) {
		if product := findProductObject(block); product != nil {
			return product
		}
	}
	return nil
}

// extractBreadcrumbCategory scans every JSON-LD block for a BreadcrumbList.
func extractBreadcrumbCategory(doc *goquery.Document) string {
	for _, block := range jsonLDBlocks(doc) {
		if name := findBreadcrumb(block); name != "" {
			return name
		}
	}
	return ""
}

func asText(v interface{}) string {
	if v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strings.TrimSpace(formatFloat(val))
	default:
		return ""
	}
}

func extractBrand(product map[string]interface{}) string {
	brand, ok := product["brand"]
	if !ok {
		return ""
	}
	switch v := brand.(type) {
	case map[string]interface{}:
		return asText(v["name"])
	case []interface{}:
		if len(v) == 0 {
			return ""
		}
		if m, ok := v[0].(map[string]interface{}); ok {
			return asText(m["name"])
		}
		return asText(v[0])
	default:
		return asText(brand)
	}
}

func extractOffer(product map[string]interface{}) map[string]interface{} {
	offers, ok := product["offers"]
	if !ok {
		return nil
	}
	switch v := offers.(type) {
	case []interface{}:
		if len(v) == 0 {
			return nil
		}
		m, _ := v[0].(map[string]interface{})
		return m
	case map[string]interface{}:
		return v
	default:
		return nil
	}
}

func extractAvailability(product map[string]interface{}) string {
	offer := extractOffer(product)
	if offer == nil {
		return ""
	}
	availability := asText(offer["availability"])
	if availability == "" {
		return ""
	}
	parts := strings.Split(availability, "/")
	token := strings.ToLower(strings.TrimSpace(parts[len(parts)-1]))
	switch token {
	case "instock", "in_stock":
		return "in_stock"
	case "outofstock", "out_of_stock":
		return "out_of_stock"
	case "preorder", "pre_order":
		return "preorder"
	default:
		return token
	}
}
