package extraction

import "strings"

// rxExclusionTokens mark a pharma listing as prescription-only and therefore excluded.
var rxExclusionTokens = []string{
	"prescription", "pharmacist only", "pharmacy only medicine", "schedule 4", "s4", "rx",
}

func containsRxExclusion(values ...string) bool {
	text := strings.ToLower(strings.Join(values, " "))
	for _, token := range rxExclusionTokens {
		if strings.Contains(text, token) {
			return true
		}
	}
	return false
}

// categoryRule is one taxonomy entry: if any token matches, category applies. Matching
// keeps the longest matching token across all rules, so e.g. "dishwasher" beats "washer"
// instead of colliding on the substring (spec §4.4's documented fix for that source bug).
type categoryRule struct {
	category string
	tokens   []string
}

var nonPharmaRules = []categoryRule{
	{"laptops", []string{"laptop", "notebook", "macbook", "ultrabook"}},
	{"phones", []string{"phone", "smartphone", "iphone", "galaxy", "pixel"}},
	{"monitors", []string{"monitor", "display", "oled", "refresh"}},
	{"dishwashers", []string{"dishwasher"}},
	{"washing-machines", []string{"washer", "washing machine"}},
	{"refrigerators", []string{"refrigerator", "fridge"}},
}

var pharmaRules = []categoryRule{
	{"supplements", []string{"vitamin", "supplement", "omega", "probiotic", "collagen", "magnesium"}},
	{"otc", []string{"pain", "cold", "flu", "tablet", "capsule", "medicine", "paracetamol", "ibuprofen"}},
}

// normalizeCategory maps raw-category+title into a closed per-vertical taxonomy, matching
// the longest token first across all rules so overlapping substrings resolve
// deterministically (spec §4.4).
func normalizeCategory(verticalName, rawCategory, title string) string {
	text := strings.ToLower(rawCategory + " " + title)

	if verticalName == "pharma" {
		if containsRxExclusion(rawCategory, title) {
			return "excluded-rx"
		}
		if cat, ok := matchLongestFirst(text, pharmaRules); ok {
			return cat
		}
		return "other-pharma"
	}

	if cat, ok := matchLongestFirst(text, nonPharmaRules); ok {
		return cat
	}
	return fallbackCategory(verticalName)
}

func matchLongestFirst(text string, rules []categoryRule) (string, bool) {
	type hit struct {
		category string
		tokenLen int
	}
	var best *hit
	for _, rule := range rules {
		for _, token := range rule.tokens {
			if strings.Contains(text, token) {
				if best == nil || len(token) > best.tokenLen {
					best = &hit{category: rule.category, tokenLen: len(token)}
				}
			}
		}
	}
	if best == nil {
		return "", false
	}
	return best.category, true
}

func fallbackCategory(verticalName string) string {
	switch verticalName {
	case "beauty":
		return "beauty"
	case "pet-goods":
		return "pet-supplies"
	case "home-appliances":
		return "appliances"
	case "supplements":
		return "supplements"
	default:
		return "electronics"
	}
}
