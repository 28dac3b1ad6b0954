package extraction

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/kainuguru/ingestion-core/pkg/normalize"
)

var (
	strengthRE = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(mg|g|mcg|ml)\b`)
	packRE     = regexp.MustCompile(`(?i)(\d+)\s*(pack|tablets|tablet|capsules|capsule|caplets|softgels|sachets)\b`)
	spfRE      = regexp.MustCompile(`(?i)\bspf\s*(\d{1,3})\b`)
	capacityLRE = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*l\b`)
	capacityKgRE = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*kg\b`)
	energyRatingRE = regexp.MustCompile(`(?i)\b(\d(?:\.\d)?)\s*star\b`)
)

// enrichPharma derives strength/pack_size/form/dosage_unit from the title when missing,
// mirroring the original worker's _derive_pharma_attributes (spec §4.4).
func enrichPharma(title string, attrs map[string]interface{}) {
	lower := strings.ToLower(title)

	if _, ok := attrs["strength"]; !ok {
		if m := strengthRE.FindStringSubmatch(lower); m != nil {
			attrs["strength"] = m[1] + m[2]
		}
	}
	if _, ok := attrs["pack_size"]; !ok {
		if m := packRE.FindStringSubmatch(lower); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				attrs["pack_size"] = n
			}
		}
	}
	if _, ok := attrs["form"]; !ok {
		switch {
		case strings.Contains(lower, "tablet"):
			attrs["form"] = "tablet"
			attrs["dosage_unit"] = "tablet"
		case strings.Contains(lower, "caplet"):
			attrs["form"] = "caplet"
			attrs["dosage_unit"] = "caplet"
		case strings.Contains(lower, "capsule"):
			attrs["form"] = "capsule"
			attrs["dosage_unit"] = "capsule"
		case strings.Contains(lower, "liquid") || strings.Contains(lower, "syrup"):
			attrs["form"] = "liquid"
			attrs["dosage_unit"] = "ml"
		}
	}
}

var beautyProductTypes = []struct {
	productType string
	tokens      []string
}{
	{"moisturizer", []string{"moisturizer", "moisturiser", "face cream"}},
	{"cleanser", []string{"cleanser", "face wash"}},
	{"serum", []string{"serum"}},
	{"sunscreen", []string{"sunscreen", "sunblock"}},
	{"shampoo", []string{"shampoo"}},
	{"conditioner", []string{"conditioner"}},
	{"foundation", []string{"foundation"}},
	{"mascara", []string{"mascara"}},
	{"lipstick", []string{"lipstick", "lip gloss"}},
	{"fragrance", []string{"perfume", "fragrance", "eau de"}},
}

var skinConcernKeywords = map[string][]string{
	"acne":          {"acne", "blemish", "breakout"},
	"anti-aging":    {"anti-aging", "anti-ageing", "wrinkle", "fine lines"},
	"hyperpigmentation": {"brightening", "dark spot", "pigmentation"},
	"hydration":     {"hydrating", "hydration", "dryness"},
	"redness":       {"redness", "rosacea", "sensitive"},
}

var skinTypes = []string{"dry", "oily", "combination", "normal", "sensitive", "mature"}

// enrichBeauty derives product_type, size_ml, size_g, spf, pack_size, skin_type and
// skin_concern from the title when missing (spec §4.4). Shade and finish are not derived.
func enrichBeauty(title string, attrs map[string]interface{}) {
	lower := strings.ToLower(title)

	if _, ok := attrs["product_type"]; !ok {
		if pt, ok := matchLongestBeautyToken(lower); ok {
			attrs["product_type"] = pt
		}
	}

	if _, ok := attrs["size_ml"]; !ok {
		if m, ok := normalize.ExtractVolume(title); ok {
			attrs["size_ml"] = m.Value
		}
	}
	if _, ok := attrs["size_g"]; !ok {
		if m, ok := normalize.ExtractWeight(title); ok {
			attrs["size_g"] = m.Value
		}
	}

	if _, ok := attrs["spf"]; !ok {
		if m := spfRE.FindStringSubmatch(lower); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				attrs["spf"] = n
			}
		}
	}

	if _, ok := attrs["pack_size"]; !ok {
		if m := packRE.FindStringSubmatch(lower); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				attrs["pack_size"] = n
			}
		}
	}

	if _, ok := attrs["skin_type"]; !ok {
		for _, t := range skinTypes {
			if strings.Contains(lower, t) {
				attrs["skin_type"] = t
				break
			}
		}
	}

	if _, ok := attrs["skin_concern"]; !ok {
		for concern, tokens := range skinConcernKeywords {
			for _, tok := range tokens {
				if strings.Contains(lower, tok) {
					attrs["skin_concern"] = concern
					break
				}
			}
			if _, set := attrs["skin_concern"]; set {
				break
			}
		}
	}
}

func matchLongestBeautyToken(lower string) (string, bool) {
	best := ""
	bestLen := 0
	for _, rule := range beautyProductTypes {
		for _, token := range rule.tokens {
			if strings.Contains(lower, token) && len(token) > bestLen {
				best = rule.productType
				bestLen = len(token)
			}
		}
	}
	return best, best != ""
}

// enrichHomeAppliances derives capacity_l, capacity_kg, and energy_rating from the
// title when missing (spec §4.4).
func enrichHomeAppliances(title string, attrs map[string]interface{}) {
	if _, ok := attrs["capacity_l"]; !ok {
		if m := capacityLRE.FindStringSubmatch(title); m != nil {
			if f, err := strconv.ParseFloat(m[1], 64); err == nil {
				attrs["capacity_l"] = f
			}
		}
	}
	if _, ok := attrs["capacity_kg"]; !ok {
		if m := capacityKgRE.FindStringSubmatch(title); m != nil {
			if f, err := strconv.ParseFloat(m[1], 64); err == nil {
				attrs["capacity_kg"] = f
			}
		}
	}
	if _, ok := attrs["energy_rating"]; !ok {
		if m := energyRatingRE.FindStringSubmatch(title); m != nil {
			attrs["energy_rating"] = m[1] + " star"
		}
	}
}
