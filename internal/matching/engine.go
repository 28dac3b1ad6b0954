// Package matching implements the cross-retailer record-linkage cascade: given a
// normalized listing, it decides which CanonicalProduct (if any) it belongs to.
package matching

import (
	"context"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/kainuguru/ingestion-core/internal/repositories"
	"github.com/kainuguru/ingestion-core/pkg/logger"
	"github.com/kainuguru/ingestion-core/pkg/normalize"
)

const fuzzyThreshold = 0.82

// Tier identifies which cascade step produced a decision.
type Tier string

const (
	TierGTIN           Tier = "gtin"
	TierModel          Tier = "model"
	TierManualOverride Tier = "manual_override"
	TierFuzzy          Tier = "fuzzy"
	TierNew            Tier = "new"
)

// Result is the outcome of one match attempt.
type Result struct {
	CanonicalID *string
	Tier        Tier
	Score       float64
}

// Item is the minimal shape the engine needs from a normalized listing. It mirrors
// models.CanonicalProduct's identifying fields plus the working attribute set.
type Item struct {
	Vertical       string
	CanonicalName  string
	Brand          string
	Category       string
	GTIN           string
	MPN            string
	ModelNumber    string
	Attributes     map[string]interface{}
}

// Engine runs the tiered cascade against CanonicalProductRepository.
type Engine struct {
	products  *repositories.CanonicalProductRepository
	listings  *repositories.RetailerListingRepository
}

func NewEngine(products *repositories.CanonicalProductRepository, listings *repositories.RetailerListingRepository) *Engine {
	return &Engine{products: products, listings: listings}
}

// Match returns the canonical decision for a listing. retailerListingID is the
// existing RetailerListing row's id, if any — used to look up manual overrides.
func (e *Engine) Match(ctx context.Context, item Item, retailerListingID string) (Result, error) {
	log := logger.MatchingLogger(item.Vertical)

	gtin := normalize.Identifier(item.GTIN)
	if gtin != "" {
		candidate, err := e.products.FindByGTIN(ctx, item.Vertical, gtin)
		if err != nil {
			return Result{}, err
		}
		if candidate != nil && pharmaVariantCompatible(item.Vertical, item.Attributes, candidate.Attributes) {
			log.Debug().Str("tier", string(TierGTIN)).Str("canonical_id", candidate.ID).Msg("matched")
			id := candidate.ID
			return Result{CanonicalID: &id, Tier: TierGTIN, Score: 1.0}, nil
		}
	}

	model := normalize.Identifier(item.MPN)
	if model == "" {
		model = normalize.Identifier(item.ModelNumber)
	}
	if model != "" {
		candidate, err := e.products.FindByModel(ctx, item.Vertical, item.Brand, model, model)
		if err != nil {
			return Result{}, err
		}
		if candidate != nil && pharmaVariantCompatible(item.Vertical, item.Attributes, candidate.Attributes) {
			log.Debug().Str("tier", string(TierModel)).Str("canonical_id", candidate.ID).Msg("matched")
			id := candidate.ID
			return Result{CanonicalID: &id, Tier: TierModel, Score: 0.98}, nil
		}
	}

	if retailerListingID != "" {
		override, err := e.listings.GetOverride(ctx, retailerListingID)
		if err != nil {
			return Result{}, err
		}
		if override != nil {
			log.Debug().Str("tier", string(TierManualOverride)).Str("canonical_id", override.ProductID).Msg("matched")
			id := override.ProductID
			return Result{CanonicalID: &id, Tier: TierManualOverride, Score: 1.0}, nil
		}
	}

	return e.fuzzyMatch(ctx, item)
}

func (e *Engine) fuzzyMatch(ctx context.Context, item Item) (Result, error) {
	candidates, err := e.products.FindFuzzyCandidates(ctx, item.Vertical, item.Brand, item.Category, 200)
	if err != nil {
		return Result{}, err
	}

	var bestID string
	var bestScore float64

	for _, candidate := range candidates {
		if !pharmaVariantCompatible(item.Vertical, item.Attributes, candidate.Attributes) {
			continue
		}
		overlap := attributeOverlap(item.Attributes, candidate.Attributes)
		if overlap < 2 {
			continue
		}

		nameSimilarity := tokenSetRatio(normalize.Text(item.CanonicalName), normalize.Text(candidate.CanonicalName))
		tokenJaccard := jaccard(item.CanonicalName, candidate.CanonicalName)
		overlapRatio := overlap / maxFloat(float64(len(item.Attributes)), 1)
		if overlapRatio > 1.0 {
			overlapRatio = 1.0
		}

		score := 0.55*nameSimilarity + 0.30*overlapRatio + 0.15*tokenJaccard
		if score > bestScore {
			bestID = candidate.ID
			bestScore = score
		}
	}

	if bestID != "" && bestScore >= fuzzyThreshold {
		id := bestID
		return Result{CanonicalID: &id, Tier: TierFuzzy, Score: bestScore}, nil
	}
	return Result{CanonicalID: nil, Tier: TierNew, Score: bestScore}, nil
}

// pharmaVariantCompatible rejects merges across pharma records whose strength/form/pack_size
// disagree, even when an identifier (GTIN/model) matches — see spec §4.8.
func pharmaVariantCompatible(vertical string, item, candidate map[string]interface{}) bool {
	if vertical != "pharma" {
		return true
	}
	for _, key := range []string{"strength", "form", "pack_size"} {
		itemVal := variantKey(item[key])
		candidateVal := variantKey(candidate[key])
		if itemVal != "" && candidateVal != "" && itemVal != candidateVal {
			return false
		}
	}
	return true
}

func variantKey(value interface{}) string {
	if value == nil {
		return ""
	}
	return strings.ReplaceAll(normalize.Text(toString(value)), " ", "")
}

func attributeOverlap(a, b map[string]interface{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	var overlap float64
	for key, value := range a {
		other, ok := b[key]
		if !ok {
			continue
		}
		if strings.EqualFold(toString(value), toString(other)) {
			overlap++
		}
	}
	return overlap
}

func toString(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func jaccard(a, b string) float64 {
	aTokens := tokenSet(normalize.Text(a))
	bTokens := tokenSet(normalize.Text(b))
	if len(aTokens) == 0 || len(bTokens) == 0 {
		return 0
	}
	intersection := 0
	for token := range aTokens {
		if _, ok := bTokens[token]; ok {
			intersection++
		}
	}
	union := len(aTokens) + len(bTokens) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, token := range strings.Fields(s) {
		out[token] = struct{}{}
	}
	return out
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// tokenSetRatio approximates rapidfuzz's token_set_ratio: split both strings into
// token sets, build the intersection plus each side's unique remainder, then take
// the best Levenshtein-based ratio across the three string-pair comparisons. This
// makes word-order and repeated-word differences not penalize similarity, which a
// plain Levenshtein ratio over the raw strings would.
func tokenSetRatio(a, b string) float64 {
	aTokens := sortedTokens(a)
	bTokens := sortedTokens(b)

	intersection, aOnly, bOnly := splitTokens(aTokens, bTokens)

	sortedIntersection := strings.Join(intersection, " ")
	combinedA := strings.TrimSpace(sortedIntersection + " " + strings.Join(aOnly, " "))
	combinedB := strings.TrimSpace(sortedIntersection + " " + strings.Join(bOnly, " "))

	best := levenshteinRatio(sortedIntersection, combinedA)
	if r := levenshteinRatio(sortedIntersection, combinedB); r > best {
		best = r
	}
	if r := levenshteinRatio(combinedA, combinedB); r > best {
		best = r
	}
	return best
}

func sortedTokens(s string) []string {
	tokens := strings.Fields(s)
	sortStrings(tokens)
	return tokens
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

func splitTokens(a, b []string) (intersection, aOnly, bOnly []string) {
	bSeen := make(map[string]int)
	for _, t := range b {
		bSeen[t]++
	}
	aSeen := make(map[string]int)
	for _, t := range a {
		aSeen[t]++
		if bSeen[t] > 0 {
			bSeen[t]--
			intersection = append(intersection, t)
		} else {
			aOnly = append(aOnly, t)
		}
	}
	remaining := make(map[string]int)
	for _, t := range b {
		remaining[t]++
	}
	for _, t := range intersection {
		remaining[t]--
	}
	for _, t := range b {
		if remaining[t] > 0 {
			bOnly = append(bOnly, t)
			remaining[t]--
		}
	}
	return
}

func levenshteinRatio(a, b string) float64 {
	if a == "" && b == "" {
		return 1.0
	}
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1.0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(dist)/float64(maxLen)
}
