package extraction

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	badImageTokens  = []string{"logo", "icon", "placeholder"}
	scriptImageURLRE = regexp.MustCompile(`https?:\\?/\\?/[^\s"']+\.(?:jpg|jpeg|png|webp)`)
)

// extractImageURL follows the spec §4.4 cascade: JSON-LD image, then meta candidates
// (skipping logo/icon/placeholder), then scored <img> tags, then an absolute URL found
// in inline scripts.
func extractImageURL(product map[string]interface{}, doc *goquery.Document, baseURL, title string) string {
	if img := jsonLDImage(product); img != "" {
		return resolveURL(baseURL, img)
	}

	metaCandidates := []struct{ attr, key string }{
		{"property", "og:image"},
		{"name", "twitter:image"},
		{"name", "twitter:image:src"},
		{"name", "itemprop"},
	}
	for _, c := range metaCandidates {
		var content string
		if c.key == "itemprop" {
			sel := doc.Find(`meta[itemprop="image"]`).First()
			content, _ = sel.Attr("content")
		} else {
			content = metaContent(doc, c.attr, c.key)
		}
		if content != "" && !containsBadToken(content) {
			return resolveURL(baseURL, content)
		}
	}

	if img := bestScoredImage(doc, title); img != "" {
		return resolveURL(baseURL, img)
	}

	if match := scriptImageURLRE.FindString(scriptsText(doc)); match != "" {
		return resolveURL(baseURL, strings.ReplaceAll(match, `\/`, "/"))
	}
	return ""
}

func jsonLDImage(product map[string]interface{}) string {
	image, ok := product["image"]
	if !ok {
		return ""
	}
	switch v := image.(type) {
	case []interface{}:
		if len(v) == 0 {
			return ""
		}
		if m, ok := v[0].(map[string]interface{}); ok {
			return asText(m["url"])
		}
		return asText(v[0])
	case map[string]interface{}:
		return asText(v["url"])
	default:
		return asText(image)
	}
}

func containsBadToken(s string) bool {
	lower := strings.ToLower(s)
	for _, token := range badImageTokens {
		if strings.Contains(lower, token) {
			return true
		}
	}
	return false
}

// bestScoredImage scores every <img> on the page by URL/class/id/alt tokens and
// title-alt overlap, penalizing svg/gif, and returns the highest-scoring candidate with
// a positive score.
func bestScoredImage(doc *goquery.Document, title string) string {
	titleTokens := strings.Fields(strings.ToLower(title))

	var bestSrc string
	bestScore := 0
	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		src, ok := sel.Attr("src")
		if !ok || src == "" {
			src, ok = sel.Attr("data-src")
			if !ok || src == "" {
				return
			}
		}
		class, _ := sel.Attr("class")
		id, _ := sel.Attr("id")
		alt, _ := sel.Attr("alt")

		lowerSrc := strings.ToLower(src)
		score := 0
		for _, good := range []string{"product", "main", "hero", "detail", "zoom"} {
			if strings.Contains(lowerSrc, good) || strings.Contains(strings.ToLower(class), good) || strings.Contains(strings.ToLower(id), good) {
				score++
			}
		}
		if containsBadToken(lowerSrc) || containsBadToken(class) || containsBadToken(id) {
			score -= 2
		}
		if strings.HasSuffix(lowerSrc, ".svg") || strings.HasSuffix(lowerSrc, ".gif") {
			score -= 2
		}
		lowerAlt := strings.ToLower(alt)
		for _, tok := range titleTokens {
			if tok != "" && strings.Contains(lowerAlt, tok) {
				score++
			}
		}

		if score > bestScore {
			bestScore = score
			bestSrc = src
		}
	})

	if bestScore <= 0 {
		return ""
	}
	return bestSrc
}

func resolveURL(base, ref string) string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return ref
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return baseURL.ResolveReference(refURL).String()
}
