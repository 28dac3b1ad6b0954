package discovery

import (
	"context"
	"strings"

	"github.com/kainuguru/ingestion-core/internal/extraction"
	"github.com/kainuguru/ingestion-core/internal/fetch"
)

const (
	maxProbeSamples   = 15
	probeSuccessGoal  = 2
)

var notFoundPatterns = []string{
	"page not found", "we can't find this page", "404 error", "this page doesn't exist",
}

// ProbeReason explains why a live probe failed, chosen by priority order when multiple
// counters are non-zero (spec §4.3).
type ProbeReason string

const (
	ProbeReasonBlocked       ProbeReason = "blocked"
	ProbeReasonPriceFailures ProbeReason = "price_failures"
	ProbeReasonParseFailures ProbeReason = "parse_failures"
	ProbeReasonGeneric       ProbeReason = "generic"
)

// ProbeFetcher is the subset of fetch.Client the probe needs.
type ProbeFetcher interface {
	FetchText(ctx context.Context, url string) (string, error)
}

// ProbeResult reports whether the sampled URLs look parseable today, and the reordered
// URL list (successes first) for the caller to start the real run from.
type ProbeResult struct {
	OK       bool
	Reason   ProbeReason
	Reordered []string
}

// Probe samples up to 15 URLs from the front of the discovered list, stops after 2
// successes, and reorders the list to put successful URLs first (spec §4.3).
func Probe(ctx context.Context, fetcher ProbeFetcher, urls []string, vertical, baseURL string) ProbeResult {
	sample := urls
	if len(sample) > maxProbeSamples {
		sample = sample[:maxProbeSamples]
	}

	var blocked, priceFailures, parseFailures int
	var successes []string
	successSet := map[string]bool{}

	for _, u := range sample {
		if len(successes) >= probeSuccessGoal {
			break
		}
		html, err := fetcher.FetchText(ctx, u)
		if err != nil {
			if fetch.IsKind(err, fetch.KindAntiBot) {
				blocked++
			} else {
				parseFailures++
			}
			continue
		}
		if looksNotFound(html) {
			parseFailures++
			continue
		}

		page, err := extraction.Parse(html, u, u, baseURL, extraction.VerticalHint{Vertical: vertical})
		if err != nil {
			var priceErr *extraction.PriceError
			if ok := asPriceError(err, &priceErr); ok {
				priceFailures++
			} else {
				parseFailures++
			}
			continue
		}
		if page.RegularPrice > 0 {
			successes = append(successes, u)
			successSet[u] = true
		} else {
			priceFailures++
		}
	}

	if len(successes) > 0 {
		reordered := make([]string, 0, len(urls))
		reordered = append(reordered, successes...)
		for _, u := range urls {
			if !successSet[u] {
				reordered = append(reordered, u)
			}
		}
		return ProbeResult{OK: true, Reordered: reordered}
	}

	reason := ProbeReasonGeneric
	switch {
	case blocked > 0:
		reason = ProbeReasonBlocked
	case priceFailures > 0:
		reason = ProbeReasonPriceFailures
	case parseFailures > 0:
		reason = ProbeReasonParseFailures
	}
	return ProbeResult{OK: false, Reason: reason, Reordered: urls}
}

func looksNotFound(body string) bool {
	lower := strings.ToLower(body)
	for _, pattern := range notFoundPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}

func asPriceError(err error, target **extraction.PriceError) bool {
	if pe, ok := err.(*extraction.PriceError); ok {
		*target = pe
		return true
	}
	return false
}
