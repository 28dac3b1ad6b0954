// Package discovery finds candidate product URLs for a retailer via robots.txt and
// sitemap traversal, with an include/exclude pattern filter (spec §4.2).
package discovery

import (
	"context"
	"encoding/xml"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/kainuguru/ingestion-core/pkg/logger"
)

// browseTokens mark an internal link as a category/browse page worth crawling further
// during the HTML fallback (spec §4.2 step 5).
var browseTokens = []string{"shop", "category", "collection", "brand", "sale", "beauty", "pharmacy", "pet"}

const maxHTMLFallbackPages = 14

// Fetcher is the subset of internal/fetch.Client discovery needs, kept narrow so tests
// can stub it without spinning up a real HTTP client.
type Fetcher interface {
	FetchText(ctx context.Context, url string) (string, error)
	FetchSitemap(ctx context.Context, url string) (string, error)
}

// Filter decides whether a discovered URL is a product-page candidate.
type Filter struct {
	Host              string // base URL host; empty disables the host check (for tests)
	IncludePatterns   []string
	ExcludePatterns   []string
	RequireFileSuffix string
}

// Matches reports whether url passes the scheme/host/exclude/include/suffix rules
// (spec §4.2): excluded patterns reject first, then an optional required file suffix,
// then at least one include pattern must match.
func (f Filter) Matches(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil || !strings.HasPrefix(parsed.Scheme, "http") {
		return false
	}
	if f.Host != "" && !strings.EqualFold(parsed.Host, f.Host) {
		return false
	}
	normalized := strings.ToLower(parsed.Scheme + "://" + parsed.Host + parsed.Path)
	path := strings.ToLower(parsed.Path)

	for _, excluded := range f.ExcludePatterns {
		if excluded != "" && strings.Contains(normalized, strings.ToLower(excluded)) {
			return false
		}
	}
	if f.RequireFileSuffix != "" && !strings.HasSuffix(path, strings.ToLower(f.RequireFileSuffix)) {
		return false
	}
	for _, pattern := range f.IncludePatterns {
		if pattern != "" && strings.Contains(normalized, strings.ToLower(pattern)) {
			return true
		}
	}
	return false
}

// sitemapIndex and urlSet model the two possible root elements of a sitemap XML
// document; the `*` local-name wildcard the original crawler used has no stdlib
// equivalent, so namespace URIs are simply ignored via anonymous struct tags.
type sitemapIndex struct {
	XMLName  xml.Name      `xml:"sitemapindex"`
	Sitemaps []sitemapNode `xml:"sitemap"`
}

type sitemapNode struct {
	Loc string `xml:"loc"`
}

type urlSet struct {
	XMLName xml.Name      `xml:"urlset"`
	URLs    []sitemapNode `xml:"url"`
}

// Discoverer crawls robots.txt + sitemaps to build a deduplicated, filtered pool of
// candidate product URLs for one retailer.
type Discoverer struct {
	fetcher     Fetcher
	baseURL     string
	retailer    string
	filter      Filter
	maxProducts int
}

func New(fetcher Fetcher, retailer, baseURL string, filter Filter, maxProducts int) *Discoverer {
	if filter.Host == "" {
		if parsed, err := url.Parse(baseURL); err == nil {
			filter.Host = parsed.Host
		}
	}
	return &Discoverer{fetcher: fetcher, baseURL: baseURL, retailer: retailer, filter: filter, maxProducts: maxProducts}
}

// Discover walks the seed sitemaps (and any sitemaps advertised in robots.txt),
// breadth-first, returning up to maxProducts deduplicated candidate product URLs in
// first-seen order. Unreachable or malformed sitemaps are skipped, not fatal.
func (d *Discoverer) Discover(ctx context.Context, seeds []string) ([]string, error) {
	log := logger.DiscoveryLogger(d.retailer)

	queue := make([]string, 0, len(seeds)+4)
	for _, seed := range seeds {
		queue = append(queue, d.resolve(seed))
	}
	queue = append(queue, d.robotsSitemaps(ctx)...)

	seenSitemaps := map[string]bool{}
	found := make([]string, 0, d.maxProducts*4)
	cutoff := d.maxProducts * 4
	if cutoff <= 0 {
		cutoff = 1000
	}

	for len(queue) > 0 && len(found) < cutoff {
		sitemapURL := queue[0]
		queue = queue[1:]
		if seenSitemaps[sitemapURL] {
			continue
		}
		seenSitemaps[sitemapURL] = true

		text, err := d.fetcher.FetchSitemap(ctx, sitemapURL)
		if err != nil {
			log.Debug().Str("sitemap", sitemapURL).Err(err).Msg("skipping unreachable sitemap")
			continue
		}

		children, urls := parseSitemap(text)
		for _, child := range children {
			if !seenSitemaps[child] {
				queue = append(queue, child)
			}
		}
		for _, u := range urls {
			if d.filter.Matches(u) {
				found = append(found, u)
			}
		}
	}

	deduped := dedupCap(found, d.maxProducts)
	if len(deduped) == 0 {
		log.Info().Msg("no sitemap URLs survived filtering, falling back to HTML crawl")
		return d.crawlHTML(ctx), nil
	}
	return deduped, nil
}

// crawlHTML is the last-resort fallback when sitemaps yield nothing: walk internal
// pages starting at the base URL, keeping discovery order for candidate product links
// and enqueuing browse-like links (spec §4.2 step 5).
func (d *Discoverer) crawlHTML(ctx context.Context) []string {
	log := logger.DiscoveryLogger(d.retailer)

	queue := []string{d.baseURL}
	visited := map[string]bool{}
	var candidates []string

	for len(queue) > 0 && len(visited) < maxHTMLFallbackPages {
		pageURL := queue[0]
		queue = queue[1:]
		if visited[pageURL] {
			continue
		}
		visited[pageURL] = true

		html, err := d.fetcher.FetchText(ctx, pageURL)
		if err != nil {
			log.Debug().Str("page", pageURL).Err(err).Msg("skipping unreachable page during html fallback")
			continue
		}

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			continue
		}

		doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
			href, ok := sel.Attr("href")
			if !ok {
				return
			}
			resolved := d.resolve(href)
			if d.filter.Matches(resolved) {
				candidates = append(candidates, resolved)
				return
			}
			if isBrowseURL(resolved) && !visited[resolved] {
				queue = append(queue, resolved)
			}
		})
	}

	return dedupCap(candidates, d.maxProducts)
}

func isBrowseURL(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	for _, token := range browseTokens {
		if strings.Contains(lower, token) {
			return true
		}
	}
	return false
}

func (d *Discoverer) resolve(seed string) string {
	base, err := url.Parse(d.baseURL)
	if err != nil {
		return seed
	}
	ref, err := url.Parse(seed)
	if err != nil {
		return seed
	}
	return base.ResolveReference(ref).String()
}

func (d *Discoverer) robotsSitemaps(ctx context.Context) []string {
	robotsURL := d.resolve("/robots.txt")
	text, err := d.fetcher.FetchText(ctx, robotsURL)
	if err != nil {
		return nil
	}

	var discovered []string
	for _, line := range strings.Split(text, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok || !strings.EqualFold(strings.TrimSpace(key), "sitemap") {
			continue
		}
		if sitemapURL := strings.TrimSpace(value); sitemapURL != "" {
			discovered = append(discovered, sitemapURL)
		}
	}
	return discovered
}

// parseSitemap extracts child sitemap URLs (from a sitemapindex) or product URLs
// (from a urlset). A document matching neither shape yields nothing rather than an error.
func parseSitemap(text string) (children []string, urls []string) {
	trimmed := strings.TrimLeft(text, " \t\r\n﻿")

	var index sitemapIndex
	if err := xml.Unmarshal([]byte(trimmed), &index); err == nil && len(index.Sitemaps) > 0 {
		for _, s := range index.Sitemaps {
			if s.Loc != "" {
				children = append(children, strings.TrimSpace(s.Loc))
			}
		}
		return children, nil
	}

	var set urlSet
	if err := xml.Unmarshal([]byte(trimmed), &set); err == nil {
		for _, u := range set.URLs {
			if u.Loc != "" {
				urls = append(urls, strings.TrimSpace(u.Loc))
			}
		}
	}
	return nil, urls
}

// dedupCap removes duplicates while preserving first-seen order and caps the result
// at max (spec §8 invariant 7: the filter is idempotent under repeated application).
func dedupCap(urls []string, max int) []string {
	seen := make(map[string]bool, len(urls))
	deduped := make([]string, 0, len(urls))
	for _, u := range urls {
		if seen[u] {
			continue
		}
		seen[u] = true
		deduped = append(deduped, u)
		if max > 0 && len(deduped) >= max {
			break
		}
	}
	return deduped
}
