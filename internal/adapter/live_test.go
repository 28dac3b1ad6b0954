package adapter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type liveStubFetcher struct {
	pages    map[string]string
	sitemaps map[string]string
}

func (s *liveStubFetcher) FetchText(ctx context.Context, url string) (string, error) {
	if v, ok := s.pages[url]; ok {
		return v, nil
	}
	return "", assert.AnError
}

func (s *liveStubFetcher) FetchSitemap(ctx context.Context, url string) (string, error) {
	if v, ok := s.sitemaps[url]; ok {
		return v, nil
	}
	return "", assert.AnError
}

func TestLiveAdapter_FullCycle(t *testing.T) {
	fetcher := &liveStubFetcher{
		sitemaps: map[string]string{
			"https://example.com/sitemap.xml": `<urlset><url><loc>https://example.com/p/widget-1</loc></url></urlset>`,
		},
		pages: map[string]string{
			"https://example.com/p/widget-1": `<html><head>
				<script type="application/ld+json">
				{"@type":"Product","name":"Acer Nitro 16","brand":{"name":"Acer"},"category":"Laptops","offers":{"price":1499.0}}
				</script>
			</head><body></body></html>`,
		},
	}

	cfg := LiveConfig{
		RetailerSlug:       "pb-tech",
		BaseURL:            "https://example.com",
		Vertical:           "tech",
		SitemapSeeds:       []string{"/sitemap.xml"},
		IncludeURLPatterns: []string{"/p/"},
		MaxProducts:        10,
	}
	a := NewLiveAdapter(cfg, fetcher, nil)
	a.SetContext(context.Background())

	pages, err := a.ListPages()
	require.NoError(t, err)
	require.Len(t, pages, 1)

	listings, err := a.ParseListing(pages[0])
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, "laptops", listings[0].Category)

	detail, err := a.FetchDetail(listings[0])
	require.NoError(t, err)
	assert.Equal(t, 1499.0, detail.PriceNZD)

	normalized, err := a.Normalize(listings[0], detail)
	require.NoError(t, err)
	assert.Equal(t, "tech", normalized.Vertical)
	assert.Equal(t, "Acer", normalized.Brand)
}

func TestLiveAdapter_FallsBackToFixtureWhenDiscoveryEmpty(t *testing.T) {
	fetcher := &liveStubFetcher{sitemaps: map[string]string{}, pages: map[string]string{}}

	path := writeFixture(t, `{"items":[{"source_product_id":"f-1","title":"Widget","url":"https://example.com/p/widget","brand":"Acme","category":"electronics","attributes":{},"price_nzd":10.0}]}`)
	fixture := NewFixtureAdapter("tech", path)

	cfg := LiveConfig{
		RetailerSlug:       "pb-tech",
		BaseURL:            "https://example.com",
		Vertical:           "tech",
		SitemapSeeds:       []string{"/sitemap.xml"},
		IncludeURLPatterns: []string{"/p/"},
		MaxProducts:        10,
	}
	a := NewLiveAdapter(cfg, fetcher, fixture)
	a.SetContext(context.Background())

	pages, err := a.ListPages()
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.NotNil(t, pages[0].Items)
}

func TestLiveAdapter_PharmaNonAllowedCategoryDropped(t *testing.T) {
	fetcher := &liveStubFetcher{
		sitemaps: map[string]string{
			"https://example.com/sitemap.xml": `<urlset><url><loc>https://example.com/p/widget-1</loc></url></urlset>`,
		},
		pages: map[string]string{
			"https://example.com/p/widget-1": `<html><head>
				<script type="application/ld+json">
				{"@type":"Product","name":"Random Widget","category":"Home Decor","offers":{"price":9.0}}
				</script>
			</head><body></body></html>`,
		},
	}

	cfg := LiveConfig{
		RetailerSlug:       "life-pharmacy",
		BaseURL:            "https://example.com",
		Vertical:           "pharma",
		SitemapSeeds:       []string{"/sitemap.xml"},
		IncludeURLPatterns: []string{"/p/"},
		MaxProducts:        10,
	}
	a := NewLiveAdapter(cfg, fetcher, nil)
	a.SetContext(context.Background())

	pages, err := a.ListPages()
	require.NoError(t, err)
	listings, err := a.ParseListing(pages[0])
	require.NoError(t, err)
	assert.Empty(t, listings)
}
