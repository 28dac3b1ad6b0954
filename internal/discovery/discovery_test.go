package discovery

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	texts    map[string]string
	sitemaps map[string]string
}

func (s *stubFetcher) FetchText(ctx context.Context, url string) (string, error) {
	if v, ok := s.texts[url]; ok {
		return v, nil
	}
	return "", assert.AnError
}

func (s *stubFetcher) FetchSitemap(ctx context.Context, url string) (string, error) {
	if v, ok := s.sitemaps[url]; ok {
		return v, nil
	}
	return "", assert.AnError
}

func TestFilter_Matches(t *testing.T) {
	f := Filter{
		IncludePatterns:   []string{"/p/"},
		ExcludePatterns:   []string{"/blog", "?"},
		RequireFileSuffix: "",
	}
	assert.True(t, f.Matches("https://example.com/p/acer-nitro-16"))
	assert.False(t, f.Matches("https://example.com/blog/p/post"))
	assert.False(t, f.Matches("https://example.com/p/acer?ref=foo"))
	assert.False(t, f.Matches("https://example.com/about"))
}

func TestFilter_RequireFileSuffix(t *testing.T) {
	f := Filter{IncludePatterns: []string{"/products/"}, RequireFileSuffix: ".html"}
	assert.True(t, f.Matches("https://example.com/products/widget.html"))
	assert.False(t, f.Matches("https://example.com/products/widget.json"))
}

func TestDiscover_SitemapIndexAndURLSet(t *testing.T) {
	fetcher := &stubFetcher{
		sitemaps: map[string]string{
			"https://example.com/sitemap.xml": `<?xml version="1.0"?>
				<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
					<sitemap><loc>https://example.com/sitemap-products.xml</loc></sitemap>
				</sitemapindex>`,
			"https://example.com/sitemap-products.xml": `<?xml version="1.0"?>
				<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
					<url><loc>https://example.com/p/widget-1</loc></url>
					<url><loc>https://example.com/blog/post</loc></url>
					<url><loc>https://example.com/p/widget-2</loc></url>
					<url><loc>https://example.com/p/widget-1</loc></url>
				</urlset>`,
		},
		texts: map[string]string{},
	}

	d := New(fetcher, "test", "https://example.com", Filter{
		IncludePatterns: []string{"/p/"},
		ExcludePatterns: []string{"/blog"},
	}, 10)

	urls, err := d.Discover(context.Background(), []string{"/sitemap.xml"})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/p/widget-1", "https://example.com/p/widget-2"}, urls)
}

func TestDiscover_RobotsTxtSitemap(t *testing.T) {
	fetcher := &stubFetcher{
		texts: map[string]string{
			"https://example.com/robots.txt": "User-agent: *\nSitemap: https://example.com/sitemap-robots.xml\n",
		},
		sitemaps: map[string]string{
			"https://example.com/sitemap-robots.xml": `<urlset><url><loc>https://example.com/p/widget-3</loc></url></urlset>`,
		},
	}

	d := New(fetcher, "test", "https://example.com", Filter{IncludePatterns: []string{"/p/"}}, 10)
	urls, err := d.Discover(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/p/widget-3"}, urls)
}

func TestDiscover_MaxProductsCutoff(t *testing.T) {
	fetcher := &stubFetcher{
		sitemaps: map[string]string{
			"https://example.com/sitemap.xml": `<urlset>
				<url><loc>https://example.com/p/1</loc></url>
				<url><loc>https://example.com/p/2</loc></url>
				<url><loc>https://example.com/p/3</loc></url>
			</urlset>`,
		},
		texts: map[string]string{},
	}

	d := New(fetcher, "test", "https://example.com", Filter{IncludePatterns: []string{"/p/"}}, 2)
	urls, err := d.Discover(context.Background(), []string{"/sitemap.xml"})
	require.NoError(t, err)
	assert.Len(t, urls, 2)
}

func TestDiscover_UnreachableSitemapSkipped(t *testing.T) {
	fetcher := &stubFetcher{sitemaps: map[string]string{}, texts: map[string]string{}}
	d := New(fetcher, "test", "https://example.com", Filter{IncludePatterns: []string{"/p/"}}, 10)
	urls, err := d.Discover(context.Background(), []string{"/sitemap.xml"})
	require.NoError(t, err)
	assert.Empty(t, urls)
}

func TestDiscover_HTMLFallbackWhenSitemapEmpty(t *testing.T) {
	fetcher := &stubFetcher{
		sitemaps: map[string]string{},
		texts: map[string]string{
			"https://example.com": `<html><body>
				<a href="/p/widget-1">Widget 1</a>
				<a href="/shop/category-a">Shop</a>
				<a href="/about">About</a>
			</body></html>`,
			"https://example.com/shop/category-a": `<html><body>
				<a href="/p/widget-2">Widget 2</a>
			</body></html>`,
		},
	}

	d := New(fetcher, "test", "https://example.com", Filter{IncludePatterns: []string{"/p/"}}, 10)
	urls, err := d.Discover(context.Background(), []string{"/sitemap.xml"})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/p/widget-1", "https://example.com/p/widget-2"}, urls)
}

func TestFilter_HostMismatchRejected(t *testing.T) {
	f := Filter{Host: "example.com", IncludePatterns: []string{"/p/"}}
	assert.False(t, f.Matches("https://evil.com/p/widget"))
	assert.True(t, f.Matches("https://example.com/p/widget"))
}

func TestFilter_IdempotentUnderRepeatApplication(t *testing.T) {
	f := Filter{IncludePatterns: []string{"/p/"}, ExcludePatterns: []string{"/blog"}}
	urls := []string{"https://example.com/p/1", "https://example.com/blog/2"}
	first := filterAll(f, urls)
	second := filterAll(f, first)
	assert.Equal(t, first, second)
}

func filterAll(f Filter, urls []string) []string {
	var out []string
	for _, u := range urls {
		if f.Matches(u) {
			out = append(out, u)
		}
	}
	return out
}
