package discovery

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kainuguru/ingestion-core/internal/fetch"
)

type probeStubFetcher struct {
	pages map[string]string
	errs  map[string]error
}

func (s *probeStubFetcher) FetchText(ctx context.Context, url string) (string, error) {
	if err, ok := s.errs[url]; ok {
		return "", err
	}
	return s.pages[url], nil
}

func productHTML(price string) string {
	return `<html><head><script type="application/ld+json">{"@type":"Product","name":"Widget","offers":{"price":"` + price + `"}}</script></head><body></body></html>`
}

func TestProbe_ReordersSuccessesFirst(t *testing.T) {
	urls := []string{"u1", "u2", "u3", "u4", "u5"}
	fetcher := &probeStubFetcher{
		pages: map[string]string{
			"u1": "<html>page not found</html>",
			"u2": "<html>page not found</html>",
			"u3": "<html>page not found</html>",
			"u4": productHTML("99.00"),
			"u5": productHTML("49.00"),
		},
	}

	result := Probe(context.Background(), fetcher, urls, "tech", "https://example.com")
	assert.True(t, result.OK)
	assert.Equal(t, []string{"u4", "u5", "u1", "u2", "u3"}, result.Reordered)
}

func TestProbe_AllBlockedReturnsBlockedReason(t *testing.T) {
	urls := []string{"u1", "u2"}
	fetcher := &probeStubFetcher{
		errs: map[string]error{
			"u1": &fetch.Error{Kind: fetch.KindAntiBot, URL: "u1"},
			"u2": &fetch.Error{Kind: fetch.KindAntiBot, URL: "u2"},
		},
	}
	result := Probe(context.Background(), fetcher, urls, "tech", "https://example.com")
	assert.False(t, result.OK)
	assert.Equal(t, ProbeReasonBlocked, result.Reason)
}

func TestProbe_StopsAtTwoSuccesses(t *testing.T) {
	urls := []string{"u1", "u2", "u3"}
	fetcher := &probeStubFetcher{
		pages: map[string]string{
			"u1": productHTML("10.00"),
			"u2": productHTML("20.00"),
			"u3": productHTML("30.00"),
		},
	}
	result := Probe(context.Background(), fetcher, urls, "tech", "https://example.com")
	assert.True(t, result.OK)
	assert.Equal(t, []string{"u1", "u2", "u3"}, result.Reordered)
}
