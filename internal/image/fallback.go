package image

import (
	"context"

	"github.com/rs/zerolog/log"

	"codeberg.org/okrause/faunareel/internal/cache"
)

// FallbackChain queries providers in order and stops at the first one
// that yields a usable, non-empty result set. A provider that errors or
// returns nothing counts as empty and the next one is consulted.
type FallbackChain struct {
	providers []Searcher
	cache     *cache.Store
	refresh   bool
}

// NewFallbackChain builds a chain over the given providers. The cache may
// be nil; refresh forces fresh lookups and rewrites cache entries.
func NewFallbackChain(providers []Searcher, store *cache.Store, refresh bool) *FallbackChain {
	return &FallbackChain{
		providers: providers,
		cache:     store,
		refresh:   refresh,
	}
}

// URLs returns up to max direct image URLs for the subject. When every
// provider comes back empty it returns a NoContentError.
func (c *FallbackChain) URLs(ctx context.Context, subject string, max int) ([]string, error) {
	for _, provider := range c.providers {
		urls := c.lookup(ctx, provider, subject, max)
		if len(urls) == 0 {
			continue
		}
		if max > 0 && len(urls) > max {
			urls = urls[:max]
		}
		return urls, nil
	}

	return nil, &NoContentError{Subject: subject}
}

// lookup consults the cache, then the provider. The full result list is
// cached before any truncation so later runs with a higher cap still hit.
func (c *FallbackChain) lookup(ctx context.Context, provider Searcher, subject string, max int) []string {
	if !c.refresh {
		if urls, ok := c.cache.ImageURLs(provider.Name(), subject); ok && len(urls) > 0 {
			log.Info().
				Str("provider", provider.Name()).
				Str("subject", subject).
				Int("urls", len(urls)).
				Msg("using cached image URLs")
			return urls
		}
	}

	results, err := provider.Search(ctx, &SearchOptions{Query: subject, MaxResults: max})
	if err != nil {
		log.Warn().
			Str("provider", provider.Name()).
			Str("subject", subject).
			Err(err).
			Msg("image search failed, trying next provider")
		return nil
	}

	urls := make([]string, 0, len(results))
	for _, r := range results {
		urls = append(urls, r.URL)
	}

	if len(urls) > 0 {
		c.cache.PutImageURLs(provider.Name(), subject, urls)
	}
	return urls
}
