package image

import (
	"context"
	"fmt"
)

// Result represents a single image search result.
type Result struct {
	URL         string // Direct URL to the image file
	Title       string // Title or description from the provider
	Attribution string // Attribution text if required
	Source      string // Source provider (e.g. "wikimedia", "unsplash")
}

// SearchOptions configures an image search.
type SearchOptions struct {
	Query      string // Subject to search for
	MaxResults int    // Upper bound on results the provider should return
}

// Searcher defines the interface for image search providers.
type Searcher interface {
	// Search returns direct image URLs for the given options.
	Search(ctx context.Context, opts *SearchOptions) ([]Result, error)

	// Name returns the name of the search provider.
	Name() string
}

// SearchError represents an error from an image search provider.
type SearchError struct {
	Provider string
	Code     string
	Message  string
}

func (e *SearchError) Error() string {
	return e.Provider + ": " + e.Message
}

// RateLimitError indicates that a provider's API rate limit was exceeded.
type RateLimitError struct {
	Provider   string
	RetryAfter int // Seconds to wait before retry
}

func (e *RateLimitError) Error() string {
	return e.Provider + ": rate limit exceeded"
}

// NoContentError indicates that no usable image could be obtained for a
// subject from any provider.
type NoContentError struct {
	Subject string
}

func (e *NoContentError) Error() string {
	return fmt.Sprintf("no images available for subject %q", e.Subject)
}
