package image

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	unsplashAPIURL  = "https://api.unsplash.com"
	unsplashTimeout = 10 * time.Second
)

// UnsplashClient implements Searcher for the Unsplash API. It serves as
// the general-purpose fallback when the curated source has nothing.
type UnsplashClient struct {
	accessKey  string
	httpClient *http.Client
	rateLimit  *rateLimiter
}

// unsplashSearchResponse represents the search API response
type unsplashSearchResponse struct {
	Total      int             `json:"total"`
	TotalPages int             `json:"total_pages"`
	Results    []unsplashPhoto `json:"results"`
}

// unsplashPhoto represents a photo in the response
type unsplashPhoto struct {
	ID          string             `json:"id"`
	Width       int                `json:"width"`
	Height      int                `json:"height"`
	Description string             `json:"description"`
	AltDesc     string             `json:"alt_description"`
	URLs        unsplashPhotoURLs  `json:"urls"`
	Links       unsplashPhotoLinks `json:"links"`
	User        unsplashUser       `json:"user"`
}

// unsplashPhotoURLs contains various size URLs
type unsplashPhotoURLs struct {
	Raw     string `json:"raw"`
	Full    string `json:"full"`
	Regular string `json:"regular"`
	Small   string `json:"small"`
	Thumb   string `json:"thumb"`
}

// unsplashPhotoLinks contains photo-related links
type unsplashPhotoLinks struct {
	Self     string `json:"self"`
	HTML     string `json:"html"`
	Download string `json:"download"`
}

// unsplashUser represents the photo author
type unsplashUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// NewUnsplashClient creates a new Unsplash API client.
func NewUnsplashClient(accessKey string) (*UnsplashClient, error) {
	if accessKey == "" {
		return nil, fmt.Errorf("Unsplash access key is required")
	}

	return &UnsplashClient{
		accessKey: accessKey,
		httpClient: &http.Client{
			Timeout: unsplashTimeout,
		},
		rateLimit: newRateLimiter(50),
	}, nil
}

// Search performs a photo search on Unsplash.
func (u *UnsplashClient) Search(ctx context.Context, opts *SearchOptions) ([]Result, error) {
	u.rateLimit.wait()

	perPage := opts.MaxResults
	if perPage <= 0 || perPage > 30 {
		perPage = 25
	}

	params := url.Values{}
	params.Set("query", opts.Query)
	params.Set("per_page", fmt.Sprintf("%d", perPage))

	reqURL := unsplashAPIURL + "/search/photos?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Client-ID "+u.accessKey)
	req.Header.Set("Accept-Version", "v1")

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &RateLimitError{
			Provider:   "unsplash",
			RetryAfter: 3600,
		}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, &SearchError{
			Provider: "unsplash",
			Code:     "401",
			Message:  "Invalid access key",
		}
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &SearchError{
			Provider: "unsplash",
			Code:     fmt.Sprintf("%d", resp.StatusCode),
			Message:  string(body),
		}
	}

	var searchResp unsplashSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	results := make([]Result, 0, len(searchResp.Results))
	for _, photo := range searchResp.Results {
		if photo.URLs.Regular == "" {
			continue
		}

		title := photo.Description
		if title == "" {
			title = photo.AltDesc
		}

		results = append(results, Result{
			URL:         photo.URLs.Regular,
			Title:       title,
			Attribution: fmt.Sprintf("Photo by %s on Unsplash", photo.User.Name),
			Source:      "unsplash",
		})
	}

	// Trigger download tracking as per Unsplash guidelines
	go u.trackDownloads(searchResp.Results)

	return results, nil
}

// Name returns the name of the search provider.
func (u *UnsplashClient) Name() string {
	return "unsplash"
}

// trackDownloads triggers download events as required by Unsplash API
// guidelines. Done asynchronously so it never blocks the search.
func (u *UnsplashClient) trackDownloads(photos []unsplashPhoto) {
	for _, photo := range photos {
		if photo.Links.Download == "" {
			continue
		}
		go func(downloadURL string) {
			req, _ := http.NewRequest("GET", downloadURL, nil)
			req.Header.Set("Authorization", "Client-ID "+u.accessKey)
			u.httpClient.Do(req)
		}(photo.Links.Download)
	}
}
