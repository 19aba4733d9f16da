package image

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

const (
	wikimediaAPIURL  = "https://commons.wikimedia.org/w/api.php"
	wikimediaTimeout = 10 * time.Second

	// Commons pages list every file used on the subject's page, so ask
	// for the full batch and filter afterwards.
	wikimediaBatchLimit = "200"
)

// imageExtensions lists the file extensions accepted as slideshow frames.
// Commons galleries mix in SVG maps, OGG recordings and PDF scans.
var imageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp"}

// WikimediaClient implements Searcher for the Wikimedia Commons API. It
// needs no API key and is the preferred source because Commons images
// come from the subject's curated page.
type WikimediaClient struct {
	httpClient *http.Client
	rateLimit  *rateLimiter
}

// rateLimiter implements simple rate limiting
type rateLimiter struct {
	requestsPerMinute int
	requests          []time.Time
}

func newRateLimiter(rpm int) *rateLimiter {
	return &rateLimiter{
		requestsPerMinute: rpm,
		requests:          make([]time.Time, 0, rpm),
	}
}

func (rl *rateLimiter) wait() {
	now := time.Now()

	// Remove requests older than 1 minute
	cutoff := now.Add(-1 * time.Minute)
	i := 0
	for i < len(rl.requests) && rl.requests[i].Before(cutoff) {
		i++
	}
	rl.requests = rl.requests[i:]

	// If we're at the limit, wait
	if len(rl.requests) >= rl.requestsPerMinute {
		oldestRequest := rl.requests[0]
		waitDuration := oldestRequest.Add(1 * time.Minute).Sub(now)
		if waitDuration > 0 {
			time.Sleep(waitDuration)
		}
	}

	// Record this request
	rl.requests = append(rl.requests, now)
}

// wikimediaResponse represents the query API response structure.
type wikimediaResponse struct {
	Query struct {
		Pages map[string]wikimediaPage `json:"pages"`
	} `json:"query"`
}

// wikimediaPage represents a single file page in the response.
type wikimediaPage struct {
	PageID    int    `json:"pageid"`
	Title     string `json:"title"`
	ImageInfo []struct {
		ThumbURL string `json:"thumburl"`
		URL      string `json:"url"`
	} `json:"imageinfo"`
}

// NewWikimediaClient creates a new Wikimedia Commons API client.
func NewWikimediaClient() *WikimediaClient {
	return &WikimediaClient{
		httpClient: &http.Client{
			Timeout: wikimediaTimeout,
		},
		rateLimit: newRateLimiter(30),
	}
}

// Search lists the image files used on the subject's Commons page.
func (w *WikimediaClient) Search(ctx context.Context, opts *SearchOptions) ([]Result, error) {
	w.rateLimit.wait()

	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("generator", "images")
	params.Set("titles", opts.Query)
	params.Set("prop", "imageinfo")
	params.Set("iiprop", "url")
	params.Set("gimlimit", wikimediaBatchLimit)
	params.Set("redirects", "1")

	reqURL := wikimediaAPIURL + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &RateLimitError{
			Provider:   "wikimedia",
			RetryAfter: 60,
		}
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &SearchError{
			Provider: "wikimedia",
			Code:     fmt.Sprintf("%d", resp.StatusCode),
			Message:  string(body),
		}
	}

	var wikiResp wikimediaResponse
	if err := json.NewDecoder(resp.Body).Decode(&wikiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	results := make([]Result, 0, len(wikiResp.Query.Pages))
	for _, page := range wikiResp.Query.Pages {
		if len(page.ImageInfo) == 0 {
			continue
		}

		imageURL := page.ImageInfo[0].ThumbURL
		if imageURL == "" {
			imageURL = page.ImageInfo[0].URL
		}
		if imageURL == "" || !isImageURL(imageURL) {
			continue
		}

		results = append(results, Result{
			URL:    imageURL,
			Title:  page.Title,
			Source: "wikimedia",
		})

		if opts.MaxResults > 0 && len(results) >= opts.MaxResults {
			break
		}
	}

	return results, nil
}

// Name returns the name of the search provider.
func (w *WikimediaClient) Name() string {
	return "wikimedia"
}

// isImageURL reports whether the URL points at a raster image file.
func isImageURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	ext := strings.ToLower(path.Ext(u.Path))
	for _, valid := range imageExtensions {
		if ext == valid {
			return true
		}
	}
	return false
}
