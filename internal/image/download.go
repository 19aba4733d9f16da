package image

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

// defaultUserAgent is sent on image requests. Wikimedia rejects requests
// without a browser-like agent.
const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/137.0.0.0 Safari/537.36"

// DownloadOptions configures image download behavior.
type DownloadOptions struct {
	OutputDir    string // Directory to save images
	MaxSizeBytes int64  // Maximum file size to download (0 = no limit)
	Workers      int    // Concurrent download workers
	UserAgent    string // User-Agent header for image requests
}

// DefaultDownloadOptions returns sensible defaults for image downloads.
func DefaultDownloadOptions() *DownloadOptions {
	return &DownloadOptions{
		OutputDir:    "output_images",
		MaxSizeBytes: 10 * 1024 * 1024, // 10MB
		Workers:      8,
		UserAgent:    defaultUserAgent,
	}
}

// Downloader fetches image URLs to local files. Individual failures are
// tolerated; a circuit breaker stops hammering the network once several
// downloads in a row have failed.
type Downloader struct {
	options    *DownloadOptions
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

// NewDownloader creates a new image downloader.
func NewDownloader(options *DownloadOptions) *Downloader {
	if options == nil {
		options = DefaultDownloadOptions()
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "image-download",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("download circuit breaker state changed")
		},
	})

	return &Downloader{
		options: options,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		breaker: breaker,
	}
}

// DownloadAll fetches the given URLs concurrently into the output
// directory, preserving result order. Files are named after the subject
// plus a short random suffix. It fails only when nothing at all could be
// downloaded.
func (d *Downloader) DownloadAll(ctx context.Context, urls []string, subject string) ([]string, error) {
	if len(urls) == 0 {
		return nil, &NoContentError{Subject: subject}
	}

	if err := os.MkdirAll(d.options.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}

	workers := d.options.Workers
	if workers <= 0 {
		workers = 1
	}
	if workers > len(urls) {
		workers = len(urls)
	}

	paths := make([]string, len(urls))
	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				outputPath, err := d.downloadOne(ctx, urls[i], subject)
				if err != nil {
					log.Warn().
						Str("url", urls[i]).
						Err(err).
						Msg("image download skipped")
					continue
				}
				paths[i] = outputPath
			}
		}()
	}

	for i := range urls {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	downloaded := make([]string, 0, len(paths))
	for _, p := range paths {
		if p != "" {
			downloaded = append(downloaded, p)
		}
	}

	if len(downloaded) == 0 {
		return nil, &NoContentError{Subject: subject}
	}
	return downloaded, nil
}

// downloadOne fetches a single URL through the circuit breaker. While the
// breaker is open the download is skipped immediately.
func (d *Downloader) downloadOne(ctx context.Context, rawURL, subject string) (string, error) {
	filename := fmt.Sprintf("%s-%s.jpeg", sanitizeFileName(subject), uuid.NewString()[:8])
	outputPath := filepath.Join(d.options.OutputDir, filename)

	_, err := d.breaker.Execute(func() (interface{}, error) {
		return nil, d.fetch(ctx, rawURL, outputPath)
	})
	if err != nil {
		return "", err
	}
	return outputPath, nil
}

// fetch writes the response body to outputPath, enforcing the size cap
// and removing partial files on error.
func (d *Downloader) fetch(ctx context.Context, rawURL, outputPath string) error {
	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create download request: %w", err)
	}
	req.Header.Set("User-Agent", d.options.UserAgent)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed with status %d", resp.StatusCode)
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if d.options.MaxSizeBytes > 0 {
		written, err := io.CopyN(file, resp.Body, d.options.MaxSizeBytes)
		if err != nil && err != io.EOF {
			os.Remove(outputPath)
			return fmt.Errorf("failed to write file: %w", err)
		}

		// Check if we hit the size limit
		if written == d.options.MaxSizeBytes {
			if _, err := resp.Body.Read(make([]byte, 1)); err != io.EOF {
				os.Remove(outputPath)
				return fmt.Errorf("image exceeds maximum size of %d bytes", d.options.MaxSizeBytes)
			}
		}
	} else {
		if _, err := io.Copy(file, resp.Body); err != nil {
			os.Remove(outputPath)
			return fmt.Errorf("failed to write file: %w", err)
		}
	}

	return nil
}

// sanitizeFileName removes or replaces characters that are problematic in filenames
func sanitizeFileName(name string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "_",
	)

	sanitized := replacer.Replace(name)

	// Ensure the filename is not too long
	if len(sanitized) > 50 {
		sanitized = sanitized[:50]
	}

	return sanitized
}
