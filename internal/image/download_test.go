package image

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDownloadAll(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "image-%s", strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/"), ".jpg"))
	}))
	defer server.Close()

	dir := t.TempDir()
	downloader := NewDownloader(&DownloadOptions{
		OutputDir: dir,
		Workers:   4,
	})

	urls := []string{
		server.URL + "/0.jpg",
		server.URL + "/1.jpg",
		server.URL + "/2.jpg",
	}

	paths, err := downloader.DownloadAll(context.Background(), urls, "sea otter")
	if err != nil {
		t.Fatalf("DownloadAll failed: %v", err)
	}

	if len(paths) != 3 {
		t.Fatalf("Expected 3 downloaded files, got %d", len(paths))
	}

	// Files come back in URL order regardless of which worker fetched them.
	for i, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			t.Fatalf("Failed to read downloaded file %s: %v", p, err)
		}
		want := fmt.Sprintf("image-%d", i)
		if string(data) != want {
			t.Errorf("File %d content = %q, want %q", i, data, want)
		}

		name := filepath.Base(p)
		if !strings.HasPrefix(name, "sea_otter-") {
			t.Errorf("Filename %q should start with sanitized subject", name)
		}
		if !strings.HasSuffix(name, ".jpeg") {
			t.Errorf("Filename %q should end with .jpeg", name)
		}
	}
}

func TestDownloadAllToleratesFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.jpg" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, "jpeg bytes")
	}))
	defer server.Close()

	downloader := NewDownloader(&DownloadOptions{
		OutputDir: t.TempDir(),
		Workers:   1,
	})

	urls := []string{
		server.URL + "/ok.jpg",
		server.URL + "/missing.jpg",
		server.URL + "/also-ok.jpg",
	}

	paths, err := downloader.DownloadAll(context.Background(), urls, "okapi")
	if err != nil {
		t.Fatalf("DownloadAll failed: %v", err)
	}

	if len(paths) != 2 {
		t.Errorf("Expected 2 downloaded files, got %d", len(paths))
	}
}

func TestDownloadAllNothingDownloaded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	downloader := NewDownloader(&DownloadOptions{
		OutputDir: t.TempDir(),
		Workers:   1,
	})

	urls := []string{server.URL + "/a.jpg", server.URL + "/b.jpg"}

	_, err := downloader.DownloadAll(context.Background(), urls, "okapi")
	if err == nil {
		t.Fatal("Expected error when every download fails")
	}

	var noContent *NoContentError
	if !errors.As(err, &noContent) {
		t.Fatalf("Expected NoContentError, got %T: %v", err, err)
	}
	if noContent.Subject != "okapi" {
		t.Errorf("Subject = %q, want %q", noContent.Subject, "okapi")
	}
}

func TestDownloadAllEmptyURLList(t *testing.T) {
	downloader := NewDownloader(nil)

	_, err := downloader.DownloadAll(context.Background(), nil, "okapi")
	if err == nil {
		t.Fatal("Expected error for empty URL list")
	}

	var noContent *NoContentError
	if !errors.As(err, &noContent) {
		t.Fatalf("Expected NoContentError, got %T: %v", err, err)
	}
}

func TestDownloadSendsUserAgent(t *testing.T) {
	var gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		fmt.Fprint(w, "jpeg bytes")
	}))
	defer server.Close()

	downloader := NewDownloader(&DownloadOptions{
		OutputDir: t.TempDir(),
		Workers:   1,
		UserAgent: "faunareel-test/1.0",
	})

	if _, err := downloader.DownloadAll(context.Background(), []string{server.URL + "/a.jpg"}, "okapi"); err != nil {
		t.Fatalf("DownloadAll failed: %v", err)
	}

	if gotAgent != "faunareel-test/1.0" {
		t.Errorf("User-Agent = %q, want %q", gotAgent, "faunareel-test/1.0")
	}
}

func TestFetchEnforcesSizeLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, strings.Repeat("x", 64))
	}))
	defer server.Close()

	dir := t.TempDir()
	downloader := NewDownloader(&DownloadOptions{
		OutputDir:    dir,
		MaxSizeBytes: 16,
	})

	outputPath := filepath.Join(dir, "too-big.jpeg")
	err := downloader.fetch(context.Background(), server.URL+"/big.jpg", outputPath)
	if err == nil {
		t.Fatal("Expected error for oversized image")
	}
	if !strings.Contains(err.Error(), "exceeds maximum size") {
		t.Errorf("Error %q should mention the size limit", err)
	}

	// The partial file is removed, not left behind.
	if _, statErr := os.Stat(outputPath); !os.IsNotExist(statErr) {
		t.Error("Expected partial file to be removed")
	}
}

func TestFetchAcceptsExactSizeLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, strings.Repeat("x", 16))
	}))
	defer server.Close()

	dir := t.TempDir()
	downloader := NewDownloader(&DownloadOptions{
		OutputDir:    dir,
		MaxSizeBytes: 16,
	})

	outputPath := filepath.Join(dir, "exact.jpeg")
	if err := downloader.fetch(context.Background(), server.URL+"/exact.jpg", outputPath); err != nil {
		t.Fatalf("fetch failed for image at exactly the size limit: %v", err)
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		t.Fatalf("Downloaded file missing: %v", err)
	}
	if info.Size() != 16 {
		t.Errorf("File size = %d, want 16", info.Size())
	}
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple name",
			input:    "okapi",
			expected: "okapi",
		},
		{
			name:     "spaces replaced",
			input:    "sea otter",
			expected: "sea_otter",
		},
		{
			name:     "path separators replaced",
			input:    "a/b\\c",
			expected: "a_b_c",
		},
		{
			name:     "special characters replaced",
			input:    `what? a "star*"`,
			expected: "what__a__star__",
		},
		{
			name:     "long name truncated",
			input:    strings.Repeat("a", 80),
			expected: strings.Repeat("a", 50),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := sanitizeFileName(tt.input)
			if result != tt.expected {
				t.Errorf("sanitizeFileName(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}
