package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	defaultBaseURL   = "http://127.0.0.1:3000"
	defaultSession   = "default"
	defaultUploadURL = "https://tmpfiles.org/api/v1/upload"

	// requestTimeout covers a full video upload on a slow uplink.
	requestTimeout = 2 * time.Minute
)

// Config holds gateway connection settings.
type Config struct {
	// BaseURL is the whatsapp-web.js REST gateway address.
	BaseURL string

	// Session is the gateway session name in the sendMessage path.
	Session string

	// UploadURL is the file host endpoint the video is parked on.
	UploadURL string
}

// DefaultConfig returns settings for a gateway on localhost.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:   defaultBaseURL,
		Session:   defaultSession,
		UploadURL: defaultUploadURL,
	}
}

// Client sends videos to WhatsApp chats.
type Client struct {
	config     *Config
	httpClient *http.Client
}

// NewClient creates a Client, filling empty config fields with
// defaults.
func NewClient(config *Config) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.Session == "" {
		config.Session = defaultSession
	}
	if config.UploadURL == "" {
		config.UploadURL = defaultUploadURL
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// Send uploads the video and asks the gateway to deliver it to chatID
// with the given caption.
func (c *Client) Send(ctx context.Context, videoPath, chatID, caption string) error {
	videoURL, err := c.upload(ctx, videoPath)
	if err != nil {
		return fmt.Errorf("uploading video: %w", err)
	}

	log.Info().Str("url", videoURL).Msg("video uploaded for delivery")

	if err := c.sendMessage(ctx, chatID, videoURL, caption); err != nil {
		return fmt.Errorf("sending message: %w", err)
	}
	return nil
}

type uploadResponse struct {
	Status string `json:"status"`
	Data   struct {
		URL string `json:"url"`
	} `json:"data"`
}

// upload parks the video on the file host and returns its direct
// download URL.
func (c *Client) upload(ctx context.Context, videoPath string) (string, error) {
	f, err := os.Open(videoPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filepath.Base(videoPath))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("reading %s: %w", videoPath, err)
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.UploadURL, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("file host returned status %d: %s", resp.StatusCode, detail)
	}

	var parsed uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decoding upload response: %w", err)
	}
	if parsed.Data.URL == "" {
		return "", fmt.Errorf("upload response carried no file URL")
	}

	return directDownloadURL(parsed.Data.URL)
}

// directDownloadURL rewrites a tmpfiles.org page link into the direct
// file link the gateway can fetch, by prefixing the path with /dl.
func directDownloadURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid upload URL %q: %w", raw, err)
	}
	u.Path = "/dl" + u.Path
	return u.String(), nil
}

type sendMessageRequest struct {
	ChatID      string          `json:"chatId"`
	ContentType string          `json:"contentType"`
	Content     string          `json:"content"`
	Options     *messageOptions `json:"options,omitempty"`
}

type messageOptions struct {
	Caption string `json:"caption,omitempty"`
}

func (c *Client) sendMessage(ctx context.Context, chatID, videoURL, caption string) error {
	payload := sendMessageRequest{
		ChatID:      chatID,
		ContentType: "MessageMediaFromURL",
		Content:     videoURL,
	}
	if caption != "" {
		payload.Options = &messageOptions{Caption: caption}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/client/sendMessage/%s", c.config.BaseURL, c.config.Session)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, detail)
	}
	return nil
}
