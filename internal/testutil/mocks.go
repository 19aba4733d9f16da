// Package testutil holds hand-rolled mocks and filesystem helpers
// shared by pipeline-level tests. The mocks satisfy the component
// interfaces structurally so this package depends on nothing but the
// standard library.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FactsProvider is a canned fact-generation backend.
type FactsProvider struct {
	Suggestion  string
	SuggestErr  error
	Narration   string
	DescribeErr error

	SuggestCalls  int
	DescribeCalls int
	LastAvoid     []string
	LastSubject   string
}

func (m *FactsProvider) SuggestSubject(ctx context.Context, avoid []string) (string, error) {
	m.SuggestCalls++
	m.LastAvoid = avoid
	if m.SuggestErr != nil {
		return "", m.SuggestErr
	}
	return m.Suggestion, nil
}

func (m *FactsProvider) Describe(ctx context.Context, subject string) (string, error) {
	m.DescribeCalls++
	m.LastSubject = subject
	if m.DescribeErr != nil {
		return "", m.DescribeErr
	}
	return m.Narration, nil
}

func (m *FactsProvider) Name() string { return "mock-facts" }

// AudioProvider writes a fixed payload to the requested output file.
type AudioProvider struct {
	Err     error
	Payload []byte

	Calls    int
	LastText string
	LastPath string
}

func (m *AudioProvider) GenerateAudio(ctx context.Context, text, outputFile string) error {
	m.Calls++
	m.LastText = text
	m.LastPath = outputFile
	if m.Err != nil {
		return m.Err
	}

	payload := m.Payload
	if payload == nil {
		payload = []byte("RIFF mock wav")
	}
	if err := os.MkdirAll(filepath.Dir(outputFile), 0755); err != nil {
		return err
	}
	return os.WriteFile(outputFile, payload, 0644)
}

func (m *AudioProvider) Name() string { return "mock-audio" }

func (m *AudioProvider) IsAvailable() error { return nil }

// ImageSourcer returns canned local image paths.
type ImageSourcer struct {
	Paths []string
	Err   error

	Calls       int
	LastSubject string
	LastMax     int
}

func (m *ImageSourcer) Source(ctx context.Context, subject string, max int) ([]string, error) {
	m.Calls++
	m.LastSubject = subject
	m.LastMax = max
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Paths, nil
}

// VideoAssembler writes a fake video file into OutputDir.
type VideoAssembler struct {
	OutputDir string
	Err       error

	Calls          int
	LastAudioPath  string
	LastImagePaths []string
}

func (m *VideoAssembler) Assemble(ctx context.Context, audioPath string, imagePaths []string, stem string) (string, error) {
	m.Calls++
	m.LastAudioPath = audioPath
	m.LastImagePaths = imagePaths
	if m.Err != nil {
		return "", m.Err
	}

	if err := os.MkdirAll(m.OutputDir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(m.OutputDir, stem+".mp4")
	if err := os.WriteFile(path, []byte("mock mp4"), 0644); err != nil {
		return "", err
	}
	return path, nil
}

// MessageSender records delivery attempts.
type MessageSender struct {
	Err error

	Calls         int
	LastVideoPath string
	LastChatID    string
	LastCaption   string
}

func (m *MessageSender) Send(ctx context.Context, videoPath, chatID, caption string) error {
	m.Calls++
	m.LastVideoPath = videoPath
	m.LastChatID = chatID
	m.LastCaption = caption
	return m.Err
}

// CreateImageSet writes n small fake image files and returns their
// paths, mimicking a downloaded Image Set.
func CreateImageSet(dir, subject string, n int) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	paths := make([]string, 0, n)
	for i := 0; i < n; i++ {
		path := filepath.Join(dir, fmt.Sprintf("%s-%d.jpeg", subject, i))
		if err := os.WriteFile(path, []byte{0xFF, 0xD8, 0xFF, 0xE0}, 0644); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
