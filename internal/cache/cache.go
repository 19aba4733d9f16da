// Package cache is a small file-based result cache. Entries are JSON
// files in a single directory, named by the MD5 of their logical key, so
// repeated runs for the same subject skip remote lookups.
package cache

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// Store reads and writes cache entries under a directory. Read and write
// failures degrade to cache misses; the cache never fails a run.
type Store struct {
	dir string
}

// New creates the cache directory if needed and returns a Store for it.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Narration returns a cached narration for the subject.
func (s *Store) Narration(subject string) (string, bool) {
	var text string
	ok := s.get("narration_"+subject, &text)
	return text, ok && text != ""
}

// PutNarration stores the narration for the subject.
func (s *Store) PutNarration(subject, text string) {
	s.put("narration_"+subject, text)
}

// ImageURLs returns cached search results for a provider and subject.
func (s *Store) ImageURLs(provider, subject string) ([]string, bool) {
	var urls []string
	ok := s.get(fmt.Sprintf("image_urls_%s_%s", provider, subject), &urls)
	return urls, ok
}

// PutImageURLs stores search results for a provider and subject.
func (s *Store) PutImageURLs(provider, subject string, urls []string) {
	s.put(fmt.Sprintf("image_urls_%s_%s", provider, subject), urls)
}

// Clear removes every cache entry.
func (s *Store) Clear() error {
	entries, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := os.Remove(e); err != nil {
			return fmt.Errorf("failed to clear cache entry %s: %w", e, err)
		}
	}
	return nil
}

type envelope struct {
	Value json.RawMessage `json:"value"`
}

func (s *Store) get(key string, v any) bool {
	if s == nil {
		return false
	}
	data, err := os.ReadFile(s.entryPath(key))
	if err != nil {
		return false
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Debug().Str("key", key).Err(err).Msg("cache entry unreadable")
		return false
	}
	if err := json.Unmarshal(env.Value, v); err != nil {
		log.Debug().Str("key", key).Err(err).Msg("cache entry unreadable")
		return false
	}
	log.Debug().Str("key", key).Msg("cache hit")
	return true
}

func (s *Store) put(key string, v any) {
	if s == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		log.Debug().Str("key", key).Err(err).Msg("cache write failed")
		return
	}
	data, err := json.Marshal(envelope{Value: raw})
	if err != nil {
		log.Debug().Str("key", key).Err(err).Msg("cache write failed")
		return
	}
	if err := os.WriteFile(s.entryPath(key), data, 0644); err != nil {
		log.Debug().Str("key", key).Err(err).Msg("cache write failed")
	}
}

func (s *Store) entryPath(key string) string {
	sum := md5.Sum([]byte(key))
	return filepath.Join(s.dir, hex.EncodeToString(sum[:])+".json")
}
