package audio

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// WordTiming is the estimated interval in which one word of the
// narration is spoken, in seconds from the start of the audio.
type WordTiming struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// wordsPerMinute is the pacing assumption; typical narration sits in the
// 150-200 wpm range.
const wordsPerMinute = 160.0

// EstimateWordTimings distributes the words of the narration across the
// audio duration using a simple pacing model: longer words take longer,
// sentence and clause punctuation adds a pause, and everything is scaled
// so the last word ends at the actual audio duration's estimate.
func EstimateWordTimings(text string, audioDuration float64) []WordTiming {
	type token struct {
		word  string
		pause float64
	}

	var tokens []token
	for _, field := range strings.Fields(CleanNarration(text)) {
		word := strings.TrimFunc(field, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if word == "" {
			continue
		}

		pause := 0.0
		switch {
		case strings.HasSuffix(field, "."), strings.HasSuffix(field, "!"), strings.HasSuffix(field, "?"):
			pause = 0.3
		case strings.HasSuffix(field, ","):
			pause = 0.2
		}
		tokens = append(tokens, token{word: word, pause: pause})
	}

	if len(tokens) == 0 {
		return nil
	}

	wordsPerSecond := wordsPerMinute / 60.0
	estimatedDuration := float64(len(tokens)) / wordsPerSecond
	scale := 1.0
	if estimatedDuration > 0 && audioDuration > 0 {
		scale = audioDuration / estimatedDuration
	}

	timings := make([]WordTiming, 0, len(tokens))
	current := 0.0
	for _, tok := range tokens {
		base := 0.4 // Base 400ms per word
		lengthFactor := math.Max(0.1, float64(len(tok.word))/8)
		duration := (base*lengthFactor + tok.pause) * scale

		timings = append(timings, WordTiming{
			Word:  tok.word,
			Start: current,
			End:   current + duration,
		})
		current += duration
	}

	return timings
}

// TimingsPath returns the sidecar file path for an audio artifact.
func TimingsPath(audioPath string) string {
	return strings.TrimSuffix(audioPath, filepath.Ext(audioPath)) + "_timings.json"
}

// SaveWordTimings writes the timings as JSON next to the audio file.
func SaveWordTimings(timings []WordTiming, audioPath string) error {
	data, err := json.MarshalIndent(timings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode word timings: %w", err)
	}

	if err := os.WriteFile(TimingsPath(audioPath), data, 0644); err != nil {
		return fmt.Errorf("failed to write word timings: %w", err)
	}
	return nil
}
