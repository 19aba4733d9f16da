package audio

import (
	"fmt"
	"strings"
)

// ValidateNarration checks that there is something to speak.
func ValidateNarration(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("narration text cannot be empty")
	}
	return nil
}

// CleanNarration strips the markdown emphasis markers chat models sneak
// into prose; TTS engines would read them out as "asterisk".
func CleanNarration(text string) string {
	return strings.TrimSpace(strings.ReplaceAll(text, "*", ""))
}
