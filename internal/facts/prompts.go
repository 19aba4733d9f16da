package facts

import (
	"fmt"
	"strings"
)

// describePrompt asks for narration that a TTS engine can read out
// verbatim, so it forbids formatting and extra text.
func describePrompt(subject string) string {
	return fmt.Sprintf("Give me a brief description of the animal named %s. "+
		"Use information from wikipedia and other reliable sources. Include its "+
		"habitat, diet, size, scientific name and any interesting facts. The "+
		"response should be concise and informative, suitable for a general "+
		"audience. The response will be read out loud by a text-to-speech "+
		"system, so it should be clear and easy to understand. Return the "+
		"information in a single paragraph without any additional text or "+
		"formatting.", subject)
}

// suggestPrompt asks for exactly one animal name. Previously used
// subjects are listed so the service picks something new.
func suggestPrompt(avoid []string) string {
	prompt := "Suggest one animal for a short educational video about animal " +
		"facts. Pick something a general audience would find interesting. " +
		"Respond with only the common English name of the animal, nothing else."
	if len(avoid) > 0 {
		prompt += fmt.Sprintf(" Do not suggest any of these animals: %s.",
			strings.Join(avoid, ", "))
	}
	return prompt
}

// cleanSubject strips the quoting and punctuation chat models like to
// wrap short answers in.
func cleanSubject(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "\"'`")
	s = strings.ReplaceAll(s, "*", "")
	s = strings.TrimSuffix(s, ".")
	return strings.TrimSpace(s)
}
