// Package facts generates the textual content of a run: it suggests an
// animal subject when the caller did not supply one and produces the
// narration describing it. Both operations are single-shot calls against
// a remote chat-completion service; there is no local fallback content.
package facts
