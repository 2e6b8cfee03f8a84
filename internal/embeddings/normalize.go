package embeddings

import "strings"

// maxEmbedRunes bounds the text handed to the embedding model. Longer
// passages are truncated; the full text is still what gets indexed and
// returned to callers.
const maxEmbedRunes = 512

// NormalizeText prepares raw text for embedding: newline and whitespace runs
// collapse to single spaces, the result is truncated to maxEmbedRunes runes
// and trimmed. Idempotent, and applied identically to passages and queries so
// both sides of a similarity comparison see the same normalization.
func NormalizeText(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) > maxEmbedRunes {
		text = string(runes[:maxEmbedRunes])
	}
	return strings.TrimSpace(text)
}
