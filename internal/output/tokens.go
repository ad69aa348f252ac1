package output

import (
	"fmt"
	"unicode/utf8"
)

// Common context window sizes for LLM consumers of analysis output.
const (
	Budget8K   = 8000
	Budget32K  = 32000
	Budget64K  = 64000
	Budget128K = 128000
)

// CharsPerToken is the approximate character-to-token ratio for
// code-heavy text.
const CharsPerToken = 4.0

// EstimateTokens returns an approximate token count for the given text
// using a character-based heuristic. Good enough for sizing decisions,
// not for billing.
func EstimateTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	runeCount := utf8.RuneCountInString(text)
	return int(float64(runeCount)/CharsPerToken + 0.5)
}

// FormatTokenCount formats a token count for display. Counts >= 1000 are
// formatted as "X.Xk".
func FormatTokenCount(tokens int) string {
	if tokens < 1000 {
		return fmt.Sprintf("%d", tokens)
	}
	return fmt.Sprintf("%.1fk", float64(tokens)/1000)
}
