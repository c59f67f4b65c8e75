package scanning

import (
	"strings"
	"unicode/utf8"
)

var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n", "\f", "\n")

// splitLines normalizes line endings and returns trimmed, non-empty lines in order
func splitLines(text string) []string {
	raw := strings.Split(lineBreaks.Replace(text), "\n")
	lines := make([]string, 0, len(raw))
	for _, ln := range raw {
		ln = strings.TrimSpace(ln)
		if ln == "" {
			continue
		}
		lines = append(lines, ln)
	}
	return lines
}

// asciiRatio returns the fraction of runes below code point 128.
// Blank text yields 0 so that it always fails an OCR threshold.
func asciiRatio(text string) float64 {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	total := utf8.RuneCountInString(text)
	ascii := 0
	for _, r := range text {
		if r < utf8.RuneSelf {
			ascii++
		}
	}
	return float64(ascii) / float64(total)
}

// cleanTranscript strips markdown fences that vision models wrap answers in
func cleanTranscript(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		if idx := strings.Index(text, "\n"); idx != -1 {
			text = text[idx+1:]
		} else {
			text = strings.TrimPrefix(text, "```")
		}
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
