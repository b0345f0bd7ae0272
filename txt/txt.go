package txt

import "strings"

// CleanTranscript normalizes provider output before it is typed into the
// focused application: surrounding whitespace goes, and so does trailing
// sentence punctuation, which breaks dictated commands and identifiers.
func CleanTranscript(s string) string {
	s = strings.TrimSpace(s)
	for len(s) > 0 && strings.ContainsRune(".,;:", rune(s[len(s)-1])) {
		s = s[:len(s)-1]
	}
	return strings.TrimSpace(s)
}
