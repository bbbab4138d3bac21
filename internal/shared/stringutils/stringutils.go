package stringutils

import "unicode/utf8"

// Truncate shortens s to at most n bytes without splitting a UTF-8 sequence,
// adding "..." if it was truncated. Used to keep host lines readable in logs.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
