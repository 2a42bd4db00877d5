package utils

// Truncate shortens s to at most maxLen runes, appending "..." when anything
// was cut. Multi-byte characters are never split.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}

	runes := 0
	for i := range s {
		if runes == maxLen {
			return s[:i] + "..."
		}
		runes++
	}
	return s
}
