package utils

import "strings"

// TruncateForLog shortens the provided string to the specified limit, appending an ellipsis when truncated.
func TruncateForLog(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

// Mask hides all but the last visible runes of a secret for logging.
func Mask(secret string, visible int) string {
	runes := []rune(strings.TrimSpace(secret))
	if len(runes) == 0 {
		return ""
	}
	if visible < 0 || visible >= len(runes) {
		visible = 0
	}
	return strings.Repeat("*", len(runes)-visible) + string(runes[len(runes)-visible:])
}
