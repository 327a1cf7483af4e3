package utils

import (
	"strconv"
	"strings"
)

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

// Percent renders a similarity score in [0,1] as a percentage with one decimal.
func Percent(score float64) string {
	return strconv.FormatFloat(score*100, 'f', 1, 64) + "%"
}
