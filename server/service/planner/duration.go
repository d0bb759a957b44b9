package planner

import (
	"strconv"
	"strings"
	"time"
)

const (
	// defaultTaskDuration is assumed when the duration text is absent or
	// cannot be understood at all.
	defaultTaskDuration = time.Hour
	// defaultMinuteDuration is assumed when the text clearly speaks of
	// minutes but the amount is unreadable, e.g. "пару минут".
	defaultMinuteDuration = 30 * time.Minute
)

// Keyword order matters: the longer Russian form must be checked before
// its abbreviation, and "minute" before "min".
var (
	hourKeywords   = []string{"час", "hour", "hr"}
	minuteKeywords = []string{"минут", "мин", "minute", "min"}
)

// ParseDuration interprets a free-text duration descriptor such as
// "3 часа", "45 минут" or "2 hours". It never fails: unreadable input
// falls back to one hour, and minute phrasing without a readable amount
// falls back to thirty minutes.
func ParseDuration(text string) time.Duration {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return defaultTaskDuration
	}

	if prefix, ok := prefixBefore(text, hourKeywords); ok {
		if n, err := strconv.Atoi(prefix); err == nil && n > 0 {
			return time.Duration(n) * time.Hour
		}
		return defaultTaskDuration
	}
	if prefix, ok := prefixBefore(text, minuteKeywords); ok {
		if n, err := strconv.Atoi(prefix); err == nil && n > 0 {
			return time.Duration(n) * time.Minute
		}
		return defaultMinuteDuration
	}

	return defaultTaskDuration
}

// prefixBefore returns the trimmed text preceding the first keyword
// found in the input.
func prefixBefore(text string, keywords []string) (string, bool) {
	for _, keyword := range keywords {
		if idx := strings.Index(text, keyword); idx >= 0 {
			return strings.TrimSpace(text[:idx]), true
		}
	}
	return "", false
}
