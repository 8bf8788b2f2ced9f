package tui

import (
	"fmt"
	"strings"
	"unicode"
)

// truncate shortens s to at most max runes, appending "..." when cut.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

// truncateString is truncate with a defensive width floor.
func truncateString(s string, max int) string {
	if max < 1 {
		max = 1
	}
	return truncate(s, max)
}

// sanitize replaces control characters with spaces so backend text cannot
// corrupt the display.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return ' '
		}
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
}

// wrapText wraps s to the given width, breaking on spaces. Words longer than
// the width are hard-split.
func wrapText(s string, width int) []string {
	if width < 1 {
		width = 1
	}

	var lines []string
	for _, paragraph := range strings.Split(s, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}

		var cur strings.Builder
		for _, word := range words {
			for len([]rune(word)) > width {
				if cur.Len() > 0 {
					lines = append(lines, cur.String())
					cur.Reset()
				}
				runes := []rune(word)
				lines = append(lines, string(runes[:width]))
				word = string(runes[width:])
			}
			if cur.Len() == 0 {
				cur.WriteString(word)
			} else if len([]rune(cur.String()))+1+len([]rune(word)) <= width {
				cur.WriteString(" ")
				cur.WriteString(word)
			} else {
				lines = append(lines, cur.String())
				cur.Reset()
				cur.WriteString(word)
			}
		}
		if cur.Len() > 0 {
			lines = append(lines, cur.String())
		}
	}
	return lines
}

// pluralize returns singular or plural form based on count.
func pluralize(count int, singular, plural string) string {
	if count == 1 {
		return "1 " + singular
	}
	return fmt.Sprintf("%d %s", count, plural)
}

// formatMinutes renders a learning time in minutes as a compact duration.
func formatMinutes(minutes float64) string {
	if minutes <= 0 {
		return "-"
	}
	if minutes < 60 {
		return fmt.Sprintf("%.0fm", minutes)
	}
	hours := int(minutes) / 60
	rem := int(minutes) % 60
	if rem == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh%02dm", hours, rem)
}

// safeWidth ensures width is at least 1.
func safeWidth(w int) int {
	if w < 1 {
		return 1
	}
	return w
}

// safeHeight ensures height is at least 1.
func safeHeight(h int) int {
	if h < 1 {
		return 1
	}
	return h
}
