package formatter

import (
	"math"
	"strconv"
	"strings"
)

// FormatNumber renders n with commas as thousands separators.
// Example: 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	s := strconv.FormatInt(n, 10)
	sign := ""
	if n < 0 {
		sign, s = "-", s[1:]
	}

	if len(s) <= 3 {
		return sign + s
	}

	var sb strings.Builder
	sb.WriteString(sign)
	head := len(s) % 3
	if head > 0 {
		sb.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if sb.Len() > len(sign) {
			sb.WriteByte(',')
		}
		sb.WriteString(s[i : i+3])
	}
	return sb.String()
}

// CompactNumber renders large counts the way social apps do.
// Example: 1520000 -> "1.5M", 980 -> "980"
func CompactNumber(n int64) string {
	abs := math.Abs(float64(n))
	sign := ""
	if n < 0 {
		sign = "-"
	}

	for _, unit := range []struct {
		size   float64
		suffix string
	}{
		{1e9, "B"},
		{1e6, "M"},
		{1e3, "K"},
	} {
		if abs >= unit.size {
			v := math.Floor(abs/unit.size*10) / 10
			return sign + strconv.FormatFloat(v, 'f', -1, 64) + unit.suffix
		}
	}
	return strconv.FormatInt(n, 10)
}

// FormatScore renders a relevance score with two decimals.
func FormatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', 2, 64)
}

// Truncate shortens s to at most limit runes, appending an ellipsis when cut.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}

// EscapeMarkdownV2 escapes special characters in Markdown V2 format
func EscapeMarkdownV2(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '\\', '_', '*', '[', ']', '(', ')', '~', '`', '>', '#', '+', '-', '=', '|', '{', '}', '.', '!':
			sb.WriteRune('\\')
			sb.WriteRune(r)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
