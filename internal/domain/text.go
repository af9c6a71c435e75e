package domain

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeText returns s in NFC form, case-folded, with backslashes
// turned into slashes. Signal matching runs on normalized text only.
func NormalizeText(s string) string {
	s = strings.ReplaceAll(s, "\\", "/")
	return cases.Fold().String(norm.NFC.String(s))
}

// Slugify lowercases s, strips diacritics and collapses every run of
// characters outside [a-z0-9] into a single hyphen.
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	stripped = cases.Fold().String(stripped)

	var b strings.Builder
	pendingHyphen := false
	for _, r := range stripped {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}

func isDelimiter(b byte) bool {
	switch b {
	case '_', '-', '/', '.', ' ':
		return true
	}
	return false
}

// countOccurrences returns the number of non-overlapping occurrences of kw
// in text and how many of them are bounded by delimiters on both sides.
func countOccurrences(text, kw string) (total, delimited int) {
	if kw == "" {
		return 0, 0
	}
	for i := 0; i <= len(text)-len(kw); {
		j := strings.Index(text[i:], kw)
		if j < 0 {
			break
		}
		start := i + j
		end := start + len(kw)
		total++
		if (start == 0 || isDelimiter(text[start-1])) && (end == len(text) || isDelimiter(text[end])) {
			delimited++
		}
		i = end
	}
	return total, delimited
}

// NumericToken returns the first run of ASCII digits in s
func NumericToken(s string) (int, bool) {
	start := -1
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			return parseDigits(s[start:i])
		}
	}
	if start >= 0 {
		return parseDigits(s[start:])
	}
	return 0, false
}

func parseDigits(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
