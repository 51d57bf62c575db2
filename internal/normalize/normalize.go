// Package normalize cleans user-entered text before it is stored.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Name normalizes a display name such as a tag or member name.
//   - Unicode NFKC ("Ｒｕｎｎｉｎｇ" -> "Running")
//   - control characters dropped
//   - surrounding whitespace trimmed, inner runs collapsed to one space
func Name(raw string) string {
	if raw == "" {
		return ""
	}
	s := norm.NFKC.String(sanitizeString(raw))
	return strings.Join(strings.Fields(s), " ")
}

// Text normalizes free-form text such as a member introduction.
// Line breaks are kept; each line is trimmed of trailing whitespace.
func Text(raw string) string {
	if raw == "" {
		return ""
	}
	s := norm.NFKC.String(sanitizeString(raw))
	s = strings.ReplaceAll(s, "\r\n", "\n")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRightFunc(line, unicode.IsSpace)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// Color lowercases a hex color ("#FFAA00" -> "#ffaa00"). Empty stays empty.
func Color(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

//nolint:gochecknoglobals // Caser is safe for reuse via String
var folder = cases.Fold()

// Key returns a case-folded form of a name for equality checks,
// so "Running" and "ＲＵＮＮＩＮＧ" compare equal.
func Key(raw string) string {
	return folder.String(Name(raw))
}

// sanitizeString drops control characters other than line breaks and tabs,
// which can cause issues in JSON documents and search indexing.
func sanitizeString(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
