// Package textfix applies a small set of pure string cleanups to text recovered from a
// PDF's character stream: it is run once per line, at line-closure time, never per
// character. It does not attempt general-purpose typography correction; it only repairs
// the handful of artifacts native PDF extraction reliably produces.
package textfix

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// ligatures maps single-codepoint Unicode ligatures (common in embedded PDF subset fonts)
// to their expanded ASCII/Latin sequence.
var ligatures = map[rune]string{
	'ﬀ': "ff",
	'ﬁ': "fi",
	'ﬂ': "fl",
	'ﬃ': "ffi",
	'ﬄ': "ffl",
	'ﬅ': "st",
	'ﬆ': "st",
}

// Clean normalizes a line of recovered text: NFC-normalizes it, expands known ligatures,
// strips embedded control characters other than newline and tab (so the STX
// line-terminator sentinel used internally by the span/line builder is removed),
// collapses runs of spaces left by space-width heuristics during extraction, and trims
// leading and trailing whitespace.
func Clean(s string) string {
	s = norm.NFC.String(s)
	s = expandLigatures(s)
	s = stripControl(s)
	s = collapseSpaces(s)
	return strings.TrimSpace(s)
}

func expandLigatures(s string) string {
	hasLigature := false
	for _, r := range s {
		if _, ok := ligatures[r]; ok {
			hasLigature = true
			break
		}
	}
	if !hasLigature {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		if rep, ok := ligatures[r]; ok {
			b.WriteString(rep)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func stripControl(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\n' || r == '\t' {
			b.WriteRune(r)
			continue
		}
		if unicode.IsControl(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func collapseSpaces(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevSpace := false
	for _, r := range s {
		if r == ' ' {
			if prevSpace {
				continue
			}
			prevSpace = true
		} else {
			prevSpace = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
