// Package wikitext cleans raw wiki source and decides whether a page is a
// song page worth extracting.
package wikitext

import (
	"regexp"
	"strings"
)

var (
	wrapperTag     = regexp.MustCompile(`(?i)</?(?:u|ins|b|i|em|strong|small|big|span)(?:\s[^<>]*)?>`)
	selfClosingRef = regexp.MustCompile(`(?i)<ref\b[^>]*/>`)
	pairedRef      = regexp.MustCompile(`(?is)<ref\b(?:[^>]*[^/>])?>.*?</ref\s*>`)
	lineBreak      = regexp.MustCompile(`(?i)<br\s*/?\s*>`)
	trailingSpace  = regexp.MustCompile(`(?m)[ \t]+$`)
	extraNewlines  = regexp.MustCompile(`\n{3,}`)

	spaceReplacer = strings.NewReplacer(
		"\r\n", "\n",
		"\r", "\n",
		"&nbsp;", " ",
		"\u00a0", " ",
		"\u202f", " ",
	)
)

// Normalize strips markup noise from a raw page source: formatting wrappers
// are unwrapped, footnotes and forced line breaks are deleted, and
// whitespace is tidied while blank-line paragraph breaks are kept.
//
// Every step only removes bytes, so the pass is repeated until nothing
// changes; the result is a fixpoint and Normalize is idempotent.
func Normalize(raw string) string {
	text := raw
	for {
		next := normalizeOnce(text)
		if next == text {
			return next
		}
		text = next
	}
}

func normalizeOnce(s string) string {
	s = spaceReplacer.Replace(s)
	s = selfClosingRef.ReplaceAllString(s, "")
	s = pairedRef.ReplaceAllString(s, "")
	s = lineBreak.ReplaceAllString(s, "")
	s = wrapperTag.ReplaceAllString(s, "")
	s = trailingSpace.ReplaceAllString(s, "")
	return extraNewlines.ReplaceAllString(s, "\n\n")
}
