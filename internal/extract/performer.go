package extract

import (
	"regexp"
	"strings"

	"github.com/JakeFAU/noplp-songs/internal/scrapeerr"
)

var (
	// Matches "Interprète :", "Interprètes :" and the "Interpréte" spelling.
	performerLine = regexp.MustCompile(`(?im)interpr[èée]te\p{L}*[ \t]*:[ \t]*(.*)$`)
	wikiLink      = regexp.MustCompile(`\[\[(?:[^\]|]*\|)?([^\]]*)\]\]`)
	trailingNote  = regexp.MustCompile(`\s*(?:\([^()]*\)|\[[^\[\]]*\])\s*$`)
)

// Performer returns the value of the performer line with any trailing
// bracketed annotation removed. Without such a line it returns "" unless
// the performer is required.
func (e *Extractor) Performer(page Page) (string, error) {
	m := performerLine.FindStringSubmatch(page.Text)
	if m == nil {
		if e.singerRequired {
			return "", scrapeerr.New(scrapeerr.KindSingerMissing, "")
		}
		return "", nil
	}
	value := cleanPerformer(m[1])
	if value == "" && e.singerRequired {
		return "", scrapeerr.New(scrapeerr.KindSingerMissing, m[0])
	}
	return value, nil
}

func cleanPerformer(raw string) string {
	value := wikiLink.ReplaceAllString(raw, "$1")
	for {
		next := trailingNote.ReplaceAllString(value, "")
		if next == value {
			break
		}
		value = next
	}
	value = strings.ReplaceAll(value, `"`, "")
	value = strings.ReplaceAll(value, "'''", "")
	value = strings.ReplaceAll(value, "''", "")
	return strings.TrimSpace(value)
}
