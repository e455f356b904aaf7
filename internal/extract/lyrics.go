package extract

import (
	"regexp"
	"strings"

	"github.com/JakeFAU/noplp-songs/internal/scrapeerr"
)

// HighlightMarker prefixes lyric lines that were set in bold on the wiki.
const HighlightMarker = "¤"

var (
	// The verse block is the first ''quoted'' run after the lyrics heading.
	// The trailing lazy match stops at the next "Dates de sortie", not the last.
	lyricsSection = regexp.MustCompile(
		`==\s{0,5}Paroles\s{0,5}(?:<.*>|)\s{0,5}==[^']*?(''[^=]*'')[\s\S]*?Dates de sortie`)
	residualMarkup = regexp.MustCompile(`\[\[(?:[^\]|]*\|)?([^\]]*)\]\]|\{\{[^{}]*\}\}|<[^<>]*>`)
	spaces         = regexp.MustCompile(`[ \t]{2,}`)
	edgeQuotes     = regexp.MustCompile(`^'+\s*|\s*'+$`)

	apostrophes = strings.NewReplacer("’", "'", "‘", "'", "ʼ", "'")
)

// Lyrics isolates the verse block of the lyrics section, expands repetition
// macros and flattens emphasis markup. Lines that were bold carry the
// HighlightMarker prefix.
func (e *Extractor) Lyrics(page Page) (string, error) {
	m := lyricsSection.FindStringSubmatch(page.Text)
	if m == nil {
		return "", scrapeerr.New(scrapeerr.KindLyricsMissing, "")
	}
	return CleanLyrics(ExpandRepeats(m[1])), nil
}

// CleanLyrics flattens an already expanded verse block: emphasis quotes are
// removed, bold lines are prefixed with HighlightMarker, other markup is
// stripped and blank lines are dropped.
func CleanLyrics(block string) string {
	lines := strings.Split(block, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		highlighted := strings.Contains(line, "'''")
		line = strings.ReplaceAll(line, "'''", "")
		line = strings.ReplaceAll(line, "''", "")
		line = residualMarkup.ReplaceAllStringFunc(line, func(s string) string {
			if strings.HasPrefix(s, "[[") {
				return residualMarkup.ReplaceAllString(s, "$1")
			}
			return ""
		})
		line = apostrophes.Replace(line)
		line = edgeQuotes.ReplaceAllString(line, "")
		line = strings.TrimSpace(spaces.ReplaceAllString(line, " "))
		if line == "" {
			continue
		}
		if highlighted {
			line = HighlightMarker + line
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
