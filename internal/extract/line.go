package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/JakeFAU/noplp-songs/internal/scrapeerr"
	"github.com/JakeFAU/noplp-songs/internal/song"
)

// Canonical category labels.
const (
	CategoryPoints       = "Points"
	CategorySameSong     = "Même chanson"
	CategoryMaestro      = "Maestro"
	CategoryTrapped      = "Chanson piégée"
	CategoryFillIn       = "Chanson à trou"
	CategoryTournament   = "Tournoi"
	CategoryDrawn        = "Tirage au sort"
	CategoryImposedWords = "Mots imposés"
	CategoryLegacy       = "Ancienne formule"
)

var (
	dateToken = regexp.MustCompile(`[\p{L}\p{N}_]+\s+\d+[\p{L}\p{N}_]*\s+[\p{L}\p{N}_]+\s+\d+`)

	pointsMarker = regexp.MustCompile(`(?i)(\d)[\p{L}\p{N}]?\s{0,5}(?:point|prise)`)
	currency     = regexp.MustCompile(`(?i)(\d{1,3}(?:[ .]?\d{3})*)\s?(?:€|euros?\b)`)
	colonLabel   = regexp.MustCompile(`\s*((?:[\p{L}\p{N}_]+\s)*[\p{L}\p{N}_]+)\s*:`)

	// Tried in this order after the points marker; the order is a legacy
	// convention and decides ambiguous lines.
	namedCategories = []struct {
		label   string
		pattern *regexp.Regexp
	}{
		{CategorySameSong, regexp.MustCompile(`(?i)m[êe]me chanson`)},
		{CategoryMaestro, regexp.MustCompile(`(?i)maestro`)},
		{CategoryTrapped, regexp.MustCompile(`(?i)chanson pi[ée]g[ée]e`)},
		{CategoryFillIn, regexp.MustCompile(`(?i)chanson [àa] trou`)},
		{CategoryTournament, regexp.MustCompile(`(?i)tournoi`)},
		{CategoryDrawn, regexp.MustCompile(`(?i)tir(?:age|[ée]e?) au sort`)},
		{CategoryImposedWords, regexp.MustCompile(`(?i)mots? impos[ée]s?`)},
	}

	episodeNumber = regexp.MustCompile(`(?i)(?:[;:,(—–-]|)\s{0,3}(\d+)\p{L}{0,4}\s{0,4}\p{L}{0,7}(?:sion|ontre)`)

	specialBroadcast = []string{"tournoi", "ligue", "spécial", "prime", "ontre", "master", "enfants"}
)

// CanonicalCategories lists the fixed category labels. Colon-prefix labels
// are free-form and not listed.
var CanonicalCategories = []string{
	CategoryPoints, CategorySameSong, CategoryMaestro, CategoryTrapped, CategoryFillIn,
	CategoryTournament, CategoryDrawn, CategoryImposedWords, CategoryLegacy,
}

// IsCanonicalCategory reports whether label is one of CanonicalCategories.
func IsCanonicalCategory(label string) bool {
	for _, c := range CanonicalCategories {
		if c == label {
			return true
		}
	}
	return false
}

// Date finds the "weekday day month year" text of a line and resolves it.
func (e *Extractor) Date(line string) (time.Time, error) {
	text := dateToken.FindString(line)
	if text == "" {
		return time.Time{}, scrapeerr.New(scrapeerr.KindDateNotFound, line)
	}
	d, err := e.dates.Parse(text)
	if err != nil {
		return time.Time{}, &scrapeerr.Error{Kind: scrapeerr.KindDateUnparsable, Detail: text, Err: err}
	}
	return d, nil
}

// Category returns the scoring category of a line and its point value, or
// song.NoPoints for categories without a score.
//
// A points marker wins over named categories, which win over a legacy
// currency amount. With none of them, the text before the first colon is
// used as a free-form label.
func Category(line string) (string, int, error) {
	if m := pointsMarker.FindStringSubmatch(line); m != nil {
		// Source pages contain "5 points" for 50; only the tens digit counts.
		return CategoryPoints, int(m[1][0]-'0') * 10, nil
	}
	for _, c := range namedCategories {
		if c.pattern.MatchString(line) {
			return c.label, song.NoPoints, nil
		}
	}
	if m := currency.FindStringSubmatch(line); m != nil {
		digits := strings.NewReplacer(" ", "", ".", "").Replace(m[1])
		if amount, err := strconv.Atoi(digits); err == nil {
			return CategoryLegacy, amount, nil
		}
	}
	if m := colonLabel.FindStringSubmatch(strings.TrimLeft(line, "#* ")); m != nil {
		return m[1], song.NoPoints, nil
	}
	return "", 0, scrapeerr.New(scrapeerr.KindPointsCategoryMissing, line)
}

// Episode returns the episode number of a line. The sign encodes the
// broadcast format: negative for tournaments, specials and similar.
//
// The date text is skipped so that a year is never read as the number.
// Without a number the result is 0 for "unique" broadcasts and for lines
// that do not mention an emission or encounter at all.
func Episode(line string) (int, error) {
	lower := strings.ToLower(line)
	sign := 1
	for _, kw := range specialBroadcast {
		if strings.Contains(lower, kw) {
			sign = -1
			break
		}
	}
	rest := line
	if loc := dateToken.FindStringIndex(line); loc != nil {
		rest = line[:loc[0]] + " " + line[loc[1]:]
	}
	if m := episodeNumber.FindStringSubmatch(rest); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return sign * n, nil
		}
	}
	switch {
	case strings.Contains(lower, "unique"):
		return 0, nil
	case strings.Contains(lower, "sion"), strings.Contains(lower, "ontre"):
		return 0, scrapeerr.New(scrapeerr.KindEmissionNumberMissing, line)
	default:
		return 0, nil
	}
}
