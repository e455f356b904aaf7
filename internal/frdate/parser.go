// Package frdate parses free-text French calendar dates such as
// "samedi 1er février 2020" into civil dates.
package frdate

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrUnparsable is returned when the text does not denote a valid date.
var ErrUnparsable = errors.New("unparsable date")

// Keys are accent-free and lowercase.
var months = map[string]time.Month{
	"janvier": time.January, "janv": time.January, "jan": time.January, "january": time.January,
	"fevrier": time.February, "fevr": time.February, "fev": time.February, "february": time.February, "feb": time.February,
	"mars": time.March, "march": time.March, "mar": time.March,
	"avril": time.April, "avr": time.April, "april": time.April, "apr": time.April,
	"mai": time.May, "may": time.May,
	"juin": time.June, "june": time.June, "jun": time.June,
	"juillet": time.July, "juil": time.July, "july": time.July, "jul": time.July,
	"aout": time.August, "august": time.August, "aug": time.August,
	"septembre": time.September, "sept": time.September, "sep": time.September, "september": time.September,
	"octobre": time.October, "oct": time.October, "october": time.October,
	"novembre": time.November, "nov": time.November, "november": time.November,
	"decembre": time.December, "dec": time.December, "december": time.December,
}

var ordinalSuffixes = map[string]bool{
	"": true, "er": true, "re": true, "ere": true, "e": true, "eme": true,
	"st": true, "nd": true, "rd": true, "th": true,
}

// Parser converts date text to a civil date. The zero value is ready to use
// and safe for concurrent use.
type Parser struct{}

// New returns a Parser.
func New() *Parser {
	return &Parser{}
}

// Parse finds a "day month year" sequence in text, optionally preceded by a
// weekday, and returns it as a UTC midnight time.
func (Parser) Parse(text string) (time.Time, error) {
	tokens := tokenize(fold(text))
	for i := 0; i+2 < len(tokens); i++ {
		day, ok := parseDay(tokens[i])
		if !ok {
			continue
		}
		month, ok := months[tokens[i+1]]
		if !ok {
			continue
		}
		year, ok := parseYear(tokens[i+2])
		if !ok {
			continue
		}
		d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
		if d.Day() != day || d.Month() != month {
			return time.Time{}, fmt.Errorf("%w: %q has no day %d", ErrUnparsable, text, day)
		}
		return d, nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnparsable, text)
}

// fold strips accents and lowercases. NFKD also maps superscript ordinals
// such as "1ᵉʳ" to plain letters.
func fold(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return cases.Lower(language.French).String(out)
}

func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func parseDay(tok string) (int, bool) {
	end := 0
	for end < len(tok) && tok[end] >= '0' && tok[end] <= '9' {
		end++
	}
	if end == 0 || end > 2 || !ordinalSuffixes[tok[end:]] {
		return 0, false
	}
	day, err := strconv.Atoi(tok[:end])
	if err != nil || day < 1 || day > 31 {
		return 0, false
	}
	return day, true
}

func parseYear(tok string) (int, bool) {
	if len(tok) != 4 {
		return 0, false
	}
	year, err := strconv.Atoi(tok)
	if err != nil || year < 1000 {
		return 0, false
	}
	return year, true
}
