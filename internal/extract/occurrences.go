package extract

import (
	"regexp"
	"strings"

	"github.com/JakeFAU/noplp-songs/internal/scrapeerr"
	"github.com/JakeFAU/noplp-songs/internal/song"
)

var (
	datesSection = regexp.MustCompile(`==\s{0,5}Dates de sortie\s{0,5}==[\s\S]*?==\s{0,5}Trous\s{0,5}==`)
	listItem     = regexp.MustCompile(`#.*`)
	blankItem    = regexp.MustCompile(`^#\S*$`)
)

// DateLines returns the list items of the release-dates section, blank
// slots excluded. A section holding only blank slots is reported like an
// empty one so that assembled records always have occurrences.
func DateLines(page Page) ([]string, error) {
	section := datesSection.FindString(page.Text)
	if section == "" {
		return nil, scrapeerr.New(scrapeerr.KindDatesSectionMissing, "")
	}
	items := listItem.FindAllString(section, -1)
	if len(items) == 0 {
		return nil, scrapeerr.New(scrapeerr.KindDateLinesMissing, "")
	}
	lines := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimRight(item, " \t")
		if blankItem.MatchString(item) {
			continue
		}
		lines = append(lines, strings.ReplaceAll(item, "'", ""))
	}
	if len(lines) == 0 {
		return nil, scrapeerr.New(scrapeerr.KindDateLinesMissing, "only blank slots")
	}
	return lines, nil
}

// Lines extracts every date line of the page. Per-line failures are kept in
// the results; only a missing section or an empty list fails here.
func (e *Extractor) Lines(page Page) ([]LineResult, error) {
	lines, err := DateLines(page)
	if err != nil {
		return nil, err
	}
	results := make([]LineResult, 0, len(lines))
	for _, line := range lines {
		occ, err := e.Line(line)
		results = append(results, LineResult{Line: line, Occurrence: occ, Err: err})
	}
	return results, nil
}

// Occurrences extracts the occurrence list, failing on the first bad line.
func (e *Extractor) Occurrences(page Page) ([]song.Occurrence, error) {
	results, err := e.Lines(page)
	if err != nil {
		return nil, err
	}
	occ := make([]song.Occurrence, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			return nil, r.Err
		}
		occ = append(occ, r.Occurrence)
	}
	return occ, nil
}

// Line runs the date, category and episode extractions on one list item, in
// that order. The line is accepted only if all three succeed.
func (e *Extractor) Line(line string) (song.Occurrence, error) {
	date, err := e.Date(line)
	if err != nil {
		return song.Occurrence{}, err
	}
	category, points, err := Category(line)
	if err != nil {
		return song.Occurrence{}, err
	}
	episode, err := Episode(line)
	if err != nil {
		return song.Occurrence{}, err
	}
	return song.Occurrence{
		Date:     date,
		Category: category,
		Points:   points,
		Episode:  episode,
	}, nil
}
