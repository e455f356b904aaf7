// Package extract turns a normalized song page into a song.Record.
//
// Every extractor is a small function over a Page value; none of them keep
// state between calls, so one Extractor can serve any number of concurrent
// pages. Each extractor fails with its own scrapeerr kind.
package extract

import (
	"time"

	"github.com/JakeFAU/noplp-songs/internal/frdate"
	"github.com/JakeFAU/noplp-songs/internal/scrapeerr"
	"github.com/JakeFAU/noplp-songs/internal/song"
)

// Page is a normalized document and the title it was fetched under.
type Page struct {
	Title string
	Text  string
}

// DateParser resolves free date text to a civil date.
type DateParser interface {
	Parse(text string) (time.Time, error)
}

// Options configures an Extractor.
type Options struct {
	// SingerRequired turns a missing performer line into KindSingerMissing.
	SingerRequired bool
	// Dates defaults to frdate.New().
	Dates DateParser
}

// Extractor runs the field extractors over a page.
type Extractor struct {
	singerRequired bool
	dates          DateParser
}

// New builds an Extractor.
func New(opts Options) *Extractor {
	dates := opts.Dates
	if dates == nil {
		dates = frdate.New()
	}
	return &Extractor{
		singerRequired: opts.SingerRequired,
		dates:          dates,
	}
}

// LineResult is the outcome of extracting one date line.
type LineResult struct {
	Line       string
	Occurrence song.Occurrence
	Err        error
}

// Extract runs every extractor and assembles the record. Failures carry the
// page title.
func (e *Extractor) Extract(page Page) (song.Record, error) {
	performer, err := e.Performer(page)
	if err != nil {
		return song.Record{}, scoped(err, page)
	}
	lyrics, err := e.Lyrics(page)
	if err != nil {
		return song.Record{}, scoped(err, page)
	}
	lines, err := e.Lines(page)
	if err != nil {
		return song.Record{}, scoped(err, page)
	}
	rec, err := Assemble(page.Title, performer, lyrics, lines)
	if err != nil {
		return song.Record{}, scoped(err, page)
	}
	return rec, nil
}

// Assemble builds the record from per-line results. The first failed line
// fails the whole record; there are no partial records.
func Assemble(title, performer, lyrics string, lines []LineResult) (song.Record, error) {
	occ := make([]song.Occurrence, 0, len(lines))
	for _, l := range lines {
		if l.Err != nil {
			return song.Record{}, l.Err
		}
		occ = append(occ, l.Occurrence)
	}
	return song.New(title, performer, lyrics, occ), nil
}

func scoped(err error, page Page) error {
	if se, ok := err.(*scrapeerr.Error); ok {
		return se.WithPage(page.Title)
	}
	return err
}
