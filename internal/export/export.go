// Package export writes batch results as CSV tables.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/JakeFAU/noplp-songs/internal/song"
)

// Table file names.
const (
	OccurrencesFile = "occurrences.csv"
	LyricsFile      = "lyrics.csv"
	PagesFile       = "pages.csv"

	contentType = "text/csv; charset=utf-8"
)

var (
	occurrenceHeader = []string{"name", "singer", "date", "category", "points", "emissions"}
	lyricsHeader     = []string{"name", "singer", "lyrics"}
	pagesHeader      = []string{"title"}

	newlineEscaper = strings.NewReplacer("\\", "\\\\", "\n", "\\n")
)

// BlobStore receives the tables.
type BlobStore interface {
	PutObject(ctx context.Context, path string, contentType string, r io.Reader) (string, error)
}

// Written maps each table file name to the URI it was stored at.
type Written map[string]string

// Write stores the occurrence and lyrics tables under prefix and, when pages
// is non-empty, the list of discovered pages.
func Write(ctx context.Context, store BlobStore, prefix string, records []song.Record, pages []string) (Written, error) {
	tables := []struct {
		name  string
		write func(io.Writer) error
	}{
		{OccurrencesFile, func(w io.Writer) error { return WriteOccurrences(w, records) }},
		{LyricsFile, func(w io.Writer) error { return WriteLyrics(w, records) }},
	}
	if len(pages) > 0 {
		tables = append(tables, struct {
			name  string
			write func(io.Writer) error
		}{PagesFile, func(w io.Writer) error { return WritePages(w, pages) }})
	}

	written := make(Written, len(tables))
	for _, table := range tables {
		var buf bytes.Buffer
		if err := table.write(&buf); err != nil {
			return written, fmt.Errorf("render %s: %w", table.name, err)
		}
		uri, err := store.PutObject(ctx, path.Join(prefix, table.name), contentType, &buf)
		if err != nil {
			return written, fmt.Errorf("store %s: %w", table.name, err)
		}
		written[table.name] = uri
	}
	return written, nil
}

// WriteOccurrences renders one row per occurrence, sorted by name, singer
// and date. Rows of the same day keep their page order.
func WriteOccurrences(w io.Writer, records []song.Record) error {
	type row struct {
		rec song.Record
		occ song.Occurrence
	}
	var rows []row
	for _, rec := range records {
		for _, occ := range rec.Occurrences() {
			rows = append(rows, row{rec: rec, occ: occ})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.rec.Title() != b.rec.Title() {
			return a.rec.Title() < b.rec.Title()
		}
		if a.rec.Performer() != b.rec.Performer() {
			return a.rec.Performer() < b.rec.Performer()
		}
		return a.occ.Date.Before(b.occ.Date)
	})

	cw := csv.NewWriter(w)
	if err := cw.Write(occurrenceHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write([]string{
			r.rec.Title(),
			r.rec.Performer(),
			r.occ.Date.Format(song.DateLayout),
			r.occ.Category,
			strconv.Itoa(r.occ.Points),
			strconv.Itoa(r.occ.Episode),
		}); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteLyrics renders one row per record with newlines escaped as "\n".
func WriteLyrics(w io.Writer, records []song.Record) error {
	sorted := append([]song.Record(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Title() != sorted[j].Title() {
			return sorted[i].Title() < sorted[j].Title()
		}
		return sorted[i].Performer() < sorted[j].Performer()
	})

	cw := csv.NewWriter(w)
	if err := cw.Write(lyricsHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range sorted {
		if err := cw.Write([]string{rec.Title(), rec.Performer(), EscapeLyrics(rec.Lyrics())}); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WritePages renders the page list, one title per row.
func WritePages(w io.Writer, pages []string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(pagesHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, p := range pages {
		if err := cw.Write([]string{p}); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// EscapeLyrics puts a lyrics block on one line. Backslashes are doubled so
// the escaping can be reversed.
func EscapeLyrics(lyrics string) string {
	return newlineEscaper.Replace(lyrics)
}
