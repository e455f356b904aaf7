// Package song holds the normalized song record produced from a wiki page.
package song

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// NoPoints is the Points value of categories that carry no score.
const NoPoints = -1

// DateLayout is the textual form of occurrence dates in exports and JSON.
const DateLayout = "2006-01-02"

// Format classifies an occurrence's broadcast from the episode sign.
type Format string

// Broadcast formats.
const (
	FormatOrdinary   Format = "ordinary"
	FormatUnnumbered Format = "unnumbered"
	FormatSpecial    Format = "special"
)

// Occurrence is one broadcast of a song.
type Occurrence struct {
	// Date is a civil date at UTC midnight.
	Date     time.Time
	Category string
	// Points is the score of the category or NoPoints.
	Points int
	// Episode is >0 for an ordinary numbered episode, 0 when unnumbered and
	// negative when the broadcast is a special format whose number was found.
	Episode int
}

// Format derives the broadcast format from the episode sign. Special
// broadcasts without a recovered number report FormatUnnumbered.
func (o Occurrence) Format() Format {
	switch {
	case o.Episode > 0:
		return FormatOrdinary
	case o.Episode < 0:
		return FormatSpecial
	default:
		return FormatUnnumbered
	}
}

type occurrenceJSON struct {
	Date     string `json:"date"`
	Category string `json:"category"`
	Points   int    `json:"points"`
	Episode  int    `json:"episode_number"`
}

// MarshalJSON renders the date without its time component.
func (o Occurrence) MarshalJSON() ([]byte, error) {
	return json.Marshal(occurrenceJSON{
		Date:     o.Date.Format(DateLayout),
		Category: o.Category,
		Points:   o.Points,
		Episode:  o.Episode,
	})
}

// UnmarshalJSON parses the form produced by MarshalJSON.
func (o *Occurrence) UnmarshalJSON(data []byte) error {
	var raw occurrenceJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode occurrence: %w", err)
	}
	d, err := time.Parse(DateLayout, raw.Date)
	if err != nil {
		return fmt.Errorf("decode occurrence date: %w", err)
	}
	*o = Occurrence{Date: d, Category: raw.Category, Points: raw.Points, Episode: raw.Episode}
	return nil
}

// Record is an assembled song. It is never mutated after New returns.
type Record struct {
	title       string
	performer   string
	lyrics      string
	occurrences []Occurrence
}

// New assembles a Record. Quote characters are stripped from the title and
// the occurrence slice is copied.
func New(title, performer, lyrics string, occurrences []Occurrence) Record {
	occ := make([]Occurrence, len(occurrences))
	copy(occ, occurrences)
	for i := range occ {
		occ[i].Date = civil(occ[i].Date)
	}
	return Record{
		title:       strings.ReplaceAll(title, `"`, ""),
		performer:   performer,
		lyrics:      lyrics,
		occurrences: occ,
	}
}

// Title returns the canonical page title.
func (r Record) Title() string { return r.title }

// Performer returns the performer, possibly empty.
func (r Record) Performer() string { return r.performer }

// Lyrics returns the normalized lyrics.
func (r Record) Lyrics() string { return r.lyrics }

// Occurrences returns a copy of the occurrence list.
func (r Record) Occurrences() []Occurrence {
	out := make([]Occurrence, len(r.occurrences))
	copy(out, r.occurrences)
	return out
}

// Len returns the number of occurrences.
func (r Record) Len() int { return len(r.occurrences) }

func (r Record) String() string {
	return fmt.Sprintf("song %q (%d occurrences)", r.title, len(r.occurrences))
}

type recordJSON struct {
	Title       string       `json:"title"`
	Performer   string       `json:"performer"`
	Lyrics      string       `json:"lyrics"`
	Occurrences []Occurrence `json:"occurrences"`
}

// MarshalJSON exposes the record to stream consumers.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordJSON{
		Title:       r.title,
		Performer:   r.performer,
		Lyrics:      r.lyrics,
		Occurrences: r.occurrences,
	})
}

// UnmarshalJSON rebuilds a Record through New.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw recordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	*r = New(raw.Title, raw.Performer, raw.Lyrics, raw.Occurrences)
	return nil
}

func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
