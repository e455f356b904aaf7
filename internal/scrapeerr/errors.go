// Package scrapeerr defines the closed set of failures a song page can
// produce between fetch and record assembly.
package scrapeerr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies one distinguishable failure cause.
type Kind int

// Failure kinds, in pipeline order.
const (
	KindUnknown Kind = iota
	KindFetch
	KindNotASongPage
	KindSingerMissing
	KindLyricsMissing
	KindDatesSectionMissing
	KindDateLinesMissing
	KindDateNotFound
	KindDateUnparsable
	KindPointsCategoryMissing
	KindEmissionNumberMissing
)

var kindNames = map[Kind]string{
	KindUnknown:               "unknown",
	KindFetch:                 "fetch_error",
	KindNotASongPage:          "not_a_song_page",
	KindSingerMissing:         "singer_missing",
	KindLyricsMissing:         "lyrics_missing",
	KindDatesSectionMissing:   "dates_section_missing",
	KindDateLinesMissing:      "date_lines_missing",
	KindDateNotFound:          "date_not_found",
	KindDateUnparsable:        "date_unparsable",
	KindPointsCategoryMissing: "points_category_missing",
	KindEmissionNumberMissing: "emission_number_missing",
}

// String returns the snake_case label used in logs and metrics.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Kinds lists every known failure kind except KindUnknown.
func Kinds() []Kind {
	return []Kind{
		KindFetch,
		KindNotASongPage,
		KindSingerMissing,
		KindLyricsMissing,
		KindDatesSectionMissing,
		KindDateLinesMissing,
		KindDateNotFound,
		KindDateUnparsable,
		KindPointsCategoryMissing,
		KindEmissionNumberMissing,
	}
}

// Error is the single error type surfaced by the scraping pipeline.
type Error struct {
	Kind Kind
	// Page is the page identifier (or title once known).
	Page string
	// Status carries the HTTP status for KindFetch, 0 when no response arrived.
	Status int
	// Transport is set when the fetch failed below HTTP (connection refused, reset).
	Transport bool
	// Detail is the offending text fragment, if any.
	Detail string
	Err    error
}

// Sentinels for errors.Is comparisons. They match any *Error of the same Kind.
var (
	ErrFetch                 = &Error{Kind: KindFetch}
	ErrNotASongPage          = &Error{Kind: KindNotASongPage}
	ErrSingerMissing         = &Error{Kind: KindSingerMissing}
	ErrLyricsMissing         = &Error{Kind: KindLyricsMissing}
	ErrDatesSectionMissing   = &Error{Kind: KindDatesSectionMissing}
	ErrDateLinesMissing      = &Error{Kind: KindDateLinesMissing}
	ErrDateNotFound          = &Error{Kind: KindDateNotFound}
	ErrDateUnparsable        = &Error{Kind: KindDateUnparsable}
	ErrPointsCategoryMissing = &Error{Kind: KindPointsCategoryMissing}
	ErrEmissionNumberMissing = &Error{Kind: KindEmissionNumberMissing}
)

// New builds an Error of the given kind with an optional text fragment.
func New(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

// Fetch builds a KindFetch error for page with the transport status.
func Fetch(page string, status int, err error) *Error {
	return &Error{Kind: KindFetch, Page: page, Status: status, Err: err}
}

// Error implements error.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Page != "" {
		fmt.Fprintf(&b, " page=%q", e.Page)
	}
	if e.Status != 0 {
		fmt.Fprintf(&b, " status=%d", e.Status)
	}
	if e.Detail != "" {
		fmt.Fprintf(&b, " near %q", e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// WithPage returns a copy of e scoped to page. Existing page names are kept.
func (e *Error) WithPage(page string) *Error {
	cp := *e
	if cp.Page == "" {
		cp.Page = page
	}
	return &cp
}

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindUnknown
}

// IsTransport reports whether err is a fetch failure that never reached HTTP.
func IsTransport(err error) bool {
	var se *Error
	return errors.As(err, &se) && se.Kind == KindFetch && se.Transport
}
