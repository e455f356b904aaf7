// Package pipeline runs song pages through fetch, normalization,
// classification and extraction.
package pipeline

import (
	"context"

	"go.uber.org/zap"

	collyfetcher "github.com/JakeFAU/noplp-songs/internal/fetcher/colly"
	"github.com/JakeFAU/noplp-songs/internal/extract"
	"github.com/JakeFAU/noplp-songs/internal/hash/sha256"
	"github.com/JakeFAU/noplp-songs/internal/scrapeerr"
	"github.com/JakeFAU/noplp-songs/internal/song"
	"github.com/JakeFAU/noplp-songs/internal/wikitext"
)

// Fetcher retrieves the source of one page.
type Fetcher interface {
	FetchPage(ctx context.Context, page string) (collyfetcher.Document, error)
}

// Pipeline turns one page name into a record.
type Pipeline struct {
	fetcher   Fetcher
	extractor *extract.Extractor
	hasher    *sha256.Hasher
	logger    *zap.Logger
}

// New constructs a Pipeline.
func New(fetcher Fetcher, extractor *extract.Extractor, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		fetcher:   fetcher,
		extractor: extractor,
		hasher:    sha256.New(),
		logger:    logger,
	}
}

// Process fetches page and extracts its record. Pages without the song page
// markers fail with scrapeerr.KindNotASongPage before any extraction.
func (p *Pipeline) Process(ctx context.Context, page string) (song.Record, error) {
	doc, err := p.fetcher.FetchPage(ctx, page)
	if err != nil {
		return song.Record{}, err
	}
	text := wikitext.Normalize(doc.Source)
	if !wikitext.IsSongPage(text) {
		return song.Record{}, scrapeerr.New(scrapeerr.KindNotASongPage, "").WithPage(doc.Title)
	}
	p.logger.Debug("Extracting song page",
		zap.String("page", doc.Title),
		zap.String("source_sha256", p.hasher.HashString(doc.Source)),
	)
	return p.extractor.Extract(extract.Page{Title: doc.Title, Text: text})
}
