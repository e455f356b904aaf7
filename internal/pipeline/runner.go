package pipeline

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/JakeFAU/noplp-songs/internal/extract"
	"github.com/JakeFAU/noplp-songs/internal/metrics"
	"github.com/JakeFAU/noplp-songs/internal/scrapeerr"
	"github.com/JakeFAU/noplp-songs/internal/song"
)

// Publisher emits a payload to a topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// Config controls Runner behavior.
type Config struct {
	Concurrency int
	// Topic receives one message per record when a Publisher is set.
	Topic string
}

// Failure is a page that produced no record.
type Failure struct {
	Page string
	Kind scrapeerr.Kind
	Err  error
}

// Result is the outcome of a batch run.
type Result struct {
	RunID    string
	Records  []song.Record
	Failures []Failure
}

// CountByKind returns the number of failures per kind.
func (r Result) CountByKind() map[scrapeerr.Kind]int {
	counts := make(map[scrapeerr.Kind]int)
	for _, f := range r.Failures {
		counts[f.Kind]++
	}
	return counts
}

// RecordMessage is the payload published for each record.
type RecordMessage struct {
	RunID  string      `json:"run_id"`
	Record song.Record `json:"record"`
}

// Attributes labels the message for subscribers that filter by run.
func (m RecordMessage) Attributes() map[string]string {
	return map[string]string{"run_id": m.RunID, "title": m.Record.Title()}
}

// Runner processes a batch of pages with bounded concurrency.
type Runner struct {
	pipeline  *Pipeline
	publisher Publisher
	cfg       Config
	logger    *zap.Logger
}

// NewRunner constructs a Runner. The publisher may be nil.
func NewRunner(p *Pipeline, publisher Publisher, cfg Config, logger *zap.Logger) *Runner {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		pipeline:  p,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger,
	}
}

// Run processes every page. A failing page is recorded and never stops the
// others; only context cancellation ends the run early. Records and failures
// are sorted by title.
func (r *Runner) Run(ctx context.Context, runID string, pages []string) (Result, error) {
	var (
		mu  sync.Mutex
		res = Result{RunID: runID}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Concurrency)
	for _, page := range pages {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			rec, err := r.pipeline.Process(gctx, page)
			if err != nil {
				if gctx.Err() != nil {
					return nil
				}
				r.logFailure(runID, page, err)
				mu.Lock()
				res.Failures = append(res.Failures, Failure{Page: page, Kind: scrapeerr.KindOf(err), Err: err})
				mu.Unlock()
				return nil
			}
			r.observe(rec)
			r.publish(gctx, runID, rec)
			mu.Lock()
			res.Records = append(res.Records, rec)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return res, fmt.Errorf("run canceled: %w", err)
	}

	sort.Slice(res.Records, func(i, j int) bool { return res.Records[i].Title() < res.Records[j].Title() })
	sort.Slice(res.Failures, func(i, j int) bool { return res.Failures[i].Page < res.Failures[j].Page })
	return res, nil
}

func (r *Runner) logFailure(runID, page string, err error) {
	kind := scrapeerr.KindOf(err)
	metrics.ObservePage(kind.String())
	fields := []zap.Field{
		zap.String("run_id", runID),
		zap.String("page", page),
		zap.String("kind", kind.String()),
		zap.Error(err),
	}
	switch {
	case scrapeerr.IsTransport(err):
		r.logger.Debug("Page skipped after connection failure", fields...)
	case kind == scrapeerr.KindNotASongPage:
		r.logger.Debug("Page is not a song page", fields...)
	default:
		r.logger.Warn("Page extraction failed", fields...)
	}
}

func (r *Runner) observe(rec song.Record) {
	metrics.ObservePage("ok")
	for _, occ := range rec.Occurrences() {
		category := occ.Category
		if !extract.IsCanonicalCategory(category) {
			category = "other"
		}
		metrics.ObserveOccurrence(category)
	}
}

func (r *Runner) publish(ctx context.Context, runID string, rec song.Record) {
	if r.publisher == nil || r.cfg.Topic == "" {
		return
	}
	id, err := r.publisher.Publish(ctx, r.cfg.Topic, RecordMessage{RunID: runID, Record: rec})
	if err != nil {
		r.logger.Error("Failed to publish record",
			zap.String("run_id", runID),
			zap.String("page", rec.Title()),
			zap.Error(err),
		)
		return
	}
	r.logger.Debug("Published record",
		zap.String("page", rec.Title()),
		zap.String("message_id", id),
	)
}
