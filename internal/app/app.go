// Package app initializes and holds long-lived application services, acting
// as the dependency injection container of the CLI commands.
package app

import (
	"context"
	"fmt"
	"path"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/noplp-songs/internal/api"
	"github.com/JakeFAU/noplp-songs/internal/clock/system"
	"github.com/JakeFAU/noplp-songs/internal/config"
	"github.com/JakeFAU/noplp-songs/internal/export"
	"github.com/JakeFAU/noplp-songs/internal/extract"
	collyfetcher "github.com/JakeFAU/noplp-songs/internal/fetcher/colly"
	"github.com/JakeFAU/noplp-songs/internal/id/uuid"
	"github.com/JakeFAU/noplp-songs/internal/metrics"
	"github.com/JakeFAU/noplp-songs/internal/pipeline"
	"github.com/JakeFAU/noplp-songs/internal/policy/ratelimit"
	gcppublisher "github.com/JakeFAU/noplp-songs/internal/publisher/pubsub"
	"github.com/JakeFAU/noplp-songs/internal/storage"
)

// App holds the services shared by the commands. Clients that reach cloud
// services are opened by the operations that need them.
type App struct {
	cfg      config.Config
	logger   *zap.Logger
	fetcher  *collyfetcher.Fetcher
	pipeline *pipeline.Pipeline
	ids      *uuid.Generator
	ops      *api.Server
	clock    Clock
}

// Clock supplies run timestamps.
type Clock interface {
	Now() time.Time
}

// Report is the outcome of a scrape run.
type Report struct {
	Pages   []string
	Result  pipeline.Result
	Exports export.Written
}

// New wires the fetch and extraction services from cfg. It opens no network
// connection.
func New(cfg config.Config, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics.Init()
	gate := ratelimit.New(ratelimit.Config{RPS: cfg.RateLimit.RPS, Burst: cfg.RateLimit.Burst})
	fetcher := collyfetcher.New(collyfetcher.Config{
		PageEndpoint:  cfg.Wiki.PageEndpoint,
		APIEndpoint:   cfg.Wiki.APIEndpoint,
		UserAgent:     cfg.Wiki.UserAgent,
		Timeout:       cfg.Wiki.RequestTimeout,
		RetryCooldown: cfg.Wiki.RetryCooldown,
	}, gate, logger)
	extractor := extract.New(extract.Options{SingerRequired: cfg.Scrape.SingerRequired})

	return &App{
		cfg:      cfg,
		logger:   logger,
		fetcher:  fetcher,
		pipeline: pipeline.New(fetcher, extractor, logger),
		ids:      uuid.New(),
		ops:      api.NewServer(logger),
		clock:    system.New(),
	}
}

// Config returns the loaded configuration.
func (a *App) Config() config.Config {
	return a.cfg
}

// Logger returns the shared zap logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Pipeline returns the single-page pipeline.
func (a *App) Pipeline() *pipeline.Pipeline {
	return a.pipeline
}

// Ops returns the operations server.
func (a *App) Ops() *api.Server {
	return a.ops
}

// DiscoverPages lists the song pages linked from the configured index pages,
// applying the exclusion list and sample size.
func (a *App) DiscoverPages(ctx context.Context) ([]string, error) {
	var titles []string
	for _, index := range a.cfg.Wiki.IndexPages {
		links, err := a.fetcher.Backlinks(ctx, index)
		if err != nil {
			return nil, fmt.Errorf("list backlinks of %q: %w", index, err)
		}
		a.logger.Info("Listed index page", zap.String("index", index), zap.Int("pages", len(links)))
		titles = append(titles, links...)
	}
	return pipeline.SelectPages(titles, a.cfg.Scrape.ExcludePages, a.cfg.Scrape.Sample, nil), nil
}

// Scrape runs the batch over pages, streams records when publishing is
// enabled and exports the tables under <prefix>/<run_id>/.
func (a *App) Scrape(ctx context.Context, pages []string) (Report, error) {
	runID, err := a.ids.NewID()
	if err != nil {
		return Report{}, err
	}
	started := a.clock.Now()
	logger := a.logger.With(zap.String("run_id", runID))

	store, closeStore, err := storage.Open(ctx, storage.Config{
		Provider: a.cfg.Output.Provider,
		Dir:      a.cfg.Output.Dir,
		Bucket:   a.cfg.Output.GCSBucket,
	}, logger)
	if err != nil {
		return Report{}, err
	}
	defer func() {
		if cerr := closeStore(); cerr != nil {
			logger.Warn("Failed to close blob store", zap.Error(cerr))
		}
	}()

	var publisher pipeline.Publisher
	if a.cfg.Publish.Enabled {
		pub, err := gcppublisher.Dial(ctx, a.cfg.Publish.ProjectID)
		if err != nil {
			return Report{}, err
		}
		defer func() {
			if cerr := pub.Close(); cerr != nil {
				logger.Warn("Failed to close publisher", zap.Error(cerr))
			}
		}()
		publisher = pub
	}

	runner := pipeline.NewRunner(a.pipeline, publisher, pipeline.Config{
		Concurrency: a.cfg.Scrape.Concurrency,
		Topic:       a.cfg.Publish.Topic,
	}, logger)

	logger.Info("Scrape started", zap.Int("pages", len(pages)))
	res, err := runner.Run(ctx, runID, pages)
	if err != nil {
		return Report{Pages: pages, Result: res}, err
	}

	written, err := export.Write(ctx, store, path.Join(a.cfg.Output.Prefix, runID), res.Records, pages)
	if err != nil {
		return Report{Pages: pages, Result: res}, fmt.Errorf("export tables: %w", err)
	}

	report := Report{Pages: pages, Result: res, Exports: written}
	a.ops.RecordRun(Summarize(report, started, a.clock.Now()))
	logger.Info("Scrape finished",
		zap.Int("records", len(res.Records)),
		zap.Int("failures", len(res.Failures)),
		zap.Any("failures_by_kind", report.FailureCounts()),
		zap.Any("exports", written),
	)
	return report, nil
}

// FailureCounts returns the failures per kind name.
func (r Report) FailureCounts() map[string]int {
	counts := make(map[string]int)
	for kind, n := range r.Result.CountByKind() {
		counts[kind.String()] = n
	}
	return counts
}

// Summarize converts a report into the ops server run summary.
func Summarize(r Report, started, finished time.Time) api.RunSummary {
	return api.RunSummary{
		RunID:      r.Result.RunID,
		StartedAt:  started,
		FinishedAt: finished,
		Pages:      len(r.Pages),
		Records:    len(r.Result.Records),
		Failures:   r.FailureCounts(),
		Exports:    r.Exports,
	}
}

// Close flushes the logger.
func (a *App) Close() {
	// Sync fails on terminals; there is nothing left to report it to.
	_ = a.logger.Sync()
}
