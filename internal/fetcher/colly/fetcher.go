// Package collyfetcher fetches wiki page sources using gocolly.
package collyfetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/JakeFAU/noplp-songs/internal/metrics"
	"github.com/JakeFAU/noplp-songs/internal/scrapeerr"
)

// Default wiki endpoints.
const (
	DefaultPageEndpoint = "https://n-oubliez-pas-les-paroles.fandom.com/fr/rest.php/v1/page"
	DefaultAPIEndpoint  = "https://n-oubliez-pas-les-paroles.fandom.com/fr/api.php"
)

// Config controls collector behavior.
type Config struct {
	PageEndpoint  string
	APIEndpoint   string
	UserAgent     string
	Timeout       time.Duration
	RetryCooldown time.Duration
}

// Gate admits outgoing requests.
type Gate interface {
	Wait(ctx context.Context) error
}

// Document is the raw source of one wiki page.
type Document struct {
	Title  string `json:"title"`
	Source string `json:"source"`
}

// Fetcher retrieves page sources through a shared rate gate.
type Fetcher struct {
	cfg           Config
	gate          Gate
	logger        *zap.Logger
	baseCollector *colly.Collector
}

type collectorHooks interface {
	OnRequest(colly.RequestCallback)
	OnResponse(colly.ResponseCallback)
	OnError(colly.ErrorCallback)
}

// response is what one request produced.
type response struct {
	status int
	body   []byte
}

// New builds a Fetcher. A nil gate admits every request.
func New(cfg Config, gate Gate, logger *zap.Logger) *Fetcher {
	if cfg.PageEndpoint == "" {
		cfg.PageEndpoint = DefaultPageEndpoint
	}
	if cfg.APIEndpoint == "" {
		cfg.APIEndpoint = DefaultAPIEndpoint
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.RetryCooldown == 0 {
		cfg.RetryCooldown = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := colly.NewCollector(colly.Async(false))
	// Status codes are classified by the fetcher, not by colly.
	c.ParseHTTPErrorResponse = true
	c.AllowURLRevisit = true
	c.IgnoreRobotsTxt = true
	if cfg.UserAgent != "" {
		c.UserAgent = cfg.UserAgent
	}
	c.WithTransport(newHTTPTransport())
	c.SetRequestTimeout(cfg.Timeout)

	return &Fetcher{
		cfg:           cfg,
		gate:          gate,
		logger:        logger,
		baseCollector: c,
	}
}

// FetchPage returns the source of the named page.
//
// A non-200 status or an undecodable body is a fetch error. A timeout is
// retried once after the cooldown; connection failures are flagged as
// transport errors.
func (f *Fetcher) FetchPage(ctx context.Context, page string) (Document, error) {
	target := strings.TrimRight(f.cfg.PageEndpoint, "/") + "/" + url.PathEscape(page)
	resp, err := f.getWithRetry(ctx, target)
	if err != nil {
		return Document{}, f.fetchError(ctx, page, resp.status, err)
	}
	if resp.status != http.StatusOK {
		return Document{}, scrapeerr.Fetch(page, resp.status, nil)
	}
	var doc Document
	if err := json.Unmarshal(resp.body, &doc); err != nil {
		return Document{}, scrapeerr.Fetch(page, resp.status, fmt.Errorf("decode page: %w", err))
	}
	if doc.Title == "" {
		doc.Title = page
	}
	return doc, nil
}

type backlinksResponse struct {
	Continue map[string]string `json:"continue"`
	Query    struct {
		Backlinks []struct {
			Title string `json:"title"`
		} `json:"backlinks"`
	} `json:"query"`
	Error *struct {
		Code string `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
}

// Backlinks lists the titles of the pages linking to indexPage, following
// API continuation until the list is exhausted.
func (f *Fetcher) Backlinks(ctx context.Context, indexPage string) ([]string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "backlinks")
	params.Set("bltitle", indexPage)
	params.Set("bllimit", "500")
	params.Set("format", "json")

	var titles []string
	for {
		resp, err := f.getWithRetry(ctx, f.cfg.APIEndpoint+"?"+params.Encode())
		if err != nil {
			return nil, f.fetchError(ctx, indexPage, resp.status, err)
		}
		if resp.status != http.StatusOK {
			return nil, scrapeerr.Fetch(indexPage, resp.status, nil)
		}
		var payload backlinksResponse
		if err := json.Unmarshal(resp.body, &payload); err != nil {
			return nil, scrapeerr.Fetch(indexPage, resp.status, fmt.Errorf("decode backlinks: %w", err))
		}
		if payload.Error != nil {
			return nil, scrapeerr.Fetch(indexPage, resp.status,
				fmt.Errorf("backlinks api: %s: %s", payload.Error.Code, payload.Error.Info))
		}
		for _, bl := range payload.Query.Backlinks {
			titles = append(titles, bl.Title)
		}
		if len(payload.Continue) == 0 {
			return titles, nil
		}
		for key, value := range payload.Continue {
			params.Set(key, value)
		}
	}
}

func (f *Fetcher) getWithRetry(ctx context.Context, target string) (response, error) {
	resp, err := f.get(ctx, target)
	if err == nil || ctx.Err() != nil || !isTimeout(err) {
		return resp, err
	}
	f.logger.Warn("Request timed out, retrying after cooldown",
		zap.String("url", target),
		zap.Duration("cooldown", f.cfg.RetryCooldown),
		zap.Error(err),
	)
	metrics.ObserveRetry()
	timer := time.NewTimer(f.cfg.RetryCooldown)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return response{}, fmt.Errorf("retry cooldown canceled: %w", ctx.Err())
	case <-timer.C:
	}
	return f.get(ctx, target)
}

func (f *Fetcher) get(ctx context.Context, target string) (response, error) {
	if f.gate != nil {
		if err := f.gate.Wait(ctx); err != nil {
			return response{}, err
		}
	}
	var (
		result   response
		fetchErr error
	)
	start := time.Now()
	collector := f.buildCollector(ctx, &result, &fetchErr)
	err := f.runCollector(ctx, collector, target, &fetchErr)
	metrics.ObserveFetch(result.status, time.Since(start))
	return result, err
}

func (f *Fetcher) buildCollector(ctx context.Context, result *response, fetchErr *error) *colly.Collector {
	collector := f.baseCollector.Clone()
	collector.Context = ctx
	f.configureCollectorHooks(collector, result, fetchErr)
	return collector
}

func (f *Fetcher) configureCollectorHooks(hooks collectorHooks, result *response, fetchErr *error) {
	hooks.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "application/json")
	})

	hooks.OnResponse(func(r *colly.Response) {
		*result = response{
			status: r.StatusCode,
			body:   append([]byte(nil), r.Body...),
		}
	})

	hooks.OnError(func(r *colly.Response, err error) {
		if r != nil {
			result.status = r.StatusCode
		}
		*fetchErr = err
	})
}

func (f *Fetcher) runCollector(ctx context.Context, collector *colly.Collector, target string, fetchErr *error) error {
	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(target)
	}()

	select {
	case <-ctx.Done():
		// The request carries ctx, so Visit returns promptly.
		<-done
		return fmt.Errorf("colly fetch canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("colly visit failed: %w", err)
		}
		if *fetchErr != nil {
			return fmt.Errorf("colly response failed: %w", *fetchErr)
		}
		return nil
	}
}

// fetchError wraps a request failure. Caller cancellation is returned as is.
func (f *Fetcher) fetchError(ctx context.Context, page string, status int, err error) error {
	if ctx.Err() != nil {
		return err
	}
	fe := scrapeerr.Fetch(page, status, err)
	fe.Transport = isConnectionFailure(err)
	return fe
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isConnectionFailure(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr) && !opErr.Timeout()
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
