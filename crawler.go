// Copyright 2025 Agentic World, LLC (Sherin Thomas)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package doccrawl mirrors a documentation site to disk.
//
// A Crawler starts from a base URL, renders pages in a shared headless browser
// with a bounded pool of workers, keeps the main content region of every page
// and follows links that stay on the same host. Each page is written as an
// HTML file plus a JSON metadata sidecar under the output directory.
package doccrawl

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/agentberlin/doccrawl/storage"
	"golang.org/x/sync/semaphore"
)

var (
	// ErrMissingBaseURL is returned when the configuration has no base URL
	ErrMissingBaseURL = errors.New("base URL is required")
	// ErrInvalidBaseURL is returned when the base URL cannot scope a crawl
	ErrInvalidBaseURL = errors.New("invalid base URL")
	// ErrBrowserLaunch is returned when the rendering backend cannot be started
	ErrBrowserLaunch = errors.New("browser launch failed")
	// ErrAlreadyCrawled is returned when Crawl is called a second time on the same Crawler
	ErrAlreadyCrawled = errors.New("crawler has already been run")
	// ErrFrontierDrained is returned by Frontier.Pop once there is no work left
	ErrFrontierDrained = errors.New("frontier drained")
	// ErrIdleTimeout is returned by Frontier.Pop when no URL arrived in time
	ErrIdleTimeout = errors.New("timed out waiting for frontier")
	// ErrHTTPStatus is returned for error responses
	ErrHTTPStatus = errors.New("unexpected HTTP status")
	// ErrNotHTML is returned when a response is not an HTML document
	ErrNotHTML = errors.New("response is not HTML")
	// ErrPageNotLoaded is returned when a page is read before Goto succeeded
	ErrPageNotLoaded = errors.New("page not loaded")
)

// pollInterval is how often the coordinator checks whether the crawl is over
const pollInterval = 100 * time.Millisecond

// PageResult describes the outcome of one claimed URL
type PageResult struct {
	// URL is the canonical URL that was claimed
	URL string
	// Title is the page title (empty on error)
	Title string
	// Path is the content file the page was written to (empty on error)
	Path string
	// LinksCount is the number of in-scope links found on the page
	LinksCount int
	// ContentHash is the xxhash of the saved content
	ContentHash string
	// FetchedAt is when the fetch completed
	FetchedAt time.Time
	// Error is set when the page could not be fetched or saved
	Error error
}

// OnPageCrawledFunc is called once for every claimed URL, after it has been fetched and saved or has failed.
// It may be called concurrently from several workers.
type OnPageCrawledFunc func(*PageResult)

// CrawlStats summarizes a crawl session
type CrawlStats struct {
	TotalPages      int    `json:"total_pages"`
	OutputDirectory string `json:"output_directory"`
	BaseURL         string `json:"base_url"`
}

// BrowserLauncher starts the Browser used for a crawl session
type BrowserLauncher func(ctx context.Context) (Browser, error)

// Option configures a Crawler
type Option func(*Crawler)

// WithLogger sets the logger for progress and per-page errors
func WithLogger(logger *log.Logger) Option {
	return func(c *Crawler) {
		c.logger = logger
	}
}

// WithStorage replaces the in-memory visited set
func WithStorage(s storage.Storage) Option {
	return func(c *Crawler) {
		c.storage = s
	}
}

// WithBrowserLauncher replaces the Browser selected by Config.Renderer
func WithBrowserLauncher(launch BrowserLauncher) Option {
	return func(c *Crawler) {
		c.launch = launch
	}
}

// Crawler coordinates one crawl session
type Crawler struct {
	cfg        *Config
	baseURL    string
	baseDomain string

	logger   *log.Logger
	storage  storage.Storage
	frontier *Frontier
	filter   *urlFilter
	gate     *semaphore.Weighted
	launch   BrowserLauncher

	// claimMu makes the budget check and the visited-set insert one step
	claimMu sync.Mutex

	onPageCrawled OnPageCrawledFunc
	mutex         sync.RWMutex

	started atomic.Bool
}

// New creates a Crawler for cfg. cfg is validated and completed with defaults.
func New(cfg *Config, opts ...Option) (*Crawler, error) {
	if cfg == nil {
		return nil, ErrMissingBaseURL
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	baseURL, err := Canonicalize(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	baseDomain, err := BaseDomain(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	filter, err := newURLFilter(baseDomain, cfg.IncludePaths, cfg.ExcludePaths)
	if err != nil {
		return nil, err
	}

	c := &Crawler{
		cfg:        cfg,
		baseURL:    baseURL,
		baseDomain: baseDomain,
		logger:     log.New(os.Stderr, "[doccrawl] ", log.LstdFlags),
		storage:    storage.NewInMemoryStorage(),
		frontier:   NewFrontier(),
		filter:     filter,
		gate:       semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.launch == nil {
		c.launch = func(ctx context.Context) (Browser, error) {
			return LaunchBrowser(ctx, c.cfg, c.logger)
		}
	}
	if err := c.storage.Init(); err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	return c, nil
}

// SetOnPageCrawled registers a callback invoked for every claimed URL
func (c *Crawler) SetOnPageCrawled(f OnPageCrawledFunc) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.onPageCrawled = f
}

// Crawl runs the session to completion. Per-page failures are logged and
// skipped; an error is returned only when the session itself cannot continue
// (output directory, browser launch, cancellation of ctx).
func (c *Crawler) Crawl(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return ErrAlreadyCrawled
	}

	writer, err := NewWriter(c.cfg.OutputDir)
	if err != nil {
		return err
	}

	browser, err := c.launch(ctx)
	if err != nil {
		if errors.Is(err, ErrBrowserLaunch) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrBrowserLaunch, err)
	}
	defer func() {
		if err := browser.Close(); err != nil {
			c.logger.Printf("Error closing browser: %v", err)
		}
	}()

	if c.cfg.RespectRobotsTxt {
		robots, err := loadRobots(ctx, c.cfg.httpClient(), c.baseURL, c.cfg.UserAgent)
		if err != nil {
			c.logger.Printf("Ignoring robots.txt: %v", err)
		} else {
			c.filter.robots = robots
		}
	}

	fetcher := &browserFetcher{
		browser: browser,
		timeout: c.cfg.NavigationTimeout,
		inScope: c.filter.Allow,
	}

	c.frontier.Push(c.baseURL)
	if c.cfg.UseSitemap {
		for _, u := range c.sitemapSeeds(ctx) {
			c.frontier.Push(u)
		}
	}

	pool := NewWorkerPool(ctx, c.cfg.MaxConcurrent)
	pool.Start(func(ctx context.Context, id int) error {
		return c.worker(ctx, fetcher, writer)
	})

	c.waitForDrain(pool.Context())

	// Stop dispatching; workers finish the page they hold and exit
	c.frontier.Close()
	err = pool.Wait()

	total, _ := c.storage.VisitedCount()
	c.logger.Printf("Crawling completed. Total pages: %d", total)

	if err != nil {
		return err
	}
	return ctx.Err()
}

// waitForDrain polls until the frontier is drained or the page budget has been reached
func (c *Crawler) waitForDrain(ctx context.Context) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		if c.frontier.Drained() || c.budgetReached() {
			return
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}

func (c *Crawler) budgetReached() bool {
	if c.cfg.MaxPages <= 0 {
		return false
	}
	n, _ := c.storage.VisitedCount()
	return n >= c.cfg.MaxPages
}

// worker pulls URLs until the frontier is drained or closed
func (c *Crawler) worker(ctx context.Context, fetcher PageFetcher, writer *Writer) error {
	for {
		url, err := c.frontier.Pop(ctx, c.cfg.IdleTimeout)
		switch {
		case err == nil:
		case errors.Is(err, ErrIdleTimeout):
			// another worker is still fetching and may yet push links
			continue
		case errors.Is(err, ErrFrontierDrained):
			return nil
		default:
			return err
		}

		err = c.crawlPage(ctx, fetcher, writer, url)
		c.frontier.Done()
		if err != nil {
			return err
		}
	}
}

// claim marks url as visited unless it already was or the budget is spent.
// It returns whether the caller owns url and the visited count afterwards.
func (c *Crawler) claim(url string) (bool, int) {
	c.claimMu.Lock()
	defer c.claimMu.Unlock()

	count, err := c.storage.VisitedCount()
	if err != nil {
		c.logger.Printf("Error reading visited count: %v", err)
		return false, count
	}
	if c.cfg.MaxPages > 0 && count >= c.cfg.MaxPages {
		return false, count
	}

	visited, err := c.storage.VisitIfNotVisited(url)
	if err != nil {
		c.logger.Printf("Error marking %s visited: %v", url, err)
		return false, count
	}
	if visited {
		return false, count
	}
	return true, count + 1
}

// crawlPage fetches, saves and expands one URL inside the concurrency gate.
// Only cancellation of ctx is returned as an error.
func (c *Crawler) crawlPage(ctx context.Context, fetcher PageFetcher, writer *Writer, url string) error {
	if err := c.gate.Acquire(ctx, 1); err != nil {
		return err
	}
	defer c.gate.Release(1)

	owned, total := c.claim(url)
	if !owned {
		return nil
	}
	c.logger.Printf("Crawling: %s (Total: %d)", url, total)

	rec, err := fetcher.Fetch(ctx, url)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.Printf("Error fetching %s: %v", url, err)
		c.notify(&PageResult{URL: url, Error: err})
		return nil
	}

	result := &PageResult{
		URL:         rec.URL,
		Title:       rec.Title,
		LinksCount:  len(rec.Links),
		ContentHash: ContentHash(rec.Content),
		FetchedAt:   rec.FetchedAt,
	}
	path, err := writer.Save(rec)
	if err != nil {
		c.logger.Printf("Error saving %s: %v", url, err)
		result.Error = err
	}
	result.Path = path

	for _, link := range rec.Links {
		if visited, err := c.storage.IsVisited(link); err == nil && !visited {
			c.frontier.Push(link)
		}
	}
	c.notify(result)

	if c.cfg.Delay > 0 {
		timer := time.NewTimer(c.cfg.Delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (c *Crawler) notify(result *PageResult) {
	c.mutex.RLock()
	f := c.onPageCrawled
	c.mutex.RUnlock()
	if f != nil {
		f(result)
	}
}

// sitemapSeeds returns the in-scope canonical URLs listed in the site's sitemaps
func (c *Crawler) sitemapSeeds(ctx context.Context) []string {
	sitemaps := c.cfg.SitemapURLs
	if len(sitemaps) == 0 {
		sitemaps = defaultSitemapURLs(c.baseURL)
	}

	var seeds []string
	for _, sm := range sitemaps {
		urls, err := fetchSitemapURLs(ctx, c.cfg.httpClient(), c.cfg.UserAgent, sm)
		if err != nil {
			c.logger.Printf("Skipping sitemap %s: %v", sm, err)
			continue
		}
		for _, u := range urls {
			if !c.filter.Allow(u) {
				continue
			}
			if canonical, err := Canonicalize(u); err == nil {
				seeds = append(seeds, canonical)
			}
		}
	}
	return seeds
}

// VisitedURLs returns a snapshot of the canonical URLs claimed so far
func (c *Crawler) VisitedURLs() []string {
	urls, err := c.storage.VisitedURLs()
	if err != nil {
		c.logger.Printf("Error reading visited URLs: %v", err)
		return nil
	}
	return urls
}

// Stats returns the session summary. It may be called at any time.
func (c *Crawler) Stats() CrawlStats {
	total, _ := c.storage.VisitedCount()
	dir := c.cfg.OutputDir
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return CrawlStats{
		TotalPages:      total,
		OutputDirectory: dir,
		BaseURL:         c.cfg.BaseURL,
	}
}
