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

package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/agentberlin/doccrawl"
	"github.com/agentberlin/doccrawl/internal/store"
	"github.com/agentberlin/doccrawl/internal/types"
)

// ErrHistoryDisabled is returned by history queries when the App has no store
var ErrHistoryDisabled = errors.New("crawl history is disabled")

// CrawlOutcome is what RunCrawl reports back to the front end
type CrawlOutcome struct {
	// CrawlID is the history record of the session, 0 when history is disabled
	CrawlID     uint                `json:"crawlId,omitempty"`
	Status      string              `json:"status"`
	Stats       doccrawl.CrawlStats `json:"stats"`
	FailedPages int                 `json:"failedPages"`
	Duration    time.Duration       `json:"duration"`
}

// RunCrawl runs one crawl session to completion and records it in the history store.
// The outcome is returned even when the crawl itself fails, as long as it started.
func (a *App) RunCrawl(ctx context.Context, cfg *doccrawl.Config, opts ...doccrawl.Option) (*CrawlOutcome, error) {
	opts = append([]doccrawl.Option{doccrawl.WithLogger(a.logger)}, opts...)
	crawler, err := doccrawl.New(cfg, opts...)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	outputDir := cfg.OutputDir
	if abs, err := filepath.Abs(outputDir); err == nil {
		outputDir = abs
	}

	var crawlID uint
	if a.store != nil {
		record, err := a.store.CreateCrawl(cfg.BaseURL, outputDir, started)
		if err != nil {
			a.logger.Printf("Not recording history: %v", err)
		} else {
			crawlID = record.ID
		}
	}
	a.emitter.Emit(EventCrawlStarted, types.CrawlInfo{
		ID:            crawlID,
		BaseURL:       cfg.BaseURL,
		OutputDir:     outputDir,
		Status:        store.CrawlStatusRunning,
		CrawlDateTime: started.Unix(),
	})

	var pages, failed atomic.Int64
	crawler.SetOnPageCrawled(func(r *doccrawl.PageResult) {
		n := pages.Add(1)
		var errMsg string
		if r.Error != nil {
			failed.Add(1)
			errMsg = r.Error.Error()
		}

		if crawlID != 0 {
			page := &store.CrawledPage{
				URL:         r.URL,
				Title:       r.Title,
				Path:        r.Path,
				LinksCount:  r.LinksCount,
				ContentHash: r.ContentHash,
				Error:       errMsg,
			}
			if !r.FetchedAt.IsZero() {
				page.FetchedAt = r.FetchedAt.Unix()
			}
			if err := a.store.RecordPage(crawlID, page); err != nil {
				a.logger.Printf("Error recording %s: %v", r.URL, err)
			}
		}

		a.emitter.Emit(EventPageCrawled, types.CrawlProgress{
			CrawlID:      crawlID,
			URL:          r.URL,
			PagesCrawled: int(n),
			Error:        errMsg,
		})
	})

	crawlErr := crawler.Crawl(ctx)

	status := store.CrawlStatusCompleted
	switch {
	case crawlErr == nil:
	case errors.Is(crawlErr, context.Canceled), errors.Is(crawlErr, context.DeadlineExceeded):
		status = store.CrawlStatusCancelled
	default:
		status = store.CrawlStatusFailed
	}

	stats := crawler.Stats()
	outcome := &CrawlOutcome{
		CrawlID:     crawlID,
		Status:      status,
		Stats:       stats,
		FailedPages: int(failed.Load()),
		Duration:    time.Since(started),
	}

	if crawlID != 0 {
		var errMsg string
		if crawlErr != nil {
			errMsg = crawlErr.Error()
		}
		if err := a.store.FinishCrawl(crawlID, status, stats.TotalPages, errMsg, time.Now()); err != nil {
			a.logger.Printf("Error finishing history record: %v", err)
		}
	}
	a.emitter.Emit(EventCrawlCompleted, outcome)

	return outcome, crawlErr
}

// GetCrawls returns recent crawls, newest first
func (a *App) GetCrawls(limit int) ([]types.CrawlInfo, error) {
	if a.store == nil {
		return nil, ErrHistoryDisabled
	}
	crawls, err := a.store.ListCrawls(limit)
	if err != nil {
		return nil, err
	}

	infos := make([]types.CrawlInfo, len(crawls))
	for i := range crawls {
		infos[i] = toCrawlInfo(&crawls[i])
	}
	return infos, nil
}

// GetCrawlWithResults returns a crawl with every recorded page
func (a *App) GetCrawlWithResults(crawlID uint) (*types.CrawlResultDetailed, error) {
	if a.store == nil {
		return nil, ErrHistoryDisabled
	}
	crawl, err := a.store.GetCrawl(crawlID)
	if err != nil {
		return nil, err
	}
	pages, err := a.store.GetCrawlPages(crawlID)
	if err != nil {
		return nil, fmt.Errorf("crawl %d: %w", crawlID, err)
	}

	results := make([]types.CrawlResult, len(pages))
	for i, p := range pages {
		results[i] = types.CrawlResult{
			URL:         p.URL,
			Title:       p.Title,
			Path:        p.Path,
			LinksCount:  p.LinksCount,
			ContentHash: p.ContentHash,
			Error:       p.Error,
		}
	}

	return &types.CrawlResultDetailed{
		CrawlInfo: toCrawlInfo(crawl),
		Results:   results,
	}, nil
}

// DeleteCrawl removes a crawl and its pages from the history.
// Files already written to the output directory are left alone.
func (a *App) DeleteCrawl(crawlID uint) error {
	if a.store == nil {
		return ErrHistoryDisabled
	}
	return a.store.DeleteCrawl(crawlID)
}

func toCrawlInfo(c *store.Crawl) types.CrawlInfo {
	var duration int64
	if c.FinishedAt > 0 {
		duration = c.FinishedAt - c.StartedAt
	}
	return types.CrawlInfo{
		ID:            c.ID,
		BaseURL:       c.BaseURL,
		OutputDir:     c.OutputDir,
		Status:        c.Status,
		CrawlDateTime: c.StartedAt,
		CrawlDuration: duration,
		PagesCrawled:  c.TotalPages,
		PagesFailed:   c.FailedPages,
		Error:         c.Error,
	}
}
