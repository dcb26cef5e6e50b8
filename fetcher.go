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

package doccrawl

import (
	"context"
	"fmt"
	"time"
)

// PageRecord is the result of one successful fetch. It belongs to the worker
// that produced it until it has been persisted.
type PageRecord struct {
	// URL is the canonical URL of the page
	URL string
	// Title is the document title, possibly empty
	Title string
	// Content is the main content region, or the whole document when no region could be read
	Content string
	// Links are the canonical in-scope URLs found on the page
	Links []string
	// FetchedAt is when the fetch completed
	FetchedAt time.Time
}

// PageFetcher loads a single URL into a PageRecord
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*PageRecord, error)
}

// browserFetcher fetches pages through a shared Browser, one fresh tab per URL
type browserFetcher struct {
	browser Browser
	timeout time.Duration
	inScope func(string) bool
}

// Fetch navigates a new tab to url and builds the page record.
// The tab is closed before returning, whether or not the fetch succeeded.
func (f *browserFetcher) Fetch(ctx context.Context, url string) (*PageRecord, error) {
	page, err := f.browser.NewPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	defer page.Close()

	if err := page.Goto(ctx, url, f.timeout); err != nil {
		return nil, err
	}
	// A second gate in case navigation settled before the DOM did
	if err := page.WaitForState(ctx, LoadStateDOMContentLoaded); err != nil {
		return nil, err
	}

	title, err := page.Title(ctx)
	if err != nil {
		return nil, fmt.Errorf("read title: %w", err)
	}
	document, err := page.Content(ctx)
	if err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}

	links := ExtractLinks(document, url, f.inScope)

	content, ok := ExtractMainContent(ctx, page)
	if !ok {
		content = document
	}

	return &PageRecord{
		URL:       url,
		Title:     title,
		Content:   content,
		Links:     links,
		FetchedAt: time.Now(),
	}, nil
}
