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
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// fakeSite maps canonical URLs to full HTML documents
type fakeSite map[string]string

// fakeBrowser serves documents from a fakeSite and counts navigations per URL
type fakeBrowser struct {
	site fakeSite
	// latency is added to every Goto so fetches overlap
	latency time.Duration

	mu       sync.Mutex
	gotos    map[string]int
	open     atomic.Int32
	maxOpen  atomic.Int32
	closed   atomic.Bool
	newPages atomic.Int32
}

func newFakeBrowser(site fakeSite) *fakeBrowser {
	return &fakeBrowser{site: site, gotos: make(map[string]int)}
}

func (b *fakeBrowser) launcher() BrowserLauncher {
	return func(ctx context.Context) (Browser, error) {
		return b, nil
	}
}

func (b *fakeBrowser) NewPage(ctx context.Context) (Page, error) {
	b.newPages.Add(1)
	n := b.open.Add(1)
	for {
		max := b.maxOpen.Load()
		if n <= max || b.maxOpen.CompareAndSwap(max, n) {
			break
		}
	}
	return &fakePage{browser: b}, nil
}

func (b *fakeBrowser) Close() error {
	b.closed.Store(true)
	return nil
}

func (b *fakeBrowser) gotoCount(url string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.gotos[url]
}

func (b *fakeBrowser) totalGotos() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	total := 0
	for _, n := range b.gotos {
		total += n
	}
	return total
}

type fakePage struct {
	browser *fakeBrowser
	doc     *goquery.Document
	markup  string
	closed  bool
}

func (p *fakePage) Goto(ctx context.Context, url string, timeout time.Duration) error {
	p.browser.mu.Lock()
	p.browser.gotos[url]++
	p.browser.mu.Unlock()

	if p.browser.latency > 0 {
		select {
		case <-time.After(p.browser.latency):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	markup, ok := p.browser.site[url]
	if !ok {
		return fmt.Errorf("goto %s: %w: 404", url, ErrHTTPStatus)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return err
	}
	p.doc = doc
	p.markup = markup
	return nil
}

func (p *fakePage) WaitForState(ctx context.Context, state LoadState) error {
	if p.doc == nil {
		return ErrPageNotLoaded
	}
	return nil
}

func (p *fakePage) Title(ctx context.Context) (string, error) {
	if p.doc == nil {
		return "", ErrPageNotLoaded
	}
	return p.doc.Find("title").First().Text(), nil
}

func (p *fakePage) Content(ctx context.Context) (string, error) {
	if p.doc == nil {
		return "", ErrPageNotLoaded
	}
	return p.markup, nil
}

func (p *fakePage) InnerHTML(ctx context.Context, selector string) (string, bool, error) {
	if p.doc == nil {
		return "", false, ErrPageNotLoaded
	}
	return selectInnerHTML(p.doc, selector)
}

func (p *fakePage) Close() error {
	if !p.closed {
		p.closed = true
		p.browser.open.Add(-1)
	}
	return nil
}

// selectorPage answers InnerHTML from a fixed selector map
type selectorPage struct {
	regions map[string]string
	failing map[string]bool
}

func (p *selectorPage) Goto(context.Context, string, time.Duration) error { return nil }
func (p *selectorPage) WaitForState(context.Context, LoadState) error { return nil }
func (p *selectorPage) Title(context.Context) (string, error) { return "", nil }
func (p *selectorPage) Content(context.Context) (string, error) { return "", nil }
func (p *selectorPage) Close() error { return nil }

func (p *selectorPage) InnerHTML(ctx context.Context, selector string) (string, bool, error) {
	if p.failing[selector] {
		return "", false, errors.New("evaluation failed")
	}
	html, ok := p.regions[selector]
	return html, ok, nil
}
