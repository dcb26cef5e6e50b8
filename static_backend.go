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
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
)

// defaultMaxBodySize caps how much of a response the static backend reads
const defaultMaxBodySize = 10 * 1024 * 1024

// staticBrowser satisfies Browser with plain HTTP requests. Pages are parsed
// once with goquery; no JavaScript runs, so the live DOM is the served markup.
type staticBrowser struct {
	client      *http.Client
	userAgent   string
	maxBodySize int64
}

func newStaticBrowser(cfg *Config) *staticBrowser {
	return &staticBrowser{
		client:      cfg.httpClient(),
		userAgent:   cfg.UserAgent,
		maxBodySize: defaultMaxBodySize,
	}
}

func (b *staticBrowser) NewPage(ctx context.Context) (Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &staticPage{browser: b}, nil
}

func (b *staticBrowser) Close() error {
	b.client.CloseIdleConnections()
	return nil
}

type staticPage struct {
	browser *staticBrowser
	markup  string
	doc     *goquery.Document
}

func (p *staticPage) Goto(ctx context.Context, url string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request for %s: %w", url, err)
	}
	if p.browser.userAgent != "" {
		req.Header.Set("User-Agent", p.browser.userAgent)
	}

	resp, err := p.browser.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("fetch %s: %w: %d", url, ErrHTTPStatus, resp.StatusCode)
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.Contains(strings.ToLower(contentType), "html") {
		return fmt.Errorf("fetch %s: %w: %s", url, ErrNotHTML, contentType)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, p.browser.maxBodySize))
	if err != nil {
		return fmt.Errorf("read %s: %w", url, err)
	}

	markup := decodeBody(body, contentType)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return fmt.Errorf("parse %s: %w", url, err)
	}

	p.markup = markup
	p.doc = doc
	return nil
}

// WaitForState returns immediately once a document is loaded: a static page
// is idle and parsed as soon as Goto returns
func (p *staticPage) WaitForState(ctx context.Context, state LoadState) error {
	if p.doc == nil {
		return ErrPageNotLoaded
	}
	return ctx.Err()
}

func (p *staticPage) Title(ctx context.Context) (string, error) {
	if p.doc == nil {
		return "", ErrPageNotLoaded
	}
	return strings.TrimSpace(p.doc.Find("title").First().Text()), nil
}

func (p *staticPage) Content(ctx context.Context) (string, error) {
	if p.doc == nil {
		return "", ErrPageNotLoaded
	}
	return p.markup, nil
}

func (p *staticPage) InnerHTML(ctx context.Context, selector string) (string, bool, error) {
	if p.doc == nil {
		return "", false, ErrPageNotLoaded
	}
	return selectInnerHTML(p.doc, selector)
}

func (p *staticPage) Close() error {
	p.doc = nil
	p.markup = ""
	return nil
}

// decodeBody converts body to UTF-8. The declared charset (header or meta tag)
// wins; when there is none, chardet guesses from the bytes.
func decodeBody(body []byte, contentType string) string {
	_, label, certain := charset.DetermineEncoding(body, contentType)
	if !certain {
		if res, err := chardet.NewHtmlDetector().DetectBest(body); err == nil && res.Confidence >= 50 {
			label = res.Charset
		}
	}

	r, err := charset.NewReaderLabel(label, bytes.NewReader(body))
	if err != nil {
		return string(body)
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return string(body)
	}
	return string(decoded)
}
