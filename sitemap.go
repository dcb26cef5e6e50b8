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
	"net/http"
	"net/url"
	"strings"

	"github.com/antchfx/xmlquery"
)

// maxSitemapDepth bounds how many levels of sitemap indexes are followed
const maxSitemapDepth = 2

// defaultSitemapURLs returns the conventional sitemap location for baseURL
func defaultSitemapURLs(baseURL string) []string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}
	return []string{base.ResolveReference(&url.URL{Path: "/sitemap.xml"}).String()}
}

// fetchSitemapURLs returns the page URLs listed in the sitemap at sitemapURL,
// following <sitemapindex> entries up to maxSitemapDepth levels
func fetchSitemapURLs(ctx context.Context, client *http.Client, userAgent, sitemapURL string) ([]string, error) {
	return fetchSitemap(ctx, client, userAgent, sitemapURL, 0)
}

func fetchSitemap(ctx context.Context, client *http.Client, userAgent, sitemapURL string, depth int) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sitemapURL, nil)
	if err != nil {
		return nil, err
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", sitemapURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: %w: %d", sitemapURL, ErrHTTPStatus, resp.StatusCode)
	}

	doc, err := xmlquery.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", sitemapURL, err)
	}

	var urls []string
	for _, loc := range xmlquery.Find(doc, "//urlset/url/loc") {
		if u := strings.TrimSpace(loc.InnerText()); u != "" {
			urls = append(urls, u)
		}
	}

	if depth < maxSitemapDepth {
		for _, loc := range xmlquery.Find(doc, "//sitemapindex/sitemap/loc") {
			child := strings.TrimSpace(loc.InnerText())
			if child == "" {
				continue
			}
			nested, err := fetchSitemap(ctx, client, userAgent, child, depth+1)
			if err != nil {
				continue
			}
			urls = append(urls, nested...)
		}
	}
	return urls, nil
}
