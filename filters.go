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

	"github.com/gobwas/glob"
	"github.com/temoto/robotstxt"
)

// urlFilter decides whether a discovered link is followed.
// The domain/extension rule always applies; path globs and robots.txt are opt-in.
type urlFilter struct {
	baseDomain string
	include    []glob.Glob
	exclude    []glob.Glob
	robots     *robotstxt.Group
}

func newURLFilter(baseDomain string, include, exclude []string) (*urlFilter, error) {
	f := &urlFilter{baseDomain: baseDomain}
	for _, pattern := range include {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("include pattern %q: %w", pattern, err)
		}
		f.include = append(f.include, g)
	}
	for _, pattern := range exclude {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("exclude pattern %q: %w", pattern, err)
		}
		f.exclude = append(f.exclude, g)
	}
	return f, nil
}

// Allow reports whether rawURL should be crawled
func (f *urlFilter) Allow(rawURL string) bool {
	if !IsInScope(rawURL, f.baseDomain) {
		return false
	}
	if len(f.include) == 0 && len(f.exclude) == 0 && f.robots == nil {
		return true
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	p := u.Path
	if p == "" {
		p = "/"
	}

	for _, g := range f.exclude {
		if g.Match(p) {
			return false
		}
	}
	if len(f.include) > 0 {
		matched := false
		for _, g := range f.include {
			if g.Match(p) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	if f.robots != nil && !f.robots.Test(u.RequestURI()) {
		return false
	}
	return true
}

// loadRobots fetches /robots.txt of baseURL and returns the rules for userAgent
func loadRobots(ctx context.Context, client *http.Client, baseURL, userAgent string) (*robotstxt.Group, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	robotsURL := base.ResolveReference(&url.URL{Path: "/robots.txt"}).String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, err
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", robotsURL, err)
	}
	defer resp.Body.Close()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", robotsURL, err)
	}
	return data.FindGroup(userAgent), nil
}
