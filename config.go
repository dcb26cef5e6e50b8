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
	"fmt"
	"net/http"
	"time"
)

// Default values applied by NewDefaultConfig and by Validate for zero fields
const (
	DefaultOutputDir         = "crawled_docs"
	DefaultMaxConcurrent     = 10
	DefaultDelay             = 100 * time.Millisecond
	DefaultNavigationTimeout = 30 * time.Second
	DefaultIdleTimeout       = 5 * time.Second
	DefaultUserAgent         = "doccrawl/1.0"
)

// Config holds the options of a crawl session
type Config struct {
	// BaseURL is the crawl root. Its host is the only host that gets crawled.
	BaseURL string
	// OutputDir is where pages are written; created if absent
	OutputDir string
	// MaxConcurrent is both the number of workers and the cap on in-flight fetches
	MaxConcurrent int
	// Delay is the pause after each successful fetch, taken before the fetch slot is released
	Delay time.Duration
	// MaxPages caps the number of claimed URLs (0 = unlimited)
	MaxPages int

	// Renderer selects the Browser implementation (default: chromedp)
	Renderer Renderer
	// Headless runs Chrome without a window
	Headless bool
	// NavigationTimeout bounds a single page load
	NavigationTimeout time.Duration
	// IdleTimeout is how long an idle worker waits for work before re-checking whether the crawl is over
	IdleTimeout time.Duration
	// UserAgent is sent by the browser and by robots.txt/sitemap requests
	UserAgent string

	// IncludePaths, when set, restricts crawling to URL paths matching one of these glob patterns
	IncludePaths []string
	// ExcludePaths are glob patterns of URL paths that are never crawled
	ExcludePaths []string
	// RespectRobotsTxt drops URLs disallowed for UserAgent by the site's robots.txt
	RespectRobotsTxt bool
	// UseSitemap seeds the frontier from the site's sitemap in addition to BaseURL
	UseSitemap bool
	// SitemapURLs overrides the default /sitemap.xml location
	SitemapURLs []string

	// Verbose enables chromedp's protocol logging
	Verbose bool
	// HTTPClient is used by the static renderer and for robots.txt/sitemap requests
	HTTPClient *http.Client
}

// NewDefaultConfig returns a Config with sensible defaults for baseURL
func NewDefaultConfig(baseURL string) *Config {
	return &Config{
		BaseURL:           baseURL,
		OutputDir:         DefaultOutputDir,
		MaxConcurrent:     DefaultMaxConcurrent,
		Delay:             DefaultDelay,
		Renderer:          RendererChromedp,
		Headless:          true,
		NavigationTimeout: DefaultNavigationTimeout,
		IdleTimeout:       DefaultIdleTimeout,
		UserAgent:         DefaultUserAgent,
	}
}

// Validate fills zero-valued fields with defaults and rejects invalid settings
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrMissingBaseURL
	}
	if _, err := BaseDomain(c.BaseURL); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidBaseURL, c.BaseURL)
	}
	if !IsInScope(c.BaseURL, mustBaseDomain(c.BaseURL)) {
		return fmt.Errorf("%w: %s is not a crawlable http(s) page", ErrInvalidBaseURL, c.BaseURL)
	}

	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = DefaultMaxConcurrent
	}
	if c.Delay < 0 {
		return fmt.Errorf("delay must not be negative, got %s", c.Delay)
	}
	if c.MaxPages < 0 {
		return fmt.Errorf("max pages must not be negative, got %d", c.MaxPages)
	}
	if c.Renderer == "" {
		c.Renderer = RendererChromedp
	}
	if c.NavigationTimeout <= 0 {
		c.NavigationTimeout = DefaultNavigationTimeout
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = DefaultIdleTimeout
	}
	return nil
}

func (c *Config) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: c.NavigationTimeout}
}

func mustBaseDomain(rawURL string) string {
	d, _ := BaseDomain(rawURL)
	return d
}
