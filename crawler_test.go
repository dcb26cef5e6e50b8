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
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/agentberlin/doccrawl/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quietLogger = log.New(io.Discard, "", 0)

// newTestConfig returns a fast static-renderer config writing into a temp dir
func newTestConfig(t *testing.T, baseURL string) *Config {
	t.Helper()
	cfg := NewDefaultConfig(baseURL)
	cfg.OutputDir = t.TempDir()
	cfg.Renderer = RendererStatic
	cfg.Delay = 0
	cfg.MaxConcurrent = 3
	cfg.IdleTimeout = 200 * time.Millisecond
	cfg.NavigationTimeout = 5 * time.Second
	return cfg
}

// savedFiles lists files under root relative to it, using forward slashes
func savedFiles(t *testing.T, root string, ext string) []string {
	t.Helper()
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ext {
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	require.NoError(t, err)
	return files
}

func runCrawl(t *testing.T, c *Crawler) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, c.Crawl(ctx))
}

func TestCrawl_DocsSite(t *testing.T) {
	site := testutil.NewDocsSite()
	defer site.Close()

	cfg := newTestConfig(t, site.URL+"/")
	c, err := New(cfg, WithLogger(quietLogger))
	require.NoError(t, err)

	runCrawl(t, c)

	assert.Equal(t, []string{
		site.URL + "/",
		site.URL + "/api",
		site.URL + "/broken",
		site.URL + "/guide/intro",
		site.URL + "/guide/setup.html",
		site.URL + "/private/notes",
	}, c.VisitedURLs())

	assert.ElementsMatch(t, []string{
		"index.html",
		"api/index.html",
		"guide/intro/index.html",
		"guide/setup.html",
		"private/notes/index.html",
	}, savedFiles(t, cfg.OutputDir, ".html"))
	assert.ElementsMatch(t, []string{
		"index.json",
		"api/index.json",
		"guide/intro/index.json",
		"guide/setup.json",
		"private/notes/index.json",
	}, savedFiles(t, cfg.OutputDir, ".json"))

	// out-of-scope links are never requested
	assert.Equal(t, 0, site.Hits("/downloads/guide.pdf"))

	// every in-scope page is fetched exactly once
	for _, p := range []string{"/", "/guide/intro", "/guide/setup.html", "/api", "/broken"} {
		assert.Equal(t, 1, site.Hits(p), p)
	}

	stats := c.Stats()
	assert.Equal(t, 6, stats.TotalPages)
	assert.Equal(t, cfg.BaseURL, stats.BaseURL)
	assert.True(t, filepath.IsAbs(stats.OutputDirectory))
}

func TestCrawl_SavesMainContentRegion(t *testing.T) {
	site := testutil.NewDocsSite()
	defer site.Close()

	cfg := newTestConfig(t, site.URL)
	c, err := New(cfg, WithLogger(quietLogger))
	require.NoError(t, err)
	runCrawl(t, c)

	index, err := os.ReadFile(filepath.Join(cfg.OutputDir, "index.html"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(index), "<!-- Title: Docs Home -->\n<!-- URL: "+site.URL+"/ -->\n"))
	assert.Contains(t, string(index), "Welcome")
	assert.NotContains(t, string(index), "<nav>", "content outside <main> is dropped")

	// the setup page has no long region, so the whole body is kept
	setup, err := os.ReadFile(filepath.Join(cfg.OutputDir, "guide", "setup.html"))
	require.NoError(t, err)
	assert.Contains(t, string(setup), "sidebar")
	assert.Contains(t, string(setup), "Short setup page.")
}

func TestCrawl_FetchFailureIsIsolated(t *testing.T) {
	site := testutil.NewDocsSite()
	defer site.Close()

	cfg := newTestConfig(t, site.URL+"/")
	c, err := New(cfg, WithLogger(quietLogger))
	require.NoError(t, err)

	var mu sync.Mutex
	results := make(map[string]*PageResult)
	c.SetOnPageCrawled(func(r *PageResult) {
		mu.Lock()
		defer mu.Unlock()
		results[r.URL] = r
	})

	runCrawl(t, c)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, results, 6)

	broken := results[site.URL+"/broken"]
	require.NotNil(t, broken)
	assert.ErrorIs(t, broken.Error, ErrHTTPStatus)
	assert.Empty(t, broken.Path)

	intro := results[site.URL+"/guide/intro"]
	require.NotNil(t, intro)
	assert.NoError(t, intro.Error)
	assert.Equal(t, "Introduction", intro.Title)
	assert.Equal(t, 3, intro.LinksCount)
	assert.NotEmpty(t, intro.ContentHash)
	assert.FileExists(t, intro.Path)

	_, err = os.Stat(filepath.Join(cfg.OutputDir, "broken"))
	assert.True(t, os.IsNotExist(err))
}

func TestCrawl_RespectsRobotsTxt(t *testing.T) {
	site := testutil.NewDocsSite()
	defer site.Close()

	cfg := newTestConfig(t, site.URL+"/")
	cfg.RespectRobotsTxt = true
	c, err := New(cfg, WithLogger(quietLogger))
	require.NoError(t, err)
	runCrawl(t, c)

	assert.NotContains(t, c.VisitedURLs(), site.URL+"/private/notes")
	assert.Equal(t, 0, site.Hits("/private/notes"))
	assert.Len(t, c.VisitedURLs(), 5)
}

func TestCrawl_SeedsFromSitemap(t *testing.T) {
	site := testutil.NewDocsSite()
	defer site.Close()

	cfg := newTestConfig(t, site.URL+"/")
	cfg.UseSitemap = true
	c, err := New(cfg, WithLogger(quietLogger))
	require.NoError(t, err)
	runCrawl(t, c)

	visited := c.VisitedURLs()
	assert.Contains(t, visited, site.URL+"/orphan")
	assert.NotContains(t, visited, "https://external.example.org/sitemapped")
	assert.Equal(t, 1, site.Hits("/"))
	assert.FileExists(t, filepath.Join(cfg.OutputDir, "orphan", "index.html"))
}

func TestCrawl_PathGlobs(t *testing.T) {
	site := testutil.NewDocsSite()
	defer site.Close()

	cfg := newTestConfig(t, site.URL+"/")
	cfg.ExcludePaths = []string{"/guide/**"}
	c, err := New(cfg, WithLogger(quietLogger))
	require.NoError(t, err)
	runCrawl(t, c)

	assert.Equal(t, []string{
		site.URL + "/",
		site.URL + "/api",
		site.URL + "/broken",
	}, c.VisitedURLs())
}

// meshSite builds n pages that all link to each other and back to the root
func meshSite(n int) fakeSite {
	site := fakeSite{}
	var links strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&links, `<a href="/p%d">p%d</a>`, i, i)
	}
	page := func(title string) string {
		return "<html><head><title>" + title + "</title></head><body><main>" +
			strings.Repeat("content ", 20) + links.String() + `<a href="/">home</a></main></body></html>`
	}
	site["https://docs.example.com/"] = page("root")
	for i := 0; i < n; i++ {
		site[fmt.Sprintf("https://docs.example.com/p%d", i)] = page(fmt.Sprintf("p%d", i))
	}
	return site
}

func TestCrawl_EachURLFetchedAtMostOnce(t *testing.T) {
	browser := newFakeBrowser(meshSite(12))
	browser.latency = 10 * time.Millisecond

	cfg := newTestConfig(t, "https://docs.example.com/")
	cfg.MaxConcurrent = 4
	c, err := New(cfg, WithLogger(quietLogger), WithBrowserLauncher(browser.launcher()))
	require.NoError(t, err)
	runCrawl(t, c)

	visited := c.VisitedURLs()
	require.Len(t, visited, 13)
	for _, u := range visited {
		assert.Equal(t, 1, browser.gotoCount(u), u)
	}
	assert.Equal(t, 13, browser.totalGotos())
	assert.LessOrEqual(t, browser.maxOpen.Load(), int32(4))
	assert.Equal(t, int32(0), browser.open.Load(), "every tab is closed")
	assert.True(t, browser.closed.Load())
}

func TestCrawl_RespectsMaxPages(t *testing.T) {
	browser := newFakeBrowser(meshSite(12))

	cfg := newTestConfig(t, "https://docs.example.com/")
	cfg.MaxConcurrent = 4
	cfg.MaxPages = 5
	c, err := New(cfg, WithLogger(quietLogger), WithBrowserLauncher(browser.launcher()))
	require.NoError(t, err)
	runCrawl(t, c)

	assert.Len(t, c.VisitedURLs(), 5)
	assert.Equal(t, 5, browser.totalGotos())
	assert.Equal(t, 5, c.Stats().TotalPages)
}

func TestCrawl_DelayIsApplied(t *testing.T) {
	browser := newFakeBrowser(meshSite(2))

	cfg := newTestConfig(t, "https://docs.example.com/")
	cfg.MaxConcurrent = 1
	cfg.Delay = 50 * time.Millisecond
	c, err := New(cfg, WithLogger(quietLogger), WithBrowserLauncher(browser.launcher()))
	require.NoError(t, err)

	start := time.Now()
	runCrawl(t, c)

	assert.Len(t, c.VisitedURLs(), 3)
	assert.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond)
}

func TestCrawl_CancelStopsPromptly(t *testing.T) {
	browser := newFakeBrowser(meshSite(50))
	browser.latency = 200 * time.Millisecond

	cfg := newTestConfig(t, "https://docs.example.com/")
	c, err := New(cfg, WithLogger(quietLogger), WithBrowserLauncher(browser.launcher()))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(300*time.Millisecond, cancel)

	start := time.Now()
	err = c.Crawl(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Less(t, len(c.VisitedURLs()), 51)
	assert.True(t, browser.closed.Load())
}

func TestCrawl_BrowserLaunchFailure(t *testing.T) {
	cfg := newTestConfig(t, "https://docs.example.com/")
	c, err := New(cfg, WithLogger(quietLogger), WithBrowserLauncher(func(ctx context.Context) (Browser, error) {
		return nil, errors.New("no chrome")
	}))
	require.NoError(t, err)

	err = c.Crawl(context.Background())
	assert.ErrorIs(t, err, ErrBrowserLaunch)
	assert.Empty(t, c.VisitedURLs())
}

func TestCrawl_OnlyOnce(t *testing.T) {
	browser := newFakeBrowser(meshSite(1))
	cfg := newTestConfig(t, "https://docs.example.com/")
	c, err := New(cfg, WithLogger(quietLogger), WithBrowserLauncher(browser.launcher()))
	require.NoError(t, err)

	runCrawl(t, c)
	assert.ErrorIs(t, c.Crawl(context.Background()), ErrAlreadyCrawled)
}

func TestCrawl_LogsProgress(t *testing.T) {
	browser := newFakeBrowser(meshSite(1))
	var buf syncBuffer
	cfg := newTestConfig(t, "https://docs.example.com/")
	c, err := New(cfg, WithLogger(log.New(&buf, "", 0)), WithBrowserLauncher(browser.launcher()))
	require.NoError(t, err)
	runCrawl(t, c)

	out := buf.String()
	assert.Contains(t, out, "Crawling: https://docs.example.com/ (Total: 1)")
	assert.Contains(t, out, "Crawling completed. Total pages: 2")
}

func TestNew_RejectsBadConfig(t *testing.T) {
	_, err := New(&Config{})
	assert.ErrorIs(t, err, ErrMissingBaseURL)

	_, err = New(nil)
	assert.ErrorIs(t, err, ErrMissingBaseURL)

	_, err = New(NewDefaultConfig("ftp://docs.example.com/"))
	assert.ErrorIs(t, err, ErrInvalidBaseURL)

	_, err = New(NewDefaultConfig("https://docs.example.com/manual.pdf"))
	assert.ErrorIs(t, err, ErrInvalidBaseURL)

	cfg := NewDefaultConfig("https://docs.example.com/")
	cfg.ExcludePaths = []string{"[unterminated"}
	_, err = New(cfg)
	assert.Error(t, err)
}

func TestConfig_ValidateFillsDefaults(t *testing.T) {
	cfg := &Config{BaseURL: "https://docs.example.com/"}
	require.NoError(t, cfg.Validate())

	assert.Equal(t, DefaultOutputDir, cfg.OutputDir)
	assert.Equal(t, DefaultMaxConcurrent, cfg.MaxConcurrent)
	assert.Equal(t, RendererChromedp, cfg.Renderer)
	assert.Equal(t, DefaultNavigationTimeout, cfg.NavigationTimeout)
	assert.Equal(t, DefaultIdleTimeout, cfg.IdleTimeout)

	cfg.Delay = -time.Second
	assert.Error(t, cfg.Validate())

	cfg.Delay = 0
	cfg.MaxPages = -1
	assert.Error(t, cfg.Validate())
}

// syncBuffer is a goroutine-safe strings.Builder for capturing log output
type syncBuffer struct {
	mu sync.Mutex
	b  strings.Builder
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}
