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

package store

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := NewStoreForTesting(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestNewStore_MissingDirectory(t *testing.T) {
	_, err := NewStoreForTesting(filepath.Join(t.TempDir(), "missing", "test.db"))
	assert.Error(t, err)
}

func TestCrawlLifecycle(t *testing.T) {
	st := newTestStore(t)
	started := time.Unix(1700000000, 0)

	crawl, err := st.CreateCrawl("https://docs.example.com/", "/tmp/out", started)
	require.NoError(t, err)
	assert.NotZero(t, crawl.ID)
	assert.Equal(t, CrawlStatusRunning, crawl.Status)

	require.NoError(t, st.RecordPage(crawl.ID, &CrawledPage{
		URL:        "https://docs.example.com/",
		Title:      "Home",
		Path:       "/tmp/out/index.html",
		LinksCount: 3,
		FetchedAt:  started.Unix(),
	}))
	require.NoError(t, st.RecordPage(crawl.ID, &CrawledPage{
		URL:   "https://docs.example.com/broken",
		Error: "unexpected HTTP status: 500",
	}))

	require.NoError(t, st.FinishCrawl(crawl.ID, CrawlStatusCompleted, 2, "", started.Add(time.Minute)))

	got, err := st.GetCrawl(crawl.ID)
	require.NoError(t, err)
	assert.Equal(t, CrawlStatusCompleted, got.Status)
	assert.Equal(t, 2, got.TotalPages)
	assert.Equal(t, 1, got.FailedPages)
	assert.Equal(t, started.Add(time.Minute).Unix(), got.FinishedAt)

	pages, err := st.GetCrawlPages(crawl.ID)
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, "Home", pages[0].Title)
	assert.False(t, pages[0].Failed())
	assert.True(t, pages[1].Failed())
}

func TestGetCrawl_NotFound(t *testing.T) {
	st := newTestStore(t)

	_, err := st.GetCrawl(42)
	assert.ErrorIs(t, err, ErrCrawlNotFound)

	err = st.FinishCrawl(42, CrawlStatusFailed, 0, "boom", time.Now())
	assert.ErrorIs(t, err, ErrCrawlNotFound)
}

func TestListCrawls_NewestFirst(t *testing.T) {
	st := newTestStore(t)
	base := time.Unix(1700000000, 0)

	for i := 0; i < 3; i++ {
		_, err := st.CreateCrawl(fmt.Sprintf("https://docs%d.example.com/", i), "out", base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, err)
	}

	crawls, err := st.ListCrawls(0)
	require.NoError(t, err)
	require.Len(t, crawls, 3)
	assert.Equal(t, "https://docs2.example.com/", crawls[0].BaseURL)
	assert.Equal(t, "https://docs0.example.com/", crawls[2].BaseURL)

	crawls, err = st.ListCrawls(2)
	require.NoError(t, err)
	assert.Len(t, crawls, 2)
}

func TestRecordPage_Concurrent(t *testing.T) {
	st := newTestStore(t)
	crawl, err := st.CreateCrawl("https://docs.example.com/", "out", time.Now())
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- st.RecordPage(crawl.ID, &CrawledPage{URL: fmt.Sprintf("https://docs.example.com/p%d", i)})
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	pages, err := st.GetCrawlPages(crawl.ID)
	require.NoError(t, err)
	assert.Len(t, pages, 20)
}

func TestDeleteCrawl(t *testing.T) {
	st := newTestStore(t)
	crawl, err := st.CreateCrawl("https://docs.example.com/", "out", time.Now())
	require.NoError(t, err)
	require.NoError(t, st.RecordPage(crawl.ID, &CrawledPage{URL: "https://docs.example.com/"}))

	require.NoError(t, st.DeleteCrawl(crawl.ID))

	_, err = st.GetCrawl(crawl.ID)
	assert.ErrorIs(t, err, ErrCrawlNotFound)
	pages, err := st.GetCrawlPages(crawl.ID)
	require.NoError(t, err)
	assert.Empty(t, pages)

	assert.ErrorIs(t, st.DeleteCrawl(crawl.ID), ErrCrawlNotFound)
}
