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
	"net/http"
	"testing"
	"time"

	"github.com/agentberlin/doccrawl/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStaticBrowser(mock *testutil.MockTransport) *staticBrowser {
	cfg := NewDefaultConfig("https://docs.example.com/")
	cfg.HTTPClient = &http.Client{Transport: mock}
	return newStaticBrowser(cfg)
}

func TestStaticPage_Lifecycle(t *testing.T) {
	mock := testutil.NewMockTransport()
	mock.RegisterHTML("https://docs.example.com/", "text/html; charset=utf-8", []byte(
		`<html><head><title> Home </title></head><body><main><p>hi</p></main></body></html>`))

	b := newMockStaticBrowser(mock)
	ctx := context.Background()

	page, err := b.NewPage(ctx)
	require.NoError(t, err)

	_, err = page.Title(ctx)
	assert.ErrorIs(t, err, ErrPageNotLoaded)

	require.NoError(t, page.Goto(ctx, "https://docs.example.com/", time.Second))
	require.NoError(t, page.WaitForState(ctx, LoadStateNetworkIdle))

	title, err := page.Title(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Home", title)

	html, found, err := page.InnerHTML(ctx, "main")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "<p>hi</p>", html)

	_, found, err = page.InnerHTML(ctx, "article")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, page.Close())
	_, err = page.Content(ctx)
	assert.ErrorIs(t, err, ErrPageNotLoaded)
}

func TestStaticPage_SendsUserAgent(t *testing.T) {
	site := testutil.NewDocsSite()
	defer site.Close()

	var got string
	cfg := NewDefaultConfig(site.URL)
	cfg.UserAgent = "doccrawl-test"
	cfg.HTTPClient = &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		got = r.Header.Get("User-Agent")
		return http.DefaultTransport.RoundTrip(r)
	})}

	page, err := newStaticBrowser(cfg).NewPage(context.Background())
	require.NoError(t, err)
	require.NoError(t, page.Goto(context.Background(), site.URL+"/", time.Second))
	assert.Equal(t, "doccrawl-test", got)
}

func TestStaticPage_Errors(t *testing.T) {
	mock := testutil.NewMockTransport()
	mock.RegisterResponse("https://docs.example.com/gone", &testutil.MockResponse{StatusCode: http.StatusGone})
	mock.RegisterHTML("https://docs.example.com/data.json", "application/json", []byte(`{}`))
	mock.RegisterError("https://docs.example.com/down", errors.New("connection refused"))

	b := newMockStaticBrowser(mock)
	ctx := context.Background()

	page, _ := b.NewPage(ctx)
	assert.ErrorIs(t, page.Goto(ctx, "https://docs.example.com/gone", time.Second), ErrHTTPStatus)

	page, _ = b.NewPage(ctx)
	assert.ErrorIs(t, page.Goto(ctx, "https://docs.example.com/missing", time.Second), ErrHTTPStatus)

	page, _ = b.NewPage(ctx)
	assert.ErrorIs(t, page.Goto(ctx, "https://docs.example.com/data.json", time.Second), ErrNotHTML)

	page, _ = b.NewPage(ctx)
	err := page.Goto(ctx, "https://docs.example.com/down", time.Second)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestStaticBrowser_NewPageAfterCancel(t *testing.T) {
	b := newMockStaticBrowser(testutil.NewMockTransport())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := b.NewPage(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDecodeBody(t *testing.T) {
	// "Café" in ISO-8859-1
	latin1 := []byte("<html><head><title>Caf\xe9</title></head><body></body></html>")

	t.Run("declared charset", func(t *testing.T) {
		out := decodeBody(latin1, "text/html; charset=iso-8859-1")
		assert.Contains(t, out, "Café")
	})

	t.Run("meta charset", func(t *testing.T) {
		body := []byte(`<html><head><meta charset="iso-8859-1"><title>Caf` + "\xe9" + `</title></head></html>`)
		out := decodeBody(body, "text/html")
		assert.Contains(t, out, "Café")
	})

	t.Run("utf-8 passthrough", func(t *testing.T) {
		body := []byte("<html><head><title>Café</title></head></html>")
		out := decodeBody(body, "text/html; charset=utf-8")
		assert.Equal(t, string(body), out)
	})
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}
