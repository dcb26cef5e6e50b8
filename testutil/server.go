// Copyright 2025 Agentic World, LLC (Sherin Thomas)
//
// This file includes modifications to code originally developed by Adam Tauber,
// licensed under the Apache License, Version 2.0.
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

// Package testutil provides shared test utilities for doccrawl tests.
// This includes a small documentation site served over HTTP.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// Test data shared across tests
var (
	// LongParagraph pushes a <main> region past the main-content length threshold
	LongParagraph = strings.Repeat("This page documents part of the system in enough words to count as real content. ", 3)

	IndexHTML = `<!DOCTYPE html>
<html>
<head><title>Docs Home</title></head>
<body>
<nav><a href="/">Home</a></nav>
<main>
<h1>Welcome</h1>
<p>` + LongParagraph + `</p>
<a href="/guide/intro">Introduction</a>
<a href='guide/setup.html'>Setup</a>
<a href="/api#top">API</a>
<a href="https://external.example.org/page">Elsewhere</a>
<a href="/downloads/guide.pdf">PDF</a>
</main>
</body>
</html>
`
	IntroHTML = `<!DOCTYPE html>
<html>
<head><title>Introduction</title></head>
<body>
<main>
<h1>Introduction</h1>
<p>` + LongParagraph + `</p>
<a href="/">Back</a>
<a href="/guide/setup.html">Next</a>
<a href="/private/notes">Notes</a>
</main>
</body>
</html>
`
	SetupHTML = `<!DOCTYPE html>
<html>
<head><title>Setup</title></head>
<body>
<div class="sidebar"><a href="/guide/intro">Introduction</a></div>
<article>Short setup page.</article>
</body>
</html>
`
	APIHTML = `<!DOCTYPE html>
<html>
<head><title>API Reference</title></head>
<body>
<div class="documentation">
<h1>API</h1>
<p>` + LongParagraph + `</p>
<a href="/broken">Broken</a>
</div>
</body>
</html>
`
	PrivateHTML = `<!DOCTYPE html>
<html><head><title>Private</title></head><body><p>notes</p></body></html>
`
	OrphanHTML = `<!DOCTYPE html>
<html><head><title>Orphan</title></head><body><main><p>` + LongParagraph + `</p></main></body></html>
`
	RobotsFile = `
User-agent: *
Disallow: /private
`
)

// DocsSite is a documentation site fixture backed by httptest.
//
// Reachable from "/" by links: /, /guide/intro, /guide/setup.html, /api,
// /private/notes and /broken (which answers 500). /orphan is only listed in
// the sitemap. robots.txt disallows /private.
type DocsSite struct {
	*httptest.Server

	mu   sync.Mutex
	hits map[string]int
}

// NewDocsSite starts the fixture server. Callers must Close it.
func NewDocsSite() *DocsSite {
	site := &DocsSite{hits: make(map[string]int)}
	mux := http.NewServeMux()

	page := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(body))
		}
	}

	mux.HandleFunc("/{$}", page(IndexHTML))
	mux.HandleFunc("/guide/intro", page(IntroHTML))
	mux.HandleFunc("/guide/setup.html", page(SetupHTML))
	mux.HandleFunc("/api", page(APIHTML))
	mux.HandleFunc("/private/notes", page(PrivateHTML))
	mux.HandleFunc("/orphan", page(OrphanHTML))

	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte(RobotsFile))
	})

	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
<sitemap><loc>http://%s/sitemap-pages.xml</loc></sitemap>
</sitemapindex>
`, r.Host)
	})

	mux.HandleFunc("/sitemap-pages.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
<url><loc>http://%[1]s/</loc></url>
<url><loc>http://%[1]s/orphan</loc></url>
<url><loc>https://external.example.org/sitemapped</loc></url>
</urlset>
`, r.Host)
	})

	site.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		site.mu.Lock()
		site.hits[r.URL.Path]++
		site.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	return site
}

// Hits returns how many requests were served for path
func (s *DocsSite) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}
