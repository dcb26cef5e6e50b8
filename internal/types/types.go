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

package types

// CrawlProgress is emitted after each page of an active crawl
type CrawlProgress struct {
	CrawlID      uint   `json:"crawlId"`
	URL          string `json:"url"`
	PagesCrawled int    `json:"pagesCrawled"`
	Error        string `json:"error,omitempty"`
}

// CrawlInfo summarizes one crawl session
type CrawlInfo struct {
	ID            uint   `json:"id"`
	BaseURL       string `json:"baseUrl"`
	OutputDir     string `json:"outputDir"`
	Status        string `json:"status"`
	CrawlDateTime int64  `json:"crawlDateTime"`
	CrawlDuration int64  `json:"crawlDuration"` // Seconds, 0 while running
	PagesCrawled  int    `json:"pagesCrawled"`
	PagesFailed   int    `json:"pagesFailed"`
	Error         string `json:"error,omitempty"`
}

// CrawlResult is the outcome of a single page
type CrawlResult struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Path        string `json:"path,omitempty"`
	LinksCount  int    `json:"linksCount"`
	ContentHash string `json:"contentHash,omitempty"`
	Error       string `json:"error,omitempty"`
}

// CrawlResultDetailed represents a crawl with all its pages
type CrawlResultDetailed struct {
	CrawlInfo CrawlInfo     `json:"crawlInfo"`
	Results   []CrawlResult `json:"results"`
}
