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
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// MainContentSelectors are tried in order to locate the main content region
// of a documentation page
var MainContentSelectors = []string{
	"main",
	"[role='main']",
	".content",
	".documentation",
	".doc-content",
	".main-content",
	"#content",
	".container",
	"article",
}

// minMainContentLength is the trimmed length a candidate region must exceed to be accepted
const minMainContentLength = 100

// ExtractMainContent returns the inner markup of the first selector in
// MainContentSelectors whose content is long enough, falling back to the body.
// ok is false only when not even the body could be read; callers then use the
// full document markup instead.
//
// The selectors run against the live page, i.e. after scripts have executed.
func ExtractMainContent(ctx context.Context, page Page) (content string, ok bool) {
	for _, selector := range MainContentSelectors {
		html, found, err := page.InnerHTML(ctx, selector)
		if err != nil || !found {
			continue
		}
		if len(strings.TrimSpace(html)) > minMainContentLength {
			return html, true
		}
	}

	body, found, err := page.InnerHTML(ctx, "body")
	if err != nil || !found {
		return "", false
	}
	return body, true
}

// selectInnerHTML evaluates selector against a parsed document the same way a
// browser's querySelector would: first match only.
func selectInnerHTML(doc *goquery.Document, selector string) (string, bool, error) {
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return "", false, nil
	}
	html, err := sel.Html()
	if err != nil {
		return "", false, err
	}
	return html, true, nil
}
