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
	"html"
	"regexp"
	"sort"
	"strings"
)

// anchorHrefPattern matches href values of anchor tags in raw markup.
// Anchors whose href is unquoted are not matched.
var anchorHrefPattern = regexp.MustCompile(`(?i)<a\s+[^>]*href=["']([^"']*)["'][^>]*>`)

// ExtractLinks scans markup for anchor hrefs, resolves them against currentURL
// and returns the canonical form of every link accepted by inScope.
// The result is deduplicated and sorted. Hrefs that cannot be resolved are skipped.
func ExtractLinks(markup, currentURL string, inScope func(string) bool) []string {
	seen := make(map[string]struct{})
	for _, match := range anchorHrefPattern.FindAllStringSubmatch(markup, -1) {
		href := strings.TrimSpace(html.UnescapeString(match[1]))
		if href == "" {
			continue
		}

		ref, err := urlParser.ParseRef(currentURL, href)
		if err != nil {
			continue
		}
		absolute := ref.Href(false)

		if inScope != nil && !inScope(absolute) {
			continue
		}

		canonical, err := Canonicalize(absolute)
		if err != nil {
			continue
		}
		seen[canonical] = struct{}{}
	}

	links := make([]string, 0, len(seen))
	for link := range seen {
		links = append(links, link)
	}
	sort.Strings(links)
	return links
}
