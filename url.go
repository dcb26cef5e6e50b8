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
	"net/url"
	"path"
	"strings"

	whatwgUrl "github.com/nlnwa/whatwg-url/url"
)

var urlParser = whatwgUrl.NewParser(whatwgUrl.WithPercentEncodeSinglePercentSign())

// deniedExtensions lists path suffixes that are never crawled (binaries and static assets)
var deniedExtensions = []string{".pdf", ".zip", ".exe", ".jpg", ".png", ".gif", ".css", ".js"}

// parseCanonical runs rawURL through the WHATWG parser and hands back the
// result as a net/url value. The WHATWG pass lowercases the host, drops
// default ports and turns an empty path into "/", which makes
// "http://example.com" and "http://example.com/" the same page.
func parseCanonical(rawURL string) (*url.URL, error) {
	parsed, err := urlParser.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, err
	}
	return url.Parse(parsed.String())
}

// Canonicalize reduces a URL to scheme://host/path[?query]. The fragment is
// dropped, so "/page#a" and "/page#b" identify the same page.
func Canonicalize(rawURL string) (string, error) {
	u, err := parseCanonical(rawURL)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(u.Scheme)
	b.WriteString("://")
	b.WriteString(u.Host)
	b.WriteString(u.EscapedPath())
	if u.RawQuery != "" {
		b.WriteByte('?')
		b.WriteString(u.RawQuery)
	}
	return b.String(), nil
}

// BaseDomain returns the host (with port, if any) that scopes a crawl rooted at rawURL
func BaseDomain(rawURL string) (string, error) {
	u, err := parseCanonical(rawURL)
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", ErrInvalidBaseURL
	}
	return u.Host, nil
}

// IsInScope reports whether rawURL is an http(s) URL on exactly baseDomain whose
// path does not end in a denied extension. Subdomains are out of scope.
// Malformed URLs are out of scope.
func IsInScope(rawURL, baseDomain string) bool {
	u, err := parseCanonical(rawURL)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	if u.Host != baseDomain {
		return false
	}
	return !hasDeniedExtension(u.Path)
}

func hasDeniedExtension(p string) bool {
	ext := strings.ToLower(path.Ext(p))
	if ext == "" {
		return false
	}
	for _, denied := range deniedExtensions {
		if ext == denied {
			return true
		}
	}
	return false
}
