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
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// illegalFileNameChars are replaced with "_" in every path segment
var illegalFileNameChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// PageMetadata is the sidecar JSON written next to every saved page
type PageMetadata struct {
	URL        string  `json:"url"`
	Title      string  `json:"title"`
	Timestamp  float64 `json:"timestamp"`
	LinksCount int     `json:"links_count"`
}

// Writer persists page records under a root directory
type Writer struct {
	root string
}

// NewWriter returns a Writer rooted at dir, creating dir if needed
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	return &Writer{root: dir}, nil
}

// Root returns the output directory
func (w *Writer) Root() string {
	return w.root
}

// PathFor maps a page URL to the content file it is saved as:
//
//	https://x/          -> <root>/index.html
//	https://x/a/b       -> <root>/a/b/index.html
//	https://x/a/b.html  -> <root>/a/b.html
//
// The query string does not take part, so pages differing only by query share a file.
func (w *Writer) PathFor(pageURL string) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", pageURL, err)
	}

	var parts []string
	for _, segment := range strings.Split(u.EscapedPath(), "/") {
		if segment == "" {
			continue
		}
		parts = append(parts, sanitizeSegment(segment))
	}

	if len(parts) == 0 {
		return filepath.Join(w.root, "index.html"), nil
	}

	p := filepath.Join(append([]string{w.root}, parts...)...)
	if filepath.Ext(p) == "" {
		p = filepath.Join(p, "index.html")
	}
	return p, nil
}

// MetadataPath returns the sidecar path for a content file: same stem, .json extension
func MetadataPath(contentPath string) string {
	return strings.TrimSuffix(contentPath, filepath.Ext(contentPath)) + ".json"
}

// Save writes the content file and then its metadata sidecar, returning the content path.
// The two writes are independent; a crash in between leaves content without metadata.
func (w *Writer) Save(rec *PageRecord) (string, error) {
	contentPath, err := w.PathFor(rec.URL)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(contentPath), 0755); err != nil {
		return "", fmt.Errorf("create directory for %s: %w", rec.URL, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<!-- Title: %s -->\n", commentSafe(rec.Title))
	fmt.Fprintf(&b, "<!-- URL: %s -->\n", commentSafe(rec.URL))
	b.WriteString(rec.Content)
	if err := writeFileAtomic(contentPath, []byte(b.String())); err != nil {
		return "", fmt.Errorf("write content for %s: %w", rec.URL, err)
	}

	meta := PageMetadata{
		URL:        rec.URL,
		Title:      rec.Title,
		Timestamp:  float64(rec.FetchedAt.UnixNano()) / 1e9,
		LinksCount: len(rec.Links),
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode metadata for %s: %w", rec.URL, err)
	}
	if err := writeFileAtomic(MetadataPath(contentPath), data); err != nil {
		return "", fmt.Errorf("write metadata for %s: %w", rec.URL, err)
	}

	return contentPath, nil
}

func sanitizeSegment(segment string) string {
	if segment == "." || segment == ".." {
		return "_"
	}
	return illegalFileNameChars.ReplaceAllString(segment, "_")
}

// commentSafe keeps a value from terminating the HTML comment it is embedded in
func commentSafe(s string) string {
	return strings.ReplaceAll(s, "-->", "--&gt;")
}

// writeFileAtomic writes data to a temporary file next to path and renames it into place
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
