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
	"fmt"
	"log"
	"time"
)

// LoadState is a page lifecycle milestone a Page can wait for
type LoadState string

const (
	// LoadStateDOMContentLoaded is reached once the document has been parsed
	LoadStateDOMContentLoaded LoadState = "domcontentloaded"
	// LoadStateNetworkIdle is reached once the page has had no network activity for a short while
	LoadStateNetworkIdle LoadState = "networkidle"
)

// Browser is a rendering engine shared by all workers of a crawl session.
// Implementations must allow NewPage and Page.Close to be called concurrently.
type Browser interface {
	// NewPage opens a fresh, isolated page (tab). Pages are never reused across URLs.
	NewPage(ctx context.Context) (Page, error)
	// Close shuts the browser down. Pages still open are closed with it.
	Close() error
}

// Page is a single browser tab
type Page interface {
	// Goto navigates to url and waits for the network to go idle, giving up after timeout
	Goto(ctx context.Context, url string, timeout time.Duration) error
	// WaitForState blocks until the page reaches state
	WaitForState(ctx context.Context, state LoadState) error
	// Title returns the document title
	Title(ctx context.Context) (string, error)
	// Content returns the serialized markup of the whole document
	Content(ctx context.Context) (string, error)
	// InnerHTML returns the inner markup of the first element matching the CSS
	// selector. found is false when nothing matches.
	InnerHTML(ctx context.Context, selector string) (html string, found bool, err error)
	// Close releases the tab
	Close() error
}

// Renderer names a Browser implementation
type Renderer string

const (
	// RendererChromedp drives headless Chrome, so JavaScript-built pages are crawled as rendered
	RendererChromedp Renderer = "chromedp"
	// RendererStatic fetches pages over plain HTTP without executing JavaScript
	RendererStatic Renderer = "static"
)

// LaunchBrowser starts the Browser selected by cfg.Renderer
func LaunchBrowser(ctx context.Context, cfg *Config, logger *log.Logger) (Browser, error) {
	switch cfg.Renderer {
	case RendererChromedp, "":
		b, err := launchChromedpBrowser(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return b, nil
	case RendererStatic:
		return newStaticBrowser(cfg), nil
	default:
		return nil, fmt.Errorf("%w: unknown renderer %q", ErrBrowserLaunch, cfg.Renderer)
	}
}
