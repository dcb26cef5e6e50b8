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
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// innerHTMLScript looks up a selector without waiting for it to appear,
// unlike chromedp.InnerHTML which blocks until the node exists
const innerHTMLScript = `(function(sel) {
	const el = document.querySelector(sel);
	return el ? {found: true, html: el.innerHTML} : {found: false, html: ""};
})(%s)`

// chromedpBrowser is one headless Chrome process shared by every worker of a session
type chromedpBrowser struct {
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	opTimeout     time.Duration
}

// launchChromedpBrowser starts Chrome and blocks until it is ready to open tabs.
// A failure here is fatal for the crawl session.
func launchChromedpBrowser(ctx context.Context, cfg *Config, logger *log.Logger) (*chromedpBrowser, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
	)
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)

	// chromedp is chatty about CDP events it cannot decode; only surface that in verbose mode
	logf := func(string, ...interface{}) {}
	if cfg.Verbose && logger != nil {
		logf = logger.Printf
	}
	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(logf),
		chromedp.WithErrorf(logf),
	)

	// The first Run allocates the browser; its context must not carry a timeout
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("%w: %v", ErrBrowserLaunch, err)
	}

	return &chromedpBrowser{
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		opTimeout:     cfg.NavigationTimeout,
	}, nil
}

// NewPage opens a new tab in the shared browser
func (b *chromedpBrowser) NewPage(ctx context.Context) (Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tabCtx, cancel := chromedp.NewContext(b.browserCtx)
	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		return nil, fmt.Errorf("open tab: %w", err)
	}

	return &chromedpPage{
		ctx:       tabCtx,
		cancel:    cancel,
		opTimeout: b.opTimeout,
		idle:      make(chan struct{}),
	}, nil
}

// Close shuts Chrome down
func (b *chromedpBrowser) Close() error {
	err := chromedp.Cancel(b.browserCtx)
	b.browserCancel()
	b.allocCancel()
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("close browser: %w", err)
	}
	return nil
}

// chromedpPage is a single tab. Cancelling its context closes the tab.
type chromedpPage struct {
	ctx       context.Context
	cancel    context.CancelFunc
	opTimeout time.Duration

	idleOnce sync.Once
	idle     chan struct{}
}

// run executes actions in the tab, bounded by timeout and by the caller's ctx
func (p *chromedpPage) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if timeout <= 0 {
		timeout = p.opTimeout
	}
	runCtx, cancel := context.WithTimeout(p.ctx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

// Goto navigates and waits for the main frame's networkIdle lifecycle event
func (p *chromedpPage) Goto(ctx context.Context, url string, timeout time.Duration) error {
	runCtx, cancel := context.WithTimeout(p.ctx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var (
		mu        sync.Mutex
		mainFrame cdp.FrameID
	)
	chromedp.ListenTarget(runCtx, func(ev interface{}) {
		e, ok := ev.(*page.EventLifecycleEvent)
		if !ok {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		switch e.Name {
		case "init":
			// the main document initializes before any of its iframes
			if mainFrame == "" {
				mainFrame = e.FrameID
			}
		case "networkIdle":
			if mainFrame != "" && e.FrameID == mainFrame {
				p.idleOnce.Do(func() { close(p.idle) })
			}
		}
	})

	if err := chromedp.Run(runCtx,
		page.SetLifecycleEventsEnabled(true),
		chromedp.Navigate(url),
	); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}

	select {
	case <-p.idle:
		return nil
	case <-runCtx.Done():
		return fmt.Errorf("wait for network idle on %s: %w", url, runCtx.Err())
	}
}

// WaitForState blocks until the tab reaches state
func (p *chromedpPage) WaitForState(ctx context.Context, state LoadState) error {
	switch state {
	case LoadStateNetworkIdle:
		waitCtx, cancel := context.WithTimeout(ctx, p.opTimeout)
		defer cancel()
		select {
		case <-p.idle:
			return nil
		case <-waitCtx.Done():
			return fmt.Errorf("wait for %s: %w", state, waitCtx.Err())
		}
	case LoadStateDOMContentLoaded:
		if err := p.run(ctx, 0, chromedp.WaitReady("body", chromedp.ByQuery)); err != nil {
			return fmt.Errorf("wait for %s: %w", state, err)
		}
		return nil
	default:
		return fmt.Errorf("unknown load state %q", state)
	}
}

// Title returns document.title
func (p *chromedpPage) Title(ctx context.Context) (string, error) {
	var title string
	if err := p.run(ctx, 0, chromedp.Title(&title)); err != nil {
		return "", err
	}
	return title, nil
}

// Content returns the current serialization of the whole document
func (p *chromedpPage) Content(ctx context.Context) (string, error) {
	var html string
	if err := p.run(ctx, 0, chromedp.Evaluate(`document.documentElement.outerHTML`, &html)); err != nil {
		return "", err
	}
	return html, nil
}

// InnerHTML evaluates document.querySelector(selector).innerHTML in the tab
func (p *chromedpPage) InnerHTML(ctx context.Context, selector string) (string, bool, error) {
	quoted, err := json.Marshal(selector)
	if err != nil {
		return "", false, err
	}

	var res struct {
		Found bool   `json:"found"`
		HTML  string `json:"html"`
	}
	if err := p.run(ctx, 0, chromedp.Evaluate(fmt.Sprintf(innerHTMLScript, quoted), &res)); err != nil {
		return "", false, fmt.Errorf("query %s: %w", selector, err)
	}
	return res.HTML, res.Found, nil
}

// Close closes the tab
func (p *chromedpPage) Close() error {
	p.cancel()
	return nil
}
