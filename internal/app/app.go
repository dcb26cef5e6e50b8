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

// Package app runs crawl sessions and records their history. It is shared by
// the command line and MCP front ends.
package app

import (
	"errors"
	"io"
	"log"
	"os"
	"os/exec"
	"runtime"

	"github.com/agentberlin/doccrawl"
	"github.com/agentberlin/doccrawl/internal/store"
)

// ErrChromeNotFound is returned by CheckSystemHealth when the chromedp renderer has no browser to drive
var ErrChromeNotFound = errors.New("google Chrome or Chromium is required for the chromedp renderer but was not found; install it, set CHROME_EXECUTABLE_PATH, or use --renderer static")

// App represents the core application logic
type App struct {
	store   *store.Store
	emitter EventEmitter
	logger  *log.Logger
}

// NewApp creates a new App. st may be nil, in which case no history is recorded.
func NewApp(st *store.Store, emitter EventEmitter, logger *log.Logger) *App {
	if emitter == nil {
		emitter = &NoOpEmitter{}
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	return &App{
		store:   st,
		emitter: emitter,
		logger:  logger,
	}
}

// Store returns the history store, or nil when history is disabled
func (a *App) Store() *store.Store {
	return a.store
}

// CheckSystemHealth checks that the selected renderer can run on this machine
func (a *App) CheckSystemHealth(renderer doccrawl.Renderer) error {
	if renderer != doccrawl.RendererChromedp && renderer != "" {
		return nil
	}
	if !isChromeBrowserAvailable() {
		return ErrChromeNotFound
	}
	return nil
}

// isChromeBrowserAvailable checks if Chrome or Chromium is available
func isChromeBrowserAvailable() bool {
	if customPath := os.Getenv("CHROME_EXECUTABLE_PATH"); customPath != "" {
		if _, err := os.Stat(customPath); err == nil {
			return true
		}
	}

	var chromePaths []string
	switch runtime.GOOS {
	case "darwin":
		chromePaths = []string{
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
			"/Applications/Chromium.app/Contents/MacOS/Chromium",
			os.Getenv("HOME") + "/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
		}
	case "windows":
		chromePaths = []string{
			os.Getenv("ProgramFiles") + "\\Google\\Chrome\\Application\\chrome.exe",
			os.Getenv("ProgramFiles(x86)") + "\\Google\\Chrome\\Application\\chrome.exe",
			os.Getenv("LocalAppData") + "\\Google\\Chrome\\Application\\chrome.exe",
		}
	case "linux":
		chromePaths = []string{
			"/usr/bin/google-chrome",
			"/usr/bin/chromium",
			"/usr/bin/chromium-browser",
			"/snap/bin/chromium",
		}
	}

	for _, path := range chromePaths {
		if _, err := os.Stat(path); err == nil {
			return true
		}
	}

	for _, name := range []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser", "headless-shell"} {
		if _, err := exec.LookPath(name); err == nil {
			return true
		}
	}
	return false
}
