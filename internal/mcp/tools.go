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

package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/agentberlin/doccrawl"
	"github.com/agentberlin/doccrawl/internal/types"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *MCPServer) registerTools() {
	s.registerCrawlSiteTool()
	s.registerGetCrawlHistoryTool()
	s.registerGetCrawlResultsTool()
}

// CrawlSiteArgs defines the input schema for crawl_site tool
type CrawlSiteArgs struct {
	URL           string   `json:"url" jsonschema:"base URL of the documentation site"`
	OutputDir     *string  `json:"outputDir,omitempty" jsonschema:"directory the pages are written to"`
	MaxPages      *int     `json:"maxPages,omitempty" jsonschema:"stop after this many pages (0 = unlimited)"`
	MaxConcurrent *int     `json:"maxConcurrent,omitempty" jsonschema:"number of pages fetched in parallel"`
	DelaySeconds  *float64 `json:"delaySeconds,omitempty" jsonschema:"pause after each page, in seconds"`
	Renderer      *string  `json:"renderer,omitempty" jsonschema:"chromedp (default) or static"`
	IncludePaths  []string `json:"includePaths,omitempty" jsonschema:"only crawl URL paths matching these globs"`
	ExcludePaths  []string `json:"excludePaths,omitempty" jsonschema:"never crawl URL paths matching these globs"`
}

// CrawlSiteResult defines the output schema for crawl_site tool
type CrawlSiteResult struct {
	Success         bool   `json:"success"`
	CrawlID         uint   `json:"crawlId,omitempty"`
	Status          string `json:"status,omitempty"`
	TotalPages      int    `json:"totalPages"`
	FailedPages     int    `json:"failedPages"`
	OutputDirectory string `json:"outputDirectory,omitempty"`
	Message         string `json:"message"`
}

func (s *MCPServer) registerCrawlSiteTool() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "crawl_site",
		Description: "Crawls a documentation site and saves the main content of every page to disk. Returns when the crawl has finished.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args CrawlSiteArgs) (*mcp.CallToolResult, CrawlSiteResult, error) {
		s.logger.Printf("Tool called: crawl_site for URL: %s", args.URL)

		cfg := s.newConfig(args.URL)
		args.apply(cfg)

		outcome, err := s.app.RunCrawl(ctx, cfg)
		if outcome == nil {
			return nil, CrawlSiteResult{
				Success: false,
				Message: fmt.Sprintf("Failed to start crawl: %v", err),
			}, nil
		}

		result := CrawlSiteResult{
			Success:         err == nil,
			CrawlID:         outcome.CrawlID,
			Status:          outcome.Status,
			TotalPages:      outcome.Stats.TotalPages,
			FailedPages:     outcome.FailedPages,
			OutputDirectory: outcome.Stats.OutputDirectory,
			Message:         fmt.Sprintf("Crawled %d pages into %s", outcome.Stats.TotalPages, outcome.Stats.OutputDirectory),
		}
		if err != nil {
			result.Message = fmt.Sprintf("Crawl %s: %v", outcome.Status, err)
		}
		return nil, result, nil
	})
}

func (a *CrawlSiteArgs) apply(cfg *doccrawl.Config) {
	cfg.BaseURL = a.URL
	if a.OutputDir != nil {
		cfg.OutputDir = *a.OutputDir
	}
	if a.MaxPages != nil {
		cfg.MaxPages = *a.MaxPages
	}
	if a.MaxConcurrent != nil {
		cfg.MaxConcurrent = *a.MaxConcurrent
	}
	if a.DelaySeconds != nil {
		cfg.Delay = time.Duration(*a.DelaySeconds * float64(time.Second))
	}
	if a.Renderer != nil {
		cfg.Renderer = doccrawl.Renderer(*a.Renderer)
	}
	if a.IncludePaths != nil {
		cfg.IncludePaths = a.IncludePaths
	}
	if a.ExcludePaths != nil {
		cfg.ExcludePaths = a.ExcludePaths
	}
}

// GetCrawlHistoryArgs defines the input schema for get_crawl_history tool
type GetCrawlHistoryArgs struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of crawls to return, newest first"`
}

// GetCrawlHistoryResult defines the output schema for get_crawl_history tool
type GetCrawlHistoryResult struct {
	Crawls []types.CrawlInfo `json:"crawls"`
}

func (s *MCPServer) registerGetCrawlHistoryTool() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_crawl_history",
		Description: "Lists previous crawl sessions, newest first",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args GetCrawlHistoryArgs) (*mcp.CallToolResult, GetCrawlHistoryResult, error) {
		crawls, err := s.app.GetCrawls(args.Limit)
		if err != nil {
			return nil, GetCrawlHistoryResult{}, err
		}
		if crawls == nil {
			crawls = []types.CrawlInfo{}
		}
		return nil, GetCrawlHistoryResult{Crawls: crawls}, nil
	})
}

// GetCrawlResultsArgs defines the input schema for get_crawl_results tool
type GetCrawlResultsArgs struct {
	CrawlID uint `json:"crawlId" jsonschema:"ID returned by crawl_site or get_crawl_history"`
}

func (s *MCPServer) registerGetCrawlResultsTool() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_crawl_results",
		Description: "Returns every page recorded for a crawl, including pages that failed",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args GetCrawlResultsArgs) (*mcp.CallToolResult, types.CrawlResultDetailed, error) {
		detail, err := s.app.GetCrawlWithResults(args.CrawlID)
		if err != nil {
			return nil, types.CrawlResultDetailed{}, err
		}
		return nil, *detail, nil
	})
}
