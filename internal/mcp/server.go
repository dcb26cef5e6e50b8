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

// Package mcp exposes crawling and crawl history as Model Context Protocol tools.
package mcp

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/agentberlin/doccrawl"
	"github.com/agentberlin/doccrawl/internal/app"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	ServerName    = "doccrawl"
	ServerVersion = "1.0.0"
)

// ConfigFactory returns the base configuration for a crawl of baseURL.
// Tool arguments are applied on top of it.
type ConfigFactory func(baseURL string) *doccrawl.Config

// MCPServer wraps the core app and exposes it via MCP protocol
type MCPServer struct {
	server    *mcp.Server
	app       *app.App
	newConfig ConfigFactory
	logger    *log.Logger
}

// NewMCPServer creates a new MCP server instance.
// newConfig may be nil, in which case doccrawl.NewDefaultConfig is used.
func NewMCPServer(a *app.App, newConfig ConfigFactory, logger *log.Logger) *MCPServer {
	if logger == nil {
		logger = log.New(os.Stderr, "[doccrawl MCP] ", log.LstdFlags)
	}
	if newConfig == nil {
		newConfig = doccrawl.NewDefaultConfig
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: ServerVersion,
	}, nil)

	s := &MCPServer{
		server:    mcpServer,
		app:       a,
		newConfig: newConfig,
		logger:    logger,
	}
	s.registerTools()

	logger.Printf("MCP server initialized successfully")
	return s
}

// GetServer returns the internal MCP server instance
func (s *MCPServer) GetServer() *mcp.Server {
	return s.server
}

// RunStdio serves MCP over stdin/stdout until ctx is done or the client disconnects
func (s *MCPServer) RunStdio(ctx context.Context) error {
	s.logger.Printf("Serving MCP over stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP starts the MCP server with HTTP transport using StreamableHTTPHandler
func (s *MCPServer) RunHTTP(addr string) (*http.Server, error) {
	s.logger.Printf("Starting MCP HTTP server on %s...", addr)

	handler := mcp.NewStreamableHTTPHandler(
		func(req *http.Request) *mcp.Server {
			return s.server
		},
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Printf("HTTP server error: %v", err)
		}
	}()

	s.logger.Printf("MCP HTTP server started successfully on %s", addr)
	return httpServer, nil
}
