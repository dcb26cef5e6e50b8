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

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agentberlin/doccrawl"
	"github.com/agentberlin/doccrawl/internal/app"
	"github.com/agentberlin/doccrawl/internal/mcp"
	"github.com/spf13/cobra"
)

// NewMCPCmd creates the mcp command.
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve crawl tools over the Model Context Protocol",
		Long: `MCP serves the crawl_site, get_crawl_history and get_crawl_results tools.

By default the server talks over stdin/stdout, which is what MCP clients
expect when they launch doccrawl themselves. Use --http to listen on an address
instead. Crawl defaults come from the configuration file.`,
		Args: cobra.NoArgs,
		RunE: runMCPCmd,
	}

	cmd.Flags().String("http", "", "Serve streamable HTTP on this address (e.g. localhost:8765) instead of stdio")

	return cmd
}

func runMCPCmd(cmd *cobra.Command, _ []string) error {
	httpAddr, err := cmd.Flags().GetString("http")
	if err != nil {
		return err
	}

	file, err := loadConfigFile(cmd)
	if err != nil {
		return err
	}
	st, err := openStore(cmd, file)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}

	// stdout belongs to the protocol, so everything else is logged to stderr
	logger := newLogger(cmd)
	verbose := getVerboseFlag(cmd)
	a := app.NewApp(st, nil, logger)

	server := mcp.NewMCPServer(a, func(baseURL string) *doccrawl.Config {
		cfg := doccrawl.NewDefaultConfig(baseURL)
		if file != nil {
			file.Apply(cfg)
		}
		cfg.Verbose = verbose
		return cfg
	}, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if httpAddr == "" {
		return server.RunStdio(ctx)
	}

	httpServer, err := server.RunHTTP(httpAddr)
	if err != nil {
		return err
	}
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("failed to shut down MCP server: %w", err)
	}
	return nil
}
