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
	"fmt"
	"io"
	"log"
	"os"

	"github.com/agentberlin/doccrawl/internal/app"
	"github.com/agentberlin/doccrawl/internal/config"
	"github.com/agentberlin/doccrawl/internal/store"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for doccrawl.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doccrawl",
		Short: "Crawl documentation sites into local files",
		Long: `doccrawl crawls a documentation site starting from a base URL, stays on
that host, and writes the main content of every page it finds to disk together
with a JSON metadata file.

Pages are rendered with headless Chrome by default so sites built with
JavaScript are captured as a reader sees them. Use --renderer static for plain
HTML sites or machines without Chrome.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .doccrawl.yaml in current directory, then the XDG config directory)")
	cmd.PersistentFlags().String("history-db", "",
		"Crawl history database (default: doccrawl/history.db in the XDG data directory)")
	cmd.PersistentFlags().Bool("no-history", false, "Do not record crawls in the history database")

	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewMCPCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return false
	}
	return verbose
}

// newLogger returns the logger shared by the crawler and the app
func newLogger(cmd *cobra.Command) *log.Logger {
	return log.New(cmd.ErrOrStderr(), "[doccrawl] ", log.LstdFlags)
}

// loadConfigFile finds and parses the configuration file.
// An explicitly given path must exist; otherwise a missing file yields nil.
func loadConfigFile(cmd *cobra.Command) (*config.File, error) {
	configFlag, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	path := config.FindConfigFile(configFlag)
	if path == "" {
		if configFlag != "" {
			return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, configFlag)
		}
		return nil, nil
	}

	file, err := config.LoadConfigFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
	}
	return file, nil
}

// openStore opens the history database selected by the flags and config file.
// It returns nil when history is disabled.
func openStore(cmd *cobra.Command, file *config.File) (*store.Store, error) {
	noHistory, err := cmd.Flags().GetBool("no-history")
	if err != nil {
		return nil, err
	}
	if noHistory {
		return nil, nil
	}

	dbPath, err := cmd.Flags().GetString("history-db")
	if err != nil {
		return nil, err
	}
	if dbPath == "" && file != nil && file.HistoryDB != nil {
		dbPath = *file.HistoryDB
	}

	var st *store.Store
	if dbPath != "" {
		st, err = store.NewStoreAt(dbPath)
	} else {
		st, err = store.NewStore()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	return st, nil
}

// newApp builds the app for commands that need history; the returned close
// function releases the database.
func newApp(cmd *cobra.Command, logger *log.Logger) (*app.App, func(), error) {
	file, err := loadConfigFile(cmd)
	if err != nil {
		return nil, nil, err
	}
	st, err := openStore(cmd, file)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if st != nil {
			st.Close()
		}
	}
	return app.NewApp(st, nil, logger), closeFn, nil
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}
