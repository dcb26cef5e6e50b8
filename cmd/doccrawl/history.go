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
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/agentberlin/doccrawl/internal/types"
	"github.com/nao1215/markdown"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command and its subcommands.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded crawls",
		Long: `History lists the crawls recorded in the history database, newest first.

Examples:
  # Last 10 crawls
  doccrawl history -l 10

  # Markdown report of one crawl
  doccrawl history show 3 -o report.md`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "l", 20, "Maximum number of crawls to list (0 = all)")
	cmd.Flags().BoolP("json", "j", false, "Output in JSON format")

	cmd.AddCommand(newHistoryShowCmd())
	cmd.AddCommand(newHistoryDeleteCmd())

	return cmd
}

func newHistoryShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <crawl-id>",
		Short: "Print a markdown report of one crawl",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistoryShowCmd,
	}
	cmd.Flags().StringP("output", "o", "", "Write the report to this file instead of stdout")
	return cmd
}

func newHistoryDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <crawl-id>",
		Short: "Remove a crawl from the history",
		Long:  `Delete removes a crawl and its page records. Files in the output directory are kept.`,
		Args:  cobra.ExactArgs(1),
		RunE:  runHistoryDeleteCmd,
	}
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	a, closeApp, err := newApp(cmd, quietLogger())
	if err != nil {
		return err
	}
	defer closeApp()

	crawls, err := a.GetCrawls(limit)
	if err != nil {
		return fmt.Errorf("failed to get crawls: %w", err)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		if crawls == nil {
			crawls = []types.CrawlInfo{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(crawls)
	}

	printCrawlList(out, crawls)
	return nil
}

func printCrawlList(w io.Writer, crawls []types.CrawlInfo) {
	if len(crawls) == 0 {
		fmt.Fprintln(w, "No crawls found.")
		return
	}

	fmt.Fprintf(w, "%-6s %-17s %-10s %-7s %-7s %-10s %s\n", "ID", "Date", "Duration", "Pages", "Failed", "Status", "Base URL")
	fmt.Fprintln(w, strings.Repeat("-", 90))
	for _, c := range crawls {
		fmt.Fprintf(w, "%-6d %-17s %-10s %-7d %-7d %-10s %s\n",
			c.ID, formatTimestamp(c.CrawlDateTime), formatDuration(c.CrawlDuration),
			c.PagesCrawled, c.PagesFailed, c.Status, c.BaseURL)
	}
}

func runHistoryShowCmd(cmd *cobra.Command, args []string) error {
	crawlID, err := parseCrawlID(args[0])
	if err != nil {
		return err
	}
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	a, closeApp, err := newApp(cmd, quietLogger())
	if err != nil {
		return err
	}
	defer closeApp()

	detail, err := a.GetCrawlWithResults(crawlID)
	if err != nil {
		return err
	}

	if outputPath == "" {
		return writeCrawlReport(cmd.OutOrStdout(), detail)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	if err := writeCrawlReport(f, detail); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s\n", outputPath)
	return nil
}

func runHistoryDeleteCmd(cmd *cobra.Command, args []string) error {
	crawlID, err := parseCrawlID(args[0])
	if err != nil {
		return err
	}

	a, closeApp, err := newApp(cmd, quietLogger())
	if err != nil {
		return err
	}
	defer closeApp()

	if err := a.DeleteCrawl(crawlID); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted crawl %d\n", crawlID)
	return nil
}

// writeCrawlReport renders a crawl and its pages as markdown.
func writeCrawlReport(w io.Writer, detail *types.CrawlResultDetailed) error {
	info := detail.CrawlInfo
	md := markdown.NewMarkdown(w)

	md.H1(fmt.Sprintf("Crawl %d", info.ID))
	md.PlainText("")

	rows := [][]string{
		{"Base URL", info.BaseURL},
		{"Status", info.Status},
		{"Started", formatTimestamp(info.CrawlDateTime)},
		{"Duration", formatDuration(info.CrawlDuration)},
		{"Pages Crawled", strconv.Itoa(info.PagesCrawled)},
		{"Pages Failed", strconv.Itoa(info.PagesFailed)},
		{"Output Directory", "`" + info.OutputDir + "`"},
	}
	if info.Error != "" {
		rows = append(rows, []string{"Error", escapeCell(info.Error)})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	md.H2("Pages")
	md.PlainText("")
	if len(detail.Results) == 0 {
		md.PlainText("No pages were recorded.")
	} else {
		pages := make([][]string, 0, len(detail.Results))
		for _, r := range detail.Results {
			file := ""
			if r.Path != "" {
				file = "`" + r.Path + "`"
			}
			pages = append(pages, []string{
				escapeCell(r.URL),
				escapeCell(truncate(r.Title, 60)),
				file,
				strconv.Itoa(r.LinksCount),
				pageStatus(r),
			})
		}
		md.Table(markdown.TableSet{
			Header: []string{"URL", "Title", "File", "Links", "Status"},
			Rows:   pages,
		})
	}
	md.PlainText("")

	return md.Build()
}

func pageStatus(r types.CrawlResult) string {
	if r.Error != "" {
		return "failed: " + escapeCell(truncate(r.Error, 80))
	}
	if r.Path == "" {
		return "fetched, not saved"
	}
	return "saved"
}

func parseCrawlID(arg string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid crawl ID %q", arg)
	}
	return uint(id), nil
}

// escapeCell keeps table cells on one line and their pipes literal
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", "\\|")
}

// truncate truncates a string to maxLen characters with ellipsis.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

func formatTimestamp(unix int64) string {
	if unix == 0 {
		return "-"
	}
	return time.Unix(unix, 0).Format("2006-01-02 15:04")
}

// formatDuration formats a duration in seconds to a human-readable string
func formatDuration(seconds int64) string {
	if seconds <= 0 {
		return "-"
	}
	return (time.Duration(seconds) * time.Second).String()
}
